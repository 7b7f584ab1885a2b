package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/pkg/httputil"
)

func (h *Handlers) ListMembers(w http.ResponseWriter, r *http.Request) {
	list, err := h.members.List(r.Context(), OrgIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, list)
}

type addMemberRequest struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// AddMember attaches an existing user, found by email, to the org.
func (h *Handlers) AddMember(w http.ResponseWriter, r *http.Request) {
	var req addMemberRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	m, err := h.members.Add(r.Context(), OrgIDFrom(r.Context()), req.Email, req.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.Created(w, m)
}

type updateRoleRequest struct {
	Role domain.Role `json:"role"`
}

func (h *Handlers) UpdateMemberRole(w http.ResponseWriter, r *http.Request) {
	var req updateRoleRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	m, err := h.members.UpdateRole(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, m)
}

func (h *Handlers) RemoveMember(w http.ResponseWriter, r *http.Request) {
	if err := h.members.Remove(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	httputil.NoContent(w)
}
