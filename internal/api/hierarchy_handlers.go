package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/jtbd-explorer/internal/pkg/httputil"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
)

// GetHierarchy returns the active big job / little job / outcome tree.
func (h *Handlers) GetHierarchy(w http.ResponseWriter, r *http.Request) {
	tree, err := h.jtbd.Hierarchy(r.Context(), OrgIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, tree)
}

// ==========================================
// BIG JOBS
// ==========================================

func (h *Handlers) CreateBigJob(w http.ResponseWriter, r *http.Request) {
	var in jtbd.BigJobInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	job, err := h.jtbd.CreateBigJob(r.Context(), OrgIDFrom(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.Created(w, job)
}

func (h *Handlers) UpdateBigJob(w http.ResponseWriter, r *http.Request) {
	var in jtbd.BigJobInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	job, err := h.jtbd.UpdateBigJob(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "slug"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, job)
}

func (h *Handlers) ArchiveBigJob(w http.ResponseWriter, r *http.Request) {
	h.slugAction(w, r, h.jtbd.ArchiveBigJob)
}

func (h *Handlers) DeleteBigJob(w http.ResponseWriter, r *http.Request) {
	h.slugAction(w, r, h.jtbd.DeleteBigJob)
}

// ==========================================
// LITTLE JOBS
// ==========================================

func (h *Handlers) CreateLittleJob(w http.ResponseWriter, r *http.Request) {
	var in jtbd.LittleJobInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	job, err := h.jtbd.CreateLittleJob(r.Context(), OrgIDFrom(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.Created(w, job)
}

func (h *Handlers) UpdateLittleJob(w http.ResponseWriter, r *http.Request) {
	var in jtbd.LittleJobInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	job, err := h.jtbd.UpdateLittleJob(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "slug"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, job)
}

func (h *Handlers) ArchiveLittleJob(w http.ResponseWriter, r *http.Request) {
	h.slugAction(w, r, h.jtbd.ArchiveLittleJob)
}

func (h *Handlers) DeleteLittleJob(w http.ResponseWriter, r *http.Request) {
	h.slugAction(w, r, h.jtbd.DeleteLittleJob)
}

// ==========================================
// OUTCOMES
// ==========================================

func (h *Handlers) CreateOutcome(w http.ResponseWriter, r *http.Request) {
	var in jtbd.OutcomeInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	o, err := h.jtbd.CreateOutcome(r.Context(), OrgIDFrom(r.Context()), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.Created(w, o)
}

func (h *Handlers) UpdateOutcome(w http.ResponseWriter, r *http.Request) {
	var in jtbd.OutcomeInput
	if !httputil.Decode(w, r, &in) {
		return
	}
	o, err := h.jtbd.UpdateOutcome(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "slug"), in)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, o)
}

func (h *Handlers) ArchiveOutcome(w http.ResponseWriter, r *http.Request) {
	h.slugAction(w, r, h.jtbd.ArchiveOutcome)
}

func (h *Handlers) DeleteOutcome(w http.ResponseWriter, r *http.Request) {
	h.slugAction(w, r, h.jtbd.DeleteOutcome)
}

// slugAction runs a body-less mutation on the {slug} node and answers 204.
func (h *Handlers) slugAction(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, orgID, slug string) error) {
	if err := fn(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "slug")); err != nil {
		respondError(w, r, err)
		return
	}
	httputil.NoContent(w)
}
