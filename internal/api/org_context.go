package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/ignite/jtbd-explorer/internal/config"
	"github.com/ignite/jtbd-explorer/internal/pkg/httputil"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
)

// OrgContextKey is the key for storing the organization id.
type OrgContextKey struct{}

// ErrNoOrganization is returned when a request carries no usable org id.
var ErrNoOrganization = errors.New("organization ID not found in request")

// OrgContextProvider extracts the organization of a request.
type OrgContextProvider struct {
	defaultOrgID   uuid.UUID
	devModeEnabled bool
}

// NewOrgContextProvider creates a provider. The default org applies only in
// dev mode and only when it parses as a UUID.
func NewOrgContextProvider(cfg config.DevConfig) *OrgContextProvider {
	p := &OrgContextProvider{devModeEnabled: cfg.Enabled}
	if id, err := uuid.Parse(cfg.DefaultOrgID); err == nil {
		p.defaultOrgID = id
	}
	return p
}

// ExtractOrgID extracts the organization ID from a request.
// Priority: 1. X-Organization-ID header, 2. org_id query param, 3. dev mode default.
// A present but malformed value is skipped, not an error.
func (p *OrgContextProvider) ExtractOrgID(r *http.Request) (string, error) {
	if id, err := uuid.Parse(r.Header.Get("X-Organization-ID")); err == nil {
		return id.String(), nil
	}
	if id, err := uuid.Parse(r.URL.Query().Get("org_id")); err == nil {
		return id.String(), nil
	}
	if p.devModeEnabled && p.defaultOrgID != uuid.Nil {
		return p.defaultOrgID.String(), nil
	}
	return "", ErrNoOrganization
}

// Middleware rejects requests without an organization and stores the org id
// and the X-User-ID actor in the request context.
func (p *OrgContextProvider) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID, err := p.ExtractOrgID(r)
		if err != nil {
			httputil.ErrorWithCode(w, http.StatusBadRequest, err.Error(), "missing_organization", nil)
			return
		}
		ctx := context.WithValue(r.Context(), OrgContextKey{}, orgID)
		if actor := r.Header.Get("X-User-ID"); actor != "" {
			ctx = jtbd.WithActor(ctx, actor)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OrgIDFrom returns the org id stored by Middleware.
func OrgIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(OrgContextKey{}).(string)
	return id
}
