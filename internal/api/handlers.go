package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
	"github.com/ignite/jtbd-explorer/internal/service/importer"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
	"github.com/ignite/jtbd-explorer/internal/service/members"
)

// SlugLookup resolves outcome slugs through the catalog's slug index.
type SlugLookup interface {
	Refresh(ctx context.Context, orgID string) error
	Lookup(orgID, slug string) (id string, ok bool, err error)
}

// Deps are the services the handlers delegate to.
type Deps struct {
	JTBD    *jtbd.Service
	Imports *importer.Service
	Members *members.Service
	// Slugs lets import overrides name the outcome by slug. Optional.
	Slugs SlugLookup
	// MaxUploadBytes caps multipart uploads; zero means 10 MB.
	MaxUploadBytes int64
}

// Handlers contains all HTTP handlers
type Handlers struct {
	jtbd      *jtbd.Service
	imports   *importer.Service
	members   *members.Service
	slugs     SlugLookup
	maxUpload int64
	log       *logger.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(d Deps) *Handlers {
	maxUpload := d.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 10 << 20
	}
	return &Handlers{
		jtbd:      d.JTBD,
		imports:   d.Imports,
		members:   d.Members,
		slugs:     d.Slugs,
		maxUpload: maxUpload,
		log:       logger.New("api"),
	}
}

// splitList parses a comma-separated query value, dropping blanks.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func queryList(r *http.Request, key string) []string {
	return splitList(r.URL.Query().Get(key))
}
