package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/pkg/httputil"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
)

// ExportDataset returns the org's whole dataset. ?download=1 sets an
// attachment filename.
func (h *Handlers) ExportDataset(w http.ResponseWriter, r *http.Request) {
	snap, err := h.jtbd.Export(r.Context(), OrgIDFrom(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if r.URL.Query().Get("download") != "" {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=jtbd-dataset-%s.json", time.Now().UTC().Format("20060102")))
	}
	httputil.OK(w, snap)
}

type restoreRequest struct {
	Snapshot *domain.Snapshot `json:"snapshot"`
	Merge    jtbd.MergeMode   `json:"merge"`
	DryRun   bool             `json:"dry_run"`
}

// RestoreDataset loads a snapshot into the org.
func (h *Handlers) RestoreDataset(w http.ResponseWriter, r *http.Request) {
	var req restoreRequest
	if !httputil.Decode(w, r, &req) {
		return
	}
	if req.Snapshot == nil {
		httputil.BadRequest(w, "snapshot is required")
		return
	}
	res, err := h.jtbd.Restore(r.Context(), OrgIDFrom(r.Context()), req.Snapshot,
		jtbd.RestoreOptions{Merge: req.Merge, DryRun: req.DryRun})
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, res)
}

