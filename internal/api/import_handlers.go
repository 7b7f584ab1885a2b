package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/jtbd-explorer/internal/pkg/httputil"
	"github.com/ignite/jtbd-explorer/internal/service/importer"
	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

// ==========================================
// TEMPLATES
// ==========================================

// DownloadTemplate serves the CSV import template.
func (h *Handlers) DownloadTemplate(w http.ResponseWriter, r *http.Request) {
	writeAttachment(w, "text/csv", "survey-import-template.csv", surveyimport.Template())
}

// DownloadTemplateXLSX serves the same template as a workbook.
func (h *Handlers) DownloadTemplateXLSX(w http.ResponseWriter, r *http.Request) {
	data, err := surveyimport.TemplateXLSX()
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeAttachment(w, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"survey-import-template.xlsx", data)
}

func writeAttachment(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ==========================================
// SESSIONS
// ==========================================

type sessionResponse struct {
	SessionID string                      `json:"session_id"`
	FileName  string                      `json:"file_name"`
	Summary   surveyimport.PreviewSummary `json:"summary"`
}

// UploadImport accepts a multipart "file" field and opens a review session.
func (h *Handlers) UploadImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.ErrorWithCode(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("file exceeds %d bytes", h.maxUpload), "file_too_large", nil)
			return
		}
		httputil.BadRequest(w, "expected multipart form with a file field")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.BadRequest(w, "could not read uploaded file")
		return
	}

	sess, summary, err := h.imports.Preview(r.Context(), OrgIDFrom(r.Context()), header.Filename, data)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.Created(w, sessionResponse{SessionID: sess.ID, FileName: sess.FileName, Summary: summary})
}

// GetImport returns the current preview of a session.
func (h *Handlers) GetImport(w http.ResponseWriter, r *http.Request) {
	sess, summary, err := h.imports.Get(r.Context(), OrgIDFrom(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, sessionResponse{SessionID: sess.ID, FileName: sess.FileName, Summary: summary})
}

type overrideRequest struct {
	OutcomeID   string `json:"outcome_id"`
	OutcomeSlug string `json:"outcome_slug"`
}

// OverrideImportRow points one row at a catalog outcome, by id or by slug.
func (h *Handlers) OverrideImportRow(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		httputil.BadRequest(w, "row index must be an integer")
		return
	}
	var req overrideRequest
	if !httputil.Decode(w, r, &req) {
		return
	}

	ctx := r.Context()
	orgID := OrgIDFrom(ctx)
	outcomeID := req.OutcomeID
	if outcomeID == "" && req.OutcomeSlug != "" {
		if h.slugs == nil {
			httputil.BadRequest(w, "outcome_id is required")
			return
		}
		id, ok, err := h.slugs.Lookup(orgID, req.OutcomeSlug)
		if errors.Is(err, importer.ErrIndexStale) {
			if err = h.slugs.Refresh(ctx, orgID); err == nil {
				id, ok, err = h.slugs.Lookup(orgID, req.OutcomeSlug)
			}
		}
		if err != nil {
			respondError(w, r, err)
			return
		}
		if !ok {
			respondError(w, r, importer.ErrUnknownOutcome)
			return
		}
		outcomeID = id
	}
	if outcomeID == "" {
		httputil.BadRequest(w, "outcome_id or outcome_slug is required")
		return
	}

	summary, err := h.imports.Override(ctx, orgID, chi.URLParam(r, "id"), index, outcomeID)
	if err != nil {
		respondError(w, r, err)
		return
	}
	httputil.OK(w, summary)
}

// CommitImport writes a reviewed session under the given survey metadata.
// A batch the store rejected answers 500 with the per-row details kept.
func (h *Handlers) CommitImport(w http.ResponseWriter, r *http.Request) {
	var meta surveyimport.SurveyMetadata
	if !httputil.Decode(w, r, &meta) {
		return
	}

	ctx := r.Context()
	result, err := h.imports.Commit(ctx, OrgIDFrom(ctx), chi.URLParam(r, "id"), meta)
	if err != nil {
		respondError(w, r, err)
		return
	}
	if !result.Success {
		h.log.Error("import commit failed", "org_id", OrgIDFrom(ctx), "session_id", chi.URLParam(r, "id"),
			"survey_code", meta.Code, "error", result.Message)
		result.Message = safeErrorMessage(http.StatusInternalServerError, errors.New(result.Message))
		httputil.JSON(w, http.StatusInternalServerError, result)
		return
	}
	httputil.OK(w, result)
}
