package api

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/text/language"

	"github.com/ignite/jtbd-explorer/internal/pkg/httputil"
	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
	"github.com/ignite/jtbd-explorer/internal/service/importer"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
	"github.com/ignite/jtbd-explorer/internal/service/members"
	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

// =============================================================================
// ERROR MAPPING
// Every handler reports service errors through respondError. Client errors
// keep their message; 5xx errors are logged and replaced with a safe one.
// =============================================================================

// statusFor maps a service error to an HTTP status and a stable code.
func statusFor(err error) (int, string) {
	var (
		notCommittable *importer.NotCommittableError
		metaErr        *surveyimport.ValidationError
	)
	switch {
	case surveyimport.IsFileError(err):
		return http.StatusBadRequest, surveyimport.ErrorCode(err)
	case errors.As(err, &metaErr):
		return http.StatusBadRequest, "invalid_metadata"
	case errors.As(err, &notCommittable):
		return http.StatusConflict, "not_committable"
	case errors.Is(err, importer.ErrImportInProgress):
		return http.StatusConflict, "import_in_progress"
	case errors.Is(err, importer.ErrSessionNotFound):
		return http.StatusNotFound, "session_not_found"
	case errors.Is(err, importer.ErrUnknownOutcome):
		return http.StatusBadRequest, "unknown_outcome"
	case errors.Is(err, surveyimport.ErrRowOutOfRange),
		errors.Is(err, surveyimport.ErrOverrideTarget):
		return http.StatusBadRequest, "invalid_override"

	case errors.Is(err, jtbd.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, jtbd.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, jtbd.ErrConflict):
		return http.StatusConflict, "conflict"

	case errors.Is(err, members.ErrInvalidRole):
		return http.StatusBadRequest, "invalid_role"
	case errors.Is(err, members.ErrNotFound), errors.Is(err, members.ErrUserNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, members.ErrAlreadyMember), errors.Is(err, members.ErrLastAdmin):
		return http.StatusConflict, "conflict"
	}
	return http.StatusInternalServerError, ""
}

// respondError writes err as a JSON error envelope. File-level import errors
// are rendered in the request's locale; commit-gate failures carry the
// preview summary as details.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", r.Method, "path", r.URL.Path, "org_id", OrgIDFrom(r.Context()), "error", err)
		httputil.Error(w, status, safeErrorMessage(status, err))
		return
	}

	msg := err.Error()
	var details any
	var (
		notCommittable *importer.NotCommittableError
		metaErr        *surveyimport.ValidationError
	)
	switch {
	case surveyimport.IsFileError(err):
		msg = surveyimport.Message(err, requestLocale(r))
	case errors.As(err, &notCommittable):
		details = notCommittable.Summary
	case errors.As(err, &metaErr):
		details = metaErr.Fields
	}
	httputil.ErrorWithCode(w, status, msg, code, details)
}

// requestLocale reads ?lang= first, then Accept-Language.
func requestLocale(r *http.Request) language.Tag {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return surveyimport.MatchLocale(lang)
	}
	return surveyimport.MatchLocale(r.Header.Get("Accept-Language"))
}

// safeErrorMessage maps common internal error patterns to public-safe messages.
func safeErrorMessage(code int, internalErr error) string {
	if code < 500 {
		if internalErr != nil {
			return internalErr.Error()
		}
		return "Bad request"
	}
	if internalErr == nil {
		return "An internal error occurred"
	}

	errStr := strings.ToLower(internalErr.Error())
	switch {
	case strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "dial tcp"):
		return "Service temporarily unavailable"

	case strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded") ||
		strings.Contains(errStr, "context canceled"):
		return "Request timed out"

	case strings.Contains(errStr, "sql") ||
		strings.Contains(errStr, "pq:") ||
		strings.Contains(errStr, "transaction") ||
		strings.Contains(errStr, "database"):
		return "A database error occurred"

	default:
		return "An internal error occurred"
	}
}
