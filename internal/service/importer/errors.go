package importer

import (
	"errors"
	"fmt"

	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

// Sentinel errors for the import service layer.
var (
	ErrSessionNotFound  = errors.New("import session not found")
	ErrUnknownOutcome   = errors.New("outcome not in catalog")
	ErrImportInProgress = errors.New("an import for this survey is already running")
)

// NotCommittableError is returned when a batch fails the commit gate. It
// carries the summary so callers can show what blocks the commit.
type NotCommittableError struct {
	Summary surveyimport.PreviewSummary
}

func (e *NotCommittableError) Error() string {
	if e.Summary.ValidRowCount == 0 {
		return "import has no valid rows"
	}
	return fmt.Sprintf("import has %d rows with errors", e.Summary.ErrorRowCount)
}
