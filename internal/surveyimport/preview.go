package surveyimport

import "strings"

// RowStatus is the per-row review tier.
type RowStatus string

const (
	StatusOK      RowStatus = "ok"
	StatusWarning RowStatus = "warning"
	StatusError   RowStatus = "error"
)

// PreviewSummary is a derived view over a matched row set. The warning and
// error tallies are independent and may count the same row.
type PreviewSummary struct {
	TotalRows       int          `json:"total_rows"`
	ValidRowCount   int          `json:"valid_row_count"`
	WarningRowCount int          `json:"warning_row_count"`
	ErrorRowCount   int          `json:"error_row_count"`
	Rows            []MatchedRow `json:"rows"`
}

// CanCommit reports whether the batch passes the commit gate: no error rows
// and at least one valid row.
func (p PreviewSummary) CanCommit() bool {
	return p.ErrorRowCount == 0 && p.ValidRowCount > 0
}

// Summarize classifies rows without modifying them.
func Summarize(rows []MatchedRow) PreviewSummary {
	p := PreviewSummary{TotalRows: len(rows), Rows: rows}
	for _, r := range rows {
		if isValid(r) {
			p.ValidRowCount++
		}
		if isWarning(r) {
			p.WarningRowCount++
		}
		if isError(r) {
			p.ErrorRowCount++
		}
	}
	return p
}

// StatusOf returns the display tier of a row. Error takes precedence over
// warning.
func StatusOf(r MatchedRow) RowStatus {
	switch {
	case isError(r):
		return StatusError
	case isWarning(r):
		return StatusWarning
	}
	return StatusOK
}

func isValid(r MatchedRow) bool { return r.Matched() && len(r.Issues) == 0 }

func isWarning(r MatchedRow) bool { return r.Matched() && len(r.Issues) > 0 }

func isError(r MatchedRow) bool {
	if !r.Matched() {
		return true
	}
	for _, issue := range r.Issues {
		if strings.Contains(issue, "must be between") || strings.Contains(issue, "not found") {
			return true
		}
	}
	return false
}
