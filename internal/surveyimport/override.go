package surveyimport

import "strings"

// Override is an operator's forced outcome assignment for one row.
type Override struct {
	OutcomeID   string `json:"outcome_id"`
	OutcomeName string `json:"outcome_name"`
	OutcomeSlug string `json:"outcome_slug,omitempty"`
}

// ApplyOverride assigns the target outcome to rows[index]. It replaces any
// previous resolution (including a stale slug, so commit falls back to the
// name when Override has none) and drops "not found" issues. Other issues are
// kept. Applying a second override to the same row replaces the first.
func ApplyOverride(rows []MatchedRow, index int, o Override) error {
	if index < 0 || index >= len(rows) {
		return ErrRowOutOfRange
	}
	if strings.TrimSpace(o.OutcomeID) == "" {
		return ErrOverrideTarget
	}

	row := &rows[index]
	row.OutcomeID = o.OutcomeID
	row.OutcomeName = o.OutcomeName
	row.OutcomeSlug = o.OutcomeSlug
	row.MatchType = MatchManualOverride
	row.MatchScore = nil

	kept := row.Issues[:0]
	for _, issue := range row.Issues {
		if !strings.Contains(issue, "not found") {
			kept = append(kept, issue)
		}
	}
	row.Issues = kept
	return nil
}
