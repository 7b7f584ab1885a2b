package surveyimport

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// MatchType records how a row's outcome was resolved.
type MatchType string

const (
	MatchExactIdentifier MatchType = "exact-identifier"
	MatchExactName       MatchType = "exact-name"
	MatchFuzzy           MatchType = "fuzzy"
	MatchManualOverride  MatchType = "manual-override"
	MatchNone            MatchType = "none"
)

// Number is a parsed score. NaN marks an unparsable value and is encoded as
// JSON null.
type Number float64

// NaN returns the not-a-number sentinel.
func NaN() Number { return Number(math.NaN()) }

// IsNaN reports whether n is the not-a-number sentinel.
func (n Number) IsNaN() bool { return math.IsNaN(float64(n)) }

// Float returns n as a float64.
func (n Number) Float() float64 { return float64(n) }

// Between reports whether n is a number within [lo, hi].
func (n Number) Between(lo, hi float64) bool {
	f := float64(n)
	return !math.IsNaN(f) && f >= lo && f <= hi
}

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'f', -1, 64)), nil
}

func (n *Number) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = NaN()
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

// Record is one decoded spreadsheet row keyed by header text. Values are
// strings, or float64 for native numeric workbook cells.
type Record map[string]any

// Table is the output of Decode.
type Table struct {
	Headers []string
	Rows    []Record
}

// ParsedRow is one non-empty input row after type coercion.
type ParsedRow struct {
	RowIndex         int    `json:"row_index"`
	RawOutcome       string `json:"raw_outcome"`
	Importance       Number `json:"importance"`
	Satisfaction     Number `json:"satisfaction"`
	OpportunityScore Number `json:"opportunity_score"`
	OriginalRow      Record `json:"original_row,omitempty"`
}

// MatchedRow is a ParsedRow with its catalog resolution. An empty OutcomeID
// means the row is unresolved.
type MatchedRow struct {
	ParsedRow
	OutcomeID   string    `json:"outcome_id,omitempty"`
	OutcomeName string    `json:"outcome_name,omitempty"`
	OutcomeSlug string    `json:"outcome_slug,omitempty"`
	MatchType   MatchType `json:"match_type"`
	MatchScore  *float64  `json:"match_score,omitempty"`
	Issues      []string  `json:"issues"`
}

// Matched reports whether the row resolved to a catalog outcome.
func (r MatchedRow) Matched() bool { return r.OutcomeID != "" }

// CatalogEntry is one active outcome of the target organization.
type CatalogEntry struct {
	ID   string `json:"id"`
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// SurveyMetadata describes the survey an import batch belongs to.
type SurveyMetadata struct {
	Code        string `json:"code" validate:"required,max=64,surveycode"`
	Name        string `json:"name" validate:"required,max=200"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description,omitempty" validate:"max=2000"`
}

// RowError describes a row the store could not import.
type RowError struct {
	Outcome string `json:"outcome"`
	Error   string `json:"error"`
}

// ImportResult is the terminal outcome of a commit attempt.
type ImportResult struct {
	Success       bool       `json:"success"`
	SurveyID      string     `json:"survey_id,omitempty"`
	InsertedCount int        `json:"inserted_count"`
	UpdatedCount  int        `json:"updated_count"`
	ErrorCount    int        `json:"error_count"`
	ErrorDetails  []RowError `json:"error_details,omitempty"`
	Message       string     `json:"message"`
}
