package surveyimport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
)

// PayloadRow is one accepted row as submitted to the store. Outcome is the
// resolved slug, or the outcome name when no slug is known.
type PayloadRow struct {
	Outcome          string  `json:"outcome"`
	Importance       float64 `json:"importance"`
	Satisfaction     float64 `json:"satisfaction"`
	OpportunityScore float64 `json:"opportunity_score"`
}

// Payload is a whole import batch.
type Payload struct {
	OrgID  string         `json:"org_id"`
	Survey SurveyMetadata `json:"survey"`
	Rows   []PayloadRow   `json:"rows"`
}

// StoreResponse is the store's report of an import transaction.
type StoreResponse struct {
	SurveyID     string     `json:"survey_id"`
	Inserted     int        `json:"inserted"`
	Updated      int        `json:"updated"`
	Errors       int        `json:"errors"`
	ErrorDetails []RowError `json:"error_details,omitempty"`
}

// ErrInvalidResponse marks a store response that violates its schema.
var ErrInvalidResponse = errors.New("invalid store response")

// Validate checks the response shape against the submitted row count.
func (r *StoreResponse) Validate(submitted int) error {
	switch {
	case r == nil:
		return fmt.Errorf("%w: empty response", ErrInvalidResponse)
	case r.SurveyID == "":
		return fmt.Errorf("%w: missing survey id", ErrInvalidResponse)
	case r.Inserted < 0 || r.Updated < 0 || r.Errors < 0:
		return fmt.Errorf("%w: negative counts", ErrInvalidResponse)
	case r.Inserted+r.Updated+r.Errors > submitted:
		return fmt.Errorf("%w: %d rows reported for %d submitted", ErrInvalidResponse,
			r.Inserted+r.Updated+r.Errors, submitted)
	}
	return nil
}

// Store executes an import batch atomically: it creates the survey if absent
// and upserts one result per outcome keyed by (survey, outcome).
type Store interface {
	ImportSurvey(ctx context.Context, p Payload) (*StoreResponse, error)
}

// Committer submits accepted rows to a Store.
type Committer struct {
	store Store
}

// NewCommitter creates a committer backed by store.
func NewCommitter(store Store) *Committer {
	return &Committer{store: store}
}

// Committable reports whether a row survives the commit filter.
func Committable(r MatchedRow) bool {
	return r.Matched() &&
		r.Importance.Between(MinRating, MaxRating) &&
		r.Satisfaction.Between(MinRating, MaxRating) &&
		r.OpportunityScore.Between(MinOpportunity, MaxOpportunity)
}

// BuildPayload filters rows down to the committable ones and shapes them for
// the store.
func BuildPayload(orgID string, meta SurveyMetadata, rows []MatchedRow) Payload {
	p := Payload{OrgID: orgID, Survey: meta, Rows: make([]PayloadRow, 0, len(rows))}
	for _, r := range rows {
		if !Committable(r) {
			continue
		}
		outcome := r.OutcomeSlug
		if outcome == "" {
			outcome = r.OutcomeName
		}
		p.Rows = append(p.Rows, PayloadRow{
			Outcome:          outcome,
			Importance:       r.Importance.Float(),
			Satisfaction:     r.Satisfaction.Float(),
			OpportunityScore: r.OpportunityScore.Float(),
		})
	}
	return p
}

// Commit submits the committable subset of rows in one store call. Errors
// are reported in the result, never returned. A batch with no committable
// rows fails without contacting the store.
func (c *Committer) Commit(ctx context.Context, orgID string, meta SurveyMetadata, rows []MatchedRow) ImportResult {
	start := time.Now()
	defer func() { observeStage("commit", start) }()

	payload := BuildPayload(orgID, meta, rows)
	if len(payload.Rows) == 0 {
		countCommit("empty")
		return ImportResult{
			Success:    false,
			ErrorCount: len(rows),
			Message:    "No valid rows to import",
		}
	}

	resp, err := c.store.ImportSurvey(ctx, payload)
	if err == nil {
		err = resp.Validate(len(payload.Rows))
	}
	if err != nil {
		countCommit("failed")
		logger.Error("survey import commit failed",
			"org_id", orgID, "survey_code", meta.Code, "rows", len(payload.Rows), "error", err)
		return ImportResult{
			Success:    false,
			ErrorCount: len(payload.Rows),
			Message:    err.Error(),
		}
	}

	countCommit("success")
	logger.Info("survey import committed",
		"org_id", orgID, "survey_code", meta.Code, "survey_id", resp.SurveyID,
		"inserted", resp.Inserted, "updated", resp.Updated, "errors", resp.Errors)

	msg := fmt.Sprintf("Import completed: %d inserted, %d updated", resp.Inserted, resp.Updated)
	if resp.Errors > 0 {
		msg += fmt.Sprintf(", %d errors", resp.Errors)
	}
	return ImportResult{
		Success:       true,
		SurveyID:      resp.SurveyID,
		InsertedCount: resp.Inserted,
		UpdatedCount:  resp.Updated,
		ErrorCount:    resp.Errors,
		ErrorDetails:  resp.ErrorDetails,
		Message:       msg,
	}
}
