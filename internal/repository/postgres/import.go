package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

// ImportRepo implements surveyimport.Store. A batch runs in one transaction:
// the survey is upserted by code, then every row is resolved and upserted.
// Rows whose outcome cannot be resolved are reported and skipped; any SQL
// error rolls back the whole batch.
type ImportRepo struct{ db *sql.DB }

// NewImportRepo creates a Postgres-backed import store.
func NewImportRepo(db *sql.DB) *ImportRepo { return &ImportRepo{db: db} }

// resolveOutcomeSQL matches by slug first, then by exact name, among active
// outcomes of the org whose little and big jobs are active too. It resolves
// against the same set the matcher's catalog is loaded from.
const resolveOutcomeSQL = `
	SELECT o.id FROM outcomes o
	JOIN little_jobs l ON l.id = o.little_job_id AND l.status = 'active'
	JOIN big_jobs b ON b.id = l.big_job_id AND b.status = 'active'
	WHERE o.org_id = $1 AND o.status = 'active' AND (o.slug = $2 OR o.name = $2)
	ORDER BY (o.slug = $2) DESC, o.order_index
	LIMIT 1
`

func (r *ImportRepo) ImportSurvey(ctx context.Context, p surveyimport.Payload) (*surveyimport.StoreResponse, error) {
	resp := &surveyimport.StoreResponse{}
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `
			INSERT INTO surveys (org_id, code, name, date, description)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (org_id, code) DO UPDATE
			SET name = EXCLUDED.name, date = EXCLUDED.date, description = EXCLUDED.description, updated_at = NOW()
			RETURNING id
		`, p.OrgID, p.Survey.Code, p.Survey.Name, p.Survey.Date, p.Survey.Description).Scan(&resp.SurveyID); err != nil {
			return fmt.Errorf("upsert survey: %w", err)
		}

		for _, row := range p.Rows {
			var outcomeID string
			err := tx.QueryRowContext(ctx, resolveOutcomeSQL, p.OrgID, row.Outcome).Scan(&outcomeID)
			if errors.Is(err, sql.ErrNoRows) {
				resp.Errors++
				resp.ErrorDetails = append(resp.ErrorDetails, surveyimport.RowError{
					Outcome: row.Outcome,
					Error:   surveyimport.IssueNotFound,
				})
				continue
			}
			if err != nil {
				return fmt.Errorf("resolve outcome %q: %w", row.Outcome, err)
			}

			var (
				resultID string
				inserted bool
				updated  sql.NullTime
			)
			if err := tx.QueryRowContext(ctx, upsertResultSQL,
				p.OrgID, resp.SurveyID, outcomeID, row.Importance, row.Satisfaction, row.OpportunityScore,
			).Scan(&resultID, &inserted, &updated); err != nil {
				return fmt.Errorf("upsert result %q: %w", row.Outcome, err)
			}
			if inserted {
				resp.Inserted++
			} else {
				resp.Updated++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
