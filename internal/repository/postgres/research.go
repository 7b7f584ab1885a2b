package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
)

const surveyColumns = `id, org_id, code, name, to_char(date, 'YYYY-MM-DD'), description, created_at, updated_at`

func scanSurvey(s scanner) (*domain.Survey, error) {
	var sv domain.Survey
	if err := s.Scan(&sv.ID, &sv.OrgID, &sv.Code, &sv.Name, &sv.Date, &sv.Description,
		&sv.CreatedAt, &sv.UpdatedAt); err != nil {
		return nil, err
	}
	return &sv, nil
}

func (r *HierarchyRepo) ListSurveys(ctx context.Context, orgID string) ([]domain.Survey, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE org_id = $1 ORDER BY date, code`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	var out []domain.Survey
	for rows.Next() {
		sv, err := scanSurvey(rows)
		if err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		out = append(out, *sv)
	}
	return out, rows.Err()
}

func (r *HierarchyRepo) GetSurvey(ctx context.Context, orgID, code string) (*domain.Survey, error) {
	sv, err := scanSurvey(r.q.QueryRowContext(ctx,
		`SELECT `+surveyColumns+` FROM surveys WHERE org_id = $1 AND code = $2`, orgID, code))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("survey", code)
	}
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	return sv, nil
}

func (r *HierarchyRepo) UpsertSurvey(ctx context.Context, s *domain.Survey) error {
	if err := r.q.QueryRowContext(ctx, `
		INSERT INTO surveys (org_id, code, name, date, description)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (org_id, code) DO UPDATE
		SET name = EXCLUDED.name, date = EXCLUDED.date, description = EXCLUDED.description, updated_at = NOW()
		RETURNING id, created_at, updated_at
	`, s.OrgID, s.Code, s.Name, s.Date, s.Description).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return fmt.Errorf("upsert survey: %w", err)
	}
	return nil
}

func (r *HierarchyRepo) ListOutcomeResults(ctx context.Context, orgID, surveyID string) ([]domain.OutcomeResult, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, org_id, survey_id, outcome_id, importance, satisfaction, opportunity_score, updated_at
		FROM outcome_results
		WHERE org_id = $1 AND ($2::text = '' OR survey_id::text = $2)
		ORDER BY survey_id, outcome_id
	`, orgID, surveyID)
	if err != nil {
		return nil, fmt.Errorf("list outcome results: %w", err)
	}
	defer rows.Close()

	var out []domain.OutcomeResult
	for rows.Next() {
		var res domain.OutcomeResult
		if err := rows.Scan(&res.ID, &res.OrgID, &res.SurveyID, &res.OutcomeID,
			&res.Importance, &res.Satisfaction, &res.OpportunityScore, &res.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan outcome result: %w", err)
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// upsertResultSQL reports inserted=true for a fresh row; xmax is zero only
// for tuples not produced by an update.
const upsertResultSQL = `
	INSERT INTO outcome_results (org_id, survey_id, outcome_id, importance, satisfaction, opportunity_score)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (survey_id, outcome_id) DO UPDATE
	SET importance = EXCLUDED.importance,
	    satisfaction = EXCLUDED.satisfaction,
	    opportunity_score = EXCLUDED.opportunity_score,
	    updated_at = NOW()
	RETURNING id, (xmax = 0), updated_at
`

func (r *HierarchyRepo) UpsertOutcomeResult(ctx context.Context, res *domain.OutcomeResult) (bool, error) {
	var inserted bool
	if err := r.q.QueryRowContext(ctx, upsertResultSQL,
		res.OrgID, res.SurveyID, res.OutcomeID, res.Importance, res.Satisfaction, res.OpportunityScore,
	).Scan(&res.ID, &inserted, &res.UpdatedAt); err != nil {
		return false, fmt.Errorf("upsert outcome result: %w", err)
	}
	return inserted, nil
}

func (r *HierarchyRepo) OutcomesLong(ctx context.Context, orgID string, f jtbd.Filter) ([]domain.OutcomeLong, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT big_job_slug, big_job_name, little_job_slug, little_job_name,
		       outcome_slug, outcome_name, survey_code, survey_date,
		       importance, satisfaction, opportunity_score
		FROM vw_outcomes_long
		WHERE org_id = $1
		  AND ($2::text[] IS NULL OR survey_code = ANY($2))
		  AND ($3::text[] IS NULL OR big_job_slug = ANY($3))
		  AND ($4::text[] IS NULL OR little_job_slug = ANY($4))
		  AND ($5::text[] IS NULL OR outcome_slug = ANY($5))
		ORDER BY survey_date, survey_code, big_job_slug, little_job_slug, outcome_slug
	`, orgID, filterArray(f.SurveyCodes), filterArray(f.BigJobSlugs),
		filterArray(f.LittleJobSlugs), filterArray(f.OutcomeSlugs))
	if err != nil {
		return nil, fmt.Errorf("outcomes long: %w", err)
	}
	defer rows.Close()

	var out []domain.OutcomeLong
	for rows.Next() {
		var o domain.OutcomeLong
		if err := rows.Scan(&o.BigJobSlug, &o.BigJobName, &o.LittleJobSlug, &o.LittleJobName,
			&o.OutcomeSlug, &o.OutcomeName, &o.SurveyCode, &o.SurveyDate,
			&o.Importance, &o.Satisfaction, &o.OpportunityScore); err != nil {
			return nil, fmt.Errorf("scan outcome row: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// =============================================================================
// CHANGE LOG
// =============================================================================

func (r *HierarchyRepo) InsertChangeLog(ctx context.Context, c *domain.ChangeLog) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO change_logs (id, org_id, entity, entity_id, action, before, after, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, c.ID, c.OrgID, c.Entity, c.EntityID, c.Action, nullJSON(c.Before), nullJSON(c.After), c.Actor, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert change log: %w", err)
	}
	return nil
}

func (r *HierarchyRepo) ListChangeLogs(ctx context.Context, orgID string, limit int) ([]domain.ChangeLog, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, org_id, entity, entity_id, action, before, after, actor, created_at
		FROM change_logs
		WHERE org_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("list change logs: %w", err)
	}
	defer rows.Close()

	var out []domain.ChangeLog
	for rows.Next() {
		var (
			c             domain.ChangeLog
			before, after []byte
		)
		if err := rows.Scan(&c.ID, &c.OrgID, &c.Entity, &c.EntityID, &c.Action,
			&before, &after, &c.Actor, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan change log: %w", err)
		}
		c.Before, c.After = before, after
		out = append(out, c)
	}
	return out, rows.Err()
}
