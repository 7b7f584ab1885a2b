package jtbd

import (
	"context"
	"errors"
	"strings"

	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/scoring"
	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

// SurveyInput carries the fields of a survey upsert.
type SurveyInput struct {
	Name        string `json:"name"`
	Date        string `json:"date"`
	Description string `json:"description"`
}

// ResultInput carries one outcome's scores. A nil OpportunityScore is
// computed from importance and satisfaction.
type ResultInput struct {
	Importance       float64  `json:"importance"`
	Satisfaction     float64  `json:"satisfaction"`
	OpportunityScore *float64 `json:"opportunity_score,omitempty"`
}

func (s *Service) ListSurveys(ctx context.Context, orgID string) ([]domain.Survey, error) {
	return s.repo.ListSurveys(ctx, orgID)
}

// UpsertSurvey creates the survey with this code or updates its fields.
func (s *Service) UpsertSurvey(ctx context.Context, orgID, code string, in SurveyInput) (*domain.Survey, error) {
	meta := surveyimport.SurveyMetadata{Code: code, Name: in.Name, Date: in.Date, Description: in.Description}
	if err := meta.Validate(); err != nil {
		var verr *surveyimport.ValidationError
		if errors.As(err, &verr) {
			return nil, invalid("%s", strings.Join(verr.Fields, "; "))
		}
		return nil, err
	}

	sv := &domain.Survey{OrgID: orgID, Code: meta.Code, Name: meta.Name, Date: meta.Date, Description: meta.Description}
	err := s.repo.InTx(ctx, func(r Repository) error {
		var before any
		cur, err := r.GetSurvey(ctx, orgID, meta.Code)
		switch {
		case err == nil:
			before = cur
		case !errors.Is(err, ErrNotFound):
			return err
		}
		if err := r.UpsertSurvey(ctx, sv); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntitySurvey, sv.ID, domain.ActionUpsert, before, sv)
	})
	if err != nil {
		return nil, err
	}
	return sv, nil
}

// UpsertOutcomeResult stores one outcome's scores for a survey. It reports
// whether the result was newly inserted.
func (s *Service) UpsertOutcomeResult(ctx context.Context, orgID, surveyCode, outcomeSlug string, in ResultInput) (*domain.OutcomeResult, bool, error) {
	opp := scoring.OpportunityScore(in.Importance, in.Satisfaction)
	if in.OpportunityScore != nil {
		opp = *in.OpportunityScore
	}
	switch {
	case !surveyimport.Number(in.Importance).Between(surveyimport.MinRating, surveyimport.MaxRating):
		return nil, false, invalid("%s", surveyimport.IssueImportanceRange)
	case !surveyimport.Number(in.Satisfaction).Between(surveyimport.MinRating, surveyimport.MaxRating):
		return nil, false, invalid("%s", surveyimport.IssueSatisfactionRange)
	case !surveyimport.Number(opp).Between(surveyimport.MinOpportunity, surveyimport.MaxOpportunity):
		return nil, false, invalid("%s", surveyimport.IssueOpportunityRange)
	}

	var (
		res      *domain.OutcomeResult
		inserted bool
	)
	err := s.repo.InTx(ctx, func(r Repository) error {
		sv, err := r.GetSurvey(ctx, orgID, surveyCode)
		if err != nil {
			return err
		}
		o, err := r.GetOutcome(ctx, orgID, outcomeSlug)
		if err != nil {
			return err
		}
		res = &domain.OutcomeResult{
			OrgID:            orgID,
			SurveyID:         sv.ID,
			OutcomeID:        o.ID,
			Importance:       in.Importance,
			Satisfaction:     in.Satisfaction,
			OpportunityScore: opp,
		}
		if inserted, err = r.UpsertOutcomeResult(ctx, res); err != nil {
			return err
		}
		return s.record(ctx, r, orgID, domain.EntityOutcomeResult, res.ID, domain.ActionUpsert, nil, res)
	})
	if err != nil {
		return nil, false, err
	}
	return res, inserted, nil
}

// OutcomesLong returns the flattened result view, narrowed by f.
func (s *Service) OutcomesLong(ctx context.Context, orgID string, f Filter) ([]domain.OutcomeLong, error) {
	return s.repo.OutcomesLong(ctx, orgID, f)
}

// ResearchRounds returns every survey paired with a copy of the active
// hierarchy carrying that survey's scores. Outcomes the survey did not
// measure have nil scores.
func (s *Service) ResearchRounds(ctx context.Context, orgID string) ([]domain.ResearchRound, error) {
	surveys, err := s.repo.ListSurveys(ctx, orgID)
	if err != nil {
		return nil, err
	}
	tree, err := s.repo.Hierarchy(ctx, orgID, false)
	if err != nil {
		return nil, err
	}
	results, err := s.repo.ListOutcomeResults(ctx, orgID, "")
	if err != nil {
		return nil, err
	}

	bySurvey := make(map[string]map[string]domain.OutcomeResult, len(surveys))
	for _, r := range results {
		m, ok := bySurvey[r.SurveyID]
		if !ok {
			m = make(map[string]domain.OutcomeResult)
			bySurvey[r.SurveyID] = m
		}
		m[r.OutcomeID] = r
	}

	rounds := make([]domain.ResearchRound, 0, len(surveys))
	for _, sv := range surveys {
		rounds = append(rounds, domain.ResearchRound{Survey: sv, Hierarchy: annotate(tree, bySurvey[sv.ID])})
	}
	return rounds, nil
}

// annotate deep-copies h, filling outcome scores from results.
func annotate(h domain.Hierarchy, results map[string]domain.OutcomeResult) domain.Hierarchy {
	out := domain.Hierarchy{BigJobs: make([]domain.BigJob, len(h.BigJobs))}
	for i, bj := range h.BigJobs {
		bj.LittleJobs = append([]domain.LittleJob(nil), bj.LittleJobs...)
		for j, lj := range bj.LittleJobs {
			lj.Outcomes = append([]domain.Outcome(nil), lj.Outcomes...)
			for k := range lj.Outcomes {
				o := &lj.Outcomes[k]
				o.Importance, o.Satisfaction, o.OpportunityScore = nil, nil, nil
				if r, ok := results[o.ID]; ok {
					imp, sat, opp := r.Importance, r.Satisfaction, r.OpportunityScore
					o.Importance, o.Satisfaction, o.OpportunityScore = &imp, &sat, &opp
				}
			}
			bj.LittleJobs[j] = lj
		}
		out.BigJobs[i] = bj
	}
	return out
}

// Projection applies v to every outcome score of a survey and ranks the
// outcomes by projected opportunity, keyed by outcome slug.
func (s *Service) Projection(ctx context.Context, orgID, surveyCode string, v scoring.Variation) ([]scoring.Ranked, error) {
	if _, err := s.repo.GetSurvey(ctx, orgID, surveyCode); err != nil {
		return nil, err
	}
	rows, err := s.repo.OutcomesLong(ctx, orgID, Filter{SurveyCodes: []string{surveyCode}})
	if err != nil {
		return nil, err
	}

	projected := make(map[string]scoring.Scores, len(rows))
	for _, r := range rows {
		baseline := scoring.Scores{
			Importance:       r.Importance,
			Satisfaction:     r.Satisfaction,
			OpportunityScore: r.OpportunityScore,
		}
		projected[r.OutcomeSlug] = scoring.ApplyVariation(baseline, v)
	}
	return scoring.Rank(projected), nil
}
