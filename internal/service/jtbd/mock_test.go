package jtbd

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ignite/jtbd-explorer/internal/domain"
)

// mockRepo is an in-memory repository for testing. Entities are keyed by
// id; slug lookups scan.
type mockRepo struct {
	mu         sync.Mutex
	bigJobs    map[string]*domain.BigJob
	littleJobs map[string]*domain.LittleJob
	outcomes   map[string]*domain.Outcome
	surveys    map[string]*domain.Survey
	results    map[string]*domain.OutcomeResult // keyed by survey:outcome
	changes    []domain.ChangeLog
	failTx     error
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		bigJobs:    map[string]*domain.BigJob{},
		littleJobs: map[string]*domain.LittleJob{},
		outcomes:   map[string]*domain.Outcome{},
		surveys:    map[string]*domain.Survey{},
		results:    map[string]*domain.OutcomeResult{},
	}
}

func (m *mockRepo) InTx(_ context.Context, fn func(Repository) error) error {
	if m.failTx != nil {
		return m.failTx
	}
	return fn(m)
}

func (m *mockRepo) Hierarchy(_ context.Context, orgID string, includeArchived bool) (domain.Hierarchy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	keep := func(st domain.Status) bool { return includeArchived || st == domain.StatusActive }

	h := domain.Hierarchy{BigJobs: []domain.BigJob{}}
	for _, bj := range m.bigJobs {
		if bj.OrgID != orgID || !keep(bj.Status) {
			continue
		}
		b := *bj
		b.LittleJobs = nil
		for _, lj := range m.littleJobs {
			if lj.BigJobID != bj.ID || !keep(lj.Status) {
				continue
			}
			l := *lj
			l.Outcomes = nil
			for _, o := range m.outcomes {
				if o.LittleJobID == lj.ID && keep(o.Status) {
					l.Outcomes = append(l.Outcomes, *o)
				}
			}
			sort.Slice(l.Outcomes, func(i, j int) bool { return l.Outcomes[i].Slug < l.Outcomes[j].Slug })
			b.LittleJobs = append(b.LittleJobs, l)
		}
		sort.Slice(b.LittleJobs, func(i, j int) bool { return b.LittleJobs[i].Slug < b.LittleJobs[j].Slug })
		h.BigJobs = append(h.BigJobs, b)
	}
	sort.Slice(h.BigJobs, func(i, j int) bool { return h.BigJobs[i].Slug < h.BigJobs[j].Slug })
	return h, nil
}

func (m *mockRepo) GetBigJob(_ context.Context, orgID, slug string) (*domain.BigJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.bigJobs {
		if b.OrgID == orgID && b.Slug == slug {
			cp := *b
			return &cp, nil
		}
	}
	return nil, notFound("big job", slug)
}

func (m *mockRepo) CreateBigJob(_ context.Context, b *domain.BigJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.bigJobs {
		if cur.OrgID == b.OrgID && cur.Slug == b.Slug {
			return fmt.Errorf("big job %q: %w", b.Slug, ErrConflict)
		}
	}
	cp := *b
	m.bigJobs[b.ID] = &cp
	return nil
}

func (m *mockRepo) UpdateBigJob(_ context.Context, b *domain.BigJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *b
	m.bigJobs[b.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteBigJob(_ context.Context, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bigJobs, id)
	for lid, l := range m.littleJobs {
		if l.BigJobID == id {
			m.deleteLittleJobLocked(lid)
		}
	}
	return nil
}

func (m *mockRepo) GetLittleJob(_ context.Context, orgID, slug string) (*domain.LittleJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.littleJobs {
		if l.OrgID == orgID && l.Slug == slug {
			cp := *l
			return &cp, nil
		}
	}
	return nil, notFound("little job", slug)
}

func (m *mockRepo) CreateLittleJob(_ context.Context, l *domain.LittleJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.littleJobs {
		if cur.OrgID == l.OrgID && cur.Slug == l.Slug {
			return fmt.Errorf("little job %q: %w", l.Slug, ErrConflict)
		}
	}
	cp := *l
	m.littleJobs[l.ID] = &cp
	return nil
}

func (m *mockRepo) UpdateLittleJob(_ context.Context, l *domain.LittleJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.littleJobs[l.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteLittleJob(_ context.Context, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteLittleJobLocked(id)
	return nil
}

func (m *mockRepo) deleteLittleJobLocked(id string) {
	delete(m.littleJobs, id)
	for oid, o := range m.outcomes {
		if o.LittleJobID == id {
			m.deleteOutcomeLocked(oid)
		}
	}
}

func (m *mockRepo) GetOutcome(_ context.Context, orgID, slug string) (*domain.Outcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, o := range m.outcomes {
		if o.OrgID == orgID && o.Slug == slug {
			cp := *o
			return &cp, nil
		}
	}
	return nil, notFound("outcome", slug)
}

func (m *mockRepo) CreateOutcome(_ context.Context, o *domain.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.outcomes {
		if cur.OrgID == o.OrgID && cur.Slug == o.Slug {
			return fmt.Errorf("outcome %q: %w", o.Slug, ErrConflict)
		}
	}
	cp := *o
	m.outcomes[o.ID] = &cp
	return nil
}

func (m *mockRepo) UpdateOutcome(_ context.Context, o *domain.Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.outcomes[o.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteOutcome(_ context.Context, _, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteOutcomeLocked(id)
	return nil
}

func (m *mockRepo) deleteOutcomeLocked(id string) {
	delete(m.outcomes, id)
	for k, r := range m.results {
		if r.OutcomeID == id {
			delete(m.results, k)
		}
	}
}

func (m *mockRepo) ListSurveys(_ context.Context, orgID string) ([]domain.Survey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Survey
	for _, s := range m.surveys {
		if s.OrgID == orgID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *mockRepo) GetSurvey(_ context.Context, orgID, code string) (*domain.Survey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.surveys {
		if s.OrgID == orgID && s.Code == code {
			cp := *s
			return &cp, nil
		}
	}
	return nil, notFound("survey", code)
}

func (m *mockRepo) UpsertSurvey(_ context.Context, s *domain.Survey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, cur := range m.surveys {
		if cur.OrgID == s.OrgID && cur.Code == s.Code {
			s.ID = cur.ID
			cp := *s
			m.surveys[s.ID] = &cp
			return nil
		}
	}
	s.ID = uuid.New().String()
	cp := *s
	m.surveys[s.ID] = &cp
	return nil
}

func (m *mockRepo) ListOutcomeResults(_ context.Context, orgID, surveyID string) ([]domain.OutcomeResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.OutcomeResult
	for _, r := range m.results {
		if r.OrgID == orgID && (surveyID == "" || r.SurveyID == surveyID) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRepo) UpsertOutcomeResult(_ context.Context, r *domain.OutcomeResult) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := r.SurveyID + ":" + r.OutcomeID
	if cur, ok := m.results[key]; ok {
		r.ID = cur.ID
		cp := *r
		m.results[key] = &cp
		return false, nil
	}
	r.ID = uuid.New().String()
	cp := *r
	m.results[key] = &cp
	return true, nil
}

func (m *mockRepo) OutcomesLong(_ context.Context, orgID string, f Filter) ([]domain.OutcomeLong, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	match := func(list []string, v string) bool { return len(list) == 0 || slices.Contains(list, v) }

	var out []domain.OutcomeLong
	for _, r := range m.results {
		if r.OrgID != orgID {
			continue
		}
		o, s := m.outcomes[r.OutcomeID], m.surveys[r.SurveyID]
		l := m.littleJobs[o.LittleJobID]
		b := m.bigJobs[l.BigJobID]
		if !match(f.SurveyCodes, s.Code) || !match(f.BigJobSlugs, b.Slug) ||
			!match(f.LittleJobSlugs, l.Slug) || !match(f.OutcomeSlugs, o.Slug) {
			continue
		}
		out = append(out, domain.OutcomeLong{
			BigJobSlug: b.Slug, BigJobName: b.Name,
			LittleJobSlug: l.Slug, LittleJobName: l.Name,
			OutcomeSlug: o.Slug, OutcomeName: o.Name,
			SurveyCode: s.Code, SurveyDate: s.Date,
			Importance: r.Importance, Satisfaction: r.Satisfaction, OpportunityScore: r.OpportunityScore,
		})
	}
	return out, nil
}

func (m *mockRepo) InsertChangeLog(_ context.Context, c *domain.ChangeLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.changes = append(m.changes, *c)
	return nil
}

func (m *mockRepo) ListChangeLogs(_ context.Context, orgID string, limit int) ([]domain.ChangeLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.ChangeLog
	for i := len(m.changes) - 1; i >= 0 && len(out) < limit; i-- {
		if m.changes[i].OrgID == orgID {
			out = append(out, m.changes[i])
		}
	}
	return out, nil
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[string]int
}

func (c *countingInvalidator) Invalidate(orgID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[string]int{}
	}
	c.calls[orgID]++
}

func (c *countingInvalidator) count(orgID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[orgID]
}
