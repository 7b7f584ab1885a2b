package jtbd

import (
	"context"

	"github.com/ignite/jtbd-explorer/internal/domain"
)

// Filter narrows OutcomesLong. Empty slices match everything.
type Filter struct {
	SurveyCodes    []string
	BigJobSlugs    []string
	LittleJobSlugs []string
	OutcomeSlugs   []string
}

// Repository defines persistence operations for hierarchy and research data.
// Lookups by slug or code return ErrNotFound when nothing matches; inserts
// that collide with an existing slug or code return ErrConflict.
type Repository interface {
	// Hierarchy loads the tree of an org. Archived nodes are left out unless
	// includeArchived is set.
	Hierarchy(ctx context.Context, orgID string, includeArchived bool) (domain.Hierarchy, error)

	GetBigJob(ctx context.Context, orgID, slug string) (*domain.BigJob, error)
	CreateBigJob(ctx context.Context, b *domain.BigJob) error
	UpdateBigJob(ctx context.Context, b *domain.BigJob) error
	DeleteBigJob(ctx context.Context, orgID, id string) error

	GetLittleJob(ctx context.Context, orgID, slug string) (*domain.LittleJob, error)
	CreateLittleJob(ctx context.Context, l *domain.LittleJob) error
	UpdateLittleJob(ctx context.Context, l *domain.LittleJob) error
	DeleteLittleJob(ctx context.Context, orgID, id string) error

	GetOutcome(ctx context.Context, orgID, slug string) (*domain.Outcome, error)
	CreateOutcome(ctx context.Context, o *domain.Outcome) error
	UpdateOutcome(ctx context.Context, o *domain.Outcome) error
	DeleteOutcome(ctx context.Context, orgID, id string) error

	ListSurveys(ctx context.Context, orgID string) ([]domain.Survey, error)
	GetSurvey(ctx context.Context, orgID, code string) (*domain.Survey, error)
	// UpsertSurvey inserts or updates by (org, code) and fills in ID and
	// timestamps.
	UpsertSurvey(ctx context.Context, s *domain.Survey) error

	// ListOutcomeResults returns the results of one survey, or of every
	// survey when surveyID is empty.
	ListOutcomeResults(ctx context.Context, orgID, surveyID string) ([]domain.OutcomeResult, error)
	// UpsertOutcomeResult inserts or updates by (survey, outcome), fills in
	// ID and reports whether a new row was inserted.
	UpsertOutcomeResult(ctx context.Context, r *domain.OutcomeResult) (bool, error)

	OutcomesLong(ctx context.Context, orgID string, f Filter) ([]domain.OutcomeLong, error)

	InsertChangeLog(ctx context.Context, c *domain.ChangeLog) error
	ListChangeLogs(ctx context.Context, orgID string, limit int) ([]domain.ChangeLog, error)

	// InTx runs fn against a repository bound to one transaction. fn's error
	// rolls the transaction back.
	InTx(ctx context.Context, fn func(Repository) error) error
}
