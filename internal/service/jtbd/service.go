package jtbd

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
)

// Invalidator drops cached slug lookups for an org after the hierarchy
// changes.
type Invalidator interface {
	Invalidate(orgID string)
}

// Service implements hierarchy and research business logic. It is safe for
// concurrent use.
type Service struct {
	repo  Repository
	slugs Invalidator
	log   *logger.Logger
	now   func() time.Time
}

// NewService creates a jtbd service. slugs may be nil.
func NewService(repo Repository, slugs Invalidator) *Service {
	return &Service{repo: repo, slugs: slugs, log: logger.New("jtbd"), now: time.Now}
}

func (s *Service) invalidate(orgID string) {
	if s.slugs != nil {
		s.slugs.Invalidate(orgID)
	}
}

type actorKey struct{}

// WithActor tags ctx with the user recorded in change-log entries.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor set by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	a, _ := ctx.Value(actorKey{}).(string)
	return a
}

// record writes a change-log entry through repo. before and after may be
// nil.
func (s *Service) record(ctx context.Context, repo Repository, orgID, entity, entityID string, action domain.ChangeAction, before, after any) error {
	entry := &domain.ChangeLog{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		Entity:    entity,
		EntityID:  entityID,
		Action:    action,
		Before:    snapshot(before),
		After:     snapshot(after),
		Actor:     ActorFrom(ctx),
		CreatedAt: s.now().UTC(),
	}
	return repo.InsertChangeLog(ctx, entry)
}

func snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// ChangeLog returns the most recent audit entries, newest first.
func (s *Service) ChangeLog(ctx context.Context, orgID string, limit int) ([]domain.ChangeLog, error) {
	switch {
	case limit <= 0:
		limit = 50
	case limit > 500:
		limit = 500
	}
	return s.repo.ListChangeLogs(ctx, orgID, limit)
}
