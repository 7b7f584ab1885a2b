// Package members administers who belongs to an organization and with which
// role. Roles are enforced by the data store; this package only maintains
// the membership table.
package members

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
)

// Sentinel errors for the members service layer.
var (
	ErrNotFound      = errors.New("member not found")
	ErrUserNotFound  = errors.New("no user with that email")
	ErrAlreadyMember = errors.New("user is already a member")
	ErrInvalidRole   = errors.New("role must be reader, writer or admin")
	ErrLastAdmin     = errors.New("an organization needs at least one admin")
)

// Repository defines persistence operations for memberships.
type Repository interface {
	List(ctx context.Context, orgID string) ([]domain.Member, error)
	// FindUserID returns the id of the user with this email, or
	// ErrUserNotFound.
	FindUserID(ctx context.Context, email string) (string, error)
	// CreateUser registers an email that has never signed in and returns the
	// new user id.
	CreateUser(ctx context.Context, email string) (string, error)
	Get(ctx context.Context, orgID, memberID string) (*domain.Member, error)
	GetByUser(ctx context.Context, orgID, userID string) (*domain.Member, error)
	Create(ctx context.Context, m *domain.Member) error
	UpdateRole(ctx context.Context, orgID, memberID string, role domain.Role) error
	Delete(ctx context.Context, orgID, memberID string) error
}

// Inviter emails a newly registered user an invitation to the org.
type Inviter interface {
	SendInvite(ctx context.Context, email, orgID string) error
}

// Service implements membership administration.
type Service struct {
	repo    Repository
	inviter Inviter
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a members service backed by repo. A nil inviter skips
// invitation emails.
func NewService(repo Repository, inviter Inviter) *Service {
	return &Service{repo: repo, inviter: inviter, log: logger.New("members"), now: time.Now}
}

func (s *Service) List(ctx context.Context, orgID string) ([]domain.Member, error) {
	return s.repo.List(ctx, orgID)
}

// Add gives a user a role in the org. An unknown email is registered as a
// new user and invited by email; a failed invite does not undo the membership.
func (s *Service) Add(ctx context.Context, orgID, email string, role domain.Role) (*domain.Member, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	invite := false
	userID, err := s.repo.FindUserID(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		if userID, err = s.repo.CreateUser(ctx, email); err != nil {
			return nil, err
		}
		invite = true
	} else if err != nil {
		return nil, err
	}
	if _, err := s.repo.GetByUser(ctx, orgID, userID); err == nil {
		return nil, ErrAlreadyMember
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	m := &domain.Member{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		UserID:    userID,
		Email:     email,
		Role:      role,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("member added", "org_id", orgID, "email", email, "role", string(role), "invited", invite)
	if invite {
		s.sendInvite(ctx, orgID, email)
	}
	return m, nil
}

// UpdateRole changes a member's role. The last admin cannot be demoted.
func (s *Service) UpdateRole(ctx context.Context, orgID, memberID string, role domain.Role) (*domain.Member, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	m, err := s.repo.Get(ctx, orgID, memberID)
	if err != nil {
		return nil, err
	}
	if m.Role == domain.RoleAdmin && role != domain.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx, orgID, memberID); err != nil {
			return nil, err
		}
	}
	if err := s.repo.UpdateRole(ctx, orgID, memberID, role); err != nil {
		return nil, err
	}
	m.Role = role
	s.log.Info("member role updated", "org_id", orgID, "email", m.Email, "role", string(role))
	return m, nil
}

// Remove deletes a membership. The last admin cannot be removed.
func (s *Service) Remove(ctx context.Context, orgID, memberID string) error {
	m, err := s.repo.Get(ctx, orgID, memberID)
	if err != nil {
		return err
	}
	if m.Role == domain.RoleAdmin {
		if err := s.ensureOtherAdmin(ctx, orgID, memberID); err != nil {
			return err
		}
	}
	if err := s.repo.Delete(ctx, orgID, memberID); err != nil {
		return err
	}
	s.log.Info("member removed", "org_id", orgID, "email", m.Email)
	return nil
}

func (s *Service) sendInvite(ctx context.Context, orgID, email string) {
	if s.inviter == nil {
		s.log.Warn("invitations disabled, new user was not emailed", "org_id", orgID, "email", email)
		return
	}
	if err := s.inviter.SendInvite(ctx, email, orgID); err != nil {
		s.log.Error("failed to send invite", "org_id", orgID, "email", email, "error", err)
	}
}

func (s *Service) ensureOtherAdmin(ctx context.Context, orgID, memberID string) error {
	all, err := s.repo.List(ctx, orgID)
	if err != nil {
		return err
	}
	for _, m := range all {
		if m.ID != memberID && m.Role == domain.RoleAdmin {
			return nil
		}
	}
	return ErrLastAdmin
}
