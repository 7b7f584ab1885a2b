package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/service/members"
)

// MemberRepo implements members.Repository against PostgreSQL.
type MemberRepo struct{ db *sql.DB }

// NewMemberRepo creates a Postgres-backed membership repository.
func NewMemberRepo(db *sql.DB) *MemberRepo { return &MemberRepo{db: db} }

const memberSelect = `
	SELECT m.id, m.org_id, m.user_id, u.email, m.role, m.created_at
	FROM org_members m
	JOIN users u ON u.id = m.user_id
`

func scanMember(s scanner) (*domain.Member, error) {
	var m domain.Member
	if err := s.Scan(&m.ID, &m.OrgID, &m.UserID, &m.Email, &m.Role, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MemberRepo) List(ctx context.Context, orgID string) ([]domain.Member, error) {
	rows, err := r.db.QueryContext(ctx, memberSelect+` WHERE m.org_id = $1 ORDER BY u.email`, orgID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

func (r *MemberRepo) FindUserID(ctx context.Context, email string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `SELECT id FROM users WHERE lower(email) = lower($1)`, email).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", members.ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find user: %w", err)
	}
	return id, nil
}

func (r *MemberRepo) Get(ctx context.Context, orgID, memberID string) (*domain.Member, error) {
	return r.getOne(ctx, memberSelect+` WHERE m.org_id = $1 AND m.id = $2`, orgID, memberID)
}

func (r *MemberRepo) GetByUser(ctx context.Context, orgID, userID string) (*domain.Member, error) {
	return r.getOne(ctx, memberSelect+` WHERE m.org_id = $1 AND m.user_id = $2`, orgID, userID)
}

func (r *MemberRepo) getOne(ctx context.Context, query string, args ...any) (*domain.Member, error) {
	m, err := scanMember(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, members.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// CreateUser inserts a user by email. A concurrent insert of the same email
// returns the existing id.
func (r *MemberRepo) CreateUser(ctx context.Context, email string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (email) VALUES (lower($1))
		ON CONFLICT (email) DO UPDATE SET email = users.email
		RETURNING id
	`, email).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

func (r *MemberRepo) Create(ctx context.Context, m *domain.Member) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO org_members (id, org_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.ID, m.OrgID, m.UserID, m.Role, m.CreatedAt)
	if isUniqueViolation(err) {
		return members.ErrAlreadyMember
	}
	if err != nil {
		return fmt.Errorf("create member: %w", err)
	}
	return nil
}

func (r *MemberRepo) UpdateRole(ctx context.Context, orgID, memberID string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE org_members SET role = $3 WHERE org_id = $1 AND id = $2`, orgID, memberID, role)
	if err != nil {
		return fmt.Errorf("update member role: %w", err)
	}
	return expectMember(res)
}

func (r *MemberRepo) Delete(ctx context.Context, orgID, memberID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM org_members WHERE org_id = $1 AND id = $2`, orgID, memberID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return expectMember(res)
}

func expectMember(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("member rows affected: %w", err)
	}
	if n == 0 {
		return members.ErrNotFound
	}
	return nil
}
