package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
)

// HierarchyRepo implements jtbd.Repository against PostgreSQL. A repo
// returned by InTx is bound to that transaction and has no db handle.
type HierarchyRepo struct {
	db *sql.DB
	q  dbtx
}

// NewHierarchyRepo creates a Postgres-backed hierarchy repository.
func NewHierarchyRepo(db *sql.DB) *HierarchyRepo { return &HierarchyRepo{db: db, q: db} }

func (r *HierarchyRepo) InTx(ctx context.Context, fn func(jtbd.Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return fn(&HierarchyRepo{q: tx})
	})
}

func notFound(entity, key string) error {
	return fmt.Errorf("%s %q: %w", entity, key, jtbd.ErrNotFound)
}

func conflict(entity, key string) error {
	return fmt.Errorf("%s %q: %w", entity, key, jtbd.ErrConflict)
}

// =============================================================================
// HIERARCHY
// =============================================================================

const (
	bigJobColumns    = `id, org_id, slug, name, description, tags, order_index, status, created_at, updated_at`
	littleJobColumns = `id, org_id, big_job_id, slug, name, description, order_index, status, created_at, updated_at`
	outcomeColumns   = `id, org_id, little_job_id, slug, name, description, tags, order_index, status, created_at, updated_at`
)

// Hierarchy loads the three levels and assembles the tree. Outside a
// transaction the levels are fetched concurrently.
func (r *HierarchyRepo) Hierarchy(ctx context.Context, orgID string, includeArchived bool) (domain.Hierarchy, error) {
	var (
		bigJobs    []domain.BigJob
		littleJobs []domain.LittleJob
		outcomes   []domain.Outcome
	)
	loaders := []func(context.Context) error{
		func(ctx context.Context) (err error) {
			bigJobs, err = r.listBigJobs(ctx, orgID, includeArchived)
			return err
		},
		func(ctx context.Context) (err error) {
			littleJobs, err = r.listLittleJobs(ctx, orgID, includeArchived)
			return err
		},
		func(ctx context.Context) (err error) {
			outcomes, err = r.listOutcomes(ctx, orgID, includeArchived)
			return err
		},
	}

	if r.db == nil {
		for _, load := range loaders {
			if err := load(ctx); err != nil {
				return domain.Hierarchy{}, err
			}
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		for _, load := range loaders {
			g.Go(func() error { return load(gctx) })
		}
		if err := g.Wait(); err != nil {
			return domain.Hierarchy{}, err
		}
	}
	return assemble(bigJobs, littleJobs, outcomes), nil
}

// assemble nests the flat levels. Children whose parent is absent (archived
// and filtered out) are dropped.
func assemble(bigJobs []domain.BigJob, littleJobs []domain.LittleJob, outcomes []domain.Outcome) domain.Hierarchy {
	byLittle := make(map[string][]domain.Outcome)
	for _, o := range outcomes {
		byLittle[o.LittleJobID] = append(byLittle[o.LittleJobID], o)
	}
	byBig := make(map[string][]domain.LittleJob)
	for _, l := range littleJobs {
		l.Outcomes = byLittle[l.ID]
		byBig[l.BigJobID] = append(byBig[l.BigJobID], l)
	}
	h := domain.Hierarchy{BigJobs: make([]domain.BigJob, 0, len(bigJobs))}
	for _, b := range bigJobs {
		b.LittleJobs = byBig[b.ID]
		h.BigJobs = append(h.BigJobs, b)
	}
	return h
}

func (r *HierarchyRepo) listBigJobs(ctx context.Context, orgID string, includeArchived bool) ([]domain.BigJob, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+bigJobColumns+`
		FROM big_jobs
		WHERE org_id = $1 AND ($2 OR status = 'active')
		ORDER BY order_index, slug
	`, orgID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list big jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.BigJob
	for rows.Next() {
		b, err := scanBigJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

func (r *HierarchyRepo) listLittleJobs(ctx context.Context, orgID string, includeArchived bool) ([]domain.LittleJob, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+littleJobColumns+`
		FROM little_jobs
		WHERE org_id = $1 AND ($2 OR status = 'active')
		ORDER BY order_index, slug
	`, orgID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list little jobs: %w", err)
	}
	defer rows.Close()

	var out []domain.LittleJob
	for rows.Next() {
		l, err := scanLittleJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (r *HierarchyRepo) listOutcomes(ctx context.Context, orgID string, includeArchived bool) ([]domain.Outcome, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT `+outcomeColumns+`
		FROM outcomes
		WHERE org_id = $1 AND ($2 OR status = 'active')
		ORDER BY order_index, slug
	`, orgID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	defer rows.Close()

	var out []domain.Outcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBigJob(s scanner) (*domain.BigJob, error) {
	var b domain.BigJob
	if err := s.Scan(&b.ID, &b.OrgID, &b.Slug, &b.Name, &b.Description, pq.Array(&b.Tags),
		&b.OrderIndex, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanLittleJob(s scanner) (*domain.LittleJob, error) {
	var l domain.LittleJob
	if err := s.Scan(&l.ID, &l.OrgID, &l.BigJobID, &l.Slug, &l.Name, &l.Description,
		&l.OrderIndex, &l.Status, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func scanOutcome(s scanner) (*domain.Outcome, error) {
	var o domain.Outcome
	if err := s.Scan(&o.ID, &o.OrgID, &o.LittleJobID, &o.Slug, &o.Name, &o.Description, pq.Array(&o.Tags),
		&o.OrderIndex, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

// =============================================================================
// BIG JOBS
// =============================================================================

func (r *HierarchyRepo) GetBigJob(ctx context.Context, orgID, slug string) (*domain.BigJob, error) {
	b, err := scanBigJob(r.q.QueryRowContext(ctx,
		`SELECT `+bigJobColumns+` FROM big_jobs WHERE org_id = $1 AND slug = $2`, orgID, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("big job", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("get big job: %w", err)
	}
	return b, nil
}

func (r *HierarchyRepo) CreateBigJob(ctx context.Context, b *domain.BigJob) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO big_jobs (id, org_id, slug, name, description, tags, order_index, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, b.ID, b.OrgID, b.Slug, b.Name, b.Description, textArray(b.Tags), b.OrderIndex, b.Status, b.CreatedAt, b.UpdatedAt)
	if isUniqueViolation(err) {
		return conflict("big job", b.Slug)
	}
	if err != nil {
		return fmt.Errorf("create big job: %w", err)
	}
	return nil
}

func (r *HierarchyRepo) UpdateBigJob(ctx context.Context, b *domain.BigJob) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE big_jobs
		SET slug = $3, name = $4, description = $5, tags = $6, order_index = $7, status = $8, updated_at = $9
		WHERE org_id = $1 AND id = $2
	`, b.OrgID, b.ID, b.Slug, b.Name, b.Description, textArray(b.Tags), b.OrderIndex, b.Status, b.UpdatedAt)
	if isUniqueViolation(err) {
		return conflict("big job", b.Slug)
	}
	if err != nil {
		return fmt.Errorf("update big job: %w", err)
	}
	return expectRow(res, "big job", b.Slug)
}

func (r *HierarchyRepo) DeleteBigJob(ctx context.Context, orgID, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM big_jobs WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("delete big job: %w", err)
	}
	return expectRow(res, "big job", id)
}

// =============================================================================
// LITTLE JOBS
// =============================================================================

func (r *HierarchyRepo) GetLittleJob(ctx context.Context, orgID, slug string) (*domain.LittleJob, error) {
	l, err := scanLittleJob(r.q.QueryRowContext(ctx,
		`SELECT `+littleJobColumns+` FROM little_jobs WHERE org_id = $1 AND slug = $2`, orgID, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("little job", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("get little job: %w", err)
	}
	return l, nil
}

func (r *HierarchyRepo) CreateLittleJob(ctx context.Context, l *domain.LittleJob) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO little_jobs (id, org_id, big_job_id, slug, name, description, order_index, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, l.ID, l.OrgID, l.BigJobID, l.Slug, l.Name, l.Description, l.OrderIndex, l.Status, l.CreatedAt, l.UpdatedAt)
	if isUniqueViolation(err) {
		return conflict("little job", l.Slug)
	}
	if err != nil {
		return fmt.Errorf("create little job: %w", err)
	}
	return nil
}

func (r *HierarchyRepo) UpdateLittleJob(ctx context.Context, l *domain.LittleJob) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE little_jobs
		SET big_job_id = $3, slug = $4, name = $5, description = $6, order_index = $7, status = $8, updated_at = $9
		WHERE org_id = $1 AND id = $2
	`, l.OrgID, l.ID, l.BigJobID, l.Slug, l.Name, l.Description, l.OrderIndex, l.Status, l.UpdatedAt)
	if isUniqueViolation(err) {
		return conflict("little job", l.Slug)
	}
	if err != nil {
		return fmt.Errorf("update little job: %w", err)
	}
	return expectRow(res, "little job", l.Slug)
}

func (r *HierarchyRepo) DeleteLittleJob(ctx context.Context, orgID, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM little_jobs WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("delete little job: %w", err)
	}
	return expectRow(res, "little job", id)
}

// =============================================================================
// OUTCOMES
// =============================================================================

func (r *HierarchyRepo) GetOutcome(ctx context.Context, orgID, slug string) (*domain.Outcome, error) {
	o, err := scanOutcome(r.q.QueryRowContext(ctx,
		`SELECT `+outcomeColumns+` FROM outcomes WHERE org_id = $1 AND slug = $2`, orgID, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("outcome", slug)
	}
	if err != nil {
		return nil, fmt.Errorf("get outcome: %w", err)
	}
	return o, nil
}

func (r *HierarchyRepo) CreateOutcome(ctx context.Context, o *domain.Outcome) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO outcomes (id, org_id, little_job_id, slug, name, description, tags, order_index, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, o.ID, o.OrgID, o.LittleJobID, o.Slug, o.Name, o.Description, textArray(o.Tags), o.OrderIndex, o.Status, o.CreatedAt, o.UpdatedAt)
	if isUniqueViolation(err) {
		return conflict("outcome", o.Slug)
	}
	if err != nil {
		return fmt.Errorf("create outcome: %w", err)
	}
	return nil
}

func (r *HierarchyRepo) UpdateOutcome(ctx context.Context, o *domain.Outcome) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE outcomes
		SET little_job_id = $3, slug = $4, name = $5, description = $6, tags = $7, order_index = $8, status = $9, updated_at = $10
		WHERE org_id = $1 AND id = $2
	`, o.OrgID, o.ID, o.LittleJobID, o.Slug, o.Name, o.Description, textArray(o.Tags), o.OrderIndex, o.Status, o.UpdatedAt)
	if isUniqueViolation(err) {
		return conflict("outcome", o.Slug)
	}
	if err != nil {
		return fmt.Errorf("update outcome: %w", err)
	}
	return expectRow(res, "outcome", o.Slug)
}

func (r *HierarchyRepo) DeleteOutcome(ctx context.Context, orgID, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM outcomes WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return fmt.Errorf("delete outcome: %w", err)
	}
	return expectRow(res, "outcome", id)
}

func expectRow(res sql.Result, entity, key string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", entity, err)
	}
	if n == 0 {
		return notFound(entity, key)
	}
	return nil
}
