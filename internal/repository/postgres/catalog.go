package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/ignite/jtbd-explorer/internal/service/importer"
	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

// CatalogRepo serves the matcher's view of active outcomes. It keeps a
// per-org SlugIndex that is loaded only by Refresh; reads against a stale
// org fail with importer.ErrIndexStale instead of fetching.
type CatalogRepo struct {
	db *sql.DB

	mu    sync.RWMutex
	index map[string]*slugIndex
}

// slugIndex is one org's loaded catalog.
type slugIndex struct {
	entries []surveyimport.CatalogEntry
	bySlug  map[string]string // slug -> outcome id
}

// NewCatalogRepo creates a Postgres-backed outcome catalog.
func NewCatalogRepo(db *sql.DB) *CatalogRepo {
	return &CatalogRepo{db: db, index: make(map[string]*slugIndex)}
}

// ActiveOutcomes loads the active outcomes of an org whose ancestors are
// active too, in hierarchy order.
func (r *CatalogRepo) ActiveOutcomes(ctx context.Context, orgID string) ([]surveyimport.CatalogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT o.id, o.slug, o.name
		FROM outcomes o
		JOIN little_jobs l ON l.id = o.little_job_id AND l.status = 'active'
		JOIN big_jobs b ON b.id = l.big_job_id AND b.status = 'active'
		WHERE o.org_id = $1 AND o.status = 'active'
		ORDER BY b.order_index, b.slug, l.order_index, l.slug, o.order_index, o.slug
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("active outcomes: %w", err)
	}
	defer rows.Close()

	out := []surveyimport.CatalogEntry{}
	for rows.Next() {
		var e surveyimport.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Slug, &e.Name); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Refresh reloads the org's index from the database.
func (r *CatalogRepo) Refresh(ctx context.Context, orgID string) error {
	entries, err := r.ActiveOutcomes(ctx, orgID)
	if err != nil {
		return err
	}
	idx := &slugIndex{entries: entries, bySlug: make(map[string]string, len(entries))}
	for _, e := range entries {
		idx.bySlug[e.Slug] = e.ID
	}

	r.mu.Lock()
	r.index[orgID] = idx
	r.mu.Unlock()
	return nil
}

// Invalidate drops the org's index; the next read needs a Refresh.
func (r *CatalogRepo) Invalidate(orgID string) {
	r.mu.Lock()
	delete(r.index, orgID)
	r.mu.Unlock()
}

func (r *CatalogRepo) loaded(orgID string) (*slugIndex, error) {
	r.mu.RLock()
	idx, ok := r.index[orgID]
	r.mu.RUnlock()
	if !ok {
		return nil, importer.ErrIndexStale
	}
	return idx, nil
}

// Entries returns a copy of the loaded catalog.
func (r *CatalogRepo) Entries(orgID string) ([]surveyimport.CatalogEntry, error) {
	idx, err := r.loaded(orgID)
	if err != nil {
		return nil, err
	}
	return append([]surveyimport.CatalogEntry(nil), idx.entries...), nil
}

// Lookup resolves a slug to an outcome id. ok is false when the index is
// loaded but has no such slug.
func (r *CatalogRepo) Lookup(orgID, slug string) (id string, ok bool, err error) {
	idx, err := r.loaded(orgID)
	if err != nil {
		return "", false, err
	}
	id, ok = idx.bySlug[slug]
	return id, ok, nil
}
