package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ignite/jtbd-explorer/internal/pkg/distlock"
	"github.com/ignite/jtbd-explorer/internal/pkg/logger"
	"github.com/ignite/jtbd-explorer/internal/storage"
	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

// ErrIndexStale is what a Catalog returns from Entries when the org's index
// has not been loaded or was invalidated since.
var ErrIndexStale = errors.New("slug index is stale")

// Catalog is the read side of the outcome catalog. Entries never fetches on
// its own; callers Refresh first.
type Catalog interface {
	Refresh(ctx context.Context, orgID string) error
	Entries(orgID string) ([]surveyimport.CatalogEntry, error)
}

// Service runs the import workflow. It is safe for concurrent use.
type Service struct {
	catalog   Catalog
	committer *surveyimport.Committer
	sessions  SessionStore
	archive   storage.Archive
	locks     *distlock.Factory
	log       *logger.Logger
	now       func() time.Time
}

// NewService wires the import workflow. archive may be nil to skip keeping
// raw uploads.
func NewService(catalog Catalog, store surveyimport.Store, sessions SessionStore, archive storage.Archive, locks *distlock.Factory) *Service {
	return &Service{
		catalog:   catalog,
		committer: surveyimport.NewCommitter(store),
		sessions:  sessions,
		archive:   archive,
		locks:     locks,
		log:       logger.New("importer"),
		now:       time.Now,
	}
}

// Analyze decodes, parses and matches an upload against a freshly loaded
// catalog. File-level errors from surveyimport are returned unwrapped.
func (s *Service) Analyze(ctx context.Context, orgID, filename string, data []byte) ([]surveyimport.MatchedRow, error) {
	table, err := surveyimport.Decode(bytes.NewReader(data), filename)
	if err != nil {
		return nil, err
	}
	parsed, err := surveyimport.ParseTable(table)
	if err != nil {
		return nil, err
	}

	if err := s.catalog.Refresh(ctx, orgID); err != nil {
		return nil, fmt.Errorf("refresh catalog: %w", err)
	}
	entries, err := s.catalog.Entries(orgID)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return surveyimport.MatchRows(parsed, entries), nil
}

// Preview analyzes an upload, archives the raw file and opens a session.
func (s *Service) Preview(ctx context.Context, orgID, filename string, data []byte) (*Session, surveyimport.PreviewSummary, error) {
	rows, err := s.Analyze(ctx, orgID, filename, data)
	if err != nil {
		return nil, surveyimport.PreviewSummary{}, err
	}

	sess := &Session{
		ID:        uuid.New().String(),
		OrgID:     orgID,
		FileName:  filepath.Base(filename),
		Rows:      rows,
		CreatedAt: s.now().UTC(),
	}

	if s.archive != nil {
		key := storage.UploadKey(orgID, sess.ID, filename, sess.CreatedAt)
		contentType := mime.TypeByExtension(filepath.Ext(filename))
		if err := s.archive.Put(ctx, key, data, contentType); err != nil {
			s.log.Warn("failed to archive upload", "org_id", orgID, "session_id", sess.ID, "error", err)
		} else {
			sess.ArchiveKey = key
		}
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, surveyimport.PreviewSummary{}, err
	}

	summary := surveyimport.Summarize(sess.Rows)
	s.log.Info("import preview ready",
		"org_id", orgID, "session_id", sess.ID, "file", sess.FileName,
		"rows", summary.TotalRows, "valid", summary.ValidRowCount,
		"warnings", summary.WarningRowCount, "errors", summary.ErrorRowCount)
	return sess, summary, nil
}

// Get returns a session and its current preview.
func (s *Service) Get(ctx context.Context, orgID, id string) (*Session, surveyimport.PreviewSummary, error) {
	sess, err := s.sessions.Get(ctx, orgID, id)
	if err != nil {
		return nil, surveyimport.PreviewSummary{}, err
	}
	return sess, surveyimport.Summarize(sess.Rows), nil
}

// Override assigns a catalog outcome to row index (0-based) of a session.
// The outcome's name and slug come from the catalog.
func (s *Service) Override(ctx context.Context, orgID, id string, index int, outcomeID string) (surveyimport.PreviewSummary, error) {
	sess, err := s.sessions.Get(ctx, orgID, id)
	if err != nil {
		return surveyimport.PreviewSummary{}, err
	}

	entry, err := s.lookupOutcome(ctx, orgID, outcomeID)
	if err != nil {
		return surveyimport.PreviewSummary{}, err
	}
	override := surveyimport.Override{OutcomeID: entry.ID, OutcomeName: entry.Name, OutcomeSlug: entry.Slug}
	if err := surveyimport.ApplyOverride(sess.Rows, index, override); err != nil {
		return surveyimport.PreviewSummary{}, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return surveyimport.PreviewSummary{}, err
	}

	s.log.Info("import row overridden", "org_id", orgID, "session_id", id, "row", index, "outcome_id", outcomeID)
	return surveyimport.Summarize(sess.Rows), nil
}

func (s *Service) lookupOutcome(ctx context.Context, orgID, outcomeID string) (surveyimport.CatalogEntry, error) {
	entries, err := s.catalog.Entries(orgID)
	if errors.Is(err, ErrIndexStale) {
		if err = s.catalog.Refresh(ctx, orgID); err == nil {
			entries, err = s.catalog.Entries(orgID)
		}
	}
	if err != nil {
		return surveyimport.CatalogEntry{}, fmt.Errorf("load catalog: %w", err)
	}
	for _, e := range entries {
		if e.ID == outcomeID {
			return e, nil
		}
	}
	return surveyimport.CatalogEntry{}, ErrUnknownOutcome
}

// Commit submits a reviewed session. The session is deleted once the store
// accepts the batch; a failed commit leaves it for another attempt.
func (s *Service) Commit(ctx context.Context, orgID, id string, meta surveyimport.SurveyMetadata) (surveyimport.ImportResult, error) {
	sess, err := s.sessions.Get(ctx, orgID, id)
	if err != nil {
		return surveyimport.ImportResult{}, err
	}

	result, err := s.CommitRows(ctx, orgID, meta, sess.Rows)
	if err != nil {
		return result, err
	}
	if result.Success {
		if err := s.sessions.Delete(ctx, orgID, id); err != nil {
			s.log.Warn("failed to delete import session", "org_id", orgID, "session_id", id, "error", err)
		}
	}
	return result, nil
}

// CommitRows validates metadata, enforces the commit gate and commits rows
// while holding the lock for (org, survey code). A store failure is reported
// in the result, not as an error.
func (s *Service) CommitRows(ctx context.Context, orgID string, meta surveyimport.SurveyMetadata, rows []surveyimport.MatchedRow) (surveyimport.ImportResult, error) {
	if err := meta.Validate(); err != nil {
		return surveyimport.ImportResult{}, err
	}
	summary := surveyimport.Summarize(rows)
	if !summary.CanCommit() {
		return surveyimport.ImportResult{}, &NotCommittableError{Summary: summary}
	}

	lock := s.locks.NewLock(fmt.Sprintf("import:%s:%s", orgID, meta.Code))
	acquired, err := lock.Acquire(ctx)
	if err != nil {
		return surveyimport.ImportResult{}, fmt.Errorf("acquire import lock: %w", err)
	}
	if !acquired {
		return surveyimport.ImportResult{}, ErrImportInProgress
	}
	defer func() {
		if err := lock.Release(context.Background()); err != nil {
			s.log.Warn("failed to release import lock", "org_id", orgID, "survey_code", meta.Code, "error", err)
		}
	}()
	stop := s.locks.KeepAlive(ctx, lock, func(err error) {
		s.log.Error("lost import lock during commit", "org_id", orgID, "survey_code", meta.Code, "error", err)
	})
	defer stop()

	return s.committer.Commit(ctx, orgID, meta, rows), nil
}
