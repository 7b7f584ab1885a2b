package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/jtbd-explorer/internal/config"
	"github.com/ignite/jtbd-explorer/internal/domain"
	"github.com/ignite/jtbd-explorer/internal/pkg/distlock"
	"github.com/ignite/jtbd-explorer/internal/pkg/httputil"
	"github.com/ignite/jtbd-explorer/internal/service/importer"
	"github.com/ignite/jtbd-explorer/internal/service/jtbd"
	"github.com/ignite/jtbd-explorer/internal/service/members"
	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

const testOrg = "6f1c2a4e-8d3b-4c7a-9e21-0b5d4f3a2c10"

// stubJTBDRepo implements only what the handler tests reach; anything else
// panics on the nil embedded interface.
type stubJTBDRepo struct {
	jtbd.Repository
	mu        sync.Mutex
	tree      domain.Hierarchy
	createErr error
	created   []*domain.BigJob
	changes   []domain.ChangeLog
}

func (s *stubJTBDRepo) InTx(_ context.Context, fn func(jtbd.Repository) error) error { return fn(s) }

func (s *stubJTBDRepo) Hierarchy(_ context.Context, _ string, _ bool) (domain.Hierarchy, error) {
	return s.tree, nil
}

func (s *stubJTBDRepo) CreateBigJob(_ context.Context, b *domain.BigJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, b)
	return nil
}

func (s *stubJTBDRepo) GetBigJob(_ context.Context, _, slug string) (*domain.BigJob, error) {
	return nil, jtbd.ErrNotFound
}

func (s *stubJTBDRepo) InsertChangeLog(_ context.Context, c *domain.ChangeLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, *c)
	return nil
}

func (s *stubJTBDRepo) ListChangeLogs(_ context.Context, _ string, limit int) ([]domain.ChangeLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit < len(s.changes) {
		return s.changes[:limit], nil
	}
	return s.changes, nil
}

type stubMemberRepo struct {
	members.Repository
	list []domain.Member
}

func (s *stubMemberRepo) List(_ context.Context, _ string) ([]domain.Member, error) {
	return s.list, nil
}

func (s *stubMemberRepo) Get(_ context.Context, _, id string) (*domain.Member, error) {
	for _, m := range s.list {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, members.ErrNotFound
}

func (s *stubMemberRepo) Delete(_ context.Context, _, id string) error { return nil }

type stubCatalog struct {
	mu      sync.Mutex
	loaded  bool
	entries []surveyimport.CatalogEntry
}

func (c *stubCatalog) Refresh(_ context.Context, _ string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = true
	return nil
}

func (c *stubCatalog) Entries(_ string) ([]surveyimport.CatalogEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		return nil, importer.ErrIndexStale
	}
	return c.entries, nil
}

func (c *stubCatalog) Lookup(orgID, slug string) (string, bool, error) {
	entries, err := c.Entries(orgID)
	if err != nil {
		return "", false, err
	}
	for _, e := range entries {
		if e.Slug == slug {
			return e.ID, true, nil
		}
	}
	return "", false, nil
}

type stubStore struct {
	err error
}

func (s *stubStore) ImportSurvey(_ context.Context, p surveyimport.Payload) (*surveyimport.StoreResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &surveyimport.StoreResponse{SurveyID: "survey-1", Inserted: len(p.Rows)}, nil
}

type testEnv struct {
	router  http.Handler
	repo    *stubJTBDRepo
	store   *stubStore
	members *stubMemberRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := &stubJTBDRepo{tree: domain.Hierarchy{BigJobs: []domain.BigJob{{ID: "bj-1", Slug: "keep-fleet-running", Name: "Keep the fleet running"}}}}
	catalog := &stubCatalog{entries: []surveyimport.CatalogEntry{
		{ID: "o-1", Slug: "reduce-time", Name: "Reduce the time it takes to find a part"},
		{ID: "o-2", Slug: "avoid-wrong-part", Name: "Minimize the likelihood of ordering the wrong part"},
	}}
	store := &stubStore{}
	memberRepo := &stubMemberRepo{list: []domain.Member{
		{ID: "m-1", Email: "admin@example.com", Role: domain.RoleAdmin},
		{ID: "m-2", Email: "reader@example.com", Role: domain.RoleReader},
	}}

	imports := importer.NewService(catalog, store, importer.NewMemorySessionStore(time.Hour), nil,
		distlock.NewFactory(nil, nil, time.Minute))
	h := NewHandlers(Deps{
		JTBD:    jtbd.NewService(repo, nil),
		Imports: imports,
		Members: members.NewService(memberRepo, nil),
		Slugs:   catalog,
	})
	orgs := NewOrgContextProvider(config.DevConfig{})
	return &testEnv{
		router:  SetupRoutes(h, NewHealthChecker(nil, nil, nil), orgs, nil),
		repo:    repo,
		store:   store,
		members: memberRepo,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Organization-ID", testOrg)
	req.Header.Set("X-User-ID", "user-7")
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) upload(t *testing.T, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/imports", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("X-Organization-ID", testOrg)
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// openSession uploads content and requires the session to be created.
func (e *testEnv) openSession(t *testing.T, content string) sessionResponse {
	t.Helper()
	rr := e.upload(t, "round1.csv", content)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sess := decodeBody[sessionResponse](t, rr)
	require.NotEmpty(t, sess.SessionID)
	return sess
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

// =============================================================================
// Organization context
// =============================================================================

func TestOrgMiddleware_MissingOrganization(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/hierarchy", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	resp := decodeBody[httputil.ErrorResponse](t, rr)
	assert.Equal(t, "missing_organization", resp.Code)
}

func TestExtractOrgID(t *testing.T) {
	dev := NewOrgContextProvider(config.DevConfig{Enabled: true, DefaultOrgID: testOrg})
	strict := NewOrgContextProvider(config.DevConfig{Enabled: false, DefaultOrgID: testOrg})

	t.Run("header wins over query", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/x?org_id=11111111-1111-1111-1111-111111111111", nil)
		r.Header.Set("X-Organization-ID", testOrg)
		id, err := strict.ExtractOrgID(r)
		require.NoError(t, err)
		assert.Equal(t, testOrg, id)
	})
	t.Run("malformed header falls through to query", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/x?org_id="+testOrg, nil)
		r.Header.Set("X-Organization-ID", "not-a-uuid")
		id, err := strict.ExtractOrgID(r)
		require.NoError(t, err)
		assert.Equal(t, testOrg, id)
	})
	t.Run("dev default", func(t *testing.T) {
		id, err := dev.ExtractOrgID(httptest.NewRequest(http.MethodGet, "/x", nil))
		require.NoError(t, err)
		assert.Equal(t, testOrg, id)
	})
	t.Run("no default outside dev mode", func(t *testing.T) {
		_, err := strict.ExtractOrgID(httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.ErrorIs(t, err, ErrNoOrganization)
	})
}

// =============================================================================
// Hierarchy and research
// =============================================================================

func TestGetHierarchy(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/hierarchy", nil)

	require.Equal(t, http.StatusOK, rr.Code)
	tree := decodeBody[domain.Hierarchy](t, rr)
	require.Len(t, tree.BigJobs, 1)
	assert.Equal(t, "keep-fleet-running", tree.BigJobs[0].Slug)
}

func TestCreateBigJob(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/big-jobs", jtbd.BigJobInput{Slug: "plan-routes", Name: "Plan routes"})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	job := decodeBody[domain.BigJob](t, rr)
	assert.Equal(t, "plan-routes", job.Slug)
	assert.Equal(t, testOrg, job.OrgID)
	require.Len(t, env.repo.changes, 1)
	assert.Equal(t, "user-7", env.repo.changes[0].Actor)
}

func TestCreateBigJob_Errors(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodPost, "/api/big-jobs", jtbd.BigJobInput{Name: "No slug"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "invalid_input", decodeBody[httputil.ErrorResponse](t, rr).Code)
	})
	t.Run("conflict", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.createErr = jtbd.ErrConflict
		rr := env.do(t, http.MethodPost, "/api/big-jobs", jtbd.BigJobInput{Slug: "plan-routes", Name: "Plan routes"})
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
	t.Run("unknown field", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodPost, "/api/big-jobs", map[string]any{"slug": "a", "name": "A", "colour": "red"})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
	t.Run("store failure is sanitized", func(t *testing.T) {
		env := newTestEnv(t)
		env.repo.createErr = errors.New("pq: relation big_jobs does not exist")
		rr := env.do(t, http.MethodPost, "/api/big-jobs", jtbd.BigJobInput{Slug: "plan-routes", Name: "Plan routes"})
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.Equal(t, "A database error occurred", decodeBody[httputil.ErrorResponse](t, rr).Error)
	})
}

func TestArchiveBigJob_NotFound(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/big-jobs/missing/archive", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGetProjection_BadDelta(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/surveys/R1/projection?d_imp=lots", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestGetChangeLogs_Limit(t *testing.T) {
	env := newTestEnv(t)
	for _, slug := range []string{"a-job", "b-job", "c-job"} {
		require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/big-jobs", jtbd.BigJobInput{Slug: slug, Name: slug}).Code)
	}

	rr := env.do(t, http.MethodGet, "/api/change-logs?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]domain.ChangeLog](t, rr), 2)

	rr = env.do(t, http.MethodGet, "/api/change-logs?limit=two", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRestoreDataset_RequiresSnapshot(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodPost, "/api/dataset/restore", map[string]any{"merge": "skip"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

// =============================================================================
// Members
// =============================================================================

func TestRemoveMember(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodDelete, "/api/members/m-1", nil)
	assert.Equal(t, http.StatusConflict, rr.Code, "last admin")

	rr = env.do(t, http.MethodDelete, "/api/members/m-2", nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(t, http.MethodDelete, "/api/members/m-9", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListMembers(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(t, http.MethodGet, "/api/members", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decodeBody[[]domain.Member](t, rr), 2)
}

// =============================================================================
// Imports
// =============================================================================

const importCSV = "outcome,importance,satisfaction,opportunity_score\n" +
	"reduce-time,9,4,14\n" +
	"Minimize the likelihood of ordering the wrong part,8,5,11\n" +
	"something we never measured,7,6,8\n"

const singleRowCSV = "outcome,importance,satisfaction,opportunity_score\nreduce-time,9,4,14\n"

func TestDownloadTemplate(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/api/imports/template", nil)
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/csv", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "survey-import-template.csv")
	assert.Contains(t, rr.Body.String(), "outcome,importance,satisfaction,opportunity_score")
}

func TestImportFlow(t *testing.T) {
	env := newTestEnv(t)

	rr := env.upload(t, "round1.csv", importCSV)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	sess := decodeBody[sessionResponse](t, rr)
	require.NotEmpty(t, sess.SessionID)
	assert.Equal(t, "round1.csv", sess.FileName)
	assert.Equal(t, 3, sess.Summary.TotalRows)
	assert.Equal(t, 1, sess.Summary.ErrorRowCount)

	meta := surveyimport.SurveyMetadata{Code: "R1-2024", Name: "Round 1", Date: "2024-03-01"}

	rr = env.do(t, http.MethodPost, "/api/imports/"+sess.SessionID+"/commit", meta)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "not_committable", decodeBody[httputil.ErrorResponse](t, rr).Code)

	rr = env.do(t, http.MethodPut, "/api/imports/"+sess.SessionID+"/rows/2", overrideRequest{OutcomeSlug: "avoid-wrong-part"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	summary := decodeBody[surveyimport.PreviewSummary](t, rr)
	assert.Equal(t, 0, summary.ErrorRowCount)

	rr = env.do(t, http.MethodGet, "/api/imports/"+sess.SessionID, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/imports/"+sess.SessionID+"/commit", meta)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	result := decodeBody[surveyimport.ImportResult](t, rr)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.InsertedCount)

	rr = env.do(t, http.MethodGet, "/api/imports/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code, "committed session is gone")
}

func TestOverrideImportRow_Errors(t *testing.T) {
	env := newTestEnv(t)
	sess := env.openSession(t, importCSV)
	base := "/api/imports/" + sess.SessionID + "/rows/"

	tests := []struct {
		name   string
		path   string
		body   any
		status int
	}{
		{"non-numeric index", base + "x", overrideRequest{OutcomeID: "o-1"}, http.StatusBadRequest},
		{"index out of range", base + "9", overrideRequest{OutcomeID: "o-1"}, http.StatusBadRequest},
		{"unknown slug", base + "0", overrideRequest{OutcomeSlug: "nope"}, http.StatusBadRequest},
		{"unknown id", base + "0", overrideRequest{OutcomeID: "o-9"}, http.StatusBadRequest},
		{"empty target", base + "0", overrideRequest{}, http.StatusBadRequest},
		{"missing session", "/api/imports/nope/rows/0", overrideRequest{OutcomeID: "o-1"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPut, tt.path, tt.body)
			assert.Equal(t, tt.status, rr.Code, rr.Body.String())
		})
	}
}

func TestUploadImport_FileErrors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.upload(t, "notes.txt", "hello")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotEmpty(t, decodeBody[httputil.ErrorResponse](t, rr).Code)

	rr = env.upload(t, "round1.csv", "outcome,importance\nreduce-time,9\n")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestCommitImport_StoreFailure(t *testing.T) {
	env := newTestEnv(t)
	sess := env.openSession(t, singleRowCSV)
	env.store.err = errors.New("dial tcp 10.0.0.5:5432: connection refused")

	rr := env.do(t, http.MethodPost, "/api/imports/"+sess.SessionID+"/commit",
		surveyimport.SurveyMetadata{Code: "R1-2024", Name: "Round 1", Date: "2024-03-01"})
	require.Equal(t, http.StatusInternalServerError, rr.Code)
	result := decodeBody[surveyimport.ImportResult](t, rr)
	assert.False(t, result.Success)
	assert.NotContains(t, result.Message, "10.0.0.5")

	rr = env.do(t, http.MethodGet, "/api/imports/"+sess.SessionID, nil)
	assert.Equal(t, http.StatusOK, rr.Code, "failed commit keeps the session")
}

func TestCommitImport_InvalidMetadata(t *testing.T) {
	env := newTestEnv(t)
	sess := env.openSession(t, singleRowCSV)

	rr := env.do(t, http.MethodPost, "/api/imports/"+sess.SessionID+"/commit",
		surveyimport.SurveyMetadata{Code: "R1", Name: "Round 1", Date: "March"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "invalid_metadata", decodeBody[httputil.ErrorResponse](t, rr).Code)
}

// =============================================================================
// Health
// =============================================================================

func TestHealth(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	hc := NewHealthChecker(db, rdb, nil)
	r := chi.NewRouter()
	r.Get("/health", hc.HandleHealth)
	r.Get("/health/live", hc.HandleLiveness)
	r.Get("/health/ready", hc.HandleReadiness)

	serve := func(path string) *httptest.ResponseRecorder {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		return rr
	}

	rr := serve("/health/live")
	assert.Equal(t, http.StatusOK, rr.Code)

	mock.ExpectPing()
	rr = serve("/health")
	require.Equal(t, http.StatusOK, rr.Code)
	status := decodeBody[HealthStatus](t, rr)
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "up", status.Checks["redis"].Status)
	assert.Equal(t, notConfigured, status.Checks["storage"].Message)

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	rr = serve("/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDetermineOverallStatus(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]ComponentCheck
		want   string
	}{
		{"all up", map[string]ComponentCheck{"database": {Status: "up"}, "redis": {Status: "up"}}, "healthy"},
		{"optional missing", map[string]ComponentCheck{"database": {Status: "up"}, "redis": {Status: "down", Message: notConfigured}}, "healthy"},
		{"redis down", map[string]ComponentCheck{"database": {Status: "up"}, "redis": {Status: "down", Message: "ping failed"}}, "degraded"},
		{"slow storage", map[string]ComponentCheck{"database": {Status: "up"}, "storage": {Status: "degraded"}}, "degraded"},
		{"database down", map[string]ComponentCheck{"database": {Status: "down", Message: "ping failed"}}, "unhealthy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineOverallStatus(tt.checks))
		})
	}
}

func TestFormatUptime(t *testing.T) {
	assert.Equal(t, "5s", formatUptime(5*time.Second))
	assert.Equal(t, "2m 5s", formatUptime(2*time.Minute+5*time.Second))
	assert.Equal(t, "1d 2h 0m 0s", formatUptime(26*time.Hour))
}

// =============================================================================
// Error mapping
// =============================================================================

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{importer.ErrSessionNotFound, http.StatusNotFound},
		{importer.ErrImportInProgress, http.StatusConflict},
		{&importer.NotCommittableError{}, http.StatusConflict},
		{jtbd.ErrInvalidInput, http.StatusBadRequest},
		{jtbd.ErrNotFound, http.StatusNotFound},
		{members.ErrLastAdmin, http.StatusConflict},
		{members.ErrInvalidRole, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, _ := statusFor(tt.err)
			assert.Equal(t, tt.status, status)
		})
	}
}

func TestSafeErrorMessage(t *testing.T) {
	assert.Equal(t, "bad slug", safeErrorMessage(400, errors.New("bad slug")))
	assert.Equal(t, "Service temporarily unavailable", safeErrorMessage(500, errors.New("dial tcp: connection refused")))
	assert.Equal(t, "Request timed out", safeErrorMessage(500, context.DeadlineExceeded))
	assert.Equal(t, "An internal error occurred", safeErrorMessage(500, errors.New("boom")))
}
