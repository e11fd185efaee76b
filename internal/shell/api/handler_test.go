package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukecassidy/kind-stack-dev/internal/core/catalog"
	"github.com/lukecassidy/kind-stack-dev/internal/core/domain"
	"github.com/lukecassidy/kind-stack-dev/internal/shell/store"
)

// =============================================================================
// Fakes
// =============================================================================

type fakeStore struct {
	runs []domain.Run
}

func (f *fakeStore) CreateRun(ctx context.Context, run *domain.Run) error { return nil }
func (f *fakeStore) UpdateRun(ctx context.Context, run *domain.Run) error { return nil }
func (f *fakeStore) Close() error                                         { return nil }

func (f *fakeStore) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	for i := range f.runs {
		if f.runs[i].ID == id {
			return &f.runs[i], nil
		}
	}
	return nil, store.NewStoreError("GetRun", "run", id, "run not found", store.ErrNotFound)
}

func (f *fakeStore) ListRuns(ctx context.Context, opts store.ListOptions) ([]domain.Run, error) {
	opts = opts.Normalize()
	if opts.Offset >= len(f.runs) {
		return nil, nil
	}
	end := opts.Offset + opts.Limit
	if end > len(f.runs) {
		end = len(f.runs)
	}
	return f.runs[opts.Offset:end], nil
}

func (f *fakeStore) LatestRun(ctx context.Context) (*domain.Run, error) {
	if len(f.runs) == 0 {
		return nil, store.NewStoreError("LatestRun", "run", "", "no runs recorded", store.ErrNotFound)
	}
	return &f.runs[0], nil
}

func (f *fakeStore) CountRunsByStatus(ctx context.Context) (map[domain.RunStatus]int64, error) {
	counts := make(map[domain.RunStatus]int64)
	for _, run := range f.runs {
		counts[run.Status]++
	}
	return counts, nil
}

type fakeState struct {
	pingErr  error
	services []domain.ServiceState
	database domain.ServiceState
}

func (f *fakeState) Ping(ctx context.Context) (string, error) {
	if f.pingErr != nil {
		return "", f.pingErr
	}
	return "v1.29.2", nil
}

func (f *fakeState) ServiceStates(ctx context.Context, namespace string, cat catalog.Catalog) ([]domain.ServiceState, error) {
	return f.services, nil
}

func (f *fakeState) DatabaseState(ctx context.Context, namespace string, cat catalog.Catalog) (domain.ServiceState, error) {
	return f.database, nil
}

type fakeChecker struct {
	results []domain.CheckResult
}

func (f *fakeChecker) Run(ctx context.Context, targets []domain.CheckTarget) []domain.CheckResult {
	return f.results
}

// =============================================================================
// Test Setup
// =============================================================================

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupHandler(s *fakeStore, state *fakeState, checker *fakeChecker) http.Handler {
	h := NewHandler(s, state, checker, catalog.Default(), Config{
		Namespace: "kindstack",
		Version:   "test",
	}, setupTestLogger())
	return h.Routes()
}

func doRequest(t *testing.T, handler http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func finishedRun(realServices []string, seed bool) domain.Run {
	run := domain.NewRun("dev", "kindstack", realServices, seed)
	_ = run.Complete(nil)
	return *run
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHandleHealth(t *testing.T) {
	handler := setupHandler(&fakeStore{}, &fakeState{}, &fakeChecker{})

	rec := doRequest(t, handler, http.MethodGet, "/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "test", resp.Version)
}

// =============================================================================
// Status Tests
// =============================================================================

func TestHandleStatus(t *testing.T) {
	run := finishedRun([]string{"api"}, false)
	s := &fakeStore{runs: []domain.Run{run}}
	state := &fakeState{
		services: []domain.ServiceState{
			{Name: "frontend", Mode: domain.ModeMock, Found: true, Ready: true},
			{Name: "backend", Mode: domain.ModeMock, Found: true, Ready: true},
			{Name: "api", Mode: domain.ModeReal, Found: true, Ready: true},
		},
		database: domain.ServiceState{Name: "database", Found: true, Ready: true},
	}

	handler := setupHandler(s, state, &fakeChecker{})
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Cluster.Reachable)
	assert.Equal(t, "v1.29.2", resp.Cluster.Version)
	assert.Len(t, resp.Services, 3)
	assert.True(t, resp.Database.Found)
	require.NotNil(t, resp.LastRun)
	assert.Equal(t, run.ID, resp.LastRun.ID)
}

func TestHandleStatusClusterUnreachable(t *testing.T) {
	run := finishedRun(nil, false)
	s := &fakeStore{runs: []domain.Run{run}}
	state := &fakeState{pingErr: errors.New("connection refused")}

	handler := setupHandler(s, state, &fakeChecker{})
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.False(t, resp.Cluster.Reachable)
	assert.Contains(t, resp.Cluster.Error, "connection refused")
	assert.Empty(t, resp.Services)
	require.NotNil(t, resp.LastRun)
}

func TestHandleStatusNoRuns(t *testing.T) {
	handler := setupHandler(&fakeStore{}, &fakeState{}, &fakeChecker{})
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/status")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Nil(t, resp.LastRun)
}

// =============================================================================
// Run Tests
// =============================================================================

func TestHandleListRuns(t *testing.T) {
	s := &fakeStore{runs: []domain.Run{
		finishedRun([]string{"api"}, true),
		finishedRun(nil, false),
	}}

	handler := setupHandler(s, &fakeState{}, &fakeChecker{})
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/runs?limit=1")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp RunListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Runs, 1)
	assert.Equal(t, 1, resp.Limit)
}

func TestHandleGetRun(t *testing.T) {
	run := finishedRun([]string{"backend"}, false)
	s := &fakeStore{runs: []domain.Run{run}}

	handler := setupHandler(s, &fakeState{}, &fakeChecker{})
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/runs/"+run.ID)

	require.Equal(t, http.StatusOK, rec.Code)

	var got domain.Run
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, []string{"backend"}, got.RealServices)
}

func TestHandleGetRunNotFound(t *testing.T) {
	handler := setupHandler(&fakeStore{}, &fakeState{}, &fakeChecker{})
	rec := doRequest(t, handler, http.MethodGet, "/api/v1/runs/nope")

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "run_not_found", resp.Code)
}

// =============================================================================
// Check Tests
// =============================================================================

func TestHandleChecks(t *testing.T) {
	checker := &fakeChecker{results: []domain.CheckResult{
		{Service: "frontend", Healthy: true, StatusCode: 200},
		{Service: "backend", Healthy: true, StatusCode: 200},
		{Service: "api", Healthy: false, Error: "connection refused"},
	}}

	handler := setupHandler(&fakeStore{}, &fakeState{}, checker)
	rec := doRequest(t, handler, http.MethodPost, "/api/v1/checks")

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ChecksResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, domain.StackDegraded, resp.Health)
	assert.Len(t, resp.Results, 3)
}

// =============================================================================
// OpenAPI Tests
// =============================================================================

func TestHandleOpenAPI(t *testing.T) {
	handler := setupHandler(&fakeStore{}, &fakeState{}, &fakeChecker{})
	rec := doRequest(t, handler, http.MethodGet, "/openapi.json")

	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "3.0.3", doc["openapi"])

	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/status")
	assert.Contains(t, paths, "/api/v1/runs/{id}")
}
