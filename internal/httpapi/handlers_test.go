package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpmforge/scheduler/internal/calendar"
	"github.com/cpmforge/scheduler/internal/obs"
	"github.com/cpmforge/scheduler/internal/schedule"
)

func newTestRouter(t *testing.T) (*Handlers, http.Handler) {
	t.Helper()
	md := schedule.ProjectMetadata{
		Name:      "Test project",
		StartDate: calendar.NewDate(2025, 1, 6),
		EndDate:   calendar.NewDate(2025, 3, 1),
	}
	sched := schedule.NewWithMetadata(md)
	require.NoError(t, sched.UpsertTask(1, "Survey", 2, nil))
	h := NewHandlers(sched, obs.NewLogger("httpapi-test", "error"))
	return h, h.Router()
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthOK(t *testing.T) {
	_, router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetAndPutMetadata(t *testing.T) {
	_, router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/metadata", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/metadata", schedule.ProjectMetadata{
		Name:      "Renamed",
		StartDate: calendar.NewDate(2025, 1, 6),
		EndDate:   calendar.NewDate(2025, 4, 1),
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostTaskThenConflict(t *testing.T) {
	_, router := newTestRouter(t)
	body := map[string]any{"id": 2, "name": "Design", "duration_days": 3, "predecessors": []int32{1}}
	rec := doJSON(t, router, http.MethodPost, "/tasks", body)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/tasks", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGetMissingTaskIs404(t *testing.T) {
	_, router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/tasks/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPutTaskBodyIDMismatchIs400(t *testing.T) {
	_, router := newTestRouter(t)
	body := map[string]any{"id": 5, "name": "Mismatched", "duration_days": 1}
	rec := doJSON(t, router, http.MethodPut, "/tasks/1", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTask(t *testing.T) {
	_, router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodDelete, "/tasks/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/tasks/1", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRationaleTemplateApplication(t *testing.T) {
	_, router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/tasks/1/rationale_template", map[string]string{"template": "fifty_fifty"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefresh(t *testing.T) {
	_, router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/refresh", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRefreshCycleIsBadRequestNotInternalError(t *testing.T) {
	_, router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/tasks", map[string]any{
		"id": 2, "name": "Design", "duration_days": 3, "predecessors": []int32{1},
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPut, "/tasks/1", map[string]any{
		"id": 1, "name": "Survey", "duration_days": 2, "predecessors": []int32{2},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "invalid_request", body["error"])
}
