// Package httpapi wraps a Schedule behind an HTTP surface: health,
// metadata, task CRUD, rationale template application, and an explicit
// refresh trigger (component C9).
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/cpmforge/scheduler/internal/schedule"
	"github.com/cpmforge/scheduler/internal/task"
	"github.com/cpmforge/scheduler/internal/validation"
)

// Handlers holds the shared Schedule behind a reader/writer lock: GET
// requests take a read lock, mutations take a write lock, and every
// mutation calls Refresh() before responding.
type Handlers struct {
	mu       sync.RWMutex
	schedule *schedule.Schedule
	logger   *slog.Logger
}

// NewHandlers wraps sched for concurrent HTTP access.
func NewHandlers(sched *schedule.Schedule, logger *slog.Logger) *Handlers {
	return &Handlers{schedule: sched, logger: logger}
}

// Router builds the full gorilla/mux route table per SPEC_FULL §6.5.
func (h *Handlers) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(LoggingMiddleware(h.logger))
	r.Use(RecoveryMiddleware(h.logger))

	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metadata", h.handleGetMetadata).Methods(http.MethodGet)
	r.HandleFunc("/metadata", h.handlePutMetadata).Methods(http.MethodPut)
	r.HandleFunc("/tasks", h.handleGetTasks).Methods(http.MethodGet)
	r.HandleFunc("/tasks", h.handlePostTask).Methods(http.MethodPost)
	r.HandleFunc("/tasks/{id}", h.handleGetTask).Methods(http.MethodGet)
	r.HandleFunc("/tasks/{id}", h.handlePutTask).Methods(http.MethodPut)
	r.HandleFunc("/tasks/{id}", h.handleDeleteTask).Methods(http.MethodDelete)
	r.HandleFunc("/tasks/{id}/rationale_template", h.handleRationaleTemplate).Methods(http.MethodPost)
	r.HandleFunc("/refresh", h.handleRefresh).Methods(http.MethodPost)
	return r
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handlers) handleGetMetadata(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	writeJSON(w, http.StatusOK, h.schedule.Metadata())
}

func (h *Handlers) handlePutMetadata(w http.ResponseWriter, r *http.Request) {
	var md schedule.ProjectMetadata
	if err := json.NewDecoder(r.Body).Decode(&md); err != nil {
		writeError(w, CodeInvalidRequest, "malformed metadata body: "+err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.schedule.SetMetadata(md); err != nil {
		writeMetadataErr(w, err)
		return
	}
	summary, err := h.schedule.Refresh()
	if err != nil {
		writeMetadataErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metadata": h.schedule.Metadata(),
		"summary":  summary,
	})
}

func (h *Handlers) handleGetTasks(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	writeJSON(w, http.StatusOK, h.schedule.Tasks())
}

func (h *Handlers) handlePostTask(w http.ResponseWriter, r *http.Request) {
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, CodeInvalidRequest, "malformed task body: "+err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, exists := h.schedule.FindTask(t.ID); exists {
		writeError(w, CodeConflict, "task already exists")
		return
	}
	if err := h.schedule.UpsertTaskRecord(&t); err != nil {
		writeTaskErr(w, err)
		return
	}
	summary, err := h.schedule.Refresh()
	if err != nil {
		writeMetadataErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"task": mustFindTask(h.schedule, t.ID), "summary": summary})
}

func (h *Handlers) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, CodeInvalidRequest, err.Error())
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	t, ok := h.schedule.FindTask(id)
	if !ok {
		writeError(w, CodeNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *Handlers) handlePutTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, CodeInvalidRequest, err.Error())
		return
	}
	var t task.Task
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, CodeInvalidRequest, "malformed task body: "+err.Error())
		return
	}
	if t.ID != id {
		writeError(w, CodeInvalidRequest, "body id does not match path id")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.schedule.FindTask(id); !ok {
		writeError(w, CodeNotFound, "task not found")
		return
	}
	if err := h.schedule.UpsertTaskRecord(&t); err != nil {
		writeTaskErr(w, err)
		return
	}
	summary, err := h.schedule.Refresh()
	if err != nil {
		writeMetadataErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": mustFindTask(h.schedule, id), "summary": summary})
}

func (h *Handlers) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, CodeInvalidRequest, err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	deleted, err := h.schedule.DeleteTask(id)
	if err != nil {
		writeMetadataErr(w, err)
		return
	}
	if !deleted {
		writeError(w, CodeNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) handleRationaleTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, CodeInvalidRequest, err.Error())
		return
	}
	var body struct {
		Template string `json:"template"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, CodeInvalidRequest, "malformed request body: "+err.Error())
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.schedule.ApplyRationaleTemplate(id, body.Template); err != nil {
		writeTaskErr(w, err)
		return
	}
	summary, err := h.schedule.Refresh()
	if err != nil {
		writeMetadataErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": mustFindTask(h.schedule, id), "summary": summary})
}

func (h *Handlers) handleRefresh(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	summary, err := h.schedule.Refresh()
	if err != nil {
		writeMetadataErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func mustFindTask(s *schedule.Schedule, id int32) *task.Task {
	t, _ := s.FindTask(id)
	return t
}

func pathID(r *http.Request) (int32, error) {
	raw := mux.Vars(r)["id"]
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, errors.New("invalid task id in path: " + raw)
	}
	return int32(v), nil
}

func writeTaskErr(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeError(w, CodeInvalidRequest, verr.Error())
		return
	}
	writeError(w, CodeInvalidRequest, err.Error())
}

func writeMetadataErr(w http.ResponseWriter, err error) {
	var merr *schedule.MetadataError
	if errors.As(err, &merr) {
		writeError(w, CodeInvalidRequest, merr.Error())
		return
	}
	writeError(w, CodeInternal, err.Error())
}
