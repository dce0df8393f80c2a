package httptransport

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"contentgw/internal/tasks"
)

type startTaskRequest struct {
	URL string `json:"url"`
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
}

type finishRequest struct {
	Error string `json:"error"`
}

func (h *Handler) handleStartTask(w http.ResponseWriter, r *http.Request) {
	var req startTaskRequest
	if !decodeBody(w, r, &req) {
		return
	}
	task, err := h.tasks.Start(r.Context(), req.URL)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) handleTaskProgress(w http.ResponseWriter, r *http.Request) {
	var req progressRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Progress == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "progress is required")
		return
	}
	task, err := h.tasks.Update(r.Context(), chi.URLParam(r, "id"), *req.Progress)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleFinishTask closes a task; a non-empty error marks it failed.
func (h *Handler) handleFinishTask(w http.ResponseWriter, r *http.Request) {
	var req finishRequest
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	var cause error
	if req.Error != "" {
		cause = errors.New(req.Error)
	}
	task, err := h.tasks.Finish(r.Context(), chi.URLParam(r, "id"), cause)
	if err != nil {
		h.writeTaskError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) handleRemoveTask(w http.ResponseWriter, r *http.Request) {
	h.tasks.Remove(r.Context(), chi.URLParam(r, "id"))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeTaskError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tasks.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "not_found", "task not found")
	case errors.Is(err, tasks.ErrInvalidTask):
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, tasks.ErrTaskClosed):
		writeError(w, http.StatusConflict, "conflict", "task already finished")
	default:
		h.logger.ErrorContext(r.Context(), "task operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body")
		return false
	}
	return true
}
