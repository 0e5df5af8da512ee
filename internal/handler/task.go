package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/tasks-patch-api/internal/model"
	"github.com/BuzzLyutic/tasks-patch-api/internal/repo"
	"github.com/BuzzLyutic/tasks-patch-api/internal/service"
	"github.com/BuzzLyutic/tasks-patch-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

// Routes mounts the task endpoints on r.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateInput
	if err := respond.Decode(w, r, &req); err != nil {
		h.logger.Debug("failed to decode create body", zap.Error(err))
		respond.Error(w, r, respond.DecodeStatus(err), err.Error())
		return
	}

	task, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", "/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

// Update applies a PATCH body. A key that is missing leaves the field as it
// is, null clears it, and a value sets it. The title is required, so a null
// title keeps the stored one. An empty body changes nothing but updated_at.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.UpdateInput
	if err := respond.Decode(w, r, &req); err != nil && !errors.Is(err, respond.ErrEmptyBody) {
		h.logger.Debug("failed to decode patch body", zap.Error(err))
		respond.Error(w, r, respond.DecodeStatus(err), err.Error())
		return
	}

	task, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}

	respond.NoContent(w, r)
}

func (h *TaskHandler) Health(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error("internal error",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
