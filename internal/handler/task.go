package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/nexarq/taskmanager/internal/handler/dto"
	"github.com/nexarq/taskmanager/internal/model"
	"github.com/nexarq/taskmanager/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	svc    *service.TaskService
	actors *ActorResolver
	logger *slog.Logger
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, actors *ActorResolver, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, actors: actors, logger: logger}
}

// List handles GET /tasks.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := detach(r)

	var caller *model.User
	if h.svc.OwnershipEnforced() {
		var err error
		if caller, err = h.actors.ResolveQuery(ctx, r); err != nil {
			h.handleServiceError(w, err)
			return
		}
	}

	tasks, err := h.svc.List(ctx, caller)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToTaskListResponse(tasks))
}

// Create handles POST /tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx := detach(r)
	owner, err := h.actors.Resolve(ctx, r, req.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	task, err := h.svc.Create(ctx, owner, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.CreateTaskResponse{
		Message: "Created",
		Tags:    task.AITags,
		ID:      task.ID,
	})
}

// UpdateStatus handles PATCH /tasks/{id}/status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	ctx := detach(r)
	caller, err := h.caller(ctx, r, req.UserID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	if err := h.svc.UpdateStatus(ctx, caller, id, req.Status); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("task_status_updated", "task_id", id, "status", req.Status)
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Updated"})
}

// Delete handles DELETE /tasks/{id}.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.taskID(w, r)
	if !ok {
		return
	}

	ctx := detach(r)
	var caller *model.User
	if h.svc.OwnershipEnforced() {
		var err error
		if caller, err = h.actors.ResolveQuery(ctx, r); err != nil {
			h.handleServiceError(w, err)
			return
		}
	}
	if err := h.svc.Delete(ctx, caller, id); err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("task_deleted", "task_id", id)
	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Deleted"})
}

// caller resolves the acting user only when ownership is enforced; otherwise
// update and delete do not depend on who asks.
func (h *TaskHandler) caller(ctx context.Context, r *http.Request, explicit *int64) (*model.User, error) {
	if !h.svc.OwnershipEnforced() {
		return nil, nil
	}
	return h.actors.Resolve(ctx, r, explicit)
}

func (h *TaskHandler) taskID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return 0, false
	}
	return id, true
}

// handleServiceError maps service errors to HTTP responses.
func (h *TaskHandler) handleServiceError(w http.ResponseWriter, err error) {
	if writeActorError(w, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		writeError(w, http.StatusBadRequest, "Title is required")
	case errors.Is(err, service.ErrStatusRequired):
		writeError(w, http.StatusBadRequest, "Status is required")
	case errors.Is(err, service.ErrInvalidTaskID):
		writeError(w, http.StatusBadRequest, "Invalid task id")
	case errors.Is(err, service.ErrCallerRequired):
		writeError(w, http.StatusUnauthorized, msgUnauthorized)
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
	}
}
