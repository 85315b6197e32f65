package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/kavinrs01/task-manager-server/internal/api/queryparse"
	"github.com/kavinrs01/task-manager-server/internal/api/shared"
	"github.com/kavinrs01/task-manager-server/internal/domain"
	"github.com/kavinrs01/task-manager-server/internal/service"
	"github.com/kavinrs01/task-manager-server/internal/store"
)

// TaskHandler handles task-related API requests.
type TaskHandler struct {
	taskService service.TaskService
	validator   *validator.Validate
}

// NewTaskHandler creates a new TaskHandler with the given dependencies.
func NewTaskHandler(taskService service.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		validator:   validator.New(),
	}
}

// Create handles the POST /tasks/create endpoint.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
		Status:      req.Status,
		Priority:    req.Priority,
		IsPrivate:   req.IsPrivate,
	}
	if req.AssignedToUserID != nil {
		input.AssignedToUserID = *req.AssignedToUserID
	}

	task, err := h.taskService.Create(r.Context(), actor, input)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, NewTaskResponse(task))
}

// List handles the GET /tasks/list endpoint. Filters arrive as
// bracketed query parameters (filter[status], filter[dueDate][gte],
// ...) alongside take and cursor.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	filter, page, err := parseTaskListQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	tasks, err := h.taskService.List(r.Context(), actor, filter, page)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskListResponse(tasks))
}

// Get handles the GET /tasks/{taskID} endpoint. Unknown IDs yield a
// JSON null body rather than a 404; this lookup carries no visibility
// check.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := getActor(w, r); !ok {
		return
	}

	id, err := getPathUUID(r, "taskID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	task, err := h.taskService.FindOne(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrTaskNotFound) {
			shared.RespondWithJSON(w, r, http.StatusOK, nil)
			return
		}
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// GetSubscribed handles the GET /tasks/{taskID}/subscribed endpoint,
// the access-checked read used by task detail subscriptions.
func (h *TaskHandler) GetSubscribed(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := getActorAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.taskService.GetSubscribed(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Update handles the PUT /tasks/{taskID} endpoint.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := getActorAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.Update(r.Context(), actor, id, service.UpdateTaskInput{
		Title:            req.Title,
		Description:      req.Description,
		DueDate:          req.DueDate,
		Status:           req.Status,
		Priority:         req.Priority,
		IsPrivate:        req.IsPrivate,
		AssignedToUserID: req.AssignedToUserID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Delete handles the DELETE /tasks/{taskID} endpoint. The task is
// archived, not removed; the archived record is returned.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, id, ok := getActorAndPathUUID(w, r, "taskID")
	if !ok {
		return
	}

	task, err := h.taskService.Archive(r.Context(), actor, id)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// Reorder handles the PATCH /tasks/sort-order endpoint.
func (h *TaskHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	actor, ok := getActor(w, r)
	if !ok {
		return
	}

	var req ReorderTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	task, err := h.taskService.Reorder(r.Context(), actor, req.ActiveTaskID, service.ReorderTaskInput{
		Status:           req.NewStatus,
		OverTaskID:       req.OverTaskID,
		ColumnLastTaskID: req.ColumnLastTaskID,
	})
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewTaskResponse(task))
}

// parseTaskListQuery extracts the filter and pagination settings from
// a listing request's query string.
func parseTaskListQuery(r *http.Request) (store.TaskFilter, store.TaskPage, error) {
	tree := queryparse.Parse(r.URL.Query())

	var filter store.TaskFilter
	var page store.TaskPage

	if raw, ok := tree.String("take"); ok {
		take, err := strconv.Atoi(raw)
		if err != nil || take < 1 {
			return filter, page, domain.NewValidationError("take", "must be a positive integer", domain.ErrValidation)
		}
		page.Take = take
	}

	if raw, ok := tree.String("cursor"); ok {
		cursor, err := uuid.Parse(raw)
		if err != nil {
			return filter, page, domain.NewValidationError("cursor", "has invalid format", domain.ErrInvalidID)
		}
		page.Cursor = &cursor
	}

	if raw, ok := tree.String("filter", "status"); ok {
		status := domain.TaskStatus(raw)
		if !status.Valid() {
			return filter, page, domain.NewValidationError("filter[status]", "is not a known status", domain.ErrInvalidTaskStatus)
		}
		filter.Status = &status
	}

	if raw, ok := tree.String("filter", "priority"); ok {
		priority := domain.TaskPriority(raw)
		if !priority.Valid() {
			return filter, page, domain.NewValidationError("filter[priority]", "is not a known priority", domain.ErrInvalidTaskPriority)
		}
		filter.Priority = &priority
	}

	if raw, ok := tree.String("filter", "dueDate", "gte"); ok {
		t, err := parseQueryTime(raw)
		if err != nil {
			return filter, page, domain.NewValidationError("filter[dueDate][gte]", "has invalid date format", domain.ErrValidation)
		}
		filter.DueDateGte = &t
	}

	if raw, ok := tree.String("filter", "dueDate", "lte"); ok {
		t, err := parseQueryTime(raw)
		if err != nil {
			return filter, page, domain.NewValidationError("filter[dueDate][lte]", "has invalid date format", domain.ErrValidation)
		}
		filter.DueDateLte = &t
	}

	return filter, page, nil
}

// parseQueryTime accepts RFC 3339 timestamps or bare dates.
func parseQueryTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
