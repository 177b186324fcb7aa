package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/taskflow/taskflow-go/internal/middleware"
	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/service"
)

// TaskHandler handles HTTP requests for task operations.
type TaskHandler struct {
	service *service.TaskService
	dev     bool
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(svc *service.TaskService, dev bool) *TaskHandler {
	return &TaskHandler{service: svc, dev: dev}
}

// HandleList handles GET /api/tasks requests. Filters and the sort
// specification come from the query string; the full result set is
// returned with its count, no pagination.
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	q := r.URL.Query()
	filter := model.TaskFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	sort := model.TaskSort{
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}

	tasks, err := h.service.List(r.Context(), identity.ID, filter, sort)
	if err != nil {
		serverError(w, err, h.dev, "Error fetching tasks")
		return
	}
	if tasks == nil {
		tasks = []model.TaskResponse{}
	}

	respond(w, http.StatusOK, envelope{
		"count": len(tasks),
		"tasks": tasks,
	})
}

// HandleStats handles GET /api/tasks/stats requests.
func (h *TaskHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	stats, err := h.service.Stats(r.Context(), identity.ID)
	if err != nil {
		serverError(w, err, h.dev, "Error fetching task statistics")
		return
	}

	respond(w, http.StatusOK, envelope{"stats": stats})
}

// HandleGet handles GET /api/tasks/{id} requests.
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	task, err := h.service.Get(r.Context(), identity.ID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			fail(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, err, h.dev, "Error fetching task")
		return
	}

	respond(w, http.StatusOK, envelope{"task": task})
}

// HandleCreate handles POST /api/tasks requests.
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.CreateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}

	errs := checkRequest(req)
	// The required tag passes whitespace-only titles; catch those here.
	if req.Title != "" && strings.TrimSpace(req.Title) == "" {
		errs = append(errs, fieldError{Field: "title", Message: "Title is required"})
	}
	if errs != nil {
		failValidation(w, errs)
		return
	}

	task, err := h.service.Create(r.Context(), identity.ID, req)
	if err != nil {
		serverError(w, err, h.dev, "Error creating task")
		return
	}

	respond(w, http.StatusCreated, envelope{
		"message": "Task created successfully",
		"task":    task,
	})
}

// HandleUpdate handles PUT /api/tasks/{id} requests. Any subset of task
// fields may be supplied; the rest keep their stored values.
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req model.UpdateTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}

	if errs := checkTaskPatch(req); errs != nil {
		failValidation(w, errs)
		return
	}

	task, err := h.service.Update(r.Context(), identity.ID, chi.URLParam(r, "id"), req)
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			fail(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, err, h.dev, "Error updating task")
		return
	}

	respond(w, http.StatusOK, envelope{
		"message": "Task updated successfully",
		"task":    task,
	})
}

// HandleDelete handles DELETE /api/tasks/{id} requests.
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		fail(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	err := h.service.Delete(r.Context(), identity.ID, chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, service.ErrTaskNotFound) {
			fail(w, http.StatusNotFound, err.Error())
			return
		}
		serverError(w, err, h.dev, "Error deleting task")
		return
	}

	respond(w, http.StatusOK, envelope{"message": "Task deleted successfully"})
}

// checkTaskPatch validates the fields present in a partial update. Nulls
// on the non-nullable fields (title, priority, status) are ignored by the
// merge, so only provided values are checked here.
func checkTaskPatch(req model.UpdateTaskRequest) []fieldError {
	var errs []fieldError

	if req.Title.Set && req.Title.Value != nil {
		title := strings.TrimSpace(*req.Title.Value)
		if title == "" {
			errs = append(errs, fieldError{Field: "title", Message: "Title is required"})
		} else if len(title) > model.MaxTitleLen {
			errs = append(errs, fieldError{Field: "title", Message: "Title must not exceed 200 characters"})
		}
	}
	if req.Description.Set && req.Description.Value != nil && len(*req.Description.Value) > model.MaxDescriptionLen {
		errs = append(errs, fieldError{Field: "description", Message: "Description must not exceed 1000 characters"})
	}
	if req.Category.Set && req.Category.Value != nil && len(*req.Category.Value) > model.MaxCategoryLen {
		errs = append(errs, fieldError{Field: "category", Message: "Category must not exceed 50 characters"})
	}
	if req.Priority.Set && req.Priority.Value != nil && !model.ValidPriority(*req.Priority.Value) {
		errs = append(errs, fieldError{Field: "priority", Message: "Priority must be High, Medium, or Low"})
	}
	if req.Status.Set && req.Status.Value != nil && !model.ValidStatus(*req.Status.Value) {
		errs = append(errs, fieldError{Field: "status", Message: "Status must be Pending, In Progress, or Completed"})
	}

	return errs
}
