package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/repository"
)

var ErrTaskNotFound = errors.New("task not found")

// TaskStore is the persistence boundary the task service depends on.
// Every method is scoped to one owner.
type TaskStore interface {
	Create(ctx context.Context, task *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, userID, id string) (*model.Task, error)
	List(ctx context.Context, userID string, filter model.TaskFilter, sort model.TaskSort) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) (*model.Task, error)
	Delete(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string, now time.Time) (*model.TaskStats, error)
}

// TaskService handles task business logic for an authenticated owner.
type TaskService struct {
	store TaskStore
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

// Create stores a new task owned by userID. Priority defaults to Medium
// and status to Pending.
func (s *TaskService) Create(ctx context.Context, userID string, req model.CreateTaskRequest) (model.TaskResponse, error) {
	task := &model.Task{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Description: normalizeOptional(req.Description),
		Category:    normalizeOptional(req.Category),
		Priority:    req.Priority,
		Status:      req.Status,
		DueDate:     req.DueDate,
		UserID:      userID,
	}
	if task.Priority == "" {
		task.Priority = model.PriorityMedium
	}
	if task.Status == "" {
		task.Status = model.StatusPending
	}

	created, err := s.store.Create(ctx, task)
	if err != nil {
		return model.TaskResponse{}, err
	}

	return model.PublicTask(created), nil
}

// Get retrieves one task owned by userID.
func (s *TaskService) Get(ctx context.Context, userID, id string) (model.TaskResponse, error) {
	task, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	return model.PublicTask(task), nil
}

// List retrieves the tasks owned by userID matching the filters, in the
// requested order.
func (s *TaskService) List(ctx context.Context, userID string, filter model.TaskFilter, sort model.TaskSort) ([]model.TaskResponse, error) {
	tasks, err := s.store.List(ctx, userID, filter, sort)
	if err != nil {
		return nil, err
	}

	result := make([]model.TaskResponse, len(tasks))
	for i := range tasks {
		result[i] = model.PublicTask(&tasks[i])
	}
	return result, nil
}

// Update applies a partial update to a task owned by userID. The
// existence check and the update share the owner filter, so a task owned
// by someone else reports not found.
func (s *TaskService) Update(ctx context.Context, userID, id string, req model.UpdateTaskRequest) (model.TaskResponse, error) {
	existing, err := s.store.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	applyPatch(existing, req)

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			return model.TaskResponse{}, ErrTaskNotFound
		}
		return model.TaskResponse{}, err
	}

	return model.PublicTask(updated), nil
}

// Delete removes a task owned by userID.
func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	err := s.store.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrTaskNotFound) {
		return ErrTaskNotFound
	}
	return err
}

// Stats computes the aggregate counters for the tasks owned by userID.
func (s *TaskService) Stats(ctx context.Context, userID string) (*model.TaskStats, error) {
	return s.store.Stats(ctx, userID, time.Now().UTC())
}

// applyPatch merges an update request into an existing task. Absent
// fields keep their stored values. An explicit null clears the nullable
// fields (description, category, due date) and is ignored for the
// required ones.
func applyPatch(task *model.Task, req model.UpdateTaskRequest) {
	if req.Title.Set && req.Title.Value != nil {
		task.Title = strings.TrimSpace(*req.Title.Value)
	}
	if req.Description.Set {
		task.Description = normalizeOptional(req.Description.Value)
	}
	if req.Category.Set {
		task.Category = normalizeOptional(req.Category.Value)
	}
	if req.Priority.Set && req.Priority.Value != nil {
		task.Priority = *req.Priority.Value
	}
	if req.Status.Set && req.Status.Value != nil {
		task.Status = *req.Status.Value
	}
	if req.DueDate.Set {
		task.DueDate = req.DueDate.Value
	}
}

// normalizeOptional maps blank strings to null so empty form fields do
// not end up as empty-string categories or descriptions.
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
