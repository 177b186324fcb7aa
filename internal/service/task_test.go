package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow-go/internal/model"
	"github.com/taskflow/taskflow-go/internal/repository"
)

// memoryTaskStore is an in-memory TaskStore for tests. Reads and writes
// are owner-scoped the same way the SQL repository scopes them.
type memoryTaskStore struct {
	tasks map[string]*model.Task
}

func newMemoryTaskStore() *memoryTaskStore {
	return &memoryTaskStore{tasks: make(map[string]*model.Task)}
}

func (s *memoryTaskStore) Create(_ context.Context, task *model.Task) (*model.Task, error) {
	stored := *task
	stored.CreatedAt = time.Now().UTC()
	stored.UpdatedAt = stored.CreatedAt
	s.tasks[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *memoryTaskStore) GetByID(_ context.Context, userID, id string) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	out := *t
	return &out, nil
}

func (s *memoryTaskStore) List(_ context.Context, userID string, filter model.TaskFilter, _ model.TaskSort) ([]model.Task, error) {
	var result []model.Task
	for _, t := range s.tasks {
		if t.UserID != userID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && t.Priority != filter.Priority {
			continue
		}
		if filter.Category != "" && (t.Category == nil || *t.Category != filter.Category) {
			continue
		}
		if filter.Search != "" && !matchesSearch(t, filter.Search) {
			continue
		}
		result = append(result, *t)
	}
	return result, nil
}

func matchesSearch(t *model.Task, search string) bool {
	search = strings.ToLower(search)
	if strings.Contains(strings.ToLower(t.Title), search) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), search)
}

func (s *memoryTaskStore) Update(_ context.Context, task *model.Task) (*model.Task, error) {
	existing, ok := s.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return nil, repository.ErrTaskNotFound
	}
	stored := *task
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now().UTC()
	s.tasks[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (s *memoryTaskStore) Delete(_ context.Context, userID, id string) error {
	t, ok := s.tasks[id]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

func (s *memoryTaskStore) Stats(_ context.Context, userID string, _ time.Time) (*model.TaskStats, error) {
	stats := &model.TaskStats{ByCategory: make(map[string]int)}
	for _, t := range s.tasks {
		if t.UserID == userID {
			stats.Total++
		}
	}
	return stats, nil
}

func newTestTaskService() *TaskService {
	return NewTaskService(newMemoryTaskStore())
}

func strptr(s string) *string { return &s }

func TestCreateDefaults(t *testing.T) {
	svc := newTestTaskService()

	task, err := svc.Create(context.Background(), "user-a", model.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, model.PriorityMedium, task.Priority)
	assert.Equal(t, model.StatusPending, task.Status)
	assert.Equal(t, "user-a", task.UserID)
	assert.Nil(t, task.Description)
	assert.Nil(t, task.DueDate)
}

func TestCreateRoundTrip(t *testing.T) {
	svc := newTestTaskService()
	ctx := context.Background()
	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)

	created, err := svc.Create(ctx, "user-a", model.CreateTaskRequest{
		Title:       "Write report",
		Description: strptr("Quarterly numbers"),
		Category:    strptr("Work"),
		Priority:    model.PriorityHigh,
		Status:      model.StatusInProgress,
		DueDate:     &due,
	})
	require.NoError(t, err)

	fetched, err := svc.Get(ctx, "user-a", created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Title, fetched.Title)
	assert.Equal(t, *created.Description, *fetched.Description)
	assert.Equal(t, *created.Category, *fetched.Category)
	assert.Equal(t, created.Priority, fetched.Priority)
	assert.Equal(t, created.Status, fetched.Status)
	assert.True(t, created.DueDate.Equal(*fetched.DueDate))
}

func TestCreateBlankOptionalsBecomeNull(t *testing.T) {
	svc := newTestTaskService()

	task, err := svc.Create(context.Background(), "user-a", model.CreateTaskRequest{
		Title:       "Buy milk",
		Description: strptr("   "),
		Category:    strptr(""),
	})
	require.NoError(t, err)

	assert.Nil(t, task.Description)
	assert.Nil(t, task.Category)
}

func TestGetScopedToOwner(t *testing.T) {
	svc := newTestTaskService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-a", model.CreateTaskRequest{Title: "Buy milk", Priority: model.PriorityHigh})
	require.NoError(t, err)

	// Another user sees not-found, never forbidden.
	_, err = svc.Get(ctx, "user-b", created.ID)
	assert.ErrorIs(t, err, ErrTaskNotFound)

	tasks, err := svc.List(ctx, "user-b", model.TaskFilter{}, model.TaskSort{})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestUpdateStatusOnlyKeepsOtherFields(t *testing.T) {
	svc := newTestTaskService()
	ctx := context.Background()
	due := time.Date(2026, 9, 20, 9, 0, 0, 0, time.UTC)

	created, err := svc.Create(ctx, "user-a", model.CreateTaskRequest{
		Title:       "Write report",
		Description: strptr("Quarterly numbers"),
		Category:    strptr("Work"),
		Priority:    model.PriorityHigh,
		DueDate:     &due,
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user-a", created.ID, model.UpdateTaskRequest{
		Status: model.Optional[string]{Set: true, Value: strptr(model.StatusCompleted)},
	})
	require.NoError(t, err)

	assert.Equal(t, model.StatusCompleted, updated.Status)
	assert.Equal(t, "Write report", updated.Title)
	assert.Equal(t, "Quarterly numbers", *updated.Description)
	assert.Equal(t, "Work", *updated.Category)
	assert.Equal(t, model.PriorityHigh, updated.Priority)
	require.NotNil(t, updated.DueDate)
	assert.True(t, due.Equal(*updated.DueDate))
}

func TestUpdateExplicitNullClearsDueDate(t *testing.T) {
	svc := newTestTaskService()
	ctx := context.Background()
	due := time.Now().Add(24 * time.Hour)

	created, err := svc.Create(ctx, "user-a", model.CreateTaskRequest{Title: "Buy milk", DueDate: &due})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, "user-a", created.ID, model.UpdateTaskRequest{
		DueDate: model.Optional[time.Time]{Set: true, Value: nil},
	})
	require.NoError(t, err)
	assert.Nil(t, updated.DueDate)
}

func TestUpdateIdempotent(t *testing.T) {
	svc := newTestTaskService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-a", model.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	patch := model.UpdateTaskRequest{
		Title:    model.Optional[string]{Set: true, Value: strptr("Buy oat milk")},
		Priority: model.Optional[string]{Set: true, Value: strptr(model.PriorityLow)},
	}

	first, err := svc.Update(ctx, "user-a", created.ID, patch)
	require.NoError(t, err)
	second, err := svc.Update(ctx, "user-a", created.ID, patch)
	require.NoError(t, err)

	assert.Equal(t, first.Title, second.Title)
	assert.Equal(t, first.Priority, second.Priority)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Description, second.Description)
}

func TestUpdateCrossUserNotFound(t *testing.T) {
	svc := newTestTaskService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-a", model.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	_, err = svc.Update(ctx, "user-b", created.ID, model.UpdateTaskRequest{
		Title: model.Optional[string]{Set: true, Value: strptr("hijacked")},
	})
	assert.ErrorIs(t, err, ErrTaskNotFound)

	fetched, err := svc.Get(ctx, "user-a", created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", fetched.Title)
}

func TestDelete(t *testing.T) {
	svc := newTestTaskService()
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-a", model.CreateTaskRequest{Title: "Buy milk"})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, "user-b", created.ID), ErrTaskNotFound)

	require.NoError(t, svc.Delete(ctx, "user-a", created.ID))
	assert.ErrorIs(t, svc.Delete(ctx, "user-a", created.ID), ErrTaskNotFound)
}

func TestApplyPatchNullOnRequiredFieldIgnored(t *testing.T) {
	task := &model.Task{Title: "Buy milk", Priority: model.PriorityHigh, Status: model.StatusPending}

	applyPatch(task, model.UpdateTaskRequest{
		Title:    model.Optional[string]{Set: true, Value: nil},
		Priority: model.Optional[string]{Set: true, Value: nil},
		Status:   model.Optional[string]{Set: true, Value: nil},
	})

	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, model.PriorityHigh, task.Priority)
	assert.Equal(t, model.StatusPending, task.Status)
}

func TestApplyPatchClearsNullableFields(t *testing.T) {
	desc, cat := "old", "Home"
	task := &model.Task{Title: "Buy milk", Description: &desc, Category: &cat}

	applyPatch(task, model.UpdateTaskRequest{
		Description: model.Optional[string]{Set: true, Value: nil},
		Category:    model.Optional[string]{Set: true, Value: nil},
	})

	assert.Nil(t, task.Description)
	assert.Nil(t, task.Category)
}

func TestNormalizeOptional(t *testing.T) {
	assert.Nil(t, normalizeOptional(nil))
	assert.Nil(t, normalizeOptional(strptr("")))
	assert.Nil(t, normalizeOptional(strptr("  ")))

	got := normalizeOptional(strptr("  Work "))
	require.NotNil(t, got)
	assert.Equal(t, "Work", *got)
}
