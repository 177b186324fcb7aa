package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/taskflow/taskflow-go/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

// dueSoonWindow is how far ahead a due date may lie to count as due soon.
const dueSoonWindow = 3 * 24 * time.Hour

// recentWindow is how far back a completion still counts as recent.
const recentWindow = 7 * 24 * time.Hour

const taskColumns = `id, title, description, category, priority, status, due_date, user_id, created_at, updated_at`

// sortColumns maps the client-facing sort keys to column identifiers.
// Only keys in this map may ever reach the ORDER BY clause; filter values
// are always bound parameters, but sort identifiers cannot be bound and
// must be validated before interpolation.
var sortColumns = map[string]string{
	"title":     "title",
	"priority":  "priority",
	"status":    "status",
	"dueDate":   "due_date",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// TaskRepository handles task persistence and owner-scoped queries.
type TaskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a new TaskRepository.
func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task and returns the stored row.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) (*model.Task, error) {
	query := `INSERT INTO tasks (id, title, description, category, priority, status, due_date, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		task.ID, task.Title, task.Description, task.Category,
		task.Priority, task.Status, task.DueDate, task.UserID,
	)
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, task.UserID, task.ID)
}

// GetByID retrieves a task by ID, scoped to its owner. A task owned by
// someone else is indistinguishable from a missing one.
func (r *TaskRepository) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = ? AND user_id = ?`

	task := &model.Task{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&task.ID, &task.Title, &task.Description, &task.Category,
		&task.Priority, &task.Status, &task.DueDate, &task.UserID,
		&task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	return task, nil
}

// List retrieves all tasks for a user matching the given filters, in the
// requested order. Ordering between rows with equal sort keys is
// unspecified.
func (r *TaskRepository) List(ctx context.Context, userID string, filter model.TaskFilter, sort model.TaskSort) ([]model.Task, error) {
	query, args := buildListQuery(userID, filter, sort)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.Title, &t.Description, &t.Category,
			&t.Priority, &t.Status, &t.DueDate, &t.UserID,
			&t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	return tasks, rows.Err()
}

// Update persists all mutable fields of a task, scoped to its owner, and
// returns the refreshed row.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) (*model.Task, error) {
	query := `UPDATE tasks SET title = ?, description = ?, category = ?, priority = ?, status = ?, due_date = ?
		WHERE id = ? AND user_id = ?`

	_, err := r.db.ExecContext(ctx, query,
		task.Title, task.Description, task.Category,
		task.Priority, task.Status, task.DueDate,
		task.ID, task.UserID,
	)
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, task.UserID, task.ID)
}

// Delete removes a task, scoped to its owner.
func (r *TaskRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM tasks WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotFound
	}

	return nil
}

// statsQuery computes every status/priority counter in a single pass.
// The overdue bound is a strict less-than; the due-soon range includes
// its lower bound, so a task due exactly now is due soon, not overdue.
const statsQuery = `SELECT
		COUNT(*),
		COALESCE(SUM(status = 'Pending'), 0),
		COALESCE(SUM(status = 'In Progress'), 0),
		COALESCE(SUM(status = 'Completed'), 0),
		COALESCE(SUM(priority = 'High'), 0),
		COALESCE(SUM(priority = 'Medium'), 0),
		COALESCE(SUM(priority = 'Low'), 0),
		COALESCE(SUM(due_date < ? AND status <> 'Completed'), 0),
		COALESCE(SUM(due_date >= ? AND due_date <= ? AND status <> 'Completed'), 0),
		COALESCE(SUM(status = 'Completed' AND updated_at >= ?), 0)
		FROM tasks WHERE user_id = ?`

// Stats computes the aggregate counters for a user's tasks as of now.
// Nothing is cached; every call hits the store.
func (r *TaskRepository) Stats(ctx context.Context, userID string, now time.Time) (*model.TaskStats, error) {
	stats := &model.TaskStats{}
	err := r.db.QueryRowContext(ctx, statsQuery,
		now,
		now, now.Add(dueSoonWindow),
		now.Add(-recentWindow),
		userID,
	).Scan(
		&stats.Total,
		&stats.Pending, &stats.InProgress, &stats.Completed,
		&stats.HighPriority, &stats.MediumPriority, &stats.LowPriority,
		&stats.Overdue, &stats.DueSoon,
		&stats.RecentlyCompleted,
	)
	if err != nil {
		return nil, err
	}

	byCategory, err := r.countByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}
	stats.ByCategory = byCategory
	stats.CompletionRate = completionRate(stats.Completed, stats.Total)

	return stats, nil
}

func (r *TaskRepository) countByCategory(ctx context.Context, userID string) (map[string]int, error) {
	query := `SELECT category, COUNT(*) FROM tasks
		WHERE user_id = ? AND category IS NOT NULL AND category <> ''
		GROUP BY category`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCategory := make(map[string]int)
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		byCategory[category] = count
	}

	return byCategory, rows.Err()
}

// buildListQuery assembles the owner-scoped list query. All filter values
// are bound parameters; the sort column and direction are validated
// identifiers interpolated into the query text.
func buildListQuery(userID string, filter model.TaskFilter, sort model.TaskSort) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`)
	args := []any{userID}

	if filter.Status != "" {
		sb.WriteString(` AND status = ?`)
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		sb.WriteString(` AND priority = ?`)
		args = append(args, filter.Priority)
	}
	if filter.Category != "" {
		sb.WriteString(` AND category = ?`)
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		sb.WriteString(` AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)`)
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, pattern, pattern)
	}

	column := sortColumn(sort.SortBy)
	order := sortOrder(sort.SortOrder)

	sb.WriteString(` ORDER BY `)
	if column == "due_date" {
		// Tasks without a due date sort after everything that has one.
		sb.WriteString(`due_date IS NULL, `)
	}
	sb.WriteString(column + ` ` + order)

	return sb.String(), args
}

// sortColumn resolves a client sort key against the allow-list; anything
// unrecognized falls back to created_at.
func sortColumn(sortBy string) string {
	if column, ok := sortColumns[sortBy]; ok {
		return column
	}
	return "created_at"
}

// sortOrder normalizes the sort direction, defaulting to DESC.
func sortOrder(order string) string {
	if strings.EqualFold(order, "ASC") {
		return "ASC"
	}
	return "DESC"
}

// completionRate returns completed/total as a whole percentage, rounded
// half-up, or 0 when there are no tasks.
func completionRate(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return (completed*100 + total/2) / total
}
