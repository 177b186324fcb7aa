package model

import "time"

// Task priority levels.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Task status values.
const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// Field length limits enforced at the API boundary.
const (
	MaxTitleLen       = 200
	MaxDescriptionLen = 1000
	MaxCategoryLen    = 50
)

// Task represents a task row in the database. Description, Category and
// DueDate are nullable.
type Task struct {
	ID          string
	Title       string
	Description *string
	Category    *string
	Priority    string
	Status      string
	DueDate     *time.Time
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateTaskRequest represents a task creation request. Priority and
// Status default to Medium/Pending when omitted.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description" validate:"omitempty,max=1000"`
	Category    *string    `json:"category" validate:"omitempty,max=50"`
	Priority    string     `json:"priority" validate:"omitempty,oneof=High Medium Low"`
	Status      string     `json:"status" validate:"omitempty,oneof=Pending 'In Progress' Completed"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateTaskRequest represents a partial task update. A field that is
// absent from the request body keeps its stored value; an explicit null
// clears a nullable field.
type UpdateTaskRequest struct {
	Title       Optional[string]    `json:"title"`
	Description Optional[string]    `json:"description"`
	Category    Optional[string]    `json:"category"`
	Priority    Optional[string]    `json:"priority"`
	Status      Optional[string]    `json:"status"`
	DueDate     Optional[time.Time] `json:"dueDate"`
}

// TaskFilter holds the optional list filters. Zero-value fields are not
// applied. Filters combine with AND.
type TaskFilter struct {
	Status   string
	Priority string
	Category string
	Search   string
}

// TaskSort holds the list sort specification. SortBy outside the allowed
// column set falls back to creation time; SortOrder defaults to DESC.
type TaskSort struct {
	SortBy    string
	SortOrder string
}

// TaskResponse represents a task in API responses.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Category    *string    `json:"category"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"dueDate"`
	UserID      string     `json:"userId"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskStats holds the aggregate counters for one user's tasks.
type TaskStats struct {
	Total             int            `json:"total"`
	Pending           int            `json:"pending"`
	InProgress        int            `json:"inProgress"`
	Completed         int            `json:"completed"`
	HighPriority      int            `json:"highPriority"`
	MediumPriority    int            `json:"mediumPriority"`
	LowPriority       int            `json:"lowPriority"`
	Overdue           int            `json:"overdue"`
	DueSoon           int            `json:"dueSoon"`
	ByCategory        map[string]int `json:"byCategory"`
	RecentlyCompleted int            `json:"recentlyCompleted"`
	CompletionRate    int            `json:"completionRate"`
}

// ValidPriority reports whether p is one of the known priority levels.
func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// ValidStatus reports whether s is one of the known status values.
func ValidStatus(s string) bool {
	return s == StatusPending || s == StatusInProgress || s == StatusCompleted
}

// PublicTask converts a stored task to its API representation.
func PublicTask(t *Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Priority:    t.Priority,
		Status:      t.Status,
		DueDate:     t.DueDate,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
