package model

import "time"

// TaskStatus is the workflow state of a task.
// Only the values below are produced by the UI, but the store accepts any string.
type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// IsKnown reports whether the status is one of the well-known values.
func (s TaskStatus) IsKnown() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// Task represents a tracked unit of work.
type Task struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	AITags      string     `json:"ai_tags"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TaskContext is the projection of a task used to ground the chat assistant.
// It deliberately omits identifiers and ownership.
type TaskContext struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      TaskStatus `json:"status"`
	AITags      string     `json:"ai_tags"`
}

// ContextOf projects a task to its grounding fields.
func ContextOf(t *Task) TaskContext {
	return TaskContext{
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status,
		AITags:      t.AITags,
	}
}
