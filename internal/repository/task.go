package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nexarq/taskmanager/internal/model"
)

const taskColumns = `id, user_id, title, description, status, ai_tags, created_at`

// ListTasks returns every task across all users, newest first.
// Ties on created_at are broken by id so the order is strict.
func (r *Repository) ListTasks(ctx context.Context) ([]*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return collectTasks(rows)
}

// ListTasksByOwner returns the tasks owned by userID, newest first.
func (r *Repository) ListTasksByOwner(ctx context.Context, userID int64) ([]*model.Task, error) {
	query := `
		SELECT ` + taskColumns + `
		FROM tasks
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks by owner: %w", err)
	}

	return collectTasks(rows)
}

// CreateTask inserts a task, tags included, in a single statement and fills
// in the store-assigned ID, status and creation time.
func (r *Repository) CreateTask(ctx context.Context, task *model.Task) error {
	query := `
		INSERT INTO tasks (user_id, title, description, ai_tags)
		VALUES ($1, $2, $3, $4)
		RETURNING id, status, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		task.UserID,
		task.Title,
		task.Description,
		task.AITags,
	).Scan(&task.ID, &task.Status, &task.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return nil
}

// UpdateTaskStatus overwrites the status of a task.
// The status is stored verbatim and a missing row is not an error.
func (r *Repository) UpdateTaskStatus(ctx context.Context, id int64, status model.TaskStatus) error {
	query := `UPDATE tasks SET status = $2 WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, status); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	return nil
}

// UpdateTaskStatusOwned overwrites the status only if ownerID owns the task.
func (r *Repository) UpdateTaskStatusOwned(ctx context.Context, id, ownerID int64, status model.TaskStatus) error {
	query := `UPDATE tasks SET status = $3 WHERE id = $1 AND user_id = $2`

	if _, err := r.pool.Exec(ctx, query, id, ownerID, status); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}

	return nil
}

// DeleteTask removes a task by ID. Deleting a missing task is not an error.
func (r *Repository) DeleteTask(ctx context.Context, id int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// DeleteTaskOwned removes a task only if ownerID owns it.
func (r *Repository) DeleteTaskOwned(ctx context.Context, id, ownerID int64) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, ownerID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

func collectTasks(rows pgx.Rows) ([]*model.Task, error) {
	defer rows.Close()

	tasks := make([]*model.Task, 0)
	for rows.Next() {
		var task model.Task
		err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.AITags,
			&task.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tasks: %w", err)
	}

	return tasks, nil
}
