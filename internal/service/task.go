package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nexarq/taskmanager/internal/metrics"
	"github.com/nexarq/taskmanager/internal/model"
)

// TaskStore is the persistence surface used by TaskService.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]*model.Task, error)
	ListTasksByOwner(ctx context.Context, userID int64) ([]*model.Task, error)
	CreateTask(ctx context.Context, task *model.Task) error
	UpdateTaskStatus(ctx context.Context, id int64, status model.TaskStatus) error
	UpdateTaskStatusOwned(ctx context.Context, id, ownerID int64, status model.TaskStatus) error
	DeleteTask(ctx context.Context, id int64) error
	DeleteTaskOwned(ctx context.Context, id, ownerID int64) error
}

// Tagger produces the tag string stored with a new task. It never fails.
type Tagger interface {
	Tags(ctx context.Context, title, description string) string
}

// CreateTaskInput contains fields for creating a task.
type CreateTaskInput struct {
	Title       string
	Description string
}

// TaskService handles task business logic.
//
// With ownership enforcement off, List returns every user's tasks and
// UpdateStatus/Delete act on any task ID. With it on, all three are limited
// to the caller's tasks; acting on someone else's task is a silent no-op.
type TaskService struct {
	store            TaskStore
	tagger           Tagger
	enforceOwnership bool
	logger           *slog.Logger
	metrics          metrics.Recorder
}

// NewTaskService creates a new TaskService.
func NewTaskService(store TaskStore, tagger Tagger, enforceOwnership bool, logger *slog.Logger, recorder metrics.Recorder) *TaskService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &TaskService{
		store:            store,
		tagger:           tagger,
		enforceOwnership: enforceOwnership,
		logger:           logger,
		metrics:          recorder,
	}
}

// OwnershipEnforced reports whether task access is scoped to the caller.
func (s *TaskService) OwnershipEnforced() bool {
	return s.enforceOwnership
}

// List returns tasks newest first.
func (s *TaskService) List(ctx context.Context, caller *model.User) ([]*model.Task, error) {
	if !s.enforceOwnership {
		return s.store.ListTasks(ctx)
	}
	if caller == nil {
		return nil, ErrCallerRequired
	}
	return s.store.ListTasksByOwner(ctx, caller.ID)
}

// Create tags and persists a new task owned by owner. Tagging happens before
// the insert, so the task is stored with its tags in one statement.
func (s *TaskService) Create(ctx context.Context, owner *model.User, input CreateTaskInput) (*model.Task, error) {
	if owner == nil {
		return nil, ErrCallerRequired
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	task := &model.Task{
		UserID:      owner.ID,
		Title:       title,
		Description: input.Description,
		Status:      model.TaskStatusTodo,
	}
	task.AITags = s.tagger.Tags(ctx, task.Title, task.Description)

	if err := s.store.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	s.metrics.IncTaskCreated()
	s.logger.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.Int64("user_id", task.UserID),
	)

	return task, nil
}

// UpdateStatus stores status verbatim. Unknown values are accepted; only an
// empty status is rejected. A missing task is not an error.
func (s *TaskService) UpdateStatus(ctx context.Context, caller *model.User, id int64, status string) error {
	if id <= 0 {
		return ErrInvalidTaskID
	}
	if status == "" {
		return ErrStatusRequired
	}

	st := model.TaskStatus(status)
	var err error
	if s.enforceOwnership {
		if caller == nil {
			return ErrCallerRequired
		}
		err = s.store.UpdateTaskStatusOwned(ctx, id, caller.ID, st)
	} else {
		err = s.store.UpdateTaskStatus(ctx, id, st)
	}
	if err != nil {
		return err
	}

	if !st.IsKnown() {
		s.logger.Debug("task status outside known set", slog.Int64("task_id", id), slog.String("status", status))
	}
	s.metrics.IncTaskStatusUpdated()
	return nil
}

// Delete removes a task. Deleting a missing task is not an error.
func (s *TaskService) Delete(ctx context.Context, caller *model.User, id int64) error {
	if id <= 0 {
		return ErrInvalidTaskID
	}

	var err error
	if s.enforceOwnership {
		if caller == nil {
			return ErrCallerRequired
		}
		err = s.store.DeleteTaskOwned(ctx, id, caller.ID)
	} else {
		err = s.store.DeleteTask(ctx, id)
	}
	if err != nil {
		return err
	}

	s.metrics.IncTaskDeleted()
	return nil
}
