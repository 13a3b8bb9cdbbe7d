package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/nexarq/taskmanager/internal/model"
	"github.com/nexarq/taskmanager/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memUsers struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*model.User
}

func newMemUsers() *memUsers {
	return &memUsers{byID: make(map[int64]*model.User)}
}

func (m *memUsers) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now()
	stored := *user
	m.byID[user.ID] = &stored
	return nil
}

func (m *memUsers) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type memKV struct {
	mu   sync.Mutex
	data map[string]string
	err  error
	// defaults records the fallback passed to each GetWithDefault call, by key.
	defaults map[string]string
}

func newMemKV() *memKV {
	return &memKV{data: make(map[string]string)}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", false, m.err
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) GetWithDefault(ctx context.Context, key, def string) (string, error) {
	m.mu.Lock()
	if m.defaults == nil {
		m.defaults = make(map[string]string)
	}
	m.defaults[key] = def
	m.mu.Unlock()

	v, found, err := m.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if !found {
		return def, nil
	}
	return v, nil
}

func (m *memKV) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.data[key] = value
	return nil
}

var errStoreDown = errors.New("store down")

type memTasks struct {
	mu      sync.Mutex
	nextID  int64
	clock   time.Time
	tasks   map[int64]*model.Task
	err     error
	lastOp  string
	lastArg []int64
}

func newMemTasks() *memTasks {
	return &memTasks{
		tasks: make(map[int64]*model.Task),
		clock: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (m *memTasks) record(op string, args ...int64) {
	m.lastOp = op
	m.lastArg = args
}

func (m *memTasks) sorted(filter func(*model.Task) bool) []*model.Task {
	out := make([]*model.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if filter(t) {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (m *memTasks) ListTasks(context.Context) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("list")
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(*model.Task) bool { return true }), nil
}

func (m *memTasks) ListTasksByOwner(_ context.Context, userID int64) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("list_owned", userID)
	if m.err != nil {
		return nil, m.err
	}
	return m.sorted(func(t *model.Task) bool { return t.UserID == userID }), nil
}

func (m *memTasks) CreateTask(_ context.Context, task *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("create")
	if m.err != nil {
		return m.err
	}
	m.nextID++
	m.clock = m.clock.Add(time.Millisecond)
	task.ID = m.nextID
	task.CreatedAt = m.clock
	if task.Status == "" {
		task.Status = model.TaskStatusTodo
	}
	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

func (m *memTasks) UpdateTaskStatus(_ context.Context, id int64, status model.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("update", id)
	if m.err != nil {
		return m.err
	}
	if t, ok := m.tasks[id]; ok {
		t.Status = status
	}
	return nil
}

func (m *memTasks) UpdateTaskStatusOwned(_ context.Context, id, ownerID int64, status model.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("update_owned", id, ownerID)
	if m.err != nil {
		return m.err
	}
	if t, ok := m.tasks[id]; ok && t.UserID == ownerID {
		t.Status = status
	}
	return nil
}

func (m *memTasks) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete", id)
	if m.err != nil {
		return m.err
	}
	delete(m.tasks, id)
	return nil
}

func (m *memTasks) DeleteTaskOwned(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("delete_owned", id, ownerID)
	if m.err != nil {
		return m.err
	}
	if t, ok := m.tasks[id]; ok && t.UserID == ownerID {
		delete(m.tasks, id)
	}
	return nil
}

func (m *memTasks) get(id int64) (*model.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, false
	}
	cp := *t
	return &cp, true
}

type stubTagger string

func (s stubTagger) Tags(context.Context, string, string) string { return string(s) }

func user(id int64) *model.User {
	return &model.User{ID: id, Email: "u" + strconv.FormatInt(id, 10) + "@example.test"}
}
