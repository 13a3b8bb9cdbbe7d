package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/nexarq/taskmanager/internal/ai"
	"github.com/nexarq/taskmanager/internal/auth"
	"github.com/nexarq/taskmanager/internal/config"
	"github.com/nexarq/taskmanager/internal/metrics"
	"github.com/nexarq/taskmanager/internal/model"
	"github.com/nexarq/taskmanager/internal/repository"
	"github.com/nexarq/taskmanager/internal/service"
)

// memStore is an in-memory stand-in for the Postgres repository.
type memStore struct {
	mu         sync.Mutex
	users      map[int64]*model.User
	tasks      map[int64]*model.Task
	nextUser   int64
	nextTask   int64
	clock      time.Time
	userLookup int
	failTasks  error
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]*model.User),
		tasks: make(map[int64]*model.Task),
		clock: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (m *memStore) CreateUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.nextUser++
	u.ID = m.nextUser
	u.CreatedAt = m.clock
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userLookup++
	u, ok := m.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.userLookup++
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memStore) list(filter func(*model.Task) bool) []*model.Task {
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

func (m *memStore) ListTasks(context.Context) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTasks != nil {
		return nil, m.failTasks
	}
	return m.list(func(*model.Task) bool { return true }), nil
}

func (m *memStore) ListTasksByOwner(_ context.Context, userID int64) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTasks != nil {
		return nil, m.failTasks
	}
	return m.list(func(t *model.Task) bool { return t.UserID == userID }), nil
}

func (m *memStore) CreateTask(_ context.Context, t *model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failTasks != nil {
		return m.failTasks
	}
	m.nextTask++
	m.clock = m.clock.Add(time.Second)
	t.ID = m.nextTask
	t.CreatedAt = m.clock
	t.Status = model.TaskStatusTodo
	cp := *t
	m.tasks[t.ID] = &cp
	return nil
}

func (m *memStore) UpdateTaskStatus(_ context.Context, id int64, status model.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok {
		t.Status = status
	}
	return m.failTasks
}

func (m *memStore) UpdateTaskStatusOwned(_ context.Context, id, ownerID int64, status model.TaskStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok && t.UserID == ownerID {
		t.Status = status
	}
	return m.failTasks
}

func (m *memStore) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return m.failTasks
}

func (m *memStore) DeleteTaskOwned(_ context.Context, id, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tasks[id]; ok && t.UserID == ownerID {
		delete(m.tasks, id)
	}
	return m.failTasks
}

func (m *memStore) task(id int64) *model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil
	}
	cp := *t
	return &cp
}

type memKV struct {
	mu   sync.Mutex
	data map[string]string
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memKV) GetWithDefault(ctx context.Context, key, def string) (string, error) {
	v, found, _ := m.Get(ctx, key)
	if !found {
		return def, nil
	}
	return v, nil
}

func (m *memKV) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memKV) get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

// envOptions selects the authorization strategy and policy for a test env.
type envOptions struct {
	authMode     string
	sharedSecret string
	enforce      bool
	generator    ai.Generator
}

type testEnv struct {
	router  http.Handler
	store   *memStore
	kv      *memKV
	metrics *metrics.InMemoryRecorder
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, opts envOptions) *testEnv {
	t.Helper()

	if opts.authMode == "" {
		opts.authMode = config.AuthModeHeader
	}
	if opts.generator == nil {
		opts.generator = ai.GeneratorFunc(func(context.Context, string, string) (string, error) {
			return "work, planning, docs", nil
		})
	}

	logger := discardLogger()
	store := newMemStore()
	kv := &memKV{data: make(map[string]string)}
	rec := metrics.NewInMemory()

	verifier := auth.NewVerifier(store, auth.PlaintextScheme{})
	authorizer, err := auth.NewAuthorizer(opts.authMode, opts.sharedSecret, verifier)
	if err != nil {
		t.Fatalf("NewAuthorizer() error = %v", err)
	}

	var actors *ActorResolver
	if opts.authMode == config.AuthModeSharedSecret {
		actors = NewActorResolver(verifier)
	} else {
		actors = NewActorResolver(nil)
	}

	accounts := service.NewAccountService(store, verifier, service.NewPreferences(kv), logger, rec)
	tagger := ai.NewTagger(opts.generator, logger, rec)
	tasks := service.NewTaskService(store, tagger, opts.enforce, logger, rec)
	chat := service.NewChatService(store, ai.NewChat(opts.generator, logger, rec))

	router := NewRouter(RouterConfig{
		Logger:             logger,
		Health:             NewHealthHandler(nil, nil, logger),
		Metrics:            NewMetricsHandler(rec),
		Accounts:           NewAccountHandler(accounts, actors, logger),
		Tasks:              NewTaskHandler(tasks, actors, logger),
		Chat:               NewChatHandler(chat, actors, logger),
		Authorizer:         authorizer,
		OwnershipEnforced:  opts.enforce,
		IsDevelopment:      true,
		MaxRequestBodySize: 1 << 20,
	})

	return &testEnv{router: router, store: store, kv: kv, metrics: rec}
}

// do sends a request through the full router. body may be a string (sent
// verbatim), nil, or any value encoded as JSON.
func (e *testEnv) do(t *testing.T, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// register creates a user through the API and returns its ID.
func (e *testEnv) register(t *testing.T, email, password string) int64 {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/auth/register", map[string]string{"email": email, "password": password}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register %s: status %d body %s", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &resp)
	return resp.ID
}

func creds(id int64, password string) map[string]string {
	return map[string]string{
		auth.HeaderAuthID:   strconv.FormatInt(id, 10),
		auth.HeaderAuthPass: password,
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp struct {
		Error string `json:"error"`
	}
	decode(t, rec, &resp)
	return resp.Error
}
