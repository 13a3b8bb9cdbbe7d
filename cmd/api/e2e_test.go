//go:build e2e

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/nexarq/taskmanager/internal/repository"
)

type loginResponse struct {
	ID          int64 `json:"id"`
	Preferences struct {
		Theme string `json:"theme"`
	} `json:"preferences"`
	LastLogin *int64 `json:"lastLogin"`
}

type taskResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	AITags    string `json:"ai_tags"`
	CreatedAt string `json:"created_at"`
}

// TestE2ESmoke drives a running server through a full user session.
// The server must run with AUTH_MODE=header.
func TestE2ESmoke(t *testing.T) {
	baseURL := envOrDefault("TRACKER_BASE_URL", "http://localhost:8080")
	waitForReady(t, baseURL)

	email := fmt.Sprintf("e2e-%s@example.test", strings.ToLower(ulid.Make().String()))
	password := "e2e-" + ulid.Make().String()

	var reg struct {
		ID int64 `json:"id"`
	}
	if status := doJSON(t, http.MethodPost, baseURL+"/auth/register", nil, map[string]string{"email": email, "password": password}, &reg); status != http.StatusOK {
		t.Fatalf("register: expected 200, got %d", status)
	}
	user := map[string]string{
		"X-Auth-Id":   strconv.FormatInt(reg.ID, 10),
		"X-Auth-Pass": password,
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		assertSecretNotStoredVerbatim(t, dbURL, email, password)
	}

	var first, second loginResponse
	creds := map[string]string{"email": email, "password": password}
	doJSON(t, http.MethodPost, baseURL+"/auth/login", nil, creds, &first)
	if first.LastLogin != nil || first.Preferences.Theme != "light" {
		t.Fatalf("first login: unexpected %+v", first)
	}

	if status := doJSON(t, http.MethodPost, baseURL+"/user/preference", user, map[string]string{"theme": "dark"}, nil); status != http.StatusOK {
		t.Fatalf("preference: expected 200, got %d", status)
	}

	doJSON(t, http.MethodPost, baseURL+"/auth/login", nil, creds, &second)
	if second.LastLogin == nil || second.Preferences.Theme != "dark" {
		t.Fatalf("second login: unexpected %+v", second)
	}

	var created struct {
		ID   int64  `json:"id"`
		Tags string `json:"tags"`
	}
	if status := doJSON(t, http.MethodPost, baseURL+"/tasks", user, map[string]string{"title": "E2E " + email, "description": "smoke"}, &created); status != http.StatusCreated {
		t.Fatalf("create task: expected 201, got %d", status)
	}
	if created.Tags == "" {
		t.Fatal("create task: empty tags")
	}

	var tasks []taskResponse
	doJSON(t, http.MethodGet, baseURL+"/tasks", nil, nil, &tasks)
	if len(tasks) == 0 || tasks[0].ID != created.ID {
		t.Fatalf("list: newest task should be first, got %d tasks", len(tasks))
	}

	if status := doJSON(t, http.MethodPatch, fmt.Sprintf("%s/tasks/%d/status", baseURL, created.ID), user, map[string]string{"status": "DONE"}, nil); status != http.StatusOK {
		t.Fatalf("update status: expected 200, got %d", status)
	}

	var chat struct {
		Answer string `json:"answer"`
	}
	if status := doJSON(t, http.MethodPost, baseURL+"/ai/chat", user, map[string]string{"question": "What have I finished?"}, &chat); status != http.StatusOK {
		t.Fatalf("chat: expected 200, got %d", status)
	}
	if chat.Answer == "" {
		t.Fatal("chat: empty answer")
	}

	if status := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/tasks/%d", baseURL, created.ID), user, nil, nil); status != http.StatusOK {
		t.Fatalf("delete: expected 200, got %d", status)
	}
	if status := doJSON(t, http.MethodDelete, fmt.Sprintf("%s/tasks/%d", baseURL, created.ID), nil, nil, nil); status != http.StatusUnauthorized {
		t.Fatalf("anonymous delete: expected 401, got %d", status)
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func waitForReady(t *testing.T, baseURL string) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := client.Get(baseURL + "/readyz")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("server at %s not ready", baseURL)
}

func assertSecretNotStoredVerbatim(t *testing.T, dbURL, email, password string) {
	t.Helper()
	if os.Getenv("CREDENTIAL_SCHEME") == "plaintext" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	defer repo.Close()

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("load user: %v", err)
	}
	if user.PasswordHash == password || !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Fatalf("secret stored in unexpected form")
	}
}

func doJSON(t *testing.T, method, url string, headers map[string]string, body any, out any) int {
	t.Helper()

	var buf io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		buf = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, url, buf)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// Task creation and chat wait on the model.
	client := &http.Client{Timeout: 90 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil && resp.ContentLength != 0 {
			t.Fatalf("decode response: %v", err)
		}
	}

	return resp.StatusCode
}
