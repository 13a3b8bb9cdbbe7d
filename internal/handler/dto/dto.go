// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/nexarq/taskmanager/internal/model"
)

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse is returned after registration.
type RegisterResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

// PreferencesResponse is the preference block of a login response.
type PreferencesResponse struct {
	Theme string `json:"theme"`
}

// LoginResponse is returned after a successful login.
// LastLogin is epoch milliseconds, or null on the first login.
type LoginResponse struct {
	Message     string              `json:"message"`
	ID          int64               `json:"id"`
	Preferences PreferencesResponse `json:"preferences"`
	LastLogin   *int64              `json:"lastLogin"`
}

// NewLoginResponse builds a LoginResponse.
func NewLoginResponse(id int64, theme string, lastLogin *time.Time) LoginResponse {
	resp := LoginResponse{
		Message:     "Success",
		ID:          id,
		Preferences: PreferencesResponse{Theme: theme},
	}
	if lastLogin != nil {
		ms := lastLogin.UnixMilli()
		resp.LastLogin = &ms
	}
	return resp
}

// PreferenceRequest updates the caller's theme.
// UserID is only read when requests are authorized by a shared secret.
type PreferenceRequest struct {
	Theme  string `json:"theme"`
	UserID *int64 `json:"user_id,omitempty"`
}

// SuccessResponse is {"success": true}.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// CreateTaskRequest is the body of POST /tasks.
type CreateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	UserID      *int64 `json:"user_id,omitempty"`
}

// CreateTaskResponse is returned after a task is created.
type CreateTaskResponse struct {
	Message string `json:"message"`
	Tags    string `json:"tags"`
	ID      int64  `json:"id"`
}

// UpdateStatusRequest is the body of PATCH /tasks/{id}/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
	UserID *int64 `json:"user_id,omitempty"`
}

// MessageResponse is {"message": ...}.
type MessageResponse struct {
	Message string `json:"message"`
}

// TaskResponse is a task in API responses.
type TaskResponse struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	AITags      string    `json:"ai_tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToTaskResponse converts a model.Task to a TaskResponse.
func ToTaskResponse(t *model.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		AITags:      t.AITags,
		CreatedAt:   t.CreatedAt,
	}
}

// ToTaskListResponse converts tasks to responses. The result is never nil,
// so an empty list encodes as [].
func ToTaskListResponse(tasks []*model.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, ToTaskResponse(t))
	}
	return out
}

// ChatRequest is the body of POST /ai/chat.
type ChatRequest struct {
	Question string `json:"question"`
	UserID   *int64 `json:"user_id,omitempty"`
}

// ChatResponse carries the assistant's answer or the fallback apology.
type ChatResponse struct {
	Answer string `json:"answer"`
}
