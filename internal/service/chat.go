package service

import (
	"context"
	"fmt"

	"github.com/nexarq/taskmanager/internal/ai"
	"github.com/nexarq/taskmanager/internal/model"
)

// OwnerTaskLister loads one user's tasks.
type OwnerTaskLister interface {
	ListTasksByOwner(ctx context.Context, userID int64) ([]*model.Task, error)
}

// ChatService answers questions about a user's own tasks.
type ChatService struct {
	tasks OwnerTaskLister
	chat  *ai.Chat
}

// NewChatService creates a ChatService.
func NewChatService(tasks OwnerTaskLister, chat *ai.Chat) *ChatService {
	return &ChatService{tasks: tasks, chat: chat}
}

// Ask returns an answer grounded on user's tasks. It never fails: a store
// error, a model error and a blank answer all yield ai.FallbackAnswer.
func (s *ChatService) Ask(ctx context.Context, user *model.User, question string) string {
	if user == nil {
		return s.chat.Fallback(ErrCallerRequired)
	}

	tasks, err := s.tasks.ListTasksByOwner(ctx, user.ID)
	if err != nil {
		return s.chat.Fallback(fmt.Errorf("load tasks for chat: %w", err))
	}

	return s.chat.Answer(ctx, tasks, question)
}

// Degrade records a failure that happened before Ask could run and returns
// the fallback answer.
func (s *ChatService) Degrade(err error) string {
	return s.chat.Fallback(err)
}
