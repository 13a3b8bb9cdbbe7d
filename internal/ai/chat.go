package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nexarq/taskmanager/internal/metrics"
	"github.com/nexarq/taskmanager/internal/model"
)

// FallbackAnswer is returned whenever the assistant cannot answer.
const FallbackAnswer = "I couldn't think of an answer right now."

// chatInstructionPrefix precedes the serialized task list in the system turn.
const chatInstructionPrefix = "You are a helpful task assistant. Answer based ONLY on this task list: "

// Chat answers questions grounded on a task list.
type Chat struct {
	gen     Generator
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewChat creates a Chat.
func NewChat(gen Generator, logger *slog.Logger, recorder metrics.Recorder) *Chat {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Chat{gen: gen, logger: logger, metrics: recorder}
}

// GroundingContext serializes tasks into the single blob the model may answer from.
// Only title, description, status and tags are included.
func GroundingContext(tasks []*model.Task) (string, error) {
	projected := make([]model.TaskContext, 0, len(tasks))
	for _, t := range tasks {
		projected = append(projected, model.ContextOf(t))
	}

	data, err := json.Marshal(projected)
	if err != nil {
		return "", fmt.Errorf("marshal task context: %w", err)
	}
	return string(data), nil
}

// ChatInstruction builds the system turn for a grounding blob.
func ChatInstruction(grounding string) string {
	return chatInstructionPrefix + grounding
}

// Answer asks the model question against tasks. Any failure, including a
// blank answer, yields FallbackAnswer.
func (c *Chat) Answer(ctx context.Context, tasks []*model.Task, question string) string {
	grounding, err := GroundingContext(tasks)
	if err != nil {
		return c.fallback(err)
	}

	start := time.Now()
	out, err := c.gen.Generate(ctx, ChatInstruction(grounding), question)
	c.metrics.ObserveGeneration(metrics.GenerationChat, time.Since(start))
	if err != nil {
		return c.fallback(err)
	}

	answer := strings.TrimSpace(out)
	if answer == "" {
		return c.fallback(ErrEmptyResponse)
	}
	return answer
}

// Fallback records a failure that happened before the model was reached
// and returns FallbackAnswer.
func (c *Chat) Fallback(err error) string {
	return c.fallback(err)
}

func (c *Chat) fallback(err error) string {
	c.metrics.IncChatFallback()
	c.logger.Warn("chat answer fell back to apology", slog.Any("error", err))
	return FallbackAnswer
}
