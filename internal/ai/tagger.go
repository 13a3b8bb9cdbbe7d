package ai

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/nexarq/taskmanager/internal/metrics"
)

// DefaultTag replaces the tag set whenever generation fails.
const DefaultTag = "General"

// TagInstruction is the system turn sent with every tagging request.
const TagInstruction = "Generate exactly 3 tags for this task, comma-separated. Respond with the tags only, no other text."

// Tagger derives a short comma-separated tag string for a task.
type Tagger struct {
	gen     Generator
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewTagger creates a Tagger.
func NewTagger(gen Generator, logger *slog.Logger, recorder metrics.Recorder) *Tagger {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Tagger{gen: gen, logger: logger, metrics: recorder}
}

// Tags returns the generated tags for a task, or DefaultTag if the model
// call fails or yields nothing. It never returns an empty string.
func (t *Tagger) Tags(ctx context.Context, title, description string) string {
	start := time.Now()
	out, err := t.gen.Generate(ctx, TagInstruction, tagPrompt(title, description))
	t.metrics.ObserveGeneration(metrics.GenerationTag, time.Since(start))

	tags := strings.TrimSpace(out)
	if err != nil || tags == "" {
		t.metrics.IncTagFallback()
		t.logger.Warn("tag generation fell back to default",
			slog.String("default", DefaultTag),
			slog.Any("error", err),
		)
		return DefaultTag
	}

	return tags
}

func tagPrompt(title, description string) string {
	var b strings.Builder
	b.WriteString("Title: ")
	b.WriteString(title)
	if description != "" {
		b.WriteString("\nDescription: ")
		b.WriteString(description)
	}
	return b.String()
}
