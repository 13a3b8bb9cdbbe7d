// Package ai wraps the external text-generation capability and the two
// pipelines built on it: task tagging and task-list chat.
package ai

import (
	"context"
	"errors"
)

// Errors returned by generators.
var (
	ErrDisabled      = errors.New("ai generation is disabled")
	ErrEmptyResponse = errors.New("ai response is empty")
)

// Generator produces text for a system instruction and a user turn.
// Implementations make a single attempt and may fail for any reason;
// callers own the fallback policy.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, system, prompt string) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

// Disabled is a Generator that always fails, so every pipeline falls back.
type Disabled struct{}

// Generate returns ErrDisabled.
func (Disabled) Generate(context.Context, string, string) (string, error) {
	return "", ErrDisabled
}
