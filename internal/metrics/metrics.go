// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Generation kinds reported to ObserveGeneration.
const (
	GenerationTag  = "tag"
	GenerationChat = "chat"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Task metrics
	IncTaskCreated()
	IncTaskStatusUpdated()
	IncTaskDeleted()

	// Account metrics
	IncLogin(success bool)

	// AI pipeline metrics
	IncTagFallback()
	IncChatFallback()
	ObserveGeneration(kind string, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
