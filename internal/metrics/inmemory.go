package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	TasksCreated       uint64
	TasksStatusUpdated uint64
	TasksDeleted       uint64
	LoginsSucceeded    uint64
	LoginsFailed       uint64
	TagFallbacks       uint64
	ChatFallbacks      uint64
	TagGenerations     DurationSummary
	ChatGenerations    DurationSummary
}

// DurationSummary is a count/sum pair.
type DurationSummary struct {
	Count   uint64
	TotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	tasksCreated       atomic.Uint64
	tasksStatusUpdated atomic.Uint64
	tasksDeleted       atomic.Uint64
	loginsSucceeded    atomic.Uint64
	loginsFailed       atomic.Uint64
	tagFallbacks       atomic.Uint64
	chatFallbacks      atomic.Uint64
	tagCount           atomic.Uint64
	tagTotalNs         atomic.Int64
	chatCount          atomic.Uint64
	chatTotalNs        atomic.Int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		TasksCreated:       m.tasksCreated.Load(),
		TasksStatusUpdated: m.tasksStatusUpdated.Load(),
		TasksDeleted:       m.tasksDeleted.Load(),
		LoginsSucceeded:    m.loginsSucceeded.Load(),
		LoginsFailed:       m.loginsFailed.Load(),
		TagFallbacks:       m.tagFallbacks.Load(),
		ChatFallbacks:      m.chatFallbacks.Load(),
		TagGenerations:     DurationSummary{Count: m.tagCount.Load(), TotalNs: m.tagTotalNs.Load()},
		ChatGenerations:    DurationSummary{Count: m.chatCount.Load(), TotalNs: m.chatTotalNs.Load()},
	}
}

// IncTaskCreated increments the task created counter.
func (m *InMemoryRecorder) IncTaskCreated() { m.tasksCreated.Add(1) }

// IncTaskStatusUpdated increments the status update counter.
func (m *InMemoryRecorder) IncTaskStatusUpdated() { m.tasksStatusUpdated.Add(1) }

// IncTaskDeleted increments the task deleted counter.
func (m *InMemoryRecorder) IncTaskDeleted() { m.tasksDeleted.Add(1) }

// IncLogin counts a login attempt by outcome.
func (m *InMemoryRecorder) IncLogin(success bool) {
	if success {
		m.loginsSucceeded.Add(1)
		return
	}
	m.loginsFailed.Add(1)
}

// IncTagFallback counts tag generations replaced by the default tag.
func (m *InMemoryRecorder) IncTagFallback() { m.tagFallbacks.Add(1) }

// IncChatFallback counts chat answers replaced by the apology message.
func (m *InMemoryRecorder) IncChatFallback() { m.chatFallbacks.Add(1) }

// ObserveGeneration records the duration of one model call.
// Unknown kinds are ignored.
func (m *InMemoryRecorder) ObserveGeneration(kind string, d time.Duration) {
	switch kind {
	case GenerationTag:
		m.tagCount.Add(1)
		m.tagTotalNs.Add(d.Nanoseconds())
	case GenerationChat:
		m.chatCount.Add(1)
		m.chatTotalNs.Add(d.Nanoseconds())
	}
}
