package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncTaskCreated()                                {}
func (n *NoopRecorder) IncTaskStatusUpdated()                          {}
func (n *NoopRecorder) IncTaskDeleted()                                {}
func (n *NoopRecorder) IncLogin(success bool)                          {}
func (n *NoopRecorder) IncTagFallback()                                {}
func (n *NoopRecorder) IncChatFallback()                               {}
func (n *NoopRecorder) ObserveGeneration(kind string, d time.Duration) {}
