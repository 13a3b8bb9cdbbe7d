package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Counters(t *testing.T) {
	m := NewInMemory()

	m.IncTaskCreated()
	m.IncTaskCreated()
	m.IncTaskStatusUpdated()
	m.IncTaskDeleted()
	m.IncLogin(true)
	m.IncLogin(false)
	m.IncLogin(false)
	m.IncTagFallback()
	m.IncChatFallback()
	m.ObserveGeneration(GenerationTag, 2*time.Millisecond)
	m.ObserveGeneration(GenerationChat, 3*time.Millisecond)
	m.ObserveGeneration("unknown", time.Second)

	snap := m.Snapshot()
	if snap.TasksCreated != 2 {
		t.Errorf("TasksCreated = %d, want 2", snap.TasksCreated)
	}
	if snap.TasksStatusUpdated != 1 || snap.TasksDeleted != 1 {
		t.Errorf("unexpected task counters: %+v", snap)
	}
	if snap.LoginsSucceeded != 1 || snap.LoginsFailed != 2 {
		t.Errorf("unexpected login counters: %+v", snap)
	}
	if snap.TagFallbacks != 1 || snap.ChatFallbacks != 1 {
		t.Errorf("unexpected fallback counters: %+v", snap)
	}
	if snap.TagGenerations.Count != 1 || snap.TagGenerations.TotalNs != int64(2*time.Millisecond) {
		t.Errorf("unexpected tag summary: %+v", snap.TagGenerations)
	}
	if snap.ChatGenerations.Count != 1 {
		t.Errorf("unexpected chat summary: %+v", snap.ChatGenerations)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	m := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncTaskCreated()
		}()
	}
	wg.Wait()

	if got := m.Snapshot().TasksCreated; got != 50 {
		t.Errorf("TasksCreated = %d, want 50", got)
	}
}
