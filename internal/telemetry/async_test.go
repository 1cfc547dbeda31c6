package telemetry

import (
	"context"
	"sync"
	"testing"
	"time"
)

// blockingMirror implements Emitter with an optional delay to exercise the timeout.
type blockingMirror struct {
	mu     sync.Mutex
	events []*Event
	delay  time.Duration
}

func (m *blockingMirror) Emit(ctx context.Context, event *Event) error {
	if m.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.delay):
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *blockingMirror) getEvents() []*Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.events
}

func TestEmitAsync_NilEmitter(t *testing.T) {
	// Should not panic
	EmitAsync(nil, context.Background(), testEvent(), &testLogger{})
}

func TestEmitAsync_NilEvent(t *testing.T) {
	mirror := &blockingMirror{}

	// Should not panic
	EmitAsync(mirror, context.Background(), nil, &testLogger{})

	// Give goroutine time to run (if it starts)
	time.Sleep(10 * time.Millisecond)

	if got := len(mirror.getEvents()); got != 0 {
		t.Errorf("expected 0 events, got %d", got)
	}
}

func TestEmitAsync_SuccessfulEmit(t *testing.T) {
	mirror := &blockingMirror{}
	ev := testEvent()

	EmitAsync(mirror, context.Background(), ev, &testLogger{})

	deadline := time.Now().Add(2 * time.Second)
	for len(mirror.getEvents()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	events := mirror.getEvents()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Data.BaseData.Name != "X" {
		t.Errorf("event name = %q, want %q", events[0].Data.BaseData.Name, "X")
	}
}

func TestEmitAsync_UsesBackgroundContext(t *testing.T) {
	mirror := &blockingMirror{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel the caller context immediately

	// Should still emit even though the caller context is cancelled
	EmitAsync(mirror, ctx, testEvent(), &testLogger{})

	deadline := time.Now().Add(2 * time.Second)
	for len(mirror.getEvents()) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(mirror.getEvents()); got != 1 {
		t.Errorf("expected 1 event (context.Background used), got %d", got)
	}
}

func TestEmitAsync_ConcurrentCallers(t *testing.T) {
	mirror := &blockingMirror{}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			EmitAsync(mirror, context.Background(), testEvent(), &testLogger{})
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for len(mirror.getEvents()) < 10 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := len(mirror.getEvents()); got != 10 {
		t.Errorf("expected 10 events, got %d", got)
	}
}
