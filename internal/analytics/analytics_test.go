package analytics

import (
	"testing"
	"time"
)

func TestAppendNeverBlocksWhenBufferIsFull(t *testing.T) {
	l := &Log{
		ch:   make(chan Event, 1),
		done: make(chan struct{}),
	}
	// no writer goroutine: the buffer fills immediately

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			l.Append(Event{Type: EventBookingCreated, RideID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("Append blocked on a full buffer")
	}
}

func TestCloseDrainsQueuedEvents(t *testing.T) {
	l := NewLog(16)
	for i := 0; i < 5; i++ {
		l.Append(Event{Type: EventRideCompleted, RideID: int64(i)})
	}

	closed := make(chan struct{})
	go func() {
		l.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(time.Second):
		t.Fatalf("Close did not drain and stop the writer")
	}

	// second Close is a no-op
	l.Close()
}
