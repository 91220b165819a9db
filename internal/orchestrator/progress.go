package orchestrator

import (
	"fmt"
	"sync"

	"github.com/dusk-indust/fourfold/internal/stream"
)

// ProgressEvent is emitted each time a stream changes state during a run.
type ProgressEvent struct {
	ProblemID string
	StreamID  string
	Kind      stream.Kind
	Status    stream.Status
	Message   string
}

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	mu     sync.Mutex
	closed bool
	ch     chan ProgressEvent
}

// NewProgressReporter creates a ProgressReporter with a buffered channel of size 64.
func NewProgressReporter() *ProgressReporter {
	return &ProgressReporter{
		ch: make(chan ProgressEvent, 64),
	}
}

// Emit sends a progress event in a non-blocking fashion.
// If the channel is full or closed, the event is silently dropped.
func (pr *ProgressReporter) Emit(event ProgressEvent) {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if pr.closed {
		return
	}
	select {
	case pr.ch <- event:
	default:
		// Drop the event if the channel is full.
	}
}

// Subscribe returns a read-only channel for consuming progress events.
func (pr *ProgressReporter) Subscribe() <-chan ProgressEvent {
	return pr.ch
}

// Close closes the progress event channel. Later calls are no-ops.
func (pr *ProgressReporter) Close() {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	if !pr.closed {
		pr.closed = true
		close(pr.ch)
	}
}

// FormatProgress formats a ProgressEvent as a human-readable status line.
func FormatProgress(event ProgressEvent) string {
	switch event.Status {
	case stream.StatusPending:
		return fmt.Sprintf("  ○ %s (pending)", event.StreamID)
	case stream.StatusRunning:
		return fmt.Sprintf("  ● %s...", event.StreamID)
	case stream.StatusCompleted:
		return fmt.Sprintf("  ✓ %s complete", event.StreamID)
	case stream.StatusFailed:
		return fmt.Sprintf("  ✗ %s failed: %s", event.StreamID, event.Message)
	case stream.StatusTimeout:
		return fmt.Sprintf("  ⧗ %s timed out: %s", event.StreamID, event.Message)
	case stream.StatusCancelled:
		return fmt.Sprintf("  ⊘ %s cancelled", event.StreamID)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.StreamID)
	}
}

// FormatRunHeader formats the header printed before a run.
// Returns: "[{problemID}] Running {n} streams"
func FormatRunHeader(problemID string, n int) string {
	return fmt.Sprintf("[%s] Running %d streams", problemID, n)
}
