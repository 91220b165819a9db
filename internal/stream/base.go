package stream

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// ErrCancelled is returned by Process when the task was cancelled before it
// finished.
var ErrCancelled = errors.New("stream cancelled")

// Compile-time interface checks.
var (
	_ InsightSource = (*Base)(nil)
	_ InsightSink   = (*Base)(nil)
)

// ProcessFunc is implemented by each concrete stream. It receives the running
// Base so it can report progress and poll for cancellation between steps.
type ProcessFunc func(ctx context.Context, p Problem, b *Base) (Result, error)

// Base provides the lifecycle shared by all streams: status transitions,
// progress, idempotent cancellation and the insight inbox. Concrete streams
// embed *Base and supply a ProcessFunc.
type Base struct {
	id      string
	kind    Kind
	delay   time.Duration
	process ProcessFunc

	mu       sync.Mutex
	status   Status
	shared   []Insight
	received []Insight

	progress  atomic.Uint64 // math.Float64bits
	cancelled atomic.Bool
	stop      chan struct{}
	stopOnce  sync.Once
}

// NewBase creates a Base in the pending state. delay is an artificial pause
// taken between steps; zero disables it.
func NewBase(id string, kind Kind, delay time.Duration, process ProcessFunc) *Base {
	if id == "" {
		id = string(kind)
	}
	return &Base{
		id:      id,
		kind:    kind,
		delay:   delay,
		process: process,
		status:  StatusPending,
		stop:    make(chan struct{}),
	}
}

// ID returns the stream identifier.
func (b *Base) ID() string { return b.id }

// Kind returns the stream kind.
func (b *Base) Kind() Kind { return b.kind }

// Status returns the current lifecycle state.
func (b *Base) Status() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

// Progress returns a value between 0 and 1.
func (b *Base) Progress() float64 {
	return math.Float64frombits(b.progress.Load())
}

// Cancel marks the stream cancelled. Calling it repeatedly, or after the
// stream finished, has no further effect.
func (b *Base) Cancel() {
	b.stopOnce.Do(func() {
		b.cancelled.Store(true)
		close(b.stop)
	})
}

// Cancelled reports whether Cancel has been called.
func (b *Base) Cancelled() bool {
	return b.cancelled.Load()
}

// Process runs the stream's ProcessFunc through the shared lifecycle.
func (b *Base) Process(ctx context.Context, p Problem) (Result, error) {
	start := time.Now()

	if err := p.Validate(); err != nil {
		b.transition(StatusFailed)
		return b.stamp(Result{Status: StatusFailed, Err: err}, start), err
	}
	if !b.transition(StatusRunning) {
		err := fmt.Errorf("%s: cannot start from status %s", b.id, b.Status())
		return b.stamp(Result{Status: StatusFailed, Err: err}, start), err
	}

	res, err := b.process(ctx, p, b)
	res = b.stamp(res, start)

	switch {
	case b.Cancelled() || ctx.Err() != nil:
		cause := ErrCancelled
		if ctxErr := ctx.Err(); ctxErr != nil {
			cause = fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
		}
		res.Status, res.Err = StatusCancelled, cause
		b.transition(StatusCancelled)
		return res, cause
	case err != nil:
		res.Status, res.Err = StatusFailed, err
		b.transition(StatusFailed)
		return res, err
	}

	res.Status = StatusCompleted
	b.setProgress(1)
	b.transition(StatusCompleted)
	return res, nil
}

// Step records progress and returns ErrCancelled once the stream has been
// cancelled or ctx is done. When a delay is configured it waits for it first.
func (b *Base) Step(ctx context.Context, progress float64) error {
	if b.delay > 0 {
		timer := time.NewTimer(b.delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
		case <-b.stop:
			timer.Stop()
		}
	}
	if b.Cancelled() {
		return ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	b.setProgress(progress)
	return nil
}

// Publish makes insights visible to other running streams.
func (b *Base) Publish(insights ...Insight) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.shared = append(b.shared, insights...)
}

// SharedInsights returns a copy of the published insights.
func (b *Base) SharedInsights() []Insight {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Insight(nil), b.shared...)
}

// ReceiveInsights stores insights shared by other streams. Insights arriving
// after the stream reached a terminal state are dropped.
func (b *Base) ReceiveInsights(insights []Insight) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status.IsTerminal() {
		return
	}
	b.received = append(b.received, insights...)
}

// Received returns a copy of the insights shared with this stream so far.
func (b *Base) Received() []Insight {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Insight(nil), b.received...)
}

// transition moves to next if allowed. Terminal states are final and running
// may only be entered from pending.
func (b *Base) transition(next Status) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.status.IsTerminal() {
		return false
	}
	if next == StatusRunning && b.status != StatusPending {
		return false
	}
	b.status = next
	return true
}

func (b *Base) setProgress(v float64) {
	b.progress.Store(math.Float64bits(math.Max(0, math.Min(1, v))))
}

func (b *Base) stamp(res Result, start time.Time) Result {
	res.StreamID = b.id
	res.Kind = b.kind
	if res.ProcessingTime == 0 {
		res.ProcessingTime = time.Since(start)
	}
	return res
}
