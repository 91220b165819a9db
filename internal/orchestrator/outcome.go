package orchestrator

import (
	"sync"

	"github.com/dusk-indust/fourfold/internal/stream"
)

// settledBy records which path wrote an outcome.
type settledBy int

const (
	byTask settledBy = iota + 1
	byTaskTimeout
	byBatchDeadline
	byCaller
)

func (s settledBy) String() string {
	switch s {
	case byTask:
		return "task"
	case byTaskTimeout:
		return "task-timeout"
	case byBatchDeadline:
		return "batch-deadline"
	case byCaller:
		return "caller"
	default:
		return "unsettled"
	}
}

// outcome is a single-assignment cell holding one task's result. The first
// settle call wins; every later call is a no-op. Reads after any settle call
// has returned observe the winning write.
type outcome struct {
	once   sync.Once
	done   chan struct{}
	result stream.Result
	by     settledBy
}

func newOutcome() *outcome {
	return &outcome{done: make(chan struct{})}
}

// settle stores res unless the cell already holds a result. It reports
// whether this call won.
func (o *outcome) settle(res stream.Result, by settledBy) bool {
	won := false
	o.once.Do(func() {
		o.result, o.by, won = res, by, true
		close(o.done)
	})
	return won
}

// settled reports whether some writer already won.
func (o *outcome) settled() bool {
	select {
	case <-o.done:
		return true
	default:
		return false
	}
}

// guarded pairs a task with its outcome cell and a once-only cancel.
type guarded struct {
	task       stream.Task
	cell       *outcome
	cancelOnce sync.Once
}

// cancel calls the task's Cancel hook at most once.
func (g *guarded) cancel() {
	g.cancelOnce.Do(g.task.Cancel)
}
