package orchestrator

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/fourfold/internal/stream"
)

func TestOutcome_FirstWriterWins(t *testing.T) {
	o := newOutcome()
	assert.False(t, o.settled())

	assert.True(t, o.settle(stream.Result{StreamID: "first", Status: stream.StatusCompleted}, byTask))
	assert.False(t, o.settle(stream.Result{StreamID: "second", Status: stream.StatusTimeout}, byBatchDeadline))

	assert.True(t, o.settled())
	assert.Equal(t, "first", o.result.StreamID)
	assert.Equal(t, byTask, o.by)
}

func TestOutcome_ConcurrentWriters(t *testing.T) {
	o := newOutcome()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if o.settle(stream.Result{StreamID: string(rune('a' + i))}, byTask) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	require.True(t, o.settled())
	assert.NotEmpty(t, o.result.StreamID)
}

func TestGuarded_CancelOnce(t *testing.T) {
	m := &mockTask{id: "x"}
	g := &guarded{task: m, cell: newOutcome()}
	g.cancel()
	g.cancel()
	assert.Equal(t, int32(1), m.cancels.Load())
}

func TestSettledBy_String(t *testing.T) {
	assert.Equal(t, "task", byTask.String())
	assert.Equal(t, "task-timeout", byTaskTimeout.String())
	assert.Equal(t, "batch-deadline", byBatchDeadline.String())
	assert.Equal(t, "caller", byCaller.String())
	assert.Equal(t, "unsettled", settledBy(0).String())
}
