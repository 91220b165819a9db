// Package orchestrator runs stream tasks concurrently under per-task and
// batch deadlines and hands their results to the synthesis engine.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/fourfold/internal/conflict"
	"github.com/dusk-indust/fourfold/internal/logger"
	"github.com/dusk-indust/fourfold/internal/stream"
	"github.com/dusk-indust/fourfold/internal/synthesis"
	"github.com/dusk-indust/fourfold/internal/telemetry"
)

var (
	// ErrTaskTimeout marks a result substituted because the task exceeded its
	// own deadline.
	ErrTaskTimeout = errors.New("stream task timed out")

	// ErrBatchTimeout marks a result substituted because the whole batch
	// exceeded its deadline before the task settled.
	ErrBatchTimeout = errors.New("batch deadline exceeded")

	// ErrTaskPanic marks a result substituted because the task panicked.
	ErrTaskPanic = errors.New("stream task panicked")
)

const (
	DefaultPerTaskTimeout = 10 * time.Second
	DefaultTotalTimeout   = 30 * time.Second
	DefaultShareDelay     = time.Second
)

// Orchestrator runs stream tasks and synthesizes their results. It is safe
// for concurrent use; concurrent runs share the synthesis engine's conflict
// pattern table.
type Orchestrator struct {
	synth       *synthesis.Engine
	perTask     time.Duration
	total       time.Duration
	shareDelay  time.Duration
	coordinator Coordinator
	onProgress  func(ProgressEvent)
	reporter    *ProgressReporter
	log         *slog.Logger
	tracer      trace.Tracer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithTimeouts sets the default per-task and batch budgets. Non-positive
// values keep the defaults.
func WithTimeouts(perTask, total time.Duration) Option {
	return func(o *Orchestrator) {
		if perTask > 0 {
			o.perTask = perTask
		}
		if total > 0 {
			o.total = total
		}
	}
}

// WithShareDelay sets how long a run waits before sharing insights.
func WithShareDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.shareDelay = d }
}

// WithCoordinator replaces the InsightExchange. A nil coordinator disables
// insight sharing.
func WithCoordinator(c Coordinator) Option {
	return func(o *Orchestrator) { o.coordinator = c }
}

// WithProgress registers a callback invoked for every progress event. It is
// called from task goroutines and must not block.
func WithProgress(fn func(ProgressEvent)) Option {
	return func(o *Orchestrator) { o.onProgress = fn }
}

// WithReporter also publishes progress events to pr.
func WithReporter(pr *ProgressReporter) Option {
	return func(o *Orchestrator) { o.reporter = pr }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithTracer sets the tracer. Defaults to telemetry.Tracer().
func WithTracer(t trace.Tracer) Option {
	return func(o *Orchestrator) { o.tracer = t }
}

// New creates an Orchestrator that synthesizes with synth. A nil synth gets
// a default synthesis engine.
func New(synth *synthesis.Engine, opts ...Option) *Orchestrator {
	if synth == nil {
		synth = synthesis.NewEngine(nil)
	}
	o := &Orchestrator{
		synth:       synth,
		perTask:     DefaultPerTaskTimeout,
		total:       DefaultTotalTimeout,
		shareDelay:  DefaultShareDelay,
		coordinator: NewInsightExchange(),
		log:         slog.Default(),
		tracer:      telemetry.Tracer(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Conflicts returns the conflict engine whose pattern table the orchestrator
// updates after every run.
func (o *Orchestrator) Conflicts() *conflict.Engine {
	return o.synth.Conflicts()
}

// RunOption adjusts a single ExecuteStreams call.
type RunOption func(*runConfig)

type runConfig struct {
	total time.Duration
}

// WithTotalTimeout overrides the batch budget for one call.
func WithTotalTimeout(d time.Duration) RunOption {
	return func(rc *runConfig) {
		if d > 0 {
			rc.total = d
		}
	}
}

// ExecuteStreams runs tasks against p with the configured budgets and returns
// the synthesized result. It never returns an error and never waits past the
// batch budget; degraded outcomes are reported inside the result.
func (o *Orchestrator) ExecuteStreams(ctx context.Context, p stream.Problem, tasks []stream.Task, opts ...RunOption) synthesis.Result {
	rc := runConfig{total: o.total}
	for _, opt := range opts {
		opt(&rc)
	}
	return o.Run(ctx, p, tasks, o.perTask, rc.total)
}

// Run executes tasks concurrently, each bounded by perTask and all of them
// bounded by total, then synthesizes exactly len(tasks) results in input
// order. Non-positive budgets fall back to the orchestrator defaults.
func (o *Orchestrator) Run(ctx context.Context, p stream.Problem, tasks []stream.Task, perTask, total time.Duration) synthesis.Result {
	if perTask <= 0 {
		perTask = o.perTask
	}
	if total <= 0 {
		total = o.total
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{Component: "fourfold.orchestrator", ProblemID: p.ID})
	ctx, span := o.tracer.Start(ctx, "orchestrator.execute_streams", trace.WithAttributes(
		attribute.String("problem.id", p.ID),
		attribute.Int("streams.count", len(tasks)),
		attribute.Int64("timeout.per_task_ms", perTask.Milliseconds()),
		attribute.Int64("timeout.total_ms", total.Milliseconds()),
	))
	defer span.End()

	start := time.Now()
	results := o.execute(ctx, p, tasks, perTask, total)

	res := o.synth.Synthesize(results)
	res.Metadata.ProblemID = p.ID

	for _, c := range res.Conflicts {
		o.synth.Conflicts().TrackConflictPattern(c, resolvedBySynthesis(c))
	}

	span.SetAttributes(
		attribute.Int("conflicts.count", len(res.Conflicts)),
		attribute.Float64("confidence", res.Confidence),
		attribute.Float64("quality.overall", res.Quality.OverallScore),
	)
	o.log.InfoContext(ctx, "streams synthesized",
		"streams", len(tasks),
		"completed", res.Metadata.StatusCounts[stream.StatusCompleted],
		"conflicts", len(res.Conflicts),
		"confidence", res.Confidence,
		"duration", time.Since(start),
	)
	return res
}

// resolvedBySynthesis decides whether a conflict counts as resolved when its
// pattern is tracked. Low and medium conflicts are folded into the conclusion;
// high and critical ones are escalated to the reader.
func resolvedBySynthesis(c conflict.Conflict) bool {
	return c.Severity.Rank() < conflict.SeverityHigh.Rank()
}

// execute runs the per-task guards under the batch guard and returns one
// result per task, in input order.
func (o *Orchestrator) execute(ctx context.Context, p stream.Problem, tasks []stream.Task, perTask, total time.Duration) []stream.Result {
	if len(tasks) == 0 {
		return nil
	}

	start := time.Now()
	runCtx, stop := context.WithTimeout(ctx, total)
	defer stop()

	guards := make([]*guarded, len(tasks))
	for i, t := range tasks {
		guards[i] = &guarded{task: t, cell: newOutcome()}
		o.emit(ProgressEvent{ProblemID: p.ID, StreamID: t.ID(), Kind: t.Kind(), Status: stream.StatusPending})
	}

	g, gctx := errgroup.WithContext(runCtx)
	for _, gt := range guards {
		g.Go(func() error {
			o.guard(gctx, p, gt, perTask)
			return nil
		})
	}
	finished := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(finished)
	}()

	if o.coordinator != nil {
		share := time.AfterFunc(o.shareDelay, func() { o.share(runCtx, guards) })
		defer share.Stop()
	}

	select {
	case <-finished:
	case <-runCtx.Done():
	}
	if runCtx.Err() != nil {
		o.abandon(ctx, p, guards, time.Since(start))
	}

	results := make([]stream.Result, len(guards))
	for i, gt := range guards {
		// Every cell is settled by now; this call only establishes the read.
		gt.cell.settle(placeholderResult(gt.task, stream.StatusTimeout, ErrBatchTimeout, time.Since(start)), byBatchDeadline)
		results[i] = gt.cell.result
	}
	return results
}

// abandon settles every open cell with a placeholder once the batch deadline
// passed or the caller gave up, and cancels the tasks it settled.
func (o *Orchestrator) abandon(ctx context.Context, p stream.Problem, guards []*guarded, elapsed time.Duration) {
	status, by, cause := stream.StatusTimeout, byBatchDeadline, ErrBatchTimeout
	if err := ctx.Err(); err != nil {
		status, by, cause = stream.StatusCancelled, byCaller, err
	}
	for _, gt := range guards {
		placeholder := placeholderResult(gt.task, status, cause, elapsed)
		if !gt.cell.settle(placeholder, by) {
			continue
		}
		gt.cancel()
		o.emit(progressFor(p.ID, placeholder))
		o.log.WarnContext(ctx, "stream abandoned",
			"stream_id", gt.task.ID(), "status", status, "by", by, "elapsed", elapsed)
	}
}

// guard runs one task under its own deadline and settles its cell with the
// task's result, a failure, or a timeout placeholder.
func (o *Orchestrator) guard(ctx context.Context, p stream.Problem, gt *guarded, perTask time.Duration) {
	task := gt.task
	ctx = logger.WithLogFields(ctx, logger.LogFields{StreamID: task.ID()})
	ctx, span := o.tracer.Start(ctx, "orchestrator.stream", trace.WithAttributes(
		attribute.String("stream.id", task.ID()),
		attribute.String("stream.kind", string(task.Kind())),
	))
	defer span.End()

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type attempt struct {
		res stream.Result
		err error
	}
	done := make(chan attempt, 1)
	start := time.Now()

	o.emit(ProgressEvent{ProblemID: p.ID, StreamID: task.ID(), Kind: task.Kind(), Status: stream.StatusRunning})
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- attempt{err: fmt.Errorf("%w: %v", ErrTaskPanic, r)}
			}
		}()
		res, err := task.Process(taskCtx, p)
		done <- attempt{res: res, err: err}
	}()

	timer := time.NewTimer(perTask)
	defer timer.Stop()

	var res stream.Result
	var by settledBy
	select {
	case a := <-done:
		res, by = o.taskResult(ctx, task, a.res, a.err, time.Since(start)), byTask
	case <-timer.C:
		cancel()
		res, by = timeoutResult(task, perTask), byTaskTimeout
	case <-ctx.Done():
		// The batch guard settles the cell.
		span.SetAttributes(attribute.String("stream.status", "abandoned"))
		return
	}

	if !gt.cell.settle(res, by) {
		return
	}
	if by == byTaskTimeout {
		gt.cancel()
		o.log.WarnContext(ctx, "stream timed out", "timeout", perTask)
	}

	span.SetAttributes(
		attribute.String("stream.status", string(res.Status)),
		attribute.Float64("stream.confidence", res.Confidence),
	)
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	o.emit(progressFor(p.ID, res))
}

// taskResult normalizes what a task returned into a terminal result.
func (o *Orchestrator) taskResult(ctx context.Context, task stream.Task, res stream.Result, err error, elapsed time.Duration) stream.Result {
	if err != nil {
		status := stream.StatusFailed
		if errors.Is(err, stream.ErrCancelled) && ctx.Err() != nil {
			status = stream.StatusCancelled
		}
		o.log.DebugContext(ctx, "stream returned an error", "error", err, "status", status)
		return placeholderResult(task, status, err, elapsed)
	}

	if res.StreamID == "" {
		res.StreamID = task.ID()
	}
	if res.Kind == "" {
		res.Kind = task.Kind()
	}
	if !res.Status.IsTerminal() {
		res.Status = stream.StatusCompleted
	}
	if res.ProcessingTime == 0 {
		res.ProcessingTime = elapsed
	}
	return res
}

// share runs the coordinator against the tasks that have not settled yet.
// Errors and panics are logged and dropped.
func (o *Orchestrator) share(ctx context.Context, guards []*guarded) {
	if ctx.Err() != nil {
		return
	}
	var active []stream.Task
	for _, gt := range guards {
		if !gt.cell.settled() {
			active = append(active, gt.task)
		}
	}
	if len(active) == 0 {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			o.log.DebugContext(ctx, "insight sharing panicked", "panic", r)
		}
	}()
	if err := o.coordinator.ShareInsights(ctx, active); err != nil {
		o.log.DebugContext(ctx, "insight sharing failed", "error", err)
		return
	}
	o.log.DebugContext(ctx, "insights shared", "active", len(active))
}

func (o *Orchestrator) emit(ev ProgressEvent) {
	if o.onProgress != nil {
		o.onProgress(ev)
	}
	if o.reporter != nil {
		o.reporter.Emit(ev)
	}
}

func progressFor(problemID string, res stream.Result) ProgressEvent {
	ev := ProgressEvent{ProblemID: problemID, StreamID: res.StreamID, Kind: res.Kind, Status: res.Status}
	if res.Err != nil {
		ev.Message = res.Err.Error()
	}
	return ev
}

func timeoutResult(task stream.Task, perTask time.Duration) stream.Result {
	return stream.Result{
		StreamID:       task.ID(),
		Kind:           task.Kind(),
		Reasoning:      []string{fmt.Sprintf("Stream did not finish within %s and was cancelled", perTask)},
		Insights:       []stream.Insight{},
		ProcessingTime: perTask,
		Status:         stream.StatusTimeout,
		Err:            fmt.Errorf("stream %s: %w after %s", task.ID(), ErrTaskTimeout, perTask),
	}
}

func placeholderResult(task stream.Task, status stream.Status, cause error, elapsed time.Duration) stream.Result {
	var reason string
	switch status {
	case stream.StatusTimeout:
		reason = fmt.Sprintf("Batch deadline passed after %s before the stream finished", elapsed.Round(time.Millisecond))
	case stream.StatusCancelled:
		reason = "Run was cancelled before the stream finished"
	default:
		reason = "Stream failed: " + cause.Error()
	}
	return stream.Result{
		StreamID:       task.ID(),
		Kind:           task.Kind(),
		Reasoning:      []string{reason},
		Insights:       []stream.Insight{},
		ProcessingTime: elapsed,
		Status:         status,
		Err:            fmt.Errorf("stream %s: %w", task.ID(), cause),
	}
}
