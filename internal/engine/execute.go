package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/errs"
)

// Event is one notification published by a running task.
type Event struct {
	TaskID string
	Name   string
	Value  float64
}

// Emit delivers an event to the caller of Execute.
type Emit func(Event)

// Scheduler runs a graph to completion. It returns only when every task has
// finished or the run failed. Implementations call emit for notifications;
// events nobody watches are dropped.
type Scheduler interface {
	Run(ctx context.Context, g *Graph, emit Emit) error
}

// SchedulerFunc adapts a function to Scheduler.
type SchedulerFunc func(ctx context.Context, g *Graph, emit Emit) error

// Run implements Scheduler.
func (f SchedulerFunc) Run(ctx context.Context, g *Graph, emit Emit) error { return f(ctx, g, emit) }

type watchKey struct {
	task  string
	event string
}

// Result holds the notifications collected during one run.
type Result struct {
	values   map[watchKey][]float64
	Duration time.Duration
}

// Values returns the values emitted for event by t, in emission order.
func (r *Result) Values(t *Task, event string) []float64 {
	if r == nil || t == nil {
		return nil
	}
	return append([]float64(nil), r.values[watchKey{t.id, event}]...)
}

// Execute runs g once on s. The graph is consumed whether or not the run
// succeeds; a second call returns ErrGraphConsumed. Scheduler failures are
// reported as errs.EngineFailure.
func Execute(ctx context.Context, s Scheduler, g *Graph) (*Result, error) {
	const op = "engine.Execute"
	logger := ctxlog.FromContext(ctx)

	if !g.state.CompareAndSwap(stateOpen, stateRunning) {
		return nil, ErrGraphConsumed
	}
	defer g.state.Store(stateConsumed)

	if err := g.Validate(); err != nil {
		return nil, errs.E(errs.InvalidArgument, op, err)
	}

	res := &Result{values: make(map[watchKey][]float64, len(g.watches))}
	for _, w := range g.watches {
		res.values[watchKey{w.Task.id, w.Event}] = nil
	}

	var (
		mu     sync.Mutex
		closed bool
	)
	emit := func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			logger.Warn("Event emitted after run finished, dropping.", "task", ev.TaskID, "event", ev.Name)
			return
		}
		key := watchKey{ev.TaskID, ev.Name}
		vals, ok := res.values[key]
		if !ok {
			return
		}
		res.values[key] = append(vals, ev.Value)
	}

	logger.Debug("Running graph.", "tasks", g.Len(), "watches", len(g.watches))
	start := time.Now()
	err := s.Run(ctx, g, emit)
	res.Duration = time.Since(start)

	mu.Lock()
	closed = true
	mu.Unlock()

	if err != nil {
		return nil, errs.E(errs.EngineFailure, op, fmt.Errorf("after %s: %w", res.Duration.Round(time.Millisecond), err))
	}
	logger.Debug("Graph finished.", "duration", res.Duration)
	return res, nil
}
