// Package enginetest provides an in-memory engine backend for tests.
package enginetest

import (
	"context"
	"sync"

	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/registry"
)

// Module registers every task kind under a plugin named after the kind.
type Module struct{}

// Register implements registry.Module.
func (Module) Register(r *registry.Registry) {
	for _, k := range engine.Kinds {
		r.Register(k, string(k))
	}
}

// NewRegistry returns a registry populated by Module.
func NewRegistry() *registry.Registry {
	return registry.New(Module{})
}

// Scheduler records every graph it runs. It can fail chosen runs and emit a
// fixed series of values for every watched event.
type Scheduler struct {
	// Fail maps a zero-based run index to the error that run returns.
	Fail map[int]error
	// Values are emitted, in order, for every watch of every run.
	Values []float64
	// OnRun, if set, is called before the run completes.
	OnRun func(ctx context.Context, g *engine.Graph, emit engine.Emit) error

	mu   sync.Mutex
	runs []*engine.Graph
}

// Run implements engine.Scheduler.
func (s *Scheduler) Run(ctx context.Context, g *engine.Graph, emit engine.Emit) error {
	s.mu.Lock()
	index := len(s.runs)
	s.runs = append(s.runs, g)
	s.mu.Unlock()

	if err, ok := s.Fail[index]; ok {
		return err
	}
	for _, w := range g.Watches() {
		for _, v := range s.Values {
			emit(engine.Event{TaskID: w.Task.ID(), Name: w.Event, Value: v})
		}
	}
	if s.OnRun != nil {
		return s.OnRun(ctx, g, emit)
	}
	return ctx.Err()
}

// Runs returns the graphs run so far, in order.
func (s *Scheduler) Runs() []*engine.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*engine.Graph(nil), s.runs...)
}

// TasksOfKind returns the tasks of kind in g, in topological order.
func TasksOfKind(g *engine.Graph, kind engine.Kind) []*engine.Task {
	tasks, err := g.Tasks()
	if err != nil {
		return nil
	}
	var out []*engine.Task
	for _, t := range tasks {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}
	return out
}
