package engine

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/specialistvlad/tomoflow/internal/dag"
)

var (
	// ErrGraphConsumed is returned when a graph is executed a second time.
	ErrGraphConsumed = errors.New("graph already executed")
	// ErrForeignTask is returned when a task owned by another graph is
	// connected.
	ErrForeignTask = errors.New("task belongs to another graph")
)

const (
	stateOpen int32 = iota
	stateRunning
	stateConsumed
)

// Graph is a single-use DAG of tasks. Edges feed the output of one task into
// a numbered input port of another.
type Graph struct {
	dag     *dag.Graph
	tasks   map[string]*Task
	counts  map[Kind]int
	watches []Watch
	state   atomic.Int32
}

// Input is one incoming edge of a task.
type Input struct {
	From *Task
	Port int
}

// Watch subscribes to a named notification of a task.
type Watch struct {
	Task  *Task
	Event string
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		dag:    dag.New(),
		tasks:  make(map[string]*Task),
		counts: make(map[Kind]int),
	}
}

// Connect feeds src into the lowest free input port of dst.
func (g *Graph) Connect(src, dst *Task) error {
	return g.ConnectPort(src, dst, dag.DefaultPort)
}

// ConnectPort feeds src into input port of dst.
func (g *Graph) ConnectPort(src, dst *Task, port int) error {
	if err := g.writable(); err != nil {
		return err
	}
	if src == nil || dst == nil {
		return errors.New("connect: nil task")
	}
	if err := g.adopt(src); err != nil {
		return err
	}
	if err := g.adopt(dst); err != nil {
		return err
	}
	if _, err := g.dag.AddEdge(src.id, dst.id, port); err != nil {
		return fmt.Errorf("connect %s -> %s: %w", src, dst, err)
	}
	return nil
}

// Watch subscribes to event on t. Values the scheduler emits for it are
// returned by Result.Values.
func (g *Graph) Watch(t *Task, event string) error {
	if err := g.writable(); err != nil {
		return err
	}
	if event == "" {
		return errors.New("watch: empty event name")
	}
	if err := g.adopt(t); err != nil {
		return err
	}
	for _, w := range g.watches {
		if w.Task == t && w.Event == event {
			return nil
		}
	}
	g.watches = append(g.watches, Watch{Task: t, Event: event})
	return nil
}

// Len returns the number of tasks.
func (g *Graph) Len() int { return g.dag.Len() }

// Tasks returns the tasks in topological order.
func (g *Graph) Tasks() ([]*Task, error) {
	ids, err := g.dag.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	return g.lookup(ids), nil
}

// Inputs returns the incoming edges of t ordered by port.
func (g *Graph) Inputs(t *Task) []Input {
	if t == nil || t.owner != g {
		return nil
	}
	edges, _ := g.dag.Inputs(t.id)
	in := make([]Input, 0, len(edges))
	for _, e := range edges {
		in = append(in, Input{From: g.tasks[e.From], Port: e.Port})
	}
	return in
}

// Consumers returns the tasks fed by t.
func (g *Graph) Consumers(t *Task) []*Task {
	if t == nil || t.owner != g {
		return nil
	}
	ids, _ := g.dag.Dependents(t.id)
	return g.lookup(ids)
}

// Sinks returns the tasks whose output nothing consumes.
func (g *Graph) Sinks() []*Task { return g.lookup(g.dag.Sinks()) }

// Watches returns the registered subscriptions in registration order.
func (g *Graph) Watches() []Watch { return append([]Watch(nil), g.watches...) }

// Consumed reports whether the graph has been executed.
func (g *Graph) Consumed() bool { return g.state.Load() != stateOpen }

// Validate checks that the graph is non-empty and acyclic.
func (g *Graph) Validate() error {
	if len(g.tasks) == 0 {
		return errors.New("graph has no tasks")
	}
	return g.dag.DetectCycles()
}

func (g *Graph) writable() error {
	if g.Consumed() {
		return ErrGraphConsumed
	}
	return nil
}

func (g *Graph) adopt(t *Task) error {
	if t == nil {
		return errors.New("nil task")
	}
	switch t.owner {
	case g:
		return nil
	case nil:
	default:
		return fmt.Errorf("%w: %s", ErrForeignTask, t)
	}
	t.id = fmt.Sprintf("%s.%d", t.kind, g.counts[t.kind])
	g.counts[t.kind]++
	t.owner = g
	g.tasks[t.id] = t
	g.dag.AddNode(t.id)
	return nil
}

func (g *Graph) lookup(ids []string) []*Task {
	out := make([]*Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, g.tasks[id])
	}
	return out
}
