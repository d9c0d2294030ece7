package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/tomoflow/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

func mustTask(t *testing.T, cfg Config) *Task {
	t.Helper()
	task, err := NewTask(cfg.Kind(), string(cfg.Kind()), cfg)
	require.NoError(t, err)
	return task
}

func TestNewTask(t *testing.T) {
	_, err := NewTask(KindReader, "read", &WriterConfig{Filename: "a-%i"})
	assert.ErrorContains(t, err, `configuration is for kind "writer"`)

	_, err = NewTask(KindGenerator, "gen", &GeneratorConfig{})
	assert.Error(t, err)

	_, err = NewTask(KindGenerator, "gen", nil)
	assert.Error(t, err)

	task, err := NewTask(KindGenerator, "transpose-projections", &GeneratorConfig{Number: 7})
	require.NoError(t, err)
	assert.Equal(t, "", task.ID())
	assert.Equal(t, "transpose-projections", task.Plugin())
	assert.True(t, task.Params().GetAttr("number").Equals(cty.NumberIntVal(7)).True())
}

func TestGraphConnect(t *testing.T) {
	g := NewGraph()
	dark := mustTask(t, &ReaderConfig{Path: "/darks"})
	flat := mustTask(t, &ReaderConfig{Path: "/flats"})
	proj := mustTask(t, &ReaderConfig{Path: "/proj"})
	ffc := mustTask(t, &CorrectorConfig{})

	// Connected out of port order on purpose.
	require.NoError(t, g.ConnectPort(proj, ffc, 2))
	require.NoError(t, g.ConnectPort(dark, ffc, 0))
	require.NoError(t, g.ConnectPort(flat, ffc, 1))

	assert.Equal(t, "reader.0", proj.ID())
	assert.Equal(t, "corrector.0", ffc.ID())
	assert.Equal(t, "reader.1", dark.ID())
	assert.Equal(t, 4, g.Len())

	in := g.Inputs(ffc)
	require.Len(t, in, 3)
	assert.Same(t, dark, in[0].From)
	assert.Same(t, flat, in[1].From)
	assert.Same(t, proj, in[2].From)

	err := g.ConnectPort(dark, ffc, 2)
	assert.ErrorContains(t, err, "already fed")

	assert.Equal(t, []*Task{ffc}, g.Sinks())
	assert.Equal(t, []*Task{ffc}, g.Consumers(dark))
}

func TestGraphDefaultPort(t *testing.T) {
	g := NewGraph()
	a := mustTask(t, &ReaderConfig{Path: "/a"})
	b := mustTask(t, &ReaderConfig{Path: "/b"})
	gen := mustTask(t, &GeneratorConfig{Number: 1})

	require.NoError(t, g.Connect(a, gen))
	require.NoError(t, g.Connect(b, gen))

	in := g.Inputs(gen)
	require.Len(t, in, 2)
	assert.Equal(t, 0, in[0].Port)
	assert.Equal(t, 1, in[1].Port)
}

func TestTaskBelongsToOneGraph(t *testing.T) {
	r := mustTask(t, &ReaderConfig{Path: "/a"})
	w := mustTask(t, &WriterConfig{Filename: "o-%i.tif"})

	g1 := NewGraph()
	require.NoError(t, g1.Connect(r, w))

	g2 := NewGraph()
	w2 := mustTask(t, &WriterConfig{Filename: "p-%i.tif"})
	err := g2.Connect(r, w2)
	assert.ErrorIs(t, err, ErrForeignTask)
	assert.Nil(t, g2.Inputs(w))
	assert.Equal(t, 0, g2.Len())
}

func TestGraphTasksTopological(t *testing.T) {
	g := NewGraph()
	r := mustTask(t, &ReaderConfig{Path: "/a"})
	gen := mustTask(t, &GeneratorConfig{Number: 3})
	w := mustTask(t, &WriterConfig{Filename: "o-%i.tif"})

	require.NoError(t, g.Connect(gen, w))
	require.NoError(t, g.Connect(r, gen))

	tasks, err := g.Tasks()
	require.NoError(t, err)
	assert.Equal(t, []*Task{r, gen, w}, tasks)
}

func TestExecute(t *testing.T) {
	ctx := context.Background()

	build := func(t *testing.T) (*Graph, *Task) {
		g := NewGraph()
		r := mustTask(t, &ReaderConfig{Path: "/sinos"})
		est := mustTask(t, &EstimatorConfig{AngleStep: 0.1})
		require.NoError(t, g.Connect(r, est))
		require.NoError(t, g.Watch(est, CenterEvent))
		return g, est
	}

	t.Run("collects watched events in order", func(t *testing.T) {
		g, est := build(t)
		var runs int
		s := SchedulerFunc(func(_ context.Context, got *Graph, emit Emit) error {
			runs++
			assert.Same(t, g, got)
			emit(Event{TaskID: est.ID(), Name: CenterEvent, Value: 1.5})
			emit(Event{TaskID: est.ID(), Name: "progress", Value: 0.5})
			emit(Event{TaskID: "reader.0", Name: CenterEvent, Value: 99})
			emit(Event{TaskID: est.ID(), Name: CenterEvent, Value: 2.5})
			return nil
		})

		res, err := Execute(ctx, s, g)
		require.NoError(t, err)
		assert.Equal(t, 1, runs)
		assert.Equal(t, []float64{1.5, 2.5}, res.Values(est, CenterEvent))
		assert.Empty(t, res.Values(est, "progress"))
		assert.True(t, g.Consumed())
	})

	t.Run("second run is rejected", func(t *testing.T) {
		g, est := build(t)
		s := SchedulerFunc(func(context.Context, *Graph, Emit) error { return nil })

		_, err := Execute(ctx, s, g)
		require.NoError(t, err)

		_, err = Execute(ctx, s, g)
		assert.ErrorIs(t, err, ErrGraphConsumed)
		assert.ErrorIs(t, g.Watch(est, "other"), ErrGraphConsumed)
	})

	t.Run("scheduler failure is an engine failure", func(t *testing.T) {
		g, _ := build(t)
		boom := errors.New("plugin crashed")
		s := SchedulerFunc(func(context.Context, *Graph, Emit) error { return boom })

		_, err := Execute(ctx, s, g)
		assert.ErrorIs(t, err, errs.EngineFailure)
		assert.ErrorIs(t, err, boom)
		assert.True(t, g.Consumed())
	})

	t.Run("late events are dropped", func(t *testing.T) {
		g, est := build(t)
		var late Emit
		s := SchedulerFunc(func(_ context.Context, _ *Graph, emit Emit) error {
			late = emit
			return nil
		})

		res, err := Execute(ctx, s, g)
		require.NoError(t, err)
		late(Event{TaskID: est.ID(), Name: CenterEvent, Value: 3})
		assert.Empty(t, res.Values(est, CenterEvent))
	})

	t.Run("empty graph is invalid", func(t *testing.T) {
		s := SchedulerFunc(func(context.Context, *Graph, Emit) error { return nil })
		_, err := Execute(ctx, s, NewGraph())
		assert.ErrorIs(t, err, errs.InvalidArgument)
	})
}
