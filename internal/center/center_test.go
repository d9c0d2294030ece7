package center

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/enginetest"
	"github.com/specialistvlad/tomoflow/internal/errs"
	"github.com/specialistvlad/tomoflow/internal/extpath"
	"github.com/specialistvlad/tomoflow/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listing(n int) extpath.Spec {
	return extpath.Spec{Dir: "/sinos", Count: n, Files: make([]string, n)}
}

func newEstimator(s engine.Scheduler) *Estimator {
	return NewEstimator(pipeline.NewAssembler(enginetest.NewRegistry()), s, nil)
}

func TestAngleStep(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		want    float64
		wantErr bool
	}{
		{name: "explicit step", req: Request{AngleStep: 0.01}, want: 0.01},
		{name: "from projections", req: Request{Projections: 1500}, want: math.Pi / 1500},
		{name: "both", req: Request{AngleStep: 0.01, Projections: 1500}, wantErr: true},
		{name: "neither", req: Request{}, wantErr: true},
		{name: "negative", req: Request{Projections: -3}, wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AngleStep(tc.req)
			if tc.wantErr {
				assert.ErrorIs(t, err, errs.InvalidArgument)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.want, got, 1e-15)
		})
	}
}

func TestWindow(t *testing.T) {
	got, err := Window(Request{Input: listing(2048)})
	require.NoError(t, err)
	assert.Equal(t, 0, got.First)
	assert.Equal(t, DefaultLast, got.Count)

	got, err = Window(Request{Input: listing(300), First: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, got.First)
	assert.Equal(t, 290, got.Count)

	_, err = Window(Request{Input: listing(300), Last: 400})
	assert.ErrorIs(t, err, errs.InvalidArgument)
}

func TestEstimate(t *testing.T) {
	sched := &enginetest.Scheduler{Values: []float64{1020, 1022, 1024}}
	e := newEstimator(sched)

	res, err := e.Estimate(context.Background(), Request{Input: listing(1500), First: 100, Last: 400, Projections: 1500})
	require.NoError(t, err)

	assert.Equal(t, []float64{1020, 1022, 1024}, res.Values)
	assert.InDelta(t, 1022.0, res.Mean, 1e-9)

	runs := sched.Runs()
	require.Len(t, runs, 1)
	g := runs[0]
	assert.True(t, g.Consumed())

	est := enginetest.TasksOfKind(g, engine.KindEstimator)[0]
	assert.InDelta(t, math.Pi/1500, est.Config().(*engine.EstimatorConfig).AngleStep, 1e-15)

	r := enginetest.TasksOfKind(g, engine.KindReader)[0].Config().(*engine.ReaderConfig)
	assert.Equal(t, 100, r.Start)
	assert.Equal(t, 300, r.Number)

	watches := g.Watches()
	require.Len(t, watches, 1)
	assert.Equal(t, engine.CenterEvent, watches[0].Event)
}

func TestEstimate_SingleValue(t *testing.T) {
	e := newEstimator(&enginetest.Scheduler{Values: []float64{987.25}})

	res, err := e.Estimate(context.Background(), Request{Input: listing(10), AngleStep: 0.1})
	require.NoError(t, err)
	assert.Equal(t, 987.25, res.Mean)
}

func TestEstimate_EmptyResult(t *testing.T) {
	e := newEstimator(&enginetest.Scheduler{})

	_, err := e.Estimate(context.Background(), Request{Input: listing(10), AngleStep: 0.1})
	assert.ErrorIs(t, err, errs.EmptyResult)
}

func TestEstimate_EngineFailure(t *testing.T) {
	boom := errors.New("estimator crashed")
	e := newEstimator(&enginetest.Scheduler{Fail: map[int]error{0: boom}, Values: []float64{1}})

	_, err := e.Estimate(context.Background(), Request{Input: listing(10), AngleStep: 0.1})
	assert.ErrorIs(t, err, errs.EngineFailure)
	assert.ErrorIs(t, err, boom)
}

func TestEstimate_InvalidArgumentBuildsNothing(t *testing.T) {
	sched := &enginetest.Scheduler{}
	e := newEstimator(sched)

	_, err := e.Estimate(context.Background(), Request{Input: listing(10)})
	assert.ErrorIs(t, err, errs.InvalidArgument)
	assert.Empty(t, sched.Runs())
}
