// Package center estimates the axis of rotation from a stack of sinograms.
//
// One reader -> estimator graph is run; the estimator publishes one center
// value per sinogram and the mean of those values is the estimate.
package center

import (
	"context"
	"math"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/errs"
	"github.com/specialistvlad/tomoflow/internal/extpath"
	"github.com/specialistvlad/tomoflow/internal/metrics"
	"github.com/specialistvlad/tomoflow/internal/pipeline"
)

// DefaultLast is the exclusive end of the sinogram range when none is given.
const DefaultLast = 1000

// Request selects the sinograms and the angular sampling.
type Request struct {
	// Input is the resolved sinogram listing.
	Input extpath.Spec
	// First is the first sinogram to use.
	First int
	// Last is the exclusive end. Zero means DefaultLast, clamped to the
	// listing.
	Last int

	// Exactly one of AngleStep and Projections must be set.
	AngleStep   float64
	Projections int
}

// Result is the outcome of one estimation.
type Result struct {
	// Values are the per-sinogram centers in emission order.
	Values []float64
	Mean   float64
}

// Builder assembles the estimation graph. *pipeline.Assembler implements it.
type Builder interface {
	BuildCenter(ctx context.Context, job pipeline.CenterJob) (*engine.Graph, *engine.Task, error)
}

// Estimator runs center estimations.
type Estimator struct {
	builder   Builder
	scheduler engine.Scheduler
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// NewEstimator returns an Estimator. m may be nil.
func NewEstimator(b Builder, s engine.Scheduler, m *metrics.Metrics) *Estimator {
	return &Estimator{
		builder:   b,
		scheduler: s,
		metrics:   m,
		tracer:    otel.Tracer("github.com/specialistvlad/tomoflow/internal/center"),
	}
}

// AngleStep returns the angle between projections in radians.
func AngleStep(req Request) (float64, error) {
	const op = "center.AngleStep"
	switch {
	case req.AngleStep < 0 || req.Projections < 0:
		return 0, errs.Errorf(errs.InvalidArgument, op, "angle step and projection count must not be negative")
	case req.AngleStep > 0 && req.Projections > 0:
		return 0, errs.Errorf(errs.InvalidArgument, op, "angle step and projection count are mutually exclusive")
	case req.AngleStep > 0:
		return req.AngleStep, nil
	case req.Projections > 0:
		return math.Pi / float64(req.Projections), nil
	}
	return 0, errs.Errorf(errs.InvalidArgument, op, "one of angle step or projection count is required")
}

// Window narrows the listing to the sinograms to use.
func Window(req Request) (extpath.Spec, error) {
	last := req.Last
	if last == 0 {
		last = min(DefaultLast, len(req.Input.Files))
	}
	return req.Input.Slice(req.First, last)
}

// Estimate runs the estimator once and reduces its values to their mean. A
// run that yields no values fails with errs.EmptyResult.
func (e *Estimator) Estimate(ctx context.Context, req Request) (res Result, err error) {
	const op = "center.Estimate"

	angle, err := AngleStep(req)
	if err != nil {
		return Result{}, err
	}
	input, err := Window(req)
	if err != nil {
		return Result{}, err
	}

	ctx, span := e.tracer.Start(ctx, "center.estimate", trace.WithAttributes(
		attribute.String("input", input.String()),
		attribute.Float64("angle_step", angle),
	))
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "estimation failed")
		}
	}()

	logger := ctxlog.FromContext(ctx)
	logger.Info("Estimating center of rotation.", "input", input.String(), "sinograms", input.Count, "angle_step", angle)

	g, est, err := e.builder.BuildCenter(ctx, pipeline.CenterJob{Input: input, AngleStep: angle})
	if err != nil {
		return Result{}, err
	}
	if err := g.Watch(est, engine.CenterEvent); err != nil {
		return Result{}, err
	}

	out, err := engine.Execute(ctx, e.scheduler, g)
	if err != nil {
		return Result{}, err
	}

	values := out.Values(est, engine.CenterEvent)
	for _, v := range values {
		logger.Info("Calculated center.", "center", v)
	}
	if len(values) == 0 {
		return Result{}, errs.Errorf(errs.EmptyResult, op, "estimator produced no values for %s", input)
	}

	res = Result{Values: values, Mean: mean(values)}
	e.metrics.ObserveCenter(values)
	span.SetAttributes(attribute.Int("values", len(values)), attribute.Float64("mean", res.Mean))
	logger.Info("Mean center.", "mean", res.Mean, "values", len(values))
	return res, nil
}

func mean(values []float64) float64 {
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
