package executor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/metrics"
	"github.com/specialistvlad/tomoflow/internal/pipeline"
	"github.com/specialistvlad/tomoflow/internal/plan"
)

// GraphBuilder assembles the graph of one pass. *pipeline.Assembler
// implements it.
type GraphBuilder interface {
	BuildSinos(ctx context.Context, p pipeline.Pass) (*engine.Graph, error)
}

// Executor runs passes.
type Executor struct {
	builder   GraphBuilder
	scheduler engine.Scheduler
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option configures an Executor.
type Option func(*Executor)

// WithMetrics records pass metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Executor) { e.metrics = m }
}

// New returns an Executor that builds graphs with b and runs them on s.
func New(b GraphBuilder, s engine.Scheduler, opts ...Option) *Executor {
	e := &Executor{
		builder:   b,
		scheduler: s,
		tracer:    otel.Tracer("github.com/specialistvlad/tomoflow/internal/executor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PassReport describes one completed pass.
type PassReport struct {
	Index    int
	Window   plan.Window
	Append   bool
	Duration time.Duration
}

// Report lists the passes that completed, in order.
type Report struct {
	Passes []PassReport
}

// Rows returns the number of rows covered by completed passes.
func (r Report) Rows() int {
	rows := 0
	for _, p := range r.Passes {
		rows += p.Window.Height
	}
	return rows
}

// Run executes p for job. On failure the returned report holds the passes
// that completed before it. The error keeps the kind of its cause: scheduler
// failures are errs.EngineFailure, assembly failures keep the registry's kind.
func (e *Executor) Run(ctx context.Context, p plan.Plan, job pipeline.Job) (Report, error) {
	const op = "executor.Run"
	logger := ctxlog.FromContext(ctx)

	if err := p.Validate(); err != nil {
		return Report{}, err
	}

	report := Report{Passes: make([]PassReport, 0, len(p))}
	logger.Info("Starting sinogram generation.", "passes", len(p), "rows", p.Total(), "flat_corrected", job.FlatCorrected())

	for i, w := range p {
		pass := job.ForWindow(i, w)
		pr, err := e.runPass(ctx, pass, len(p))
		if err != nil {
			return report, fmt.Errorf("%s: pass %d/%d (rows %d-%d): %w", op, i+1, len(p), w.Offset, w.End(), err)
		}
		report.Passes = append(report.Passes, pr)
	}

	logger.Info("Sinogram generation finished.", "passes", len(report.Passes), "rows", report.Rows())
	return report, nil
}

func (e *Executor) runPass(ctx context.Context, pass pipeline.Pass, total int) (pr PassReport, err error) {
	w := pass.Window()
	ctx, span := e.tracer.Start(ctx, "executor.pass", trace.WithAttributes(
		attribute.Int("pass.index", pass.Index()),
		attribute.Int("pass.offset", w.Offset),
		attribute.Int("pass.height", w.Height),
		attribute.Bool("pass.append", pass.Append()),
	))
	defer span.End()

	ctx, logger := ctxlog.With(ctx, "pass", pass.Index()+1, "of", total)
	start := time.Now()
	defer func() {
		e.metrics.ObservePass(w.Height, time.Since(start), err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pass failed")
		}
	}()

	logger.Info("Pass started.", "offset", w.Offset, "height", w.Height, "append", pass.Append())

	g, err := e.builder.BuildSinos(ctx, pass)
	if err != nil {
		return PassReport{}, fmt.Errorf("assembling graph: %w", err)
	}
	if _, err := engine.Execute(ctx, e.scheduler, g); err != nil {
		return PassReport{}, err
	}

	pr = PassReport{Index: pass.Index(), Window: w, Append: pass.Append(), Duration: time.Since(start)}
	logger.Info("Pass finished.", "duration", pr.Duration)
	return pr, nil
}
