// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"

	"github.com/specialistvlad/tomoflow/internal/errs"
	"github.com/specialistvlad/tomoflow/internal/executor"
	"github.com/specialistvlad/tomoflow/internal/extpath"
	"github.com/specialistvlad/tomoflow/internal/pipeline"
	"github.com/specialistvlad/tomoflow/internal/plan"
	"github.com/specialistvlad/tomoflow/internal/shape"
)

// RunSinos generates sinograms according to the sinos settings.
func (a *App) RunSinos(ctx context.Context) (report executor.Report, err error) {
	ctx = a.context(ctx)
	defer func() {
		a.metrics.ObserveRun("sinos", err)
		if err != nil {
			a.logger.Error("Sinogram generation failed.", "error", err, "completed_passes", len(report.Passes))
		}
	}()

	job, err := a.sinosJob()
	if err != nil {
		return executor.Report{}, err
	}

	s := a.settings.Sinos
	p, err := plan.Compute(ctx, plan.Request{
		Start:    s.Y,
		Height:   s.Height,
		Step:     s.YStep,
		PassSize: s.PassSize,
	}, shape.Prober{Frames: job.Projections})
	if err != nil {
		return executor.Report{}, err
	}

	exec := executor.New(a.assembler, a.scheduler, executor.WithMetrics(a.metrics))
	return exec.Run(ctx, p, job)
}

func (a *App) sinosJob() (pipeline.Job, error) {
	const op = "app.RunSinos"
	s := a.settings.Sinos

	if s.Output == "" {
		return pipeline.Job{}, errs.Errorf(errs.InvalidArgument, op, "output must not be empty")
	}
	if s.ProjectionStep < 0 {
		return pipeline.Job{}, errs.Errorf(errs.InvalidArgument, op, "projection step must not be negative, got %d", s.ProjectionStep)
	}

	projections, err := extpath.Resolve(s.Projections)
	if err != nil {
		return pipeline.Job{}, err
	}
	if projections.Count == 0 {
		return pipeline.Job{}, errs.Errorf(errs.InvalidArgument, op, "no projections selected by %q", s.Projections)
	}

	job := pipeline.Job{
		Projections:       projections,
		ProjectionStep:    s.ProjectionStep,
		RowStep:           s.YStep,
		Output:            s.Output,
		AbsorptionCorrect: s.AbsorptionCorrect,
		FixNaNAndInf:      s.FixNaNAndInf,
	}

	if s.Darks != "" && s.Flats != "" {
		if job.Darks, err = extpath.Resolve(s.Darks); err != nil {
			return pipeline.Job{}, err
		}
		if job.Flats, err = extpath.Resolve(s.Flats); err != nil {
			return pipeline.Job{}, err
		}
	} else if s.Darks != "" || s.Flats != "" {
		a.logger.Warn("Flat-field correction needs both darks and flats, skipping it.", "darks", s.Darks, "flats", s.Flats)
	}
	return job, nil
}
