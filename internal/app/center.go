// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"fmt"

	"github.com/specialistvlad/tomoflow/internal/center"
	"github.com/specialistvlad/tomoflow/internal/extpath"
)

// RunCenter estimates the rotation center and prints every value followed by
// the mean.
func (a *App) RunCenter(ctx context.Context) (res center.Result, err error) {
	ctx = a.context(ctx)
	defer func() {
		a.metrics.ObserveRun("center", err)
		if err != nil {
			a.logger.Error("Center estimation failed.", "error", err)
		}
	}()

	c := a.settings.Center
	input, err := extpath.Resolve(c.Input)
	if err != nil {
		return center.Result{}, err
	}

	est := center.NewEstimator(a.assembler, a.scheduler, a.metrics)
	res, err = est.Estimate(ctx, center.Request{
		Input:       input,
		First:       c.First,
		Last:        c.Last,
		AngleStep:   c.AngleStep,
		Projections: c.Projections,
	})
	if err != nil {
		return center.Result{}, err
	}

	for _, v := range res.Values {
		fmt.Fprintf(a.outW, "Calculated center: %f\n", v)
	}
	fmt.Fprintf(a.outW, "Mean center: %f\n", res.Mean)
	return res, nil
}
