// Package plan splits a row range into bounded-size passes so that the
// memory footprint of each pass is fixed regardless of the volume height.
package plan

import (
	"context"
	"fmt"
	"math"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/errs"
)

// Window is one pass over a contiguous block of rows.
type Window struct {
	Offset int
	Height int
}

// End returns the exclusive end row.
func (w Window) End() int { return w.Offset + w.Height }

// Plan is an ordered, contiguous, non-overlapping partition of a row range.
type Plan []Window

// Total returns the sum of the window heights.
func (p Plan) Total() int {
	total := 0
	for _, w := range p {
		total += w.Height
	}
	return total
}

// Validate checks that windows are non-empty and contiguous.
func (p Plan) Validate() error {
	if len(p) == 0 {
		return errs.Errorf(errs.InvalidArgument, "plan.Validate", "empty plan")
	}
	for i, w := range p {
		if w.Height <= 0 {
			return errs.Errorf(errs.InvalidArgument, "plan.Validate", "window %d has height %d", i, w.Height)
		}
		if i > 0 && p[i-1].End() != w.Offset {
			return errs.Errorf(errs.InvalidArgument, "plan.Validate",
				"window %d starts at row %d, previous ends at %d", i, w.Offset, p[i-1].End())
		}
	}
	return nil
}

// Request describes the rows to process.
type Request struct {
	// Start is the first row.
	Start int
	// Height is the number of rows. Zero means "up to the available height".
	Height int
	// Step is the row sub-sampling multiplier. Zero is treated as 1.
	Step int
	// PassSize is the number of rows per pass in step units. Zero means a
	// single pass.
	PassSize int
}

// HeightProber reports the number of rows available in the input.
type HeightProber interface {
	AvailableHeight(ctx context.Context) (int, error)
}

// HeightFunc adapts a function to HeightProber.
type HeightFunc func(ctx context.Context) (int, error)

// AvailableHeight implements HeightProber.
func (f HeightFunc) AvailableHeight(ctx context.Context) (int, error) { return f(ctx) }

// Compute builds the plan for req. The prober is only consulted when
// req.Height is zero and may be nil otherwise.
func Compute(ctx context.Context, req Request, prober HeightProber) (Plan, error) {
	const op = "plan.Compute"
	logger := ctxlog.FromContext(ctx)

	if req.Step == 0 {
		req.Step = 1
	}
	if req.Start < 0 || req.Height < 0 || req.Step < 0 || req.PassSize < 0 {
		return nil, errs.Errorf(errs.InvalidArgument, op, "negative value in %+v", req)
	}

	if req.Height == 0 {
		if prober == nil {
			return nil, errs.Errorf(errs.InvalidArgument, op, "height not set and no shape prober available")
		}
		available, err := prober.AvailableHeight(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: probing input height: %w", op, err)
		}
		req.Height = available - req.Start
		logger.Debug("Height derived from input shape.", "available", available, "height", req.Height)
	}
	if req.Height <= 0 {
		return nil, errs.Errorf(errs.InvalidArgument, op, "no rows to process (start=%d, height=%d)", req.Start, req.Height)
	}
	if req.Start > math.MaxInt-req.Height {
		return nil, errs.Errorf(errs.InvalidArgument, op, "row range overflows (start=%d, height=%d)", req.Start, req.Height)
	}

	// A pass larger than the range is a single pass; comparing before
	// multiplying keeps Step*PassSize from overflowing.
	window := req.Height
	if req.PassSize > 0 && req.PassSize <= req.Height/req.Step {
		window = req.Step * req.PassSize
	}

	end := req.Start + req.Height
	var bounds []int
	for b := req.Start; b < end; b += window {
		bounds = append(bounds, b)
	}
	bounds = append(bounds, end)

	p := make(Plan, 0, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		p = append(p, Window{Offset: bounds[i], Height: bounds[i+1] - bounds[i]})
	}

	logger.Debug("Pass plan computed.", "passes", len(p), "start", req.Start, "height", req.Height, "window", window)
	return p, nil
}
