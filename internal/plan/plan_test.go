package plan

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specialistvlad/tomoflow/internal/errs"
)

func TestCompute_SteppedPlan(t *testing.T) {
	p, err := Compute(context.Background(), Request{Start: 10, Height: 100, Step: 2, PassSize: 16}, nil)
	require.NoError(t, err)

	want := Plan{
		{Offset: 10, Height: 32},
		{Offset: 42, Height: 32},
		{Offset: 74, Height: 32},
		{Offset: 106, Height: 4},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
}

func TestCompute_ExactMultipleHasNoEmptyTail(t *testing.T) {
	p, err := Compute(context.Background(), Request{Start: 0, Height: 100, Step: 1, PassSize: 50}, nil)
	require.NoError(t, err)
	assert.Equal(t, Plan{{0, 50}, {50, 50}}, p)
}

func TestCompute_NoPassSizeIsSingleWindow(t *testing.T) {
	p, err := Compute(context.Background(), Request{Start: 7, Height: 2041, Step: 3}, nil)
	require.NoError(t, err)
	assert.Equal(t, Plan{{Offset: 7, Height: 2041}}, p)

	// Identical to a stepped plan whose window covers the whole range.
	stepped, err := Compute(context.Background(), Request{Start: 7, Height: 2041, Step: 1, PassSize: 4096}, nil)
	require.NoError(t, err)
	assert.Equal(t, p, stepped)
}

func TestCompute_Properties(t *testing.T) {
	for start := 0; start < 5; start++ {
		for height := 1; height < 40; height += 3 {
			for step := 1; step <= 3; step++ {
				for passSize := 1; passSize <= 7; passSize++ {
					req := Request{Start: start, Height: height, Step: step, PassSize: passSize}
					p, err := Compute(context.Background(), req, nil)
					require.NoError(t, err, "%+v", req)

					require.NoError(t, p.Validate(), "%+v", req)
					assert.Equal(t, height, p.Total(), "%+v", req)
					assert.Equal(t, start, p[0].Offset, "%+v", req)
					assert.Equal(t, start+height, p[len(p)-1].End(), "%+v", req)
					for i, w := range p[:len(p)-1] {
						assert.Equal(t, step*passSize, w.Height, "window %d of %+v", i, req)
					}
					assert.LessOrEqual(t, p[len(p)-1].Height, step*passSize)
				}
			}
		}
	}
}

func TestCompute_ProbesHeightWhenUnset(t *testing.T) {
	calls := 0
	prober := HeightFunc(func(context.Context) (int, error) {
		calls++
		return 2048, nil
	})

	p, err := Compute(context.Background(), Request{Start: 48, PassSize: 1000}, prober)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, Plan{{48, 1000}, {1048, 1000}}, p)
}

func TestCompute_ProberNotUsedWhenHeightSet(t *testing.T) {
	prober := HeightFunc(func(context.Context) (int, error) {
		t.Fatal("prober must not be called")
		return 0, nil
	})
	_, err := Compute(context.Background(), Request{Height: 10}, prober)
	require.NoError(t, err)
}

func TestCompute_HugePassSizeIsSinglePass(t *testing.T) {
	tests := []struct {
		name string
		req  Request
	}{
		{"product wraps", Request{Height: 100, Step: 4, PassSize: math.MaxInt / 2}},
		{"max pass size", Request{Start: 3, Height: 100, Step: 1, PassSize: math.MaxInt}},
		{"just above range", Request{Height: 100, Step: 4, PassSize: 26}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Compute(context.Background(), tt.req, nil)
			require.NoError(t, err)
			assert.Equal(t, Plan{{Offset: tt.req.Start, Height: 100}}, p)
		})
	}
}

func TestCompute_Errors(t *testing.T) {
	probeErr := errors.New("unreadable frame")

	tests := []struct {
		name    string
		req     Request
		prober  HeightProber
		wantErr error
	}{
		{"negative start", Request{Start: -1, Height: 10}, nil, errs.InvalidArgument},
		{"negative pass size", Request{Height: 10, PassSize: -2}, nil, errs.InvalidArgument},
		{"no height no prober", Request{}, nil, errs.InvalidArgument},
		{"start beyond input", Request{Start: 100}, HeightFunc(func(context.Context) (int, error) { return 100, nil }), errs.InvalidArgument},
		{"range past max int", Request{Start: math.MaxInt - 5, Height: 10}, nil, errs.InvalidArgument},
		{"prober failure", Request{}, HeightFunc(func(context.Context) (int, error) { return 0, probeErr }), probeErr},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(context.Background(), tt.req, tt.prober)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPlan_Validate(t *testing.T) {
	assert.ErrorIs(t, Plan{}.Validate(), errs.InvalidArgument)
	assert.ErrorIs(t, Plan{{0, 10}, {12, 10}}.Validate(), errs.InvalidArgument)
	assert.ErrorIs(t, Plan{{0, 10}, {10, 0}}.Validate(), errs.InvalidArgument)
	assert.NoError(t, Plan{{0, 10}, {10, 3}}.Validate())
}
