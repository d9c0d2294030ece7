package errs

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKindAndCause(t *testing.T) {
	err := E(NotFound, "extpath.Resolve", fs.ErrNotExist)

	assert.ErrorIs(t, err, NotFound)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, InvalidArgument)
	assert.Equal(t, "extpath.Resolve: not found: file does not exist", err.Error())
}

func TestError_SurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("pass 3: %w", E(EngineFailure, "executor.Run", errors.New("boom")))

	assert.ErrorIs(t, err, EngineFailure)
	var target *Error
	assert.ErrorAs(t, err, &target)
	assert.Equal(t, "executor.Run", target.Op)
}

func TestError_NilCause(t *testing.T) {
	err := E(EmptyResult, "center.Estimate", nil)
	assert.Equal(t, "center.Estimate: empty result", err.Error())
	assert.ErrorIs(t, err, EmptyResult)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("x"), 1},
		{"invalid", E(InvalidArgument, "op", nil), 2},
		{"unknown kind", E(UnknownKind, "op", nil), 2},
		{"not found", E(NotFound, "op", nil), 3},
		{"engine", fmt.Errorf("wrapped: %w", E(EngineFailure, "op", nil)), 4},
		{"empty", Errorf(EmptyResult, "op", "no values from %d rows", 0), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}
