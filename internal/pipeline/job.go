package pipeline

import (
	"path/filepath"
	"strings"

	"github.com/specialistvlad/tomoflow/internal/extpath"
	"github.com/specialistvlad/tomoflow/internal/plan"
)

// DefaultPattern is appended to an output that names a directory.
const DefaultPattern = "sino-%05i.tif"

// Job is the base configuration of a sinogram run. It is shared read-only by
// all passes.
type Job struct {
	Projections extpath.Spec
	// Darks and Flats are only used when both are set.
	Darks extpath.Spec
	Flats extpath.Spec
	// ProjectionStep reads every n-th projection. Zero is treated as 1.
	ProjectionStep int
	// RowStep is the row sub-sampling of every reader. Zero is treated as 1.
	RowStep int
	// Output is a filename pattern or a directory.
	Output string

	AbsorptionCorrect bool
	FixNaNAndInf      bool
}

// FlatCorrected reports whether passes merge darks and flats.
func (j Job) FlatCorrected() bool {
	return !j.Darks.IsZero() && !j.Flats.IsZero()
}

// NumProjections returns the number of projections each pass streams, which
// is also the number of sinogram rows per output file.
func (j Job) NumProjections() int {
	step := max(j.ProjectionStep, 1)
	return (j.Projections.Count + step - 1) / step
}

// Pattern returns the writer filename pattern.
func (j Job) Pattern() string {
	if strings.Contains(j.Output, "%") {
		return j.Output
	}
	return filepath.Join(j.Output, DefaultPattern)
}

// ForWindow derives the pass at index covering w.
func (j Job) ForWindow(index int, w plan.Window) Pass {
	return Pass{job: j, index: index, window: w}
}

// Pass is one immutable unit of execution.
type Pass struct {
	job    Job
	index  int
	window plan.Window
}

func (p Pass) Job() Job            { return p.job }
func (p Pass) Index() int          { return p.index }
func (p Pass) Window() plan.Window { return p.window }

// Append reports whether the writer appends to files left by earlier passes.
// Only the first pass creates them.
func (p Pass) Append() bool { return p.index > 0 }
