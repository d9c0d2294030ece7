package pipeline

import (
	"context"
	"fmt"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/extpath"
	"github.com/specialistvlad/tomoflow/internal/plan"
)

// Corrector input ports.
const (
	PortDark       = 0
	PortFlat       = 1
	PortProjection = 2
)

// Factory creates configured tasks. *registry.Registry implements it.
type Factory interface {
	Create(kind engine.Kind, cfg engine.Config) (*engine.Task, error)
}

// Assembler builds graphs from tasks supplied by a Factory.
type Assembler struct {
	factory Factory
}

// NewAssembler returns an Assembler creating tasks through f.
func NewAssembler(f Factory) *Assembler {
	return &Assembler{factory: f}
}

// CenterJob describes one rotation-center estimation.
type CenterJob struct {
	// Input is the sinogram listing, already narrowed to the files to use.
	Input     extpath.Spec
	AngleStep float64
}

// BuildSinos returns a fresh, unexecuted graph for p.
func (a *Assembler) BuildSinos(ctx context.Context, p Pass) (*engine.Graph, error) {
	logger := ctxlog.FromContext(ctx)
	job := p.Job()
	n := job.NumProjections()
	g := engine.NewGraph()

	proj, err := a.reader(job.Projections, job.ProjectionStep, p.Window(), job.RowStep)
	if err != nil {
		return nil, err
	}
	gen, err := a.factory.Create(engine.KindGenerator, &engine.GeneratorConfig{Number: n})
	if err != nil {
		return nil, err
	}
	writer, err := a.factory.Create(engine.KindWriter, &engine.WriterConfig{
		Filename: job.Pattern(),
		Append:   p.Append(),
	})
	if err != nil {
		return nil, err
	}

	if job.FlatCorrected() {
		ffc, err := a.corrector(g, job, p.Window(), n)
		if err != nil {
			return nil, err
		}
		if err := g.ConnectPort(proj, ffc, PortProjection); err != nil {
			return nil, err
		}
		if err := g.Connect(ffc, gen); err != nil {
			return nil, err
		}
	} else if err := g.Connect(proj, gen); err != nil {
		return nil, err
	}

	if err := g.Connect(gen, writer); err != nil {
		return nil, err
	}

	logger.Debug("Sinogram graph assembled.",
		"pass", p.Index(), "tasks", g.Len(), "flat_corrected", job.FlatCorrected(),
		"projections", n, "append", p.Append())
	return g, nil
}

// corrector wires the dark and flat branches into a new corrector.
func (a *Assembler) corrector(g *engine.Graph, job Job, w plan.Window, n int) (*engine.Task, error) {
	ffc, err := a.factory.Create(engine.KindCorrector, &engine.CorrectorConfig{
		AbsorptionCorrect: job.AbsorptionCorrect,
		FixNaNAndInf:      job.FixNaNAndInf,
	})
	if err != nil {
		return nil, err
	}

	branches := []struct {
		frames extpath.Spec
		port   int
	}{
		{job.Darks, PortDark},
		{job.Flats, PortFlat},
	}
	for _, b := range branches {
		reader, err := a.reader(b.frames, 1, w, job.RowStep)
		if err != nil {
			return nil, err
		}
		avg, err := a.factory.Create(engine.KindAverager, &engine.AveragerConfig{NumGenerate: n})
		if err != nil {
			return nil, err
		}
		if err := g.Connect(reader, avg); err != nil {
			return nil, err
		}
		if err := g.ConnectPort(avg, ffc, b.port); err != nil {
			return nil, fmt.Errorf("corrector port %d: %w", b.port, err)
		}
	}
	return ffc, nil
}

func (a *Assembler) reader(frames extpath.Spec, step int, w plan.Window, rowStep int) (*engine.Task, error) {
	return a.factory.Create(engine.KindReader, &engine.ReaderConfig{
		Path:   frames.Dir,
		Start:  frames.First,
		Number: frames.Count,
		Step:   max(step, 1),
		Y:      w.Offset,
		Height: w.Height,
		YStep:  max(rowStep, 1),
	})
}

// BuildCenter returns a reader -> estimator graph for job together with the
// estimator, whose center event carries the per-slice results.
func (a *Assembler) BuildCenter(ctx context.Context, job CenterJob) (*engine.Graph, *engine.Task, error) {
	reader, err := a.factory.Create(engine.KindReader, &engine.ReaderConfig{
		Path:   job.Input.Dir,
		Start:  job.Input.First,
		Number: job.Input.Count,
		Step:   1,
	})
	if err != nil {
		return nil, nil, err
	}
	est, err := a.factory.Create(engine.KindEstimator, &engine.EstimatorConfig{AngleStep: job.AngleStep})
	if err != nil {
		return nil, nil, err
	}

	g := engine.NewGraph()
	if err := g.Connect(reader, est); err != nil {
		return nil, nil, err
	}
	ctxlog.FromContext(ctx).Debug("Center graph assembled.", "input", job.Input.String(), "angle_step", job.AngleStep)
	return g, est, nil
}
