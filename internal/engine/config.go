package engine

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"
)

// Config is the typed configuration of one task kind. Implementations are
// pointers to the structs below; the cty tags name the engine parameters.
type Config interface {
	Kind() Kind
	Validate() error
}

// ReaderConfig configures a reader over a sorted directory listing.
type ReaderConfig struct {
	Path   string `cty:"path"`
	Start  int    `cty:"start"`
	Number int    `cty:"number"`
	Step   int    `cty:"step"`
	Y      int    `cty:"y"`
	Height int    `cty:"height"`
	YStep  int    `cty:"y_step"`
}

// AveragerConfig configures an averager that broadcasts its result
// NumGenerate times.
type AveragerConfig struct {
	NumGenerate int `cty:"num_generate"`
}

// CorrectorConfig configures flat-field correction. Inputs: port 0 dark
// average, port 1 flat average, port 2 projections.
type CorrectorConfig struct {
	AbsorptionCorrect bool `cty:"absorption_correct"`
	FixNaNAndInf      bool `cty:"fix_nan_and_inf"`
}

// GeneratorConfig configures the sinogram generator.
type GeneratorConfig struct {
	Number int `cty:"number"`
}

// WriterConfig configures the output writer. Filename carries a printf-style
// sequence placeholder.
type WriterConfig struct {
	Filename string `cty:"filename"`
	Append   bool   `cty:"append"`
}

// EstimatorConfig configures the rotation-center estimator.
type EstimatorConfig struct {
	AngleStep float64 `cty:"angle_step"`
}

func (*ReaderConfig) Kind() Kind    { return KindReader }
func (*AveragerConfig) Kind() Kind  { return KindAverager }
func (*CorrectorConfig) Kind() Kind { return KindCorrector }
func (*GeneratorConfig) Kind() Kind { return KindGenerator }
func (*WriterConfig) Kind() Kind    { return KindWriter }
func (*EstimatorConfig) Kind() Kind { return KindEstimator }

func (c *ReaderConfig) Validate() error {
	if c.Path == "" {
		return errors.New("reader: path is required")
	}
	for name, v := range map[string]int{
		"start": c.Start, "number": c.Number, "step": c.Step,
		"y": c.Y, "height": c.Height, "y_step": c.YStep,
	} {
		if v < 0 {
			return fmt.Errorf("reader: %s must not be negative, got %d", name, v)
		}
	}
	return nil
}

func (c *AveragerConfig) Validate() error {
	if c.NumGenerate <= 0 {
		return fmt.Errorf("averager: num_generate must be positive, got %d", c.NumGenerate)
	}
	return nil
}

func (*CorrectorConfig) Validate() error { return nil }

func (c *GeneratorConfig) Validate() error {
	if c.Number <= 0 {
		return fmt.Errorf("generator: number must be positive, got %d", c.Number)
	}
	return nil
}

func (c *WriterConfig) Validate() error {
	if !strings.Contains(c.Filename, "%") {
		return fmt.Errorf("writer: filename %q has no sequence placeholder", c.Filename)
	}
	return nil
}

func (c *EstimatorConfig) Validate() error {
	if !(c.AngleStep > 0) {
		return fmt.Errorf("estimator: angle_step must be positive, got %v", c.AngleStep)
	}
	return nil
}

// schemas holds the cty object type of each kind's parameters.
var schemas = map[Kind]cty.Type{
	KindReader: cty.Object(map[string]cty.Type{
		"path":   cty.String,
		"start":  cty.Number,
		"number": cty.Number,
		"step":   cty.Number,
		"y":      cty.Number,
		"height": cty.Number,
		"y_step": cty.Number,
	}),
	KindAverager: cty.Object(map[string]cty.Type{
		"num_generate": cty.Number,
	}),
	KindCorrector: cty.Object(map[string]cty.Type{
		"absorption_correct": cty.Bool,
		"fix_nan_and_inf":    cty.Bool,
	}),
	KindGenerator: cty.Object(map[string]cty.Type{
		"number": cty.Number,
	}),
	KindWriter: cty.Object(map[string]cty.Type{
		"filename": cty.String,
		"append":   cty.Bool,
	}),
	KindEstimator: cty.Object(map[string]cty.Type{
		"angle_step": cty.Number,
	}),
}

// NewConfig returns a zero configuration for kind.
func NewConfig(kind Kind) (Config, error) {
	switch kind {
	case KindReader:
		return &ReaderConfig{}, nil
	case KindAverager:
		return &AveragerConfig{}, nil
	case KindCorrector:
		return &CorrectorConfig{}, nil
	case KindGenerator:
		return &GeneratorConfig{}, nil
	case KindWriter:
		return &WriterConfig{}, nil
	case KindEstimator:
		return &EstimatorConfig{}, nil
	}
	return nil, fmt.Errorf("no configuration type for kind %q", kind)
}

// Encode converts cfg into its cty object form.
func Encode(cfg Config) (cty.Value, error) {
	schema, ok := schemas[cfg.Kind()]
	if !ok {
		return cty.NilVal, fmt.Errorf("no schema for kind %q", cfg.Kind())
	}
	v, err := gocty.ToCtyValue(cfg, schema)
	if err != nil {
		return cty.NilVal, fmt.Errorf("encoding %s configuration: %w", cfg.Kind(), err)
	}
	return v, nil
}

// CheckSchema verifies that the Go configuration type of kind implies exactly
// the declared schema.
func CheckSchema(kind Kind) error {
	schema, ok := schemas[kind]
	if !ok {
		return fmt.Errorf("no schema for kind %q", kind)
	}
	cfg, err := NewConfig(kind)
	if err != nil {
		return err
	}
	implied, err := gocty.ImpliedType(reflect.ValueOf(cfg).Elem().Interface())
	if err != nil {
		return fmt.Errorf("%s: could not imply cty type from %T: %w", kind, cfg, err)
	}
	if !implied.Equals(schema) {
		return fmt.Errorf("%s: schema %s does not match %T (%s)",
			kind, schema.FriendlyName(), cfg, implied.FriendlyName())
	}
	return nil
}
