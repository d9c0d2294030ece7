// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/specialistvlad/tomoflow/internal/app"
	"github.com/specialistvlad/tomoflow/internal/config"
	"github.com/specialistvlad/tomoflow/internal/errs"
)

// version is set at build time via -ldflags.
var version = "dev"

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Execute runs the command line args. Results are written to stdout and logs
// to stderr. Any failure is returned as an *ExitError.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	root := NewRootCommand(stdout, stderr)
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr
	}
	// Anything else comes from cobra itself: unknown commands, bad flags.
	return &ExitError{Code: 2, Message: err.Error()}
}

// NewRootCommand builds the command tree.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	b := newBinder()

	root := &cobra.Command{
		Use:   "tomoflow",
		Short: "Tomographic preprocessing on top of the UFO dataflow engine",
		Long: "tomoflow turns projection stacks into sinograms in memory-bounded passes\n" +
			"and estimates the rotation center from the resulting sinograms.",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringSliceVarP(&b.configPaths, "config", "c", nil, "Path to a job file or a directory of .hcl job files. May be repeated.")
	bind(b, pf.StringVar, "log-level", func(s *config.Settings) *string { return &s.LogLevel }, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	bind(b, pf.StringVar, "log-format", func(s *config.Settings) *string { return &s.LogFormat }, "Log output format. Options: 'text' or 'json'.")
	bind(b, pf.IntVar, "healthcheck-port", func(s *config.Settings) *int { return &s.HealthcheckPort }, "Port for the HTTP health check and metrics server. 0 is disabled.")
	bind(b, pf.StringVar, "launcher", func(s *config.Settings) *string { return &s.Engine.Launcher }, "ufo-launch executable.")
	bind(b, pf.StringSliceVar, "launcher-arg", func(s *config.Settings) *[]string { return &s.Engine.Args }, "Extra argument passed to the launcher. May be repeated.")
	bind(b, pf.BoolVar, "dry-run", func(s *config.Settings) *bool { return &s.Engine.DryRun }, "Print the engine command lines instead of running them.")

	root.AddCommand(newSinosCommand(b, stdout, stderr), newCenterCommand(b, stdout, stderr))
	return root
}

func newSinosCommand(b *binder, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sinos",
		Short: "Generate sinograms from projections, optionally flat-field corrected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := b.newApp(cmd, stdout, stderr)
			if err != nil {
				return err
			}
			return exitError(a.Serve(cmd.Context(), func(ctx context.Context) error {
				_, err := a.RunSinos(ctx)
				return err
			}))
		},
	}

	f := cmd.Flags()
	bind(b, f.StringVar, "projections", func(s *config.Settings) *string { return &s.Sinos.Projections }, "Projections as path[:first[:last]].")
	bind(b, f.StringVar, "darks", func(s *config.Settings) *string { return &s.Sinos.Darks }, "Dark frames as path[:first[:last]].")
	bind(b, f.StringVar, "flats", func(s *config.Settings) *string { return &s.Sinos.Flats }, "Flat frames as path[:first[:last]].")
	bindP(b, f.StringVarP, "output", "o", func(s *config.Settings) *string { return &s.Sinos.Output }, "Output filename pattern or directory.")
	bind(b, f.IntVar, "y", func(s *config.Settings) *int { return &s.Sinos.Y }, "First detector row.")
	bind(b, f.IntVar, "height", func(s *config.Settings) *int { return &s.Sinos.Height }, "Number of rows. 0 reads it from the first projection.")
	bind(b, f.IntVar, "y-step", func(s *config.Settings) *int { return &s.Sinos.YStep }, "Row step.")
	bind(b, f.IntVar, "pass-size", func(s *config.Settings) *int { return &s.Sinos.PassSize }, "Rows per pass in y-step units. 0 processes everything in one pass.")
	bind(b, f.IntVar, "projection-step", func(s *config.Settings) *int { return &s.Sinos.ProjectionStep }, "Use every n-th projection.")
	bind(b, f.BoolVar, "absorption", func(s *config.Settings) *bool { return &s.Sinos.AbsorptionCorrect }, "Apply absorption correction after flat-field correction.")
	bind(b, f.BoolVar, "fix-nan", func(s *config.Settings) *bool { return &s.Sinos.FixNaNAndInf }, "Replace NaN and Inf values after flat-field correction.")
	return cmd
}

func newCenterCommand(b *binder, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "center",
		Short: "Estimate the center of rotation from sinograms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := b.newApp(cmd, stdout, stderr)
			if err != nil {
				return err
			}
			return exitError(a.Serve(cmd.Context(), func(ctx context.Context) error {
				_, err := a.RunCenter(ctx)
				return err
			}))
		},
	}

	f := cmd.Flags()
	bindP(b, f.StringVarP, "input", "i", func(s *config.Settings) *string { return &s.Center.Input }, "Directory with sinograms.")
	bindP(b, f.IntVarP, "first", "f", func(s *config.Settings) *int { return &s.Center.First }, "First sinogram to use.")
	bindP(b, f.IntVarP, "last", "l", func(s *config.Settings) *int { return &s.Center.Last }, "End of the sinogram range, exclusive. 0 means 1000 or the number of sinograms, whichever is smaller.")
	bindP(b, f.Float64VarP, "angle-step", "s", func(s *config.Settings) *float64 { return &s.Center.AngleStep }, "Angle step between projections in radians.")
	bindP(b, f.IntVarP, "num-projections", "p", func(s *config.Settings) *int { return &s.Center.Projections }, "Number of projections over 180 degrees.")
	cmd.MarkFlagsMutuallyExclusive("angle-step", "num-projections")
	return cmd
}

// binder collects flag values and replays the ones set on the command line
// over settings loaded from defaults and job files.
type binder struct {
	flags       config.Settings
	configPaths []string
	apply       map[string]func(*config.Settings)
}

func newBinder() *binder {
	return &binder{flags: config.Defaults(), apply: make(map[string]func(*config.Settings))}
}

// bind registers a flag whose default is the field's default and whose value,
// when set, overrides the field.
func bind[T any](b *binder, add func(*T, string, T, string), name string, field func(*config.Settings) *T, usage string) {
	p := field(&b.flags)
	add(p, name, *p, usage)
	b.apply[name] = func(s *config.Settings) { *field(s) = *field(&b.flags) }
}

// bindP is bind with a shorthand letter.
func bindP[T any](b *binder, add func(*T, string, string, T, string), name, shorthand string, field func(*config.Settings) *T, usage string) {
	p := field(&b.flags)
	add(p, name, shorthand, *p, usage)
	b.apply[name] = func(s *config.Settings) { *field(s) = *field(&b.flags) }
}

// settings resolves defaults < job files < explicitly set flags.
func (b *binder) settings(cmd *cobra.Command) (config.Settings, error) {
	s, err := config.Load(cmd.Context(), config.Defaults(), b.configPaths...)
	if err != nil {
		return config.Settings{}, err
	}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if apply, ok := b.apply[f.Name]; ok {
			apply(&s)
		}
	})
	return s, nil
}

func (b *binder) newApp(cmd *cobra.Command, stdout, stderr io.Writer) (*app.App, error) {
	s, err := b.settings(cmd)
	if err != nil {
		return nil, &ExitError{Code: 2, Message: err.Error()}
	}
	a, err := app.NewApp(stdout, stderr, s)
	if err != nil {
		return nil, exitError(err)
	}
	return a, nil
}

func exitError(err error) error {
	if err == nil {
		return nil
	}
	return &ExitError{Code: errs.ExitCode(err), Message: fmt.Sprintf("Error: %v", err)}
}
