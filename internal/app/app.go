// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/specialistvlad/tomoflow/internal/config"
	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/errs"
	"github.com/specialistvlad/tomoflow/internal/metrics"
	"github.com/specialistvlad/tomoflow/internal/pipeline"
	"github.com/specialistvlad/tomoflow/internal/registry"
	"github.com/specialistvlad/tomoflow/modules/ufolaunch"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	settings  config.Settings
	runID     string
	registry  *registry.Registry
	scheduler engine.Scheduler
	assembler *pipeline.Assembler
	metrics   *metrics.Metrics
}

// Option customizes an App, mainly for tests.
type Option func(*options)

type options struct {
	modules   []registry.Module
	scheduler engine.Scheduler
}

// WithModules replaces the compiled-in engine backends.
func WithModules(modules ...registry.Module) Option {
	return func(o *options) { o.modules = modules }
}

// WithScheduler replaces the ufo-launch scheduler.
func WithScheduler(s engine.Scheduler) Option {
	return func(o *options) { o.scheduler = s }
}

// NewApp is the constructor for the main application. Results are written to
// outW and logs to logW.
func NewApp(outW, logW io.Writer, settings config.Settings, opts ...Option) (*App, error) {
	if err := settings.Validate(); err != nil {
		return nil, errs.E(errs.InvalidArgument, "app.NewApp", err)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if len(o.modules) == 0 {
		o.modules = coreModules
	}
	if o.scheduler == nil {
		o.scheduler = ufolaunch.NewScheduler(ufolaunch.Options{
			Launcher: settings.Engine.Launcher,
			Args:     settings.Engine.Args,
			DryRun:   settings.Engine.DryRun,
			Out:      outW,
		})
	}

	runID := uuid.NewString()
	logger := newLogger(settings.LogLevel, settings.LogFormat, logW).With("run_id", runID)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New(o.modules...)
	for _, kind := range reg.Kinds() {
		plugin, _ := reg.Plugin(kind)
		logger.Debug("Engine plugin registered.", "kind", kind, "plugin", plugin)
	}
	if err := reg.Validate(ctx, engine.Kinds...); err != nil {
		return nil, fmt.Errorf("invalid engine registry: %w", err)
	}

	return &App{
		outW:      outW,
		logger:    logger,
		settings:  settings,
		runID:     runID,
		registry:  reg,
		scheduler: o.scheduler,
		assembler: pipeline.NewAssembler(reg),
		metrics:   metrics.New(),
	}, nil
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry { return a.registry }

// RunID identifies this invocation in logs.
func (a *App) RunID() string { return a.runID }

// Settings returns the validated settings.
func (a *App) Settings() config.Settings { return a.settings }

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
