// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file models the resolved settings of a run.
//

package config

import (
	"fmt"
	"strings"
)

// Settings is the fully resolved configuration.
type Settings struct {
	LogLevel        string
	LogFormat       string
	HealthcheckPort int

	Engine Engine
	Sinos  Sinos
	Center Center
}

// Engine selects and tunes the engine backend.
type Engine struct {
	// Launcher is the ufo-launch executable.
	Launcher string
	// DryRun prints the rendered pipelines instead of running them.
	DryRun bool
	// Args are passed to the launcher before the pipeline.
	Args []string
}

// Sinos configures sinogram generation. Paths use the extended
// path[:first[:last]] form.
type Sinos struct {
	Projections string
	Darks       string
	Flats       string
	Output      string

	Y              int
	Height         int
	YStep          int
	PassSize       int
	ProjectionStep int

	AbsorptionCorrect bool
	FixNaNAndInf      bool
}

// Center configures rotation center estimation.
type Center struct {
	Input       string
	First       int
	Last        int
	AngleStep   float64
	Projections int
}

// Defaults returns the settings used when nothing else is given.
func Defaults() Settings {
	return Settings{
		LogLevel:  "info",
		LogFormat: "json",
		Engine: Engine{
			Launcher: "ufo-launch",
		},
		Sinos: Sinos{
			Projections:       ".",
			Output:            ".",
			YStep:             1,
			ProjectionStep:    1,
			AbsorptionCorrect: true,
		},
		Center: Center{
			Input: ".",
		},
	}
}

// Validate checks the settings shared by all commands.
func (s *Settings) Validate() error {
	s.LogFormat = strings.ToLower(s.LogFormat)
	if s.LogFormat != "text" && s.LogFormat != "json" {
		return fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", s.LogFormat)
	}

	s.LogLevel = strings.ToLower(s.LogLevel)
	switch s.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", s.LogLevel)
	}

	if s.HealthcheckPort < 0 || s.HealthcheckPort > 65535 {
		return fmt.Errorf("invalid healthcheck-port %d", s.HealthcheckPort)
	}
	if s.Engine.Launcher == "" {
		return fmt.Errorf("engine launcher must not be empty")
	}
	return nil
}
