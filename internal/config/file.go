// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file decodes HCL job files and layers them over Settings.
//

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/fsutil"
)

// Extension is the suffix of job files.
const Extension = ".hcl"

// File is one decoded job file. Absent blocks and attributes are nil.
type File struct {
	Path    string
	Logging *LoggingBlock `hcl:"logging,block"`
	Server  *ServerBlock  `hcl:"server,block"`
	Engine  *EngineBlock  `hcl:"engine,block"`
	Sinos   *SinosBlock   `hcl:"sinos,block"`
	Center  *CenterBlock  `hcl:"center,block"`
}

type LoggingBlock struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}

type ServerBlock struct {
	HealthcheckPort *int `hcl:"healthcheck_port,optional"`
}

type EngineBlock struct {
	Launcher *string  `hcl:"launcher,optional"`
	DryRun   *bool    `hcl:"dry_run,optional"`
	Args     []string `hcl:"args,optional"`
}

type SinosBlock struct {
	Projections       *string `hcl:"projections,optional"`
	Darks             *string `hcl:"darks,optional"`
	Flats             *string `hcl:"flats,optional"`
	Output            *string `hcl:"output,optional"`
	Y                 *int    `hcl:"y,optional"`
	Height            *int    `hcl:"height,optional"`
	YStep             *int    `hcl:"y_step,optional"`
	PassSize          *int    `hcl:"pass_size,optional"`
	ProjectionStep    *int    `hcl:"projection_step,optional"`
	AbsorptionCorrect *bool   `hcl:"absorption_correct,optional"`
	FixNaNAndInf      *bool   `hcl:"fix_nan_and_inf,optional"`
}

type CenterBlock struct {
	Input       *string  `hcl:"input,optional"`
	First       *int     `hcl:"first,optional"`
	Last        *int     `hcl:"last,optional"`
	AngleStep   *float64 `hcl:"angle_step,optional"`
	Projections *int     `hcl:"num_projections,optional"`
}

// ResolvePath returns the job files at path: the file itself, or every .hcl
// file below a directory in lexical order.
func ResolvePath(ctx context.Context, path string) ([]string, error) {
	logger := ctxlog.FromContext(ctx)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config path not found: %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing path %s: %w", path, err)
	}

	if !info.IsDir() && filepath.Ext(path) != Extension {
		return nil, fmt.Errorf("specified file is not an %s file: %s", Extension, path)
	}
	files, err := fsutil.FindFilesByExtension(path, Extension)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	logger.Debug("Resolved config path.", "path", path, "files", len(files))
	return files, nil
}

// DecodeFile parses and decodes a single job file.
func DecodeFile(ctx context.Context, filePath string) (*File, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding job file.", "path", filePath)

	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCLFile(filePath)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file %s: %w", filePath, diags)
	}

	f := &File{Path: filePath}
	diags = gohcl.DecodeBody(hclFile.Body, nil, f)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL file %s: %w", filePath, diags)
	}
	return f, nil
}

// Load decodes every job file found at paths and layers them over base in
// order.
func Load(ctx context.Context, base Settings, paths ...string) (Settings, error) {
	logger := ctxlog.FromContext(ctx)
	s := base
	for _, p := range paths {
		files, err := ResolvePath(ctx, p)
		if err != nil {
			return Settings{}, err
		}
		if len(files) == 0 {
			logger.Warn("No job files found at the specified path.", "path", p)
		}
		for _, file := range files {
			f, err := DecodeFile(ctx, file)
			if err != nil {
				return Settings{}, err
			}
			f.ApplyTo(&s)
		}
	}
	return s, nil
}

// ApplyTo overrides the attributes of s that f sets.
func (f *File) ApplyTo(s *Settings) {
	if b := f.Logging; b != nil {
		set(&s.LogLevel, b.Level)
		set(&s.LogFormat, b.Format)
	}
	if b := f.Server; b != nil {
		set(&s.HealthcheckPort, b.HealthcheckPort)
	}
	if b := f.Engine; b != nil {
		set(&s.Engine.Launcher, b.Launcher)
		set(&s.Engine.DryRun, b.DryRun)
		if b.Args != nil {
			s.Engine.Args = append([]string(nil), b.Args...)
		}
	}
	if b := f.Sinos; b != nil {
		set(&s.Sinos.Projections, b.Projections)
		set(&s.Sinos.Darks, b.Darks)
		set(&s.Sinos.Flats, b.Flats)
		set(&s.Sinos.Output, b.Output)
		set(&s.Sinos.Y, b.Y)
		set(&s.Sinos.Height, b.Height)
		set(&s.Sinos.YStep, b.YStep)
		set(&s.Sinos.PassSize, b.PassSize)
		set(&s.Sinos.ProjectionStep, b.ProjectionStep)
		set(&s.Sinos.AbsorptionCorrect, b.AbsorptionCorrect)
		set(&s.Sinos.FixNaNAndInf, b.FixNaNAndInf)
	}
	if b := f.Center; b != nil {
		set(&s.Center.Input, b.Input)
		set(&s.Center.First, b.First)
		set(&s.Center.Last, b.Last)
		set(&s.Center.AngleStep, b.AngleStep)
		set(&s.Center.Projections, b.Projections)
	}
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
