// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"context"
	"fmt"
	"strings"

	"github.com/specialistvlad/tomoflow/internal/ctxlog"
	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/errs"
)

// Validate performs a parity check between the registered plugins, the
// configuration schemas and the Go configuration types. Every kind in
// required must have a plugin.
func (r *Registry) Validate(ctx context.Context, required ...engine.Kind) error {
	var problems []string
	logger := ctxlog.FromContext(ctx)

	for _, kind := range required {
		if _, ok := r.plugins[kind]; !ok {
			problems = append(problems, fmt.Sprintf("kind '%s': no plugin registered", kind))
		}
	}

	for kind, plugin := range r.plugins {
		if err := engine.CheckSchema(kind); err != nil {
			problems = append(problems, fmt.Sprintf("kind '%s' (plugin '%s'): %v", kind, plugin, err))
		}
	}

	if len(problems) > 0 {
		return errs.Errorf(errs.UnknownKind, "registry.Validate", "registry validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	logger.Debug("Registry validation passed.", "kinds", len(r.plugins))
	return nil
}
