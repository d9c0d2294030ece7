// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package registry

import (
	"fmt"
	"sort"

	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/errs"
)

// Module is the interface that every engine backend must implement to be
// registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the plugin registered for each task kind.
type Registry struct {
	plugins map[engine.Kind]string
}

// New creates a registry and lets each module register its plugins.
func New(modules ...Module) *Registry {
	r := &Registry{plugins: make(map[engine.Kind]string)}
	for _, m := range modules {
		m.Register(r)
	}
	return r
}

// Register binds kind to plugin. Registering an unknown kind or the same kind
// twice is a programming error and panics.
func (r *Registry) Register(kind engine.Kind, plugin string) {
	if !kind.Valid() {
		panic(fmt.Sprintf("cannot register plugin '%s' for unknown kind '%s'", plugin, kind))
	}
	if existing, exists := r.plugins[kind]; exists {
		panic(fmt.Sprintf("kind '%s' already registered to plugin '%s'", kind, existing))
	}
	r.plugins[kind] = plugin
}

// Plugin returns the plugin registered for kind.
func (r *Registry) Plugin(kind engine.Kind) (string, bool) {
	p, ok := r.plugins[kind]
	return p, ok
}

// Kinds returns the registered kinds in sorted order.
func (r *Registry) Kinds() []engine.Kind {
	kinds := make([]engine.Kind, 0, len(r.plugins))
	for k := range r.plugins {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// Create instantiates a task of kind configured with cfg. It fails with
// errs.UnknownKind when no plugin is registered for kind and with
// errs.InvalidArgument when cfg is of the wrong type or invalid.
func (r *Registry) Create(kind engine.Kind, cfg engine.Config) (*engine.Task, error) {
	const op = "registry.Create"
	plugin, ok := r.plugins[kind]
	if !ok {
		return nil, errs.Errorf(errs.UnknownKind, op, "no plugin registered for %q", kind)
	}
	task, err := engine.NewTask(kind, plugin, cfg)
	if err != nil {
		return nil, errs.E(errs.InvalidArgument, op, err)
	}
	return task, nil
}
