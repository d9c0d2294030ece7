// Package ufolaunch runs engine graphs with the ufo-launch command line tool.
//
// A graph is rendered into the launcher's pipeline syntax: tasks separated by
// "!", and fan-in written as a bracketed, comma separated list of upstream
// chains in input port order:
//
//	ufo-launch [read path=darks ! average, read path=flats ! average, read path=proj] ! flat-field-correct ! transpose-projections number=1500 ! write filename=sino-%05i.tif
//
// The launcher exposes no task notifications, so graphs with watches are
// rejected.
package ufolaunch

import (
	"github.com/specialistvlad/tomoflow/internal/engine"
	"github.com/specialistvlad/tomoflow/internal/registry"
)

// Plugins maps each task kind to the ufo-filters plugin implementing it.
var Plugins = map[engine.Kind]string{
	engine.KindReader:    "read",
	engine.KindAverager:  "average",
	engine.KindCorrector: "flat-field-correct",
	engine.KindGenerator: "transpose-projections",
	engine.KindWriter:    "write",
	engine.KindEstimator: "center-of-rotation",
}

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the plugins with the registry.
func (m *Module) Register(r *registry.Registry) {
	for _, kind := range engine.Kinds {
		r.Register(kind, Plugins[kind])
	}
}
