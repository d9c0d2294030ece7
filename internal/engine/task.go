package engine

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Task is one configured instance of a task kind. A task is created unowned
// and joins exactly one Graph on its first connection.
type Task struct {
	id     string
	kind   Kind
	plugin string
	config Config
	params cty.Value
	owner  *Graph
}

// NewTask validates cfg against kind and returns an unowned task backed by
// plugin. Registries call this; callers go through a registry.
func NewTask(kind Kind, plugin string, cfg Config) (*Task, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%s: nil configuration", kind)
	}
	if cfg.Kind() != kind {
		return nil, fmt.Errorf("%s: configuration is for kind %q", kind, cfg.Kind())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	params, err := Encode(cfg)
	if err != nil {
		return nil, err
	}
	return &Task{kind: kind, plugin: plugin, config: cfg, params: params}, nil
}

// ID returns the task's identifier within its graph, for example "reader.0".
// It is empty until the task joins a graph.
func (t *Task) ID() string { return t.id }

func (t *Task) Kind() Kind { return t.kind }

// Plugin returns the engine plugin name that implements the kind.
func (t *Task) Plugin() string { return t.plugin }

// Config returns the typed configuration. It must not be modified.
func (t *Task) Config() Config { return t.config }

// Params returns the configuration as a cty object.
func (t *Task) Params() cty.Value { return t.params }

func (t *Task) String() string {
	if t.id == "" {
		return fmt.Sprintf("%s(%s)", t.kind, t.plugin)
	}
	return t.id
}
