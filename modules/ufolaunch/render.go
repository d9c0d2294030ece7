package ufolaunch

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/zclconf/go-cty/cty"

	"github.com/specialistvlad/tomoflow/internal/engine"
)

// ErrUnsupportedGraph is returned for graphs the pipeline syntax cannot
// express.
var ErrUnsupportedGraph = errors.New("graph not expressible as a ufo-launch pipeline")

// propertyNames renames parameters whose plugin property differs from the
// hyphenated parameter name.
var propertyNames = map[engine.Kind]map[string]string{
	engine.KindAverager: {"num_generate": "number"},
}

// Render returns the pipeline tokens for g.
func Render(g *engine.Graph) ([]string, error) {
	tasks, err := g.Tasks()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		if n := len(g.Consumers(t)); n > 1 {
			return nil, fmt.Errorf("%w: %s feeds %d tasks", ErrUnsupportedGraph, t, n)
		}
	}
	sinks := g.Sinks()
	if len(sinks) != 1 {
		return nil, fmt.Errorf("%w: %d sinks", ErrUnsupportedGraph, len(sinks))
	}
	return chain(g, sinks[0])
}

// chain renders t preceded by everything upstream of it.
func chain(g *engine.Graph, t *engine.Task) ([]string, error) {
	self, err := node(t)
	if err != nil {
		return nil, err
	}

	inputs := g.Inputs(t)
	var tokens []string
	switch len(inputs) {
	case 0:
		return self, nil
	case 1:
		if inputs[0].Port != 0 {
			return nil, fmt.Errorf("%w: %s has a single input on port %d", ErrUnsupportedGraph, t, inputs[0].Port)
		}
		up, err := chain(g, inputs[0].From)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, up...)
	default:
		tokens = append(tokens, "[")
		for i, in := range inputs {
			if in.Port != i {
				return nil, fmt.Errorf("%w: %s input ports are not contiguous", ErrUnsupportedGraph, t)
			}
			if i > 0 {
				tokens = append(tokens, ",")
			}
			up, err := chain(g, in.From)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, up...)
		}
		tokens = append(tokens, "]")
	}
	tokens = append(tokens, "!")
	return append(tokens, self...), nil
}

// node renders the plugin name and its non-default properties.
func node(t *engine.Task) ([]string, error) {
	params := t.Params()
	names := make([]string, 0, len(params.Type().AttributeTypes()))
	for name := range params.Type().AttributeTypes() {
		names = append(names, name)
	}
	sort.Strings(names)

	tokens := []string{t.Plugin()}
	for _, name := range names {
		value, ok, err := format(params.GetAttr(name))
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", t, name, err)
		}
		if !ok {
			continue
		}
		tokens = append(tokens, property(t.Kind(), name)+"="+value)
	}
	return tokens, nil
}

func property(kind engine.Kind, name string) string {
	if renamed, ok := propertyNames[kind][name]; ok {
		return renamed
	}
	return strings.ReplaceAll(name, "_", "-")
}

// format renders v. Zero values are skipped so the plugin default applies.
func format(v cty.Value) (string, bool, error) {
	if v.IsNull() || !v.IsKnown() {
		return "", false, nil
	}
	switch v.Type() {
	case cty.String:
		s := v.AsString()
		return s, s != "", nil
	case cty.Bool:
		return "true", v.True(), nil
	case cty.Number:
		f := v.AsBigFloat()
		return f.Text('g', -1), f.Sign() != 0, nil
	}
	return "", false, fmt.Errorf("unsupported parameter type %s", v.Type().FriendlyName())
}
