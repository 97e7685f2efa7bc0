package parser

import (
	"errors"

	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/style"
	"github.com/awantoch/flowviz/utils"
	"gopkg.in/yaml.v3"
)

// ErrNoRenderableContent is returned when a document yields no steps.
var ErrNoRenderableContent = errors.New(constants.ErrNoRenderableContent)

// BuildGraph turns a parsed flow document into a FlowGraph. Top-level
// fields are visited in document order, which fixes the graph's insertion
// order. A nil table means the default style table.
func BuildGraph(root *yaml.Node, table *style.Table) (*model.FlowGraph, error) {
	if table == nil {
		table = style.Default()
	}
	g := model.NewFlowGraph()
	root = resolve(root)
	if root != nil && root.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(root.Content); i += 2 {
			addField(g, root.Content[i].Value, resolve(root.Content[i+1]), table)
		}
	}
	if g.Len() == 0 {
		return nil, ErrNoRenderableContent
	}
	utils.Debug("built flow graph %q: %d steps, %d skipped", g.Label, g.Len(), g.Skipped)
	return g, nil
}

func addField(g *model.FlowGraph, key string, v *yaml.Node, table *style.Table) {
	switch key {
	case "description":
		g.Description = scalarValue(v)
	case "label":
		g.Label = scalarValue(v)
	case "processType":
		g.ProcessType = scalarValue(v)
	case "status":
		g.Status = model.Status(scalarValue(v))
	case "start":
		g.SetStart(model.NewStartStep(targetRef(v, "connector")))
	case "variables":
		g.Variables = variables(v)
	default:
		kind := model.Kind(key)
		for _, el := range asSequence(v) {
			if step, ok := normalizeStep(kind, el, table); ok {
				g.Add(step)
			} else if el.Kind == yaml.MappingNode {
				g.Skipped++
			}
		}
	}
}

func variables(v *yaml.Node) []model.Variable {
	var out []model.Variable
	for _, el := range asSequence(v) {
		if el.Kind != yaml.MappingNode {
			continue
		}
		var vr model.Variable
		if err := el.Decode(&vr); err != nil {
			utils.Warn("skipping undecodable variable %q: %v", scalar(el, "name"), err)
			continue
		}
		out = append(out, vr)
	}
	return out
}

func scalarValue(v *yaml.Node) string {
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}
