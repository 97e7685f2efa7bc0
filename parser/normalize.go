package parser

import (
	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/style"
	"gopkg.in/yaml.v3"
)

// resolve follows YAML aliases.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	return n
}

// asSequence undoes the single-element elision of the source format: a
// sequence yields its items, anything else is a one-element sequence.
func asSequence(n *yaml.Node) []*yaml.Node {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind == yaml.SequenceNode {
		out := make([]*yaml.Node, 0, len(n.Content))
		for _, item := range n.Content {
			out = append(out, resolve(item))
		}
		return out
	}
	return []*yaml.Node{n}
}

// field returns the value of key in mapping n.
func field(n *yaml.Node, key string) *yaml.Node {
	n = resolve(n)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return resolve(n.Content[i+1])
		}
	}
	return nil
}

// scalar returns the scalar value of key in mapping n, or "".
func scalar(n *yaml.Node, key string) string {
	v := field(n, key)
	if v == nil || v.Kind != yaml.ScalarNode {
		return ""
	}
	return v.Value
}

// connector returns the connector stored under key, nil when absent.
func connector(n *yaml.Node, key string) *model.Connector {
	v := field(n, key)
	if v == nil || v.Kind != yaml.MappingNode {
		return nil
	}
	var c model.Connector
	if err := v.Decode(&c); err != nil {
		return nil
	}
	return &c
}

// targetRef returns the target of the connector under key, "" when absent.
func targetRef(n *yaml.Node, key string) string {
	c := connector(n, key)
	if c == nil {
		return ""
	}
	return c.TargetReference
}

// normalizeStep converts one section element into a step. It reports false
// for unnamed elements and for kinds the style table does not know.
func normalizeStep(kind model.Kind, el *yaml.Node, table *style.Table) (model.Step, bool) {
	if el == nil || el.Kind != yaml.MappingNode {
		return nil, false
	}
	name := scalar(el, "name")
	if name == "" || !model.IsStepKind(kind) || !table.Has(kind) {
		return nil, false
	}
	label := scalar(el, "label")
	nextLabel := scalar(el, "defaultConnectorLabel")

	switch kind {
	case model.KindDecisions:
		next := orEnd(targetRef(el, "defaultConnector"))
		var rules []model.Rule
		for _, r := range asSequence(field(el, "rules")) {
			if r.Kind != yaml.MappingNode {
				continue
			}
			rules = append(rules, model.Rule{
				Name:          scalar(r, "name"),
				Label:         scalar(r, "label"),
				Connector:     connector(r, "connector"),
				NextNodeLabel: nextLabel,
			})
		}
		return model.NewDecisionStep(name, label, next, nextLabel, rules), true
	case model.KindLoops:
		next := orEnd(targetRef(el, "connector"))
		return model.NewLoopStep(name, label, next, nextLabel, targetRef(el, "nextValueConnector")), true
	case model.KindActionCalls:
		return model.NewActionStep(name, label, targetRef(el, "connector"), nextLabel, scalar(el, "actionType")), true
	default:
		return model.NewBasicStep(kind, name, label, targetRef(el, "connector"), nextLabel), true
	}
}

func orEnd(ref string) string {
	if ref == "" {
		return model.End
	}
	return ref
}
