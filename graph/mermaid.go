package graph

import (
	"fmt"
	"strings"

	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/style"
	pongo2 "github.com/flosch/pongo2/v6"
)

const (
	mermaidStart = "START(( START ))"
	mermaidEnd   = "END(( END ))"
)

var mermaidPreamble = pongo2.Must(pongo2.FromString(`{% autoescape off %}# {{ label }}
### {{ processType }} (*{{ status }}*)
## Variables
|Name|Datatype|Collection|Input|Output|Description
|-|-|-|-|-|-|
{% for v in variables %}|{{ v.Name }}|{{ v.DataType }}|{{ v.IsCollection }}|{{ v.IsInput }}|{{ v.IsOutput }}|{{ v.Description }}|
{% endfor %}{% endautoescape %}`))

// MermaidRenderer renders a Markdown document with a Mermaid flowchart.
// It never walks edges, so cycles in the graph are harmless.
type MermaidRenderer struct {
	Styles *style.Table
}

// Render implements Renderer.
func (r *MermaidRenderer) Render(g *model.FlowGraph) (string, error) {
	table := r.Styles
	if table == nil {
		table = style.Default()
	}
	head, err := mermaidPreamble.Execute(pongo2.Context{
		"label":       g.Label,
		"processType": g.ProcessType,
		"status":      string(g.Status),
		"variables":   g.Variables,
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(head)
	b.WriteString("\n## Flow\n```mermaid\nflowchart TB\n")

	b.WriteString(mermaidStart + "\n")
	for _, s := range g.Steps() {
		if line, ok := mermaidNode(s, table); ok {
			b.WriteString(line + "\n")
		}
	}
	b.WriteString(mermaidEnd + "\n\n")

	for _, s := range g.Steps() {
		writeMermaidEdges(&b, s)
	}
	b.WriteString("\n")

	for _, st := range table.Entries() {
		b.WriteString(fmt.Sprintf("classDef %s fill:%s,color:%s\n", st.Kind, st.Background, st.Color))
	}
	b.WriteString("```\n")
	return b.String(), nil
}

func mermaidNode(s model.Step, table *style.Table) (string, bool) {
	st, ok := table.Lookup(s.Kind())
	if !ok || s.Kind() == model.KindStart {
		return "", false
	}
	variant := ""
	if a, isAction := s.(*model.ActionStep); isAction {
		variant = a.ActionType
	}
	icon := table.MermaidIcon(s.Kind(), variant)
	return s.Name() + st.Open + icon + "\n" + s.Label() + st.Close + ":::" + string(s.Kind()), true
}

func writeMermaidEdges(b *strings.Builder, s model.Step) {
	switch st := s.(type) {
	case *model.StartStep:
		fmt.Fprintf(b, "%s --> %s\n", mermaidStart, st.Next())
	case *model.DecisionStep:
		for _, rule := range st.Rules {
			fmt.Fprintf(b, "%s --> |%s| %s\n", st.Name(), rule.Label, rule.Target())
		}
		fmt.Fprintf(b, "%s --> |%s| %s\n", st.Name(), st.NextLabel(), st.Next())
	case *model.LoopStep:
		fmt.Fprintf(b, "%s --> %s\n", st.Name(), st.Body())
		fmt.Fprintf(b, "%s ---> %s\n", st.Name(), st.Next())
	default:
		fmt.Fprintf(b, "%s --> %s\n", s.Name(), s.Next())
	}
}
