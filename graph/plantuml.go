package graph

import (
	"fmt"
	"strings"

	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/style"
)

// PlantUMLRenderer renders an activity diagram by walking the graph from
// the start step. Loop bodies end at the loop's own name and decision
// branches end at the decision's default target. Any other revisit of a
// step still on the walk is reported as a CyclicGraphError.
type PlantUMLRenderer struct {
	Styles *style.Table
}

// Render implements Renderer.
func (r *PlantUMLRenderer) Render(g *model.FlowGraph) (string, error) {
	w := &walker{
		g:      g,
		styles: r.Styles,
		active: make(map[string]bool),
	}
	if w.styles == nil {
		w.styles = style.Default()
	}

	w.b.WriteString("@startuml\n")
	fmt.Fprintf(&w.b, "title %s\n", g.Label)
	w.b.WriteString("start\n")
	if g.Start != nil {
		if err := w.chain(g.Start.Next(), nil); err != nil {
			return "", err
		}
	}
	w.b.WriteString("stop\n@enduml\n")
	return w.b.String(), nil
}

type walker struct {
	g      *model.FlowGraph
	styles *style.Table
	b      strings.Builder
	// active holds the steps on the current walk path.
	active map[string]bool
}

// chain emits steps from name onward, following Next, until END or a
// name in stops is reached.
func (w *walker) chain(name string, stops []string) error {
	var entered []string
	defer func() {
		for _, n := range entered {
			delete(w.active, n)
		}
	}()

	for name != "" && name != model.End && !contains(stops, name) {
		if w.active[name] {
			return &CyclicGraphError{Step: name}
		}
		s, ok := w.g.Lookup(name)
		if !ok {
			fmt.Fprintf(&w.b, "' %s NOT FOUND\n", name)
			return nil
		}
		w.active[name] = true
		entered = append(entered, name)
		if err := w.step(s, stops); err != nil {
			return err
		}
		name = s.Next()
	}
	return nil
}

func (w *walker) step(s model.Step, stops []string) error {
	switch st := s.(type) {
	case *model.DecisionStep:
		return w.decision(st, stops)
	case *model.LoopStep:
		return w.loop(st, stops)
	}
	cnf, ok := w.styles.Lookup(s.Kind())
	if !ok {
		fmt.Fprintf(&w.b, "' %s NOT IMPLEMENTED\n", s.Name())
		return nil
	}
	fmt.Fprintf(&w.b, "%s:<color:%s><size:30>%s</size>;\n", cnf.Background, cnf.Color, cnf.PlantUMLIcon)
	fmt.Fprintf(&w.b, "floating note left\n**%s**\n%s\nend note\n", s.Label(), cnf.Label)
	return nil
}

func (w *walker) decision(d *model.DecisionStep, stops []string) error {
	if !w.styles.Has(d.Kind()) {
		fmt.Fprintf(&w.b, "' %s NOT IMPLEMENTED\n", d.Name())
		return nil
	}
	inner := with(stops, d.Next())
	fmt.Fprintf(&w.b, "switch (%s)\n", d.Label())
	for _, rule := range d.Rules {
		fmt.Fprintf(&w.b, "case (%s)\n", rule.Label)
		if err := w.chain(rule.Target(), inner); err != nil {
			return err
		}
	}
	fmt.Fprintf(&w.b, "case (%s)\n", d.NextLabel())
	w.b.WriteString("endswitch\n")
	return nil
}

func (w *walker) loop(l *model.LoopStep, stops []string) error {
	cnf, ok := w.styles.Lookup(l.Kind())
	if !ok {
		fmt.Fprintf(&w.b, "' %s NOT IMPLEMENTED\n", l.Name())
		return nil
	}
	fmt.Fprintf(&w.b, "floating note left: %s\n", l.Name())
	fmt.Fprintf(&w.b, "repeat :<size:30>%s</size>;\n", cnf.PlantUMLIcon)
	if err := w.chain(l.Body(), with(stops, l.Name())); err != nil {
		return err
	}
	w.b.WriteString("repeat while (more data?)\n")
	return nil
}

func with(stops []string, name string) []string {
	out := make([]string, 0, len(stops)+1)
	out = append(out, stops...)
	return append(out, name)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
