package model

// FlowGraph is the built, read-only representation of a flow document.
type FlowGraph struct {
	Label       string     `json:"label"`
	Description string     `json:"description,omitempty"`
	ProcessType string     `json:"processType"`
	Status      Status     `json:"status"`
	Start       *StartStep `json:"-"`
	Variables   []Variable `json:"variables,omitempty"`

	// Skipped counts section elements that produced no step.
	Skipped int `json:"skipped"`

	steps map[string]Step
	order []Step
}

// NewFlowGraph returns an empty graph.
func NewFlowGraph() *FlowGraph {
	return &FlowGraph{steps: make(map[string]Step)}
}

// SetStart records the start step at the current insertion position.
func (g *FlowGraph) SetStart(s *StartStep) {
	if g.Start != nil {
		for i, st := range g.order {
			if st == Step(g.Start) {
				g.order[i] = s
				g.Start = s
				return
			}
		}
	}
	g.Start = s
	g.order = append(g.order, s)
}

// Add inserts s keyed by its name. A step with the same name is replaced
// in place, keeping its original position.
func (g *FlowGraph) Add(s Step) {
	if g.steps == nil {
		g.steps = make(map[string]Step)
	}
	if prev, ok := g.steps[s.Name()]; ok {
		for i, st := range g.order {
			if st == prev {
				g.order[i] = s
				break
			}
		}
	} else {
		g.order = append(g.order, s)
	}
	g.steps[s.Name()] = s
}

// Lookup returns the named step.
func (g *FlowGraph) Lookup(name string) (Step, bool) {
	s, ok := g.steps[name]
	return s, ok
}

// Steps returns all steps, the start step included, in insertion order.
func (g *FlowGraph) Steps() []Step {
	out := make([]Step, len(g.order))
	copy(out, g.order)
	return out
}

// Len returns the number of steps, the start step included.
func (g *FlowGraph) Len() int {
	return len(g.order)
}

// CountByKind returns the number of steps of each kind.
func (g *FlowGraph) CountByKind() map[Kind]int {
	out := make(map[Kind]int)
	for _, s := range g.order {
		out[s.Kind()]++
	}
	return out
}
