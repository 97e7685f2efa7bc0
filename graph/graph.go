package graph

import (
	"fmt"

	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/style"
)

// Notation names a diagram language.
type Notation string

const (
	NotationMermaid  Notation = constants.NotationMermaid
	NotationPlantUML Notation = constants.NotationPlantUML
)

// Notations lists the supported notations.
var Notations = []Notation{NotationMermaid, NotationPlantUML}

// Renderer renders a FlowGraph into diagram text.
type Renderer interface {
	Render(g *model.FlowGraph) (string, error)
}

// UnsupportedNotationError is returned for a notation with no renderer.
type UnsupportedNotationError struct {
	Notation Notation
}

func (e *UnsupportedNotationError) Error() string {
	return constants.ErrUnknownRenderAsPrefix + string(e.Notation)
}

// CyclicGraphError reports a step re-entered while it was still being
// rendered, outside a loop back-edge or a decision merge.
type CyclicGraphError struct {
	Step string
}

func (e *CyclicGraphError) Error() string {
	return fmt.Sprintf(constants.ErrCyclicGraph, e.Step)
}

// CheckNotation returns an error unless n is supported.
func CheckNotation(n Notation) error {
	for _, known := range Notations {
		if n == known {
			return nil
		}
	}
	return &UnsupportedNotationError{Notation: n}
}

// NewRenderer returns the renderer for n. A nil table means the default
// style table.
func NewRenderer(n Notation, table *style.Table) (Renderer, error) {
	if table == nil {
		table = style.Default()
	}
	switch n {
	case NotationMermaid:
		return &MermaidRenderer{Styles: table}, nil
	case NotationPlantUML:
		return &PlantUMLRenderer{Styles: table}, nil
	default:
		return nil, &UnsupportedNotationError{Notation: n}
	}
}
