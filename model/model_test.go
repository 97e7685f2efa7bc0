package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectorTarget(t *testing.T) {
	var nilConn *Connector
	assert.Equal(t, End, nilConn.Target())
	assert.Equal(t, End, (&Connector{}).Target())
	assert.Equal(t, "next", (&Connector{TargetReference: "next"}).Target())
}

func TestStepNextDefaultsToEnd(t *testing.T) {
	s := NewBasicStep(KindAssignments, "a", "A", "", "")
	if s.Next() != End {
		t.Errorf("expected %q, got %q", End, s.Next())
	}
	if s.Kind() != KindAssignments {
		t.Errorf("expected kind assignments, got %q", s.Kind())
	}
	l := NewLoopStep("l", "L", "after", "", "")
	if l.Body() != End {
		t.Errorf("expected empty loop body to resolve to END, got %q", l.Body())
	}
}

func TestFlowGraphInsertionOrder(t *testing.T) {
	g := NewFlowGraph()
	g.Add(NewBasicStep(KindAssignments, "a", "A", "b", ""))
	g.SetStart(NewStartStep("a"))
	g.Add(NewBasicStep(KindScreens, "b", "B", "", ""))

	steps := g.Steps()
	require.Len(t, steps, 3)
	assert.Equal(t, "a", steps[0].Name())
	assert.Equal(t, KindStart, steps[1].Kind())
	assert.Equal(t, "b", steps[2].Name())
}

func TestFlowGraphReplaceKeepsPosition(t *testing.T) {
	g := NewFlowGraph()
	g.Add(NewBasicStep(KindAssignments, "a", "first", "", ""))
	g.Add(NewBasicStep(KindScreens, "b", "B", "", ""))
	g.Add(NewBasicStep(KindRecordCreates, "a", "second", "", ""))

	require.Equal(t, 2, g.Len())
	steps := g.Steps()
	assert.Equal(t, "second", steps[0].Label())
	assert.Equal(t, KindRecordCreates, steps[0].Kind())

	got, ok := g.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, "second", got.Label())
}

func TestFlowGraphCountByKind(t *testing.T) {
	g := NewFlowGraph()
	g.SetStart(NewStartStep("d"))
	g.Add(NewDecisionStep("d", "D", "", "Other", []Rule{{Name: "r", Label: "R"}}))
	g.Add(NewBasicStep(KindAssignments, "a", "A", "", ""))
	g.Add(NewBasicStep(KindAssignments, "b", "B", "", ""))

	counts := g.CountByKind()
	assert.Equal(t, 1, counts[KindStart])
	assert.Equal(t, 1, counts[KindDecisions])
	assert.Equal(t, 2, counts[KindAssignments])
}

func TestIsStepKind(t *testing.T) {
	assert.True(t, IsStepKind(KindLoops))
	assert.False(t, IsStepKind(KindStart))
	assert.False(t, IsStepKind("variables"))
}
