package graph

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/parser"
	"github.com/awantoch/flowviz/style"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *style.Table {
	t.Helper()
	tbl, err := style.New([]style.Style{
		{Kind: model.KindAssignments, MermaidIcon: "fa:fa-equals", PlantUMLIcon: "<&menu>", Background: "#F97924", Color: "white", Open: "[", Close: "]", Label: "Assignment"},
		{Kind: model.KindDecisions, MermaidIcon: "fa:fa-question", PlantUMLIcon: "<&fork>", Background: "#DD7A00", Color: "white", Open: "{", Close: "}", Label: "Decision"},
		{Kind: model.KindLoops, MermaidIcon: "fa:fa-repeat", PlantUMLIcon: "<&loop-circular>", Background: "#E07D1C", Color: "white", Open: "{{", Close: "}}", Label: "Loop"},
	})
	require.NoError(t, err)
	return tbl
}

func assign(name, label, next string) model.Step {
	return model.NewBasicStep(model.KindAssignments, name, label, next, "")
}

func newGraph(label, start string, steps ...model.Step) *model.FlowGraph {
	g := model.NewFlowGraph()
	g.Label = label
	g.SetStart(model.NewStartStep(start))
	for _, s := range steps {
		g.Add(s)
	}
	return g
}

func decisionGraph() *model.FlowGraph {
	rules := []model.Rule{
		{Name: "ra", Label: "A", Connector: &model.Connector{TargetReference: "a"}, NextNodeLabel: "Other"},
		{Name: "rb", Label: "B", Connector: &model.Connector{TargetReference: "b"}, NextNodeLabel: "Other"},
	}
	return newGraph("Pick", "d",
		model.NewDecisionStep("d", "Choose", "c", "Other", rules),
		assign("a", "Do A", "c"),
		assign("b", "Do B", "c"),
		assign("c", "Finish", ""),
	)
}

func loadSample(t *testing.T) *model.FlowGraph {
	t.Helper()
	root, err := parser.ParseFile(filepath.Join("..", "parser", "testdata", "account_sync.flow-meta.xml"), parser.FormatAuto)
	require.NoError(t, err)
	g, err := parser.BuildGraph(root, style.Default())
	require.NoError(t, err)
	return g
}

func golden(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return string(data)
}

func TestMermaid_Minimal(t *testing.T) {
	g := newGraph("Demo", "assign", assign("assign", "Set Value", ""))
	g.ProcessType = "Flow"
	g.Status = model.StatusActive
	g.Variables = []model.Variable{{Name: "v1", DataType: "String", IsCollection: "false", IsInput: "true", IsOutput: "false", Description: "input <b>"}}

	out, err := (&MermaidRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)

	want := "# Demo\n" +
		"### Flow (*Active*)\n" +
		"## Variables\n" +
		"|Name|Datatype|Collection|Input|Output|Description\n" +
		"|-|-|-|-|-|-|\n" +
		"|v1|String|false|true|false|input <b>|\n" +
		"\n" +
		"## Flow\n" +
		"```mermaid\n" +
		"flowchart TB\n" +
		"START(( START ))\n" +
		"assign[fa:fa-equals\nSet Value]:::assignments\n" +
		"END(( END ))\n" +
		"\n" +
		"START(( START )) --> assign\n" +
		"assign --> END\n" +
		"\n" +
		"classDef assignments fill:#F97924,color:white\n" +
		"classDef decisions fill:#DD7A00,color:white\n" +
		"classDef loops fill:#E07D1C,color:white\n" +
		"```\n"
	assert.Equal(t, want, out)
}

func TestMermaid_Sample(t *testing.T) {
	out, err := (&MermaidRenderer{Styles: style.Default()}).Render(loadSample(t))
	require.NoError(t, err)
	assert.Equal(t, golden(t, "account_sync.mermaid.md"), out)
}

func TestPlantUML_Sample(t *testing.T) {
	out, err := (&PlantUMLRenderer{Styles: style.Default()}).Render(loadSample(t))
	require.NoError(t, err)
	assert.Equal(t, golden(t, "account_sync.puml"), out)
}

func TestDecisionRendering(t *testing.T) {
	g := decisionGraph()
	tbl := testTable(t)

	mer, err := (&MermaidRenderer{Styles: tbl}).Render(g)
	require.NoError(t, err)
	var edges []string
	for _, line := range strings.Split(mer, "\n") {
		if strings.HasPrefix(line, "d --> ") {
			edges = append(edges, line)
		}
	}
	assert.Equal(t, []string{"d --> |A| a", "d --> |B| b", "d --> |Other| c"}, edges)

	puml, err := (&PlantUMLRenderer{Styles: tbl}).Render(g)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(puml, "switch (Choose)\n"))
	assert.Equal(t, 3, strings.Count(puml, "case ("))
	ia := strings.Index(puml, "case (A)")
	ib := strings.Index(puml, "case (B)")
	io := strings.Index(puml, "case (Other)")
	assert.True(t, ia < ib && ib < io, "cases out of order:\n%s", puml)
	// The merge step follows the switch exactly once.
	assert.Equal(t, 1, strings.Count(puml, "**Finish**"))
	assert.Greater(t, strings.Index(puml, "**Finish**"), strings.Index(puml, "endswitch"))
}

func TestDecisionRuleTargetingMergeIsNotDuplicated(t *testing.T) {
	rules := []model.Rule{{Label: "Skip", Connector: &model.Connector{TargetReference: "c"}}}
	g := newGraph("Merge", "d",
		model.NewDecisionStep("d", "Choose", "c", "Other", rules),
		assign("c", "Finish", ""),
	)
	out, err := (&PlantUMLRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "**Finish**"))
	assert.Contains(t, out, "case (Skip)\ncase (Other)\nendswitch\n")
}

func TestLoopRendering(t *testing.T) {
	g := newGraph("Iterate", "l",
		model.NewLoopStep("l", "Each Item", "", "", "x"),
		assign("x", "Step X", "y"),
		assign("y", "Step Y", "l"),
	)
	out, err := (&PlantUMLRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(out, "repeat :<size:30><&loop-circular></size>;\n"))
	assert.Equal(t, 1, strings.Count(out, "repeat while (more data?)\n"))
	open := strings.Index(out, "repeat :")
	closing := strings.Index(out, "repeat while")
	for _, label := range []string{"**Step X**", "**Step Y**"} {
		i := strings.Index(out, label)
		assert.True(t, open < i && i < closing, "%s not inside the repeat block", label)
	}
	assert.Contains(t, out, "floating note left: l\n")
	assert.NotContains(t, out, "Each Item")

	mer, err := (&MermaidRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)
	assert.Contains(t, mer, "l --> x\nl ---> END\n")
}

func TestLoopWithoutBody(t *testing.T) {
	g := newGraph("Empty Loop", "l", model.NewLoopStep("l", "", "", "", ""))
	out, err := (&PlantUMLRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)
	assert.Contains(t, out, "floating note left: l\nrepeat :<size:30><&loop-circular></size>;\nrepeat while (more data?)\n")

	mer, err := (&MermaidRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)
	assert.Contains(t, mer, "l --> END\nl ---> END\n")
}

func TestPlantUML_CycleIsReported(t *testing.T) {
	g := newGraph("Cycle", "a", assign("a", "A", "b"), assign("b", "B", "a"))
	_, err := (&PlantUMLRenderer{Styles: testTable(t)}).Render(g)
	var cyc *CyclicGraphError
	require.True(t, errors.As(err, &cyc), "got %v", err)
	assert.Equal(t, "a", cyc.Step)

	// Mermaid never walks edges.
	_, err = (&MermaidRenderer{Styles: testTable(t)}).Render(g)
	assert.NoError(t, err)
}

func TestPlantUML_BranchBackToDecisionIsReported(t *testing.T) {
	rules := []model.Rule{{Label: "Again", Connector: &model.Connector{TargetReference: "a"}}}
	g := newGraph("Retry", "d",
		model.NewDecisionStep("d", "Retry?", "", "Done", rules),
		assign("a", "A", "d"),
	)
	_, err := (&PlantUMLRenderer{Styles: testTable(t)}).Render(g)
	var cyc *CyclicGraphError
	require.True(t, errors.As(err, &cyc))
	assert.Equal(t, "d", cyc.Step)
}

func TestPlantUML_SiblingBranchesMayShareSteps(t *testing.T) {
	rules := []model.Rule{
		{Label: "A", Connector: &model.Connector{TargetReference: "shared"}},
		{Label: "B", Connector: &model.Connector{TargetReference: "shared"}},
	}
	g := newGraph("Shared", "d",
		model.NewDecisionStep("d", "Choose", "c", "Other", rules),
		assign("shared", "Shared", "c"),
		assign("c", "Finish", ""),
	)
	out, err := (&PlantUMLRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "**Shared**"))
}

func TestPlantUML_MissingAndUnstyledSteps(t *testing.T) {
	g := newGraph("Odd", "s",
		model.NewBasicStep(model.KindScreens, "s", "Screen", "ghost", ""),
	)
	out, err := (&PlantUMLRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)
	assert.Contains(t, out, "' s NOT IMPLEMENTED\n' ghost NOT FOUND\nstop\n")

	mer, err := (&MermaidRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)
	assert.NotContains(t, mer, ":::screens")
	assert.Contains(t, mer, "s --> ghost\n")
}

func TestPlantUML_NoStart(t *testing.T) {
	g := model.NewFlowGraph()
	g.Label = "Headless"
	g.Add(assign("a", "A", ""))
	out, err := (&PlantUMLRenderer{Styles: testTable(t)}).Render(g)
	require.NoError(t, err)
	assert.Equal(t, "@startuml\ntitle Headless\nstart\nstop\n@enduml\n", out)
}

func TestRenderIsIdempotent(t *testing.T) {
	g := loadSample(t)
	for _, n := range Notations {
		r, err := NewRenderer(n, nil)
		require.NoError(t, err)
		first, err := r.Render(g)
		require.NoError(t, err)
		second, err := r.Render(g)
		require.NoError(t, err)
		assert.Equal(t, first, second, "notation %s", n)
	}
}

func TestWalkedStepsAppearOnceInMermaid(t *testing.T) {
	g := loadSample(t)
	tbl := style.Default()
	mer, err := (&MermaidRenderer{Styles: tbl}).Render(g)
	require.NoError(t, err)
	puml, err := (&PlantUMLRenderer{Styles: tbl}).Render(g)
	require.NoError(t, err)

	for _, s := range g.Steps() {
		st, ok := tbl.Lookup(s.Kind())
		if !ok || s.Label() == "" || !strings.Contains(puml, s.Label()) {
			continue
		}
		assert.Equal(t, 1, strings.Count(mer, "\n"+s.Name()+st.Open), "node definition for %s", s.Name())
	}
}

func TestNewRenderer(t *testing.T) {
	r, err := NewRenderer(NotationMermaid, nil)
	require.NoError(t, err)
	assert.IsType(t, &MermaidRenderer{}, r)

	r, err = NewRenderer(NotationPlantUML, testTable(t))
	require.NoError(t, err)
	assert.IsType(t, &PlantUMLRenderer{}, r)

	_, err = NewRenderer("svg", nil)
	var unsupported *UnsupportedNotationError
	require.True(t, errors.As(err, &unsupported))
	assert.Equal(t, "unknown-renderAs-svg", err.Error())

	assert.NoError(t, CheckNotation(NotationPlantUML))
	assert.EqualError(t, CheckNotation("svg"), "unknown-renderAs-svg")
}
