package api

import (
	"context"

	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/graph"
	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/parser"
	"github.com/awantoch/flowviz/style"
	"github.com/awantoch/flowviz/telemetry"
	"github.com/awantoch/flowviz/utils"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Options tunes a single conversion. The zero value uses the embedded
// style table and sniffs the document format.
type Options struct {
	Styles *style.Table
	Format parser.Format
}

// Result is the outcome of a successful conversion.
type Result struct {
	FlowGraph   *model.FlowGraph
	DiagramText string
}

// ParseFlow converts a flow document into diagram text in the requested
// notation. The notation is checked before the document is touched.
//
// Errors are one of *graph.UnsupportedNotationError, *parser.DocumentParseError,
// parser.ErrNoRenderableContent or *graph.CyclicGraphError.
func ParseFlow(ctx context.Context, document string, notation graph.Notation, opts *Options) (*Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "flowviz.ParseFlow",
		trace.WithAttributes(attribute.String("flowviz.notation", string(notation))))
	defer span.End()

	if err := graph.CheckNotation(notation); err != nil {
		return nil, fail(span, err)
	}

	var table *style.Table
	format := parser.FormatAuto
	if opts != nil {
		table = opts.Styles
		if opts.Format != "" {
			format = opts.Format
		}
	}
	if table == nil {
		table = style.Default()
	}

	_, stage := telemetry.Tracer().Start(ctx, "flowviz.parse")
	root, err := parser.ParseDocument([]byte(document), format)
	stage.End()
	if err != nil {
		return nil, fail(span, err)
	}
	_, stage = telemetry.Tracer().Start(ctx, "flowviz.build")
	g, err := parser.BuildGraph(root, table)
	stage.End()
	if err != nil {
		return nil, fail(span, err)
	}
	span.SetAttributes(attribute.Int("flowviz.steps", g.Len()))

	r, err := graph.NewRenderer(notation, table)
	if err != nil {
		return nil, fail(span, err)
	}
	_, stage = telemetry.Tracer().Start(ctx, "flowviz.render")
	text, err := r.Render(g)
	stage.End()
	if err != nil {
		return nil, fail(span, err)
	}
	utils.DebugCtx(ctx, "flow rendered", "notation", string(notation), "steps", g.Len(), "bytes", len(text))
	return &Result{FlowGraph: g, DiagramText: text}, nil
}

func fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return utils.Componentf(constants.ComponentTag, err)
}
