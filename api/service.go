package api

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/awantoch/flowviz/blob"
	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/event"
	"github.com/awantoch/flowviz/graph"
	"github.com/awantoch/flowviz/model"
	"github.com/awantoch/flowviz/parser"
	"github.com/awantoch/flowviz/storage"
	"github.com/awantoch/flowviz/style"
	"github.com/awantoch/flowviz/telemetry"
	"github.com/awantoch/flowviz/utils"
	"github.com/google/uuid"
)

// ErrInvalidArgument marks a request rejected before any conversion work.
var ErrInvalidArgument = errors.New("invalid argument")

// RenderArgs describes one conversion request.
type RenderArgs struct {
	Document string `json:"document" body:"raw" jsonschema:"required,description=Flow document as XML or YAML"`
	Name     string `json:"name,omitempty" flag:"name" description:"Name stored with the render" jsonschema:"description=Name stored with the render"`
	Notation string `json:"notation,omitempty" flag:"as" description:"Diagram notation (mermaid or plantuml)" jsonschema:"description=Diagram notation: mermaid or plantuml"`
	Format   string `json:"format,omitempty" flag:"format" description:"Document format (auto, xml or yaml)" jsonschema:"description=Document format: auto or xml or yaml"`
	Publish  bool   `json:"publish,omitempty" flag:"publish" description:"Publish the diagram to the blob store" jsonschema:"description=Publish the diagram to the blob store"`
}

// ConverterService is the surface shared by the CLI, HTTP and MCP layers.
type ConverterService interface {
	Render(ctx context.Context, args RenderArgs) (*model.Render, error)
	GetRender(ctx context.Context, id uuid.UUID) (*model.Render, error)
	ListRenders(ctx context.Context) ([]*model.Render, error)
	DeleteRender(ctx context.Context, id uuid.UUID) error
	ListStyles(ctx context.Context) ([]style.Style, error)
	ListNotations(ctx context.Context) ([]graph.Notation, error)
}

// Dependencies are the collaborators of the default service. Store is
// required; a nil Blobs rejects publish requests and a nil Events skips
// notifications.
type Dependencies struct {
	Store           storage.Storage
	Blobs           blob.BlobStore
	Events          event.EventBus
	Styles          *style.Table
	DefaultNotation graph.Notation
}

type defaultService struct {
	deps Dependencies
	now  func() time.Time
}

// Compile-time check.
var _ ConverterService = (*defaultService)(nil)

// NewConverterService returns the default ConverterService.
func NewConverterService(deps Dependencies) ConverterService {
	if deps.Styles == nil {
		deps.Styles = style.Default()
	}
	if deps.DefaultNotation == "" {
		deps.DefaultNotation = graph.NotationMermaid
	}
	return &defaultService{deps: deps, now: time.Now}
}

func (s *defaultService) Render(ctx context.Context, args RenderArgs) (*model.Render, error) {
	notation := s.deps.DefaultNotation
	if args.Notation != "" {
		// Matching ignores case; an unknown value is reported as given.
		notation = graph.Notation(args.Notation)
		if folded := graph.Notation(strings.ToLower(args.Notation)); graph.CheckNotation(folded) == nil {
			notation = folded
		}
	}
	start := time.Now()
	rec, err := s.render(ctx, args, notation)
	outcome := constants.OutcomeSuccess
	if err != nil {
		outcome = constants.OutcomeError
		utils.WarnCtx(ctx, constants.LogRenderFailed, "name", args.Name, "notation", string(notation), "error", err)
	} else {
		utils.InfoCtx(ctx, constants.LogRenderStored, "id", rec.ID.String(), "name", rec.Name, "notation", rec.Notation, "steps", rec.StepCount)
	}
	telemetry.RecordRender(string(notation), outcome, time.Since(start))
	return rec, err
}

func (s *defaultService) render(ctx context.Context, args RenderArgs, notation graph.Notation) (*model.Render, error) {
	if strings.TrimSpace(args.Document) == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, constants.ResponseMissingDocument)
	}
	res, err := ParseFlow(ctx, args.Document, notation, &Options{
		Styles: s.deps.Styles,
		Format: parser.Format(strings.ToLower(args.Format)),
	})
	if err != nil {
		return nil, err
	}

	rec := &model.Render{
		ID:        uuid.New(),
		Name:      args.Name,
		Label:     res.FlowGraph.Label,
		Notation:  string(notation),
		Diagram:   res.DiagramText,
		StepCount: res.FlowGraph.Len(),
		CreatedAt: s.now().UTC(),
	}
	if rec.Name == "" {
		rec.Name = rec.Label
	}

	if args.Publish {
		if s.deps.Blobs == nil {
			return nil, fmt.Errorf("%w: no blob store configured", ErrInvalidArgument)
		}
		url, err := s.deps.Blobs.Put(ctx, []byte(rec.Diagram), mimeFor(notation), diagramFilename(rec, notation))
		if err != nil {
			return nil, fmt.Errorf(constants.LogPublishFailed, rec.Name, err)
		}
		rec.URL = url
	}

	if err := s.deps.Store.SaveRender(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to save render: %w", err)
	}

	if s.deps.Events != nil {
		if err := s.deps.Events.Publish(ctx, constants.EventTopicRendered, event.RenderedFrom(rec)); err != nil {
			utils.WarnCtx(ctx, constants.LogEventFailed, "id", rec.ID.String(), "error", err)
		}
	}
	return rec, nil
}

func (s *defaultService) GetRender(ctx context.Context, id uuid.UUID) (*model.Render, error) {
	return s.deps.Store.GetRender(ctx, id)
}

func (s *defaultService) ListRenders(ctx context.Context) ([]*model.Render, error) {
	return s.deps.Store.ListRenders(ctx)
}

func (s *defaultService) DeleteRender(ctx context.Context, id uuid.UUID) error {
	return s.deps.Store.DeleteRender(ctx, id)
}

func (s *defaultService) ListStyles(ctx context.Context) ([]style.Style, error) {
	return s.deps.Styles.Entries(), nil
}

func (s *defaultService) ListNotations(ctx context.Context) ([]graph.Notation, error) {
	out := make([]graph.Notation, len(graph.Notations))
	copy(out, graph.Notations)
	return out, nil
}

// DiagramExt returns the file extension used for a notation's output.
func DiagramExt(n graph.Notation) string {
	if n == graph.NotationPlantUML {
		return constants.ExtPlantUML
	}
	return constants.ExtMermaid
}

func mimeFor(n graph.Notation) string {
	if n == graph.NotationPlantUML {
		return constants.ContentTypeText
	}
	return constants.ContentTypeMarkdown
}

func diagramFilename(r *model.Render, n graph.Notation) string {
	base := strings.Map(func(c rune) rune {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
			return c
		}
		return '_'
	}, r.Name)
	if base == "" {
		base = "diagram"
	}
	return filepath.Base(base + "-" + r.ID.String()[:8] + DiagramExt(n))
}
