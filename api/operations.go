package api

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/awantoch/flowviz/constants"
	"github.com/google/uuid"
)

// OperationDefinition defines a single operation with all its metadata and implementation
type OperationDefinition struct {
	ID          string                                                                 // Unique identifier
	Name        string                                                                 // Display name
	Description string                                                                 // Human readable description
	HTTPMethod  string                                                                 // HTTP method (GET, POST, etc.)
	HTTPPath    string                                                                 // HTTP path pattern
	CLIUse      string                                                                 // CLI command usage pattern
	CLIShort    string                                                                 // CLI short description
	MCPName     string                                                                 // MCP tool name (defaults to ID)
	ArgsType    reflect.Type                                                           // Type for request arguments
	Handler     func(ctx context.Context, svc ConverterService, args any) (any, error) // Core implementation, args is a pointer to ArgsType
	SkipHTTP    bool                                                                   // Skip HTTP interface generation
	SkipMCP     bool                                                                   // Skip MCP interface generation
	SkipCLI     bool                                                                   // Skip CLI interface generation

	// mcpHandler builds a handler typed on ArgsType, which mcp-golang
	// needs to derive the tool's input schema.
	mcpHandler func(op *OperationDefinition, svc ConverterService) any
}

// EmptyArgs is the argument type of operations that take none.
type EmptyArgs struct{}

// RenderIDArgs selects a stored render.
type RenderIDArgs struct {
	ID string `json:"id" path:"id" jsonschema:"required,description=Render ID"`
}

func (a *RenderIDArgs) parse() (uuid.UUID, error) {
	id, err := uuid.Parse(a.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s %q", ErrInvalidArgument, constants.ResponseInvalidRenderID, a.ID)
	}
	return id, nil
}

// Global operation registry, in registration order.
var (
	operationRegistry = make(map[string]*OperationDefinition)
	operationOrder    []string
)

// RegisterOperation registers an operation definition
func RegisterOperation(op *OperationDefinition) {
	if op.MCPName == "" {
		op.MCPName = op.ID
	}
	if _, exists := operationRegistry[op.ID]; !exists {
		operationOrder = append(operationOrder, op.ID)
	}
	operationRegistry[op.ID] = op
}

// GetOperation retrieves an operation by ID
func GetOperation(id string) (*OperationDefinition, bool) {
	op, exists := operationRegistry[id]
	return op, exists
}

// GetAllOperations returns all registered operations in registration order.
func GetAllOperations() []*OperationDefinition {
	ops := make([]*OperationDefinition, 0, len(operationOrder))
	for _, id := range operationOrder {
		ops = append(ops, operationRegistry[id])
	}
	return ops
}

// init registers all core operations
func init() {
	// Render. The CLI has its own render command that reads files.
	RegisterOperation(&OperationDefinition{
		ID:          constants.InterfaceIDRender,
		Name:        "Render Flow",
		Description: constants.InterfaceDescRender,
		HTTPMethod:  http.MethodPost,
		HTTPPath:    constants.HTTPPathRender,
		MCPName:     "flowviz_render",
		ArgsType:    reflect.TypeOf(RenderArgs{}),
		SkipCLI:     true,
		Handler: func(ctx context.Context, svc ConverterService, args any) (any, error) {
			return svc.Render(ctx, *args.(*RenderArgs))
		},
		mcpHandler: mcpHandlerFor[RenderArgs],
	})

	// Get Render
	RegisterOperation(&OperationDefinition{
		ID:          constants.InterfaceIDGetRender,
		Name:        "Get Render",
		Description: constants.InterfaceDescGetRender,
		HTTPMethod:  http.MethodGet,
		HTTPPath:    constants.HTTPPathRendersByID,
		CLIUse:      "get <id>",
		CLIShort:    "Show a stored render",
		MCPName:     "flowviz_get_render",
		ArgsType:    reflect.TypeOf(RenderIDArgs{}),
		Handler: func(ctx context.Context, svc ConverterService, args any) (any, error) {
			id, err := args.(*RenderIDArgs).parse()
			if err != nil {
				return nil, err
			}
			return svc.GetRender(ctx, id)
		},
		mcpHandler: mcpHandlerFor[RenderIDArgs],
	})

	// List Renders
	RegisterOperation(&OperationDefinition{
		ID:          constants.InterfaceIDListRenders,
		Name:        "List Renders",
		Description: constants.InterfaceDescListRenders,
		HTTPMethod:  http.MethodGet,
		HTTPPath:    constants.HTTPPathRenders,
		CLIUse:      "list",
		CLIShort:    "List stored renders, newest first",
		MCPName:     "flowviz_list_renders",
		ArgsType:    reflect.TypeOf(EmptyArgs{}),
		Handler: func(ctx context.Context, svc ConverterService, args any) (any, error) {
			return svc.ListRenders(ctx)
		},
		mcpHandler: mcpHandlerFor[EmptyArgs],
	})

	// Delete Render
	RegisterOperation(&OperationDefinition{
		ID:          constants.InterfaceIDDeleteRender,
		Name:        "Delete Render",
		Description: constants.InterfaceDescDeleteRender,
		HTTPMethod:  http.MethodDelete,
		HTTPPath:    constants.HTTPPathRendersByID,
		CLIUse:      "delete <id>",
		CLIShort:    "Delete a stored render",
		MCPName:     "flowviz_delete_render",
		ArgsType:    reflect.TypeOf(RenderIDArgs{}),
		Handler: func(ctx context.Context, svc ConverterService, args any) (any, error) {
			id, err := args.(*RenderIDArgs).parse()
			if err != nil {
				return nil, err
			}
			if err := svc.DeleteRender(ctx, id); err != nil {
				return nil, err
			}
			return map[string]string{"deleted": id.String()}, nil
		},
		mcpHandler: mcpHandlerFor[RenderIDArgs],
	})

	// List Styles
	RegisterOperation(&OperationDefinition{
		ID:          constants.InterfaceIDListStyles,
		Name:        "List Styles",
		Description: constants.InterfaceDescListStyles,
		HTTPMethod:  http.MethodGet,
		HTTPPath:    constants.HTTPPathStyles,
		CLIUse:      "styles",
		CLIShort:    "Print the active style table",
		MCPName:     "flowviz_list_styles",
		ArgsType:    reflect.TypeOf(EmptyArgs{}),
		Handler: func(ctx context.Context, svc ConverterService, args any) (any, error) {
			return svc.ListStyles(ctx)
		},
		mcpHandler: mcpHandlerFor[EmptyArgs],
	})

	// List Notations
	RegisterOperation(&OperationDefinition{
		ID:          constants.InterfaceIDListNotations,
		Name:        "List Notations",
		Description: constants.InterfaceDescListNotations,
		HTTPMethod:  http.MethodGet,
		HTTPPath:    constants.HTTPPathNotations,
		CLIUse:      "notations",
		CLIShort:    "List supported diagram notations",
		MCPName:     "flowviz_list_notations",
		ArgsType:    reflect.TypeOf(EmptyArgs{}),
		Handler: func(ctx context.Context, svc ConverterService, args any) (any, error) {
			return svc.ListNotations(ctx)
		},
		mcpHandler: mcpHandlerFor[EmptyArgs],
	})
}
