package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/graph"
	mcpserver "github.com/awantoch/flowviz/mcp"
	"github.com/awantoch/flowviz/parser"
	"github.com/awantoch/flowviz/storage"
	"github.com/awantoch/flowviz/telemetry"
	"github.com/awantoch/flowviz/utils"
	mcp "github.com/metoro-io/mcp-golang"
	"github.com/spf13/cobra"
)

// maxBodyBytes caps request bodies accepted by generated HTTP handlers.
const maxBodyBytes = 8 << 20

// AttachHTTPHandlers registers the health check and every operation on mux.
func AttachHTTPHandlers(mux *http.ServeMux, svc ConverterService) {
	mux.HandleFunc(constants.HTTPMethodGET+" "+constants.HTTPPathHealth, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeText)
		if _, err := w.Write([]byte(constants.HealthCheckResponse)); err != nil {
			utils.Error(constants.LogFailedWriteHealthCheck, err)
		}
	})
	GenerateHTTPHandlers(mux, svc)
}

// GenerateHTTPHandlers creates HTTP handlers for all operations and registers them
func GenerateHTTPHandlers(mux *http.ServeMux, svc ConverterService) {
	for _, op := range GetAllOperations() {
		if op.SkipHTTP {
			continue
		}
		mux.Handle(op.HTTPMethod+" "+op.HTTPPath, telemetry.WrapHandler(op.ID, generateHTTPHandler(op, svc)))
	}
}

func generateHTTPHandler(op *OperationDefinition, svc ConverterService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		args, err := parseHTTPArgs(r, op)
		if err != nil {
			writeHTTPError(w, r, err)
			return
		}
		result, err := op.Handler(r.Context(), svc, args)
		if err != nil {
			writeHTTPError(w, r, err)
			return
		}
		status := http.StatusOK
		if op.HTTPMethod == http.MethodPost {
			status = http.StatusCreated
		}
		writeJSON(w, status, result)
	}
}

// parseHTTPArgs fills a new ArgsType from the request. A JSON body is
// decoded as a whole; any other body goes to the field tagged body:"raw".
// Path values and query parameters are applied afterwards.
func parseHTTPArgs(r *http.Request, op *OperationDefinition) (any, error) {
	ptr := reflect.New(op.ArgsType)
	v := ptr.Elem()

	if r.Body != nil && (r.Method == http.MethodPost || r.Method == http.MethodPut) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidArgument, constants.ResponseInvalidRequestBody)
		}
		if len(body) > 0 {
			if isJSON(r) {
				if err := json.Unmarshal(body, ptr.Interface()); err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, constants.ResponseInvalidRequestBody, err)
				}
			} else if f, ok := fieldByTag(v, "body", "raw"); ok {
				f.SetString(string(body))
			}
		}
	}

	t := v.Type()
	query := r.URL.Query()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		if !field.CanSet() {
			continue
		}
		sf := t.Field(i)
		if name := sf.Tag.Get("path"); name != "" {
			if value := r.PathValue(name); value != "" {
				if err := setFieldValue(field, value); err != nil {
					return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, name, err)
				}
			}
			continue
		}
		for _, key := range []string{jsonName(sf), sf.Tag.Get("flag")} {
			if key == "" || !query.Has(key) {
				continue
			}
			if err := setFieldValue(field, query.Get(key)); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArgument, key, err)
			}
		}
	}
	return ptr.Interface(), nil
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get(constants.HeaderContentType))
	return err == nil && mt == constants.ContentTypeJSON
}

func jsonName(sf reflect.StructField) string {
	name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	return name
}

func fieldByTag(v reflect.Value, tag, value string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get(tag) == value && v.Field(i).Kind() == reflect.String {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// setFieldValue sets a reflect.Value from a string
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}
	return nil
}

// HTTPStatus maps an operation error to a response status.
func HTTPStatus(err error) int {
	var parseErr *parser.DocumentParseError
	var notationErr *graph.UnsupportedNotationError
	var cycleErr *graph.CyclicGraphError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidArgument), errors.As(err, &parseErr), errors.As(err, &notationErr):
		return http.StatusBadRequest
	case errors.Is(err, parser.ErrNoRenderableContent), errors.As(err, &cycleErr):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeHTTPError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		utils.ErrorCtx(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", constants.JSONIndent)
	if err := enc.Encode(v); err != nil {
		utils.Error(constants.LogFailedEncodeJSON, err)
	}
}

// GenerateMCPTools creates MCP tool registrations for all operations
func GenerateMCPTools(svc ConverterService) []mcpserver.ToolRegistration {
	var tools []mcpserver.ToolRegistration
	for _, op := range GetAllOperations() {
		if op.SkipMCP || op.mcpHandler == nil {
			continue
		}
		tools = append(tools, mcpserver.ToolRegistration{
			Name:        op.MCPName,
			Description: op.Description,
			Handler:     op.mcpHandler(op, svc),
		})
	}
	return tools
}

func mcpHandlerFor[A any](op *OperationDefinition, svc ConverterService) any {
	return func(ctx context.Context, args A) (*mcp.ToolResponse, error) {
		result, err := op.Handler(ctx, svc, &args)
		if err != nil {
			return nil, err
		}
		return convertToMCPResponse(result)
	}
}

// convertToMCPResponse converts operation result to MCP response
func convertToMCPResponse(result any) (*mcp.ToolResponse, error) {
	if result == nil {
		return mcp.NewToolResponse(mcp.NewTextContent("success")), nil
	}
	if str, ok := result.(string); ok {
		return mcp.NewToolResponse(mcp.NewTextContent(str)), nil
	}
	data, err := json.MarshalIndent(result, "", constants.JSONIndent)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResponse(mcp.NewTextContent(string(data))), nil
}

// ServiceProvider opens a service for a single CLI invocation. The
// returned func releases it.
type ServiceProvider func(ctx context.Context) (ConverterService, func(), error)

// AttachCLICommands adds every generated command to root.
func AttachCLICommands(root *cobra.Command, provide ServiceProvider) {
	for _, cmd := range GenerateCLICommands(provide) {
		root.AddCommand(cmd)
	}
}

// GenerateCLICommands creates CLI commands for all operations
func GenerateCLICommands(provide ServiceProvider) []*cobra.Command {
	var commands []*cobra.Command
	for _, op := range GetAllOperations() {
		if op.SkipCLI {
			continue
		}
		commands = append(commands, generateCLICommand(op, provide))
	}
	return commands
}

func generateCLICommand(op *OperationDefinition, provide ServiceProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   op.CLIUse,
		Short: op.CLIShort,
		Long:  op.Description,
		Args:  cobra.NoArgs,
	}
	if strings.Contains(op.CLIUse, "<") {
		cmd.Args = cobra.ExactArgs(1)
	}
	addCLIFlags(cmd, op.ArgsType)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		opArgs, err := parseCLIArgs(cmd, args, op.ArgsType)
		if err != nil {
			return err
		}
		svc, release, err := provide(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		result, err := op.Handler(cmd.Context(), svc, opArgs)
		if err != nil {
			return err
		}
		return outputCLIResult(result)
	}
	return cmd
}

// addCLIFlags adds flags to a CLI command based on the args type
func addCLIFlags(cmd *cobra.Command, argsType reflect.Type) {
	for i := 0; i < argsType.NumField(); i++ {
		field := argsType.Field(i)
		flagTag := field.Tag.Get("flag")
		if flagTag == "" || flagTag == "-" {
			continue
		}
		desc := field.Tag.Get("description")
		switch field.Type.Kind() {
		case reflect.String:
			cmd.Flags().String(flagTag, "", desc)
		case reflect.Bool:
			cmd.Flags().Bool(flagTag, false, desc)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			cmd.Flags().Int(flagTag, 0, desc)
		}
	}
}

// parseCLIArgs fills a new argsType from the positional argument and flags.
// The positional argument sets the first string field.
func parseCLIArgs(cmd *cobra.Command, args []string, argsType reflect.Type) (any, error) {
	target := reflect.New(argsType)
	v := target.Elem()

	if len(args) > 0 && argsType.NumField() > 0 && v.Field(0).Kind() == reflect.String {
		v.Field(0).SetString(args[0])
	}

	for i := 0; i < argsType.NumField(); i++ {
		flagTag := argsType.Field(i).Tag.Get("flag")
		if flagTag == "" || flagTag == "-" || !cmd.Flags().Changed(flagTag) {
			continue
		}
		value := cmd.Flags().Lookup(flagTag).Value.String()
		if err := setFieldValue(v.Field(i), value); err != nil {
			return nil, fmt.Errorf("invalid --%s: %w", flagTag, err)
		}
	}
	return target.Interface(), nil
}

// outputCLIResult outputs the result of a CLI operation
func outputCLIResult(result any) error {
	if result == nil {
		utils.Info("Success")
		return nil
	}
	if str, ok := result.(string); ok {
		utils.User("%s", str)
		return nil
	}
	data, err := json.MarshalIndent(result, "", constants.JSONIndent)
	if err != nil {
		return err
	}
	utils.User("%s", string(data))
	return nil
}
