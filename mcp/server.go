package mcp

import (
	"context"
	"fmt"
	"io"

	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/utils"
	mcp "github.com/metoro-io/mcp-golang"
	mcphttp "github.com/metoro-io/mcp-golang/transport/http"
	mcpstdio "github.com/metoro-io/mcp-golang/transport/stdio"
)

// ToolRegistration holds a tool's registration info for the MCP server.
type ToolRegistration struct {
	Name        string
	Description string
	Handler     any // must be a func(ctx, args) (*mcp.ToolResponse, error) with a struct args type
}

// Options selects the MCP transport.
type Options struct {
	// Stdio serves on stdin/stdout; otherwise Addr is used for HTTP.
	Stdio bool
	Addr  string
	Debug bool
}

// Serve starts the flowviz MCP server and blocks until ctx is done (stdio)
// or the HTTP listener fails.
func Serve(ctx context.Context, opts Options, tools []ToolRegistration) error {
	// stdout belongs to the protocol on stdio; internal logs stay on stderr
	if opts.Stdio && !opts.Debug {
		utils.SetUserOutput(io.Discard)
	}

	var server *mcp.Server
	if opts.Stdio {
		utils.Info(constants.MsgMCPStarting, "stdio")
		server = mcp.NewServer(mcpstdio.NewStdioServerTransport())
	} else {
		addr := opts.Addr
		if addr == "" {
			addr = constants.DefaultMCPAddr
		}
		utils.Info(constants.MsgMCPStarting, "http://"+addr+constants.HTTPPathMCP)
		server = mcp.NewServer(mcphttp.NewHTTPTransport(constants.HTTPPathMCP).WithAddr(addr))
	}
	if err := RegisterAllTools(server, tools); err != nil {
		return err
	}
	if err := server.Serve(); err != nil {
		return err
	}
	if opts.Stdio {
		<-ctx.Done()
		utils.Info("Shutting down MCP stdio server")
	}
	return nil
}

// RegisterAllTools registers all provided tools with the MCP server.
func RegisterAllTools(server *mcp.Server, tools []ToolRegistration) error {
	for _, t := range tools {
		if err := server.RegisterTool(t.Name, t.Description, t.Handler); err != nil {
			return fmt.Errorf("failed to register MCP tool %s: %w", t.Name, err)
		}
	}
	return nil
}
