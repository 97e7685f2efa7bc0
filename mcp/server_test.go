package mcp

import (
	"context"
	"io"
	"testing"

	mcp "github.com/metoro-io/mcp-golang"
	mcpstdio "github.com/metoro-io/mcp-golang/transport/stdio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noArgs struct{}

type echoArgs struct {
	Text string `json:"text" jsonschema:"required,description=Text to echo"`
}

// startTestServer launches an in-memory stdio MCP server with the given tool registrations and returns a client.
func startTestServer(t *testing.T, regs []ToolRegistration) *mcp.Client {
	t.Helper()
	serverReader, clientWriter := io.Pipe()
	clientReader, serverWriter := io.Pipe()
	server := mcp.NewServer(mcpstdio.NewStdioServerTransportWithIO(serverReader, serverWriter))
	require.NoError(t, RegisterAllTools(server, regs))
	go func() {
		if err := server.Serve(); err != nil {
			t.Errorf("MCP server Serve failed: %v", err)
		}
	}()
	client := mcp.NewClient(mcpstdio.NewStdioServerTransportWithIO(clientReader, clientWriter))
	_, err := client.Initialize(context.Background())
	require.NoError(t, err)
	return client
}

func TestListTools(t *testing.T) {
	regs := []ToolRegistration{
		{
			Name:        "flowviz_list_notations",
			Description: "list notations",
			Handler: func(ctx context.Context, args noArgs) (*mcp.ToolResponse, error) {
				return mcp.NewToolResponse(mcp.NewTextContent(`["mermaid","plantuml"]`)), nil
			},
		},
		{
			Name:        "flowviz_echo",
			Description: "echo",
			Handler: func(ctx context.Context, args echoArgs) (*mcp.ToolResponse, error) {
				return mcp.NewToolResponse(mcp.NewTextContent(args.Text)), nil
			},
		},
	}
	client := startTestServer(t, regs)
	resp, err := client.ListTools(context.Background(), new(string))
	require.NoError(t, err)
	assert.Len(t, resp.Tools, len(regs))
}

func TestCallTool(t *testing.T) {
	regs := []ToolRegistration{
		{
			Name:        "flowviz_echo",
			Description: "echo",
			Handler: func(ctx context.Context, args echoArgs) (*mcp.ToolResponse, error) {
				return mcp.NewToolResponse(mcp.NewTextContent("echo: " + args.Text)), nil
			},
		},
	}
	client := startTestServer(t, regs)
	resp, err := client.CallTool(context.Background(), "flowviz_echo", echoArgs{Text: "flow"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Content)
	require.NotNil(t, resp.Content[0].TextContent)
	assert.Equal(t, "echo: flow", resp.Content[0].TextContent.Text)
}

func TestRegisterAllTools_RejectsBadHandler(t *testing.T) {
	server := mcp.NewServer(mcpstdio.NewStdioServerTransport())
	err := RegisterAllTools(server, []ToolRegistration{{Name: "bad", Description: "not a func", Handler: 42}})
	assert.Error(t, err)
}
