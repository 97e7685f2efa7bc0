package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/awantoch/flowviz/api"
	"github.com/awantoch/flowviz/constants"
	mcpserver "github.com/awantoch/flowviz/mcp"
	"github.com/spf13/cobra"
)

// newMCPCmd creates the 'mcp' command group.
func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   constants.CmdMCP,
		Short: constants.DescMCPCommands,
	}
	cmd.AddCommand(newMCPServeCmd())
	return cmd
}

func newMCPServeCmd() *cobra.Command {
	var stdio bool
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: constants.DescMCPServe,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			svc, cleanup, err := openService(ctx)
			if err != nil {
				return err
			}
			defer cleanup()
			return mcpserver.Serve(ctx, mcpserver.Options{Stdio: stdio, Addr: addr, Debug: debug}, api.GenerateMCPTools(svc))
		},
	}
	cmd.Flags().BoolVar(&stdio, "stdio", true, "serve over stdin/stdout instead of HTTP (default)")
	cmd.Flags().StringVar(&addr, "addr", constants.DefaultMCPAddr, "listen address for HTTP mode")
	return cmd
}
