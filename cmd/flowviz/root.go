package main

import (
	"context"
	"os"

	"github.com/awantoch/flowviz/api"
	"github.com/awantoch/flowviz/config"
	"github.com/awantoch/flowviz/constants"
	"github.com/awantoch/flowviz/utils"
	"github.com/spf13/cobra"
)

var (
	exit       = os.Exit
	configPath string
	debug      bool
)

// NewRootCmd creates the root 'flowviz' command with persistent flags and subcommands.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "flowviz",
		Short:         constants.DescRootCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath, "Path to flowviz config JSON")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug {
			utils.SetMode("debug")
		}
	}

	rootCmd.AddCommand(newRenderCmd(), newServeCmd(), newMCPCmd())
	api.AttachCLICommands(rootCmd, openService)
	return rootCmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, utils.Errorf("failed to load config %s: %w", configPath, err)
	}
	return cfg, nil
}

// openService is the api.ServiceProvider used by generated commands.
func openService(ctx context.Context) (api.ConverterService, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	return api.InitializeDependencies(ctx, cfg)
}
