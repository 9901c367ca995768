package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/randalmurphal/flowcanvas/internal/logging"
	"github.com/randalmurphal/flowcanvas/pkg/flowcanvas/config"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "flowcanvas",
		Short:         "flowcanvas edits and submits node pipelines",
		Long:          `flowcanvas keeps a graph of typed nodes joined by wires, derives template node inputs from their text, and submits the pipeline to a parser service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Persistent flags (available to all commands)
	root.PersistentFlags().String("config", "", "Settings file (.yaml, .yml or .json)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(), newParseCmd(), newDemoCmd(), newVersionCmd())
	return root
}

// loadSettings reads --config and applies --log-level when given.
func loadSettings(cmd *cobra.Command) (config.Settings, error) {
	path, _ := cmd.Flags().GetString("config")
	s, err := config.LoadSettings(path)
	if err != nil {
		return config.Settings{}, err
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		s.LogLevel = f.Value.String()
	}
	return s, nil
}

func newLogger(s config.Settings) (*slog.Logger, error) {
	level, err := logging.ParseLevel(s.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}
