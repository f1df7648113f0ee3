// Package cmd provides the CLI commands for gogdb.
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/gogdb/gogdb/internal/config"
	"github.com/gogdb/gogdb/internal/logging"
	"github.com/gogdb/gogdb/pkg/version"
)

var (
	cfgPath        string
	debugMode      bool
	loggingCleanup func()
)

// NewRootCmd creates the root command for the gogdb CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gogdb",
		Short: "GOG catalog index tools",
		Long: `gogdb rebuilds the queryable index store for the GOG product
catalog from the JSON data directory: a rank-ordered browse table with a
normalized search key, a flattened changelog table, and per-timestamp
changelog summaries.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("gogdb version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to the config file")
	cmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")

	cmd.PersistentPreRunE = setupLogging
	cmd.PersistentPostRunE = teardownLogging

	cmd.AddCommand(newRebuildCmd())
	cmd.AddCommand(newChangelogCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// setupLogging wires the configured logger as default before any command
// runs.
func setupLogging(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Log.Level
	logCfg.FilePath = cfg.Log.File
	if debugMode {
		logCfg.Level = "debug"
	}

	logger, cleanup, err := logging.Setup(logCfg)
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	loggingCleanup = cleanup
	slog.SetDefault(logger)
	return nil
}

func teardownLogging(_ *cobra.Command, _ []string) error {
	if loggingCleanup != nil {
		loggingCleanup()
		loggingCleanup = nil
	}
	return nil
}
