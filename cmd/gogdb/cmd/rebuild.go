package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/gogdb/gogdb/internal/config"
	"github.com/gogdb/gogdb/internal/index"
	"github.com/gogdb/gogdb/internal/output"
	"github.com/gogdb/gogdb/internal/storage"
	"github.com/gogdb/gogdb/internal/updater"
)

// newRebuildCmd creates the rebuild command.
func newRebuildCmd() *cobra.Command {
	var storagePath string

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Rebuild the product index store from the catalog data",
		Long: `Rebuild derives the full index store from scratch: every stored
product is re-indexed into a staging store which is then published
atomically over the live one. A failed rebuild leaves the live store
untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if storagePath != "" {
				cfg.StoragePath = storagePath
			}
			return runRebuild(cmd.Context(), cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&storagePath, "storage", "", "Catalog data directory (overrides config)")

	return cmd
}

// runRebuild wires storage, the index rebuilder, and the id-mapping
// processor into one update run.
func runRebuild(ctx context.Context, cmd *cobra.Command, cfg config.Config) error {
	store := storage.New(cfg.StoragePath)
	out := output.New(cmd.OutOrStdout())

	runner := updater.NewRunner(store,
		index.NewRebuilder(store.IndexDBPath(), out),
		updater.NewIDMapProcessor(store),
	)

	if err := runner.Run(ctx); err != nil {
		out.Errorf("rebuild failed: %v", err)
		return err
	}
	return nil
}
