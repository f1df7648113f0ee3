package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gogdb/gogdb/internal/config"
	"github.com/gogdb/gogdb/internal/index"
	"github.com/gogdb/gogdb/internal/storage"
)

// newChangelogCmd creates the changelog command.
func newChangelogCmd() *cobra.Command {
	var (
		storagePath string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "changelog",
		Short: "Show the most recent changelog entries from the index store",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if storagePath != "" {
				cfg.StoragePath = storagePath
			}

			store := storage.New(cfg.StoragePath)
			db, err := index.OpenStore(store.IndexDBPath())
			if err != nil {
				return err
			}
			defer db.Close()

			entries, err := index.RecentChanges(cmd.Context(), db, limit)
			if err != nil {
				return err
			}
			for _, e := range entries {
				line := fmt.Sprintf("%s  %s  %s %s",
					e.Timestamp.Format("2006-01-02 15:04"),
					e.ProductTitle, e.Action, e.Category)
				if e.Detail != "" {
					line += " (" + e.Detail + ")"
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&storagePath, "storage", "", "Catalog data directory (overrides config)")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")

	return cmd
}
