package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fiscalxml/processor/internal/storage"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics for the configured store",
	Long: `Show document and item counts for the selected storage backend.

Examples:
  fiscalxml stats --store sqlite --db fiscal.db
  fiscalxml stats --store postgres --dsn postgres://localhost/fiscal`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	if storeDriver == "" {
		return fmt.Errorf("select a storage backend with --store")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.Open(ctx, storage.Config{
		Driver: storeDriver,
		Path:   storePath,
		DSN:    storeDSN,
	}, newLogger())
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(stats)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Documents:\t%d\n", stats.Documents)
	fmt.Fprintf(tw, "Line items:\t%d\n", stats.Items)
	fmt.Fprintf(tw, "Total value:\t%s\n", stats.TotalValue.StringFixed(2))
	for t, n := range stats.ByType {
		fmt.Fprintf(tw, "  %s:\t%d\n", t, n)
	}
	return tw.Flush()
}
