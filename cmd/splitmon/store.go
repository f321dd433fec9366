package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wgold/splitmon/internal/store"
	"github.com/wgold/splitmon/pkg/types"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Inspect the on-disk cache",
	Long: `Store prints row counts for each cache table (filing texts, seen
accessions, ticker map, prices) and the crawl cursor position.`,
	RunE: runStore,
}

func init() {
	storeCmd.Flags().String("data-dir", defaultDataDir, "base directory for the cache database")

	rootCmd.AddCommand(storeCmd)
}

func runStore(cmd *cobra.Command, args []string) error {
	dataDir, _ := cmd.Flags().GetString("data-dir")

	st, err := store.New(types.StoreConfig{DataDir: dataDir}, os.Stderr)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	stats, err := st.CacheStats(ctx)
	if err != nil {
		return err
	}
	cp, err := st.Checkpoint(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Filing texts:    %d\n", stats.Filings)
	fmt.Printf("Seen accessions: %d\n", stats.Seen)
	fmt.Printf("Ticker map:      %d\n", stats.Tickers)
	fmt.Printf("Cached prices:   %d\n", stats.Prices)
	fmt.Printf("Crawl cursor:    %d of %d", cp.Cursor, cp.UniverseSize)
	if !cp.UpdatedAt.IsZero() {
		fmt.Printf(" (updated %s)", cp.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()
	return nil
}
