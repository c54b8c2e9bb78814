package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/matheuskafuri/milnews/internal/cache"
	"github.com/matheuskafuri/milnews/internal/config"
	"github.com/spf13/cobra"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove every cached news snapshot",
	Long: `Delete all cached snapshots so the next run queries every source.

Only milnews entries are removed; other keys in the cache database are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, log, err := setup(cmd)
		if err != nil {
			return err
		}

		db, err := cache.Open(config.CachePath(), cache.WithLogger(log))
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		stats, err := db.Stats()
		if err != nil {
			return err
		}
		if err := db.Clear(); err != nil {
			return err
		}

		if stats.Entries == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Cache already empty.")
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cached snapshot(s).\n", stats.Entries)
		}
		return nil
	},
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the local cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}

		dbPath := config.CachePath()
		db, err := cache.Open(dbPath, cache.WithTTL(cfg.CacheTTL()), cache.WithLogger(log))
		if err != nil {
			return fmt.Errorf("opening cache: %w", err)
		}
		defer db.Close()

		stats, err := db.Stats()
		if err != nil {
			return err
		}

		var size int64
		if fi, err := os.Stat(dbPath); err == nil {
			size = fi.Size()
		}

		out := cmd.OutOrStdout()
		now := time.Now()
		fmt.Fprintf(out, "Cache: %s\n", dbPath)
		fmt.Fprintf(out, "Snapshots: %d\n", stats.Entries)
		fmt.Fprintf(out, "TTL: %s\n", cfg.CacheTTL())
		if stats.Entries > 0 {
			fmt.Fprintf(out, "Newest: %s\n", relativeTime(stats.Newest, now))
			fmt.Fprintf(out, "Oldest: %s\n", relativeTime(stats.Oldest, now))
		}
		fmt.Fprintf(out, "Size: %s\n", formatBytes(size))
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
