package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagQuery       string
	flagCount       int
	flagSince       string
	flagConfig      string
	flagVerbose     bool
	flagNoCacheFile bool
)

var rootCmd = &cobra.Command{
	Use:   "milnews",
	Short: "Military and defense news aggregator",
	Long: `milnews queries NewsAPI, TheNewsAPI and a curated list of defense feeds
concurrently, keeps only military and defense coverage, and prints one
deduplicated newest-first feed. Results are cached for a short while and
served from the cache when every source is down.

A run is bounded by four times http_timeout. Sources that have not answered
by then are cancelled and treated as failed.`,
	SilenceUsage: true,
	RunE:         runFetch,
}

func init() {
	rootCmd.Flags().StringVarP(&flagQuery, "query", "q", "", "search query (default from config, \"defense\")")
	rootCmd.Flags().IntVarP(&flagCount, "count", "n", 0, "number of articles (default from config, 20)")
	rootCmd.Flags().StringVar(&flagSince, "since", "", "only show articles from the last duration (e.g., 2d, 12h)")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log debug output to stderr")
	rootCmd.PersistentFlags().BoolVar(&flagNoCacheFile, "no-cache-file", false, "keep the cache in memory for this run only")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(clearCacheCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(checkCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "milnews %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}
