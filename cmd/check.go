package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <title> [description] [url]",
	Short: "Explain whether an article would pass the relevance filter",
	Example: `  milnews check "Navy commissions new destroyer"
  milnews check "Army beats Navy" "college football rivalry" https://espn.com/story`,
	Args: cobra.RangeArgs(1, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup(cmd)
		if err != nil {
			return fmt.Errorf("checking relevance: %w", err)
		}
		var title, desc, url string
		title = args[0]
		if len(args) > 1 {
			desc = args[1]
		}
		if len(args) > 2 {
			url = args[2]
		}
		policy := cfg.Policy()
		renderVerdict(cmd.OutOrStdout(), policy.Explain(title, desc, url))
		return nil
	},
}
