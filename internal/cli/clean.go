package cli

import (
	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean STATEMENT_FILE",
	Short: "Filter a Binance account statement to accounting-relevant rows",
	Long: `Drops savings and staking rows from a Binance account statement,
keeping deposits, withdrawals, buys, sells, fees, transaction-related rows
and small-asset exchanges. Those dropped categories are reconstructed from
income history by the rewards command instead.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Clean(args[0], outputPath)
	},
}
