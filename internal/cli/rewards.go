package cli

import (
	"github.com/spf13/cobra"
)

var (
	rewardsEndDate    string
	rewardsIncomeType string
)

var rewardsCmd = &cobra.Command{
	Use:   "rewards TICKER START_DATE",
	Short: "Track exchange income (airdrops or savings interest) per day",
	Long: `Queries the exchange's income history for TICKER from START_DATE
(MM/DD/YYYY) to now, prices each payout on its day, and writes the
augmented CSV. Requires exchange API credentials.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Rewards(cmd.Context(), args[0], args[1], rewardsEndDate, rewardsIncomeType, options())
	},
}

func init() {
	rewardsCmd.Flags().StringVar(&rewardsEndDate, "end", "", "End date (MM/DD/YYYY, inclusive); defaults to now")
	rewardsCmd.Flags().StringVar(&rewardsIncomeType, "income-type", "airdrop", "Income type: airdrop or savings")
}
