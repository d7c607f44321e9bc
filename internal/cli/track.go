package cli

import (
	"github.com/spf13/cobra"
)

var trackCmd = &cobra.Command{
	Use:   "track TICKER INPUT_FILE",
	Short: "Enrich a reward export file with historical prices",
	Long: `Reads a CSV of reward records for TICKER, attaches the asset's average
price and value on each record's date, and writes the augmented CSV.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Track(cmd.Context(), args[0], args[1], options())
	},
}
