// Package cli defines the crypto-tracker command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/internal/app"
	"github.com/RyanLiu6/crypto-tracker/internal/config"
)

var (
	outputPath   string
	currencies   []string
	registryPath string
	failFast     bool

	logger    *zap.Logger
	appHandle *app.App
)

var rootCmd = &cobra.Command{
	Use:   "crypto-tracker",
	Short: "Enrich cryptocurrency reward records with historical fiat values",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if appHandle != nil {
			return nil
		}

		var err error
		logger, err = zap.NewProduction()
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		appHandle = app.New(cfg, logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&outputPath, "output", "", "Output filename; generated from ticker and time when empty")
	rootCmd.PersistentFlags().StringSliceVar(&currencies, "currencies", nil, "Additional reporting currencies beyond USD, e.g. CAD,EUR")
	rootCmd.PersistentFlags().StringVar(&registryPath, "registry", "", "YAML file overriding the ticker-to-variant registry")
	rootCmd.PersistentFlags().BoolVar(&failFast, "fail-fast", false, "Abort on the first record with no price data")

	rootCmd.AddCommand(trackCmd)
	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(cleanCmd)
}

func getApp() *app.App {
	if appHandle == nil {
		panic("application not initialized; PersistentPreRunE not executed")
	}
	return appHandle
}

func options() app.Options {
	return app.Options{
		Output:       outputPath,
		Currencies:   currencies,
		RegistryPath: registryPath,
		FailFast:     failFast,
	}
}
