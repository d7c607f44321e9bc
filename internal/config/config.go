// Package config loads credentials and endpoints from the environment,
// with an optional .env file for local runs.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/RyanLiu6/crypto-tracker/internal/fx"
	"github.com/RyanLiu6/crypto-tracker/internal/parser"
)

const (
	envAPIKey    = "BINANCE_API_KEY"
	envSecretKey = "BINANCE_SECRET_KEY"
	envRatesURL  = "ECB_RATES_URL"
)

// Config carries everything the pipeline's collaborators need at startup.
type Config struct {
	BinanceAPIKey    string
	BinanceSecretKey string
	RatesURL         string
}

// Load reads the environment, after overlaying a .env file if one exists
// in the working directory. Values already set in the environment win.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault(envRatesURL, fx.DefaultRatesURL)

	return &Config{
		BinanceAPIKey:    v.GetString(envAPIKey),
		BinanceSecretKey: v.GetString(envSecretKey),
		RatesURL:         v.GetString(envRatesURL),
	}, nil
}

// HasCredentials reports whether the exchange credentials needed by the
// income-history endpoints are present. Public market data needs none.
func (c *Config) HasCredentials() bool {
	return c.BinanceAPIKey != "" && c.BinanceSecretKey != ""
}

// LoadRegistry returns the ticker→variant registry, overlaid with the
// given YAML file when path is non-empty.
func LoadRegistry(path string) (parser.Registry, error) {
	registry := parser.DefaultRegistry()
	if path == "" {
		return registry, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read registry file %s", path)
	}
	if err := registry.MergeYAML(data); err != nil {
		return nil, err
	}
	return registry, nil
}
