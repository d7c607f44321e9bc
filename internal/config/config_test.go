package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RyanLiu6/crypto-tracker/internal/fx"
	"github.com/RyanLiu6/crypto-tracker/internal/parser"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "key")
	t.Setenv("BINANCE_SECRET_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "key", cfg.BinanceAPIKey)
	require.Equal(t, "secret", cfg.BinanceSecretKey)
	require.True(t, cfg.HasCredentials())
	require.Equal(t, fx.DefaultRatesURL, cfg.RatesURL)
}

func TestLoadRatesURLOverride(t *testing.T) {
	t.Setenv("ECB_RATES_URL", "http://localhost:9/rates.zip")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9/rates.zip", cfg.RatesURL)
}

func TestHasCredentialsFalseWhenMissing(t *testing.T) {
	t.Setenv("BINANCE_API_KEY", "")
	t.Setenv("BINANCE_SECRET_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.False(t, cfg.HasCredentials())
}

func TestLoadRegistryDefaultWhenNoPath(t *testing.T) {
	registry, err := LoadRegistry("")
	require.NoError(t, err)
	require.Equal(t, parser.VariantEpoch, registry.Resolve("ADA"))
}

func TestLoadRegistryOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DOT: epoch\n"), 0o644))

	registry, err := LoadRegistry(path)
	require.NoError(t, err)
	require.Equal(t, parser.VariantEpoch, registry.Resolve("DOT"))
	require.Equal(t, parser.VariantSpread, registry.Resolve("VTHO"))
}

func TestLoadRegistryMissingFile(t *testing.T) {
	_, err := LoadRegistry(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
