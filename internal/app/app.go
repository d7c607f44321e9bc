// Package app wires the collaborators together and exposes one method per
// CLI command.
package app

import (
	"bytes"
	"context"
	"os"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/internal/cleaner"
	"github.com/RyanLiu6/crypto-tracker/internal/config"
	"github.com/RyanLiu6/crypto-tracker/internal/csvsink"
	"github.com/RyanLiu6/crypto-tracker/internal/dates"
	"github.com/RyanLiu6/crypto-tracker/internal/exchange"
	"github.com/RyanLiu6/crypto-tracker/internal/fx"
	"github.com/RyanLiu6/crypto-tracker/internal/pipeline"
	"github.com/RyanLiu6/crypto-tracker/internal/pricesource"
)

// Options are the flags shared by the tracking commands.
type Options struct {
	Output       string
	Currencies   []string
	RegistryPath string
	FailFast     bool
}

// App owns the wired collaborators for one process run.
type App struct {
	cfg    *config.Config
	logger *zap.Logger

	binance *exchange.Binance
	gecko   *exchange.Gecko
	sink    *csvsink.Sink
}

// New wires the exchange collaborators from configuration.
func New(cfg *config.Config, logger *zap.Logger) *App {
	client := binance.NewClient(cfg.BinanceAPIKey, cfg.BinanceSecretKey)
	return &App{
		cfg:     cfg,
		logger:  logger,
		binance: exchange.NewBinance(client, logger),
		gecko:   exchange.NewGecko(nil, logger),
		sink:    csvsink.New(logger),
	}
}

// Track enriches a reward export file for a ticker and writes the output
// CSV.
func (a *App) Track(ctx context.Context, ticker, inputPath string, opts Options) error {
	ticker = strings.ToUpper(ticker)

	tracker, err := a.tracker(ctx, ticker, opts)
	if err != nil {
		return err
	}

	input, err := os.Open(inputPath)
	if err != nil {
		return errors.Wrapf(err, "open input file %s", inputPath)
	}
	defer input.Close()

	result, err := tracker.ProcessFile(ctx, input)
	if err != nil {
		return err
	}
	return a.write(ticker, opts.Output, result)
}

// Rewards reconstructs income (airdrop or savings interest) records from
// the exchange's history between two dates and writes the output CSV.
func (a *App) Rewards(ctx context.Context, ticker, startStr, endStr, incomeType string, opts Options) error {
	ticker = strings.ToUpper(ticker)

	if !a.cfg.HasCredentials() {
		return errors.New("income history requires BINANCE_API_KEY and BINANCE_SECRET_KEY")
	}

	kind, err := incomeKind(incomeType)
	if err != nil {
		return err
	}
	start, err := dates.Parse(startStr)
	if err != nil {
		return err
	}
	end := time.Now().UTC()
	if endStr != "" {
		if end, err = dates.Parse(endStr); err != nil {
			return err
		}
		_, end = dates.DayBounds(end)
	}
	if end.Before(start) {
		return errors.Errorf("end date %s precedes start date %s", endStr, startStr)
	}

	tracker, err := a.tracker(ctx, ticker, opts)
	if err != nil {
		return err
	}

	result, err := tracker.ProcessIncome(ctx, kind, start, end)
	if err != nil {
		return err
	}
	return a.write(ticker, opts.Output, result)
}

// Clean filters a Binance account statement down to accounting-relevant
// operations. Nothing is written when every row filters out.
func (a *App) Clean(inputPath, outputPath string) error {
	input, err := os.Open(inputPath)
	if err != nil {
		return errors.Wrapf(err, "open statement %s", inputPath)
	}
	defer input.Close()

	var buf bytes.Buffer
	kept, err := cleaner.Clean(input, &buf)
	if err != nil {
		return err
	}

	if outputPath == "" {
		outputPath = csvsink.DefaultFilename("binance_data")
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return errors.Wrapf(err, "write cleaned statement %s", outputPath)
	}
	a.logger.Info("statement cleaned",
		zap.String("path", outputPath), zap.Int("rows", kept))
	return nil
}

// tracker assembles the enrichment pipeline for one run.
func (a *App) tracker(ctx context.Context, ticker string, opts Options) (*pipeline.Tracker, error) {
	currencies := normalizeCurrencies(opts.Currencies)

	var converter pricesource.FiatConverter
	if len(currencies) > 0 {
		a.logger.Info("loading fiat reference rates", zap.String("url", a.cfg.RatesURL))
		loaded, err := fx.Load(ctx, a.cfg.RatesURL, nil)
		if err != nil {
			return nil, err
		}
		converter = loaded
	}

	registry, err := config.LoadRegistry(opts.RegistryPath)
	if err != nil {
		return nil, err
	}

	primary := pricesource.NewExchangeSource(a.binance, converter, a.logger)
	fallback := pricesource.NewSnapshotSource(a.gecko)
	router := pricesource.NewRouter(a.binance, primary, fallback, a.logger)
	history := pricesource.NewHistory(a.binance, a.logger)

	pipelineOpts := []pipeline.Option{pipeline.WithRegistry(registry)}
	if opts.FailFast {
		pipelineOpts = append(pipelineOpts, pipeline.WithFailFast())
	}
	return pipeline.New(ticker, currencies, router, history, a.logger, pipelineOpts...), nil
}

func (a *App) write(ticker, output string, result *pipeline.Result) error {
	if output == "" {
		output = csvsink.DefaultFilename(ticker)
	}
	if err := a.sink.WriteFile(output, ticker, result.Records); err != nil {
		return err
	}
	for _, skipped := range result.Skipped {
		a.logger.Warn("row omitted", zap.Error(skipped))
	}
	return nil
}

func incomeKind(name string) (exchange.IncomeKind, error) {
	switch strings.ToLower(name) {
	case "airdrop":
		return exchange.IncomeAirdrop, nil
	case "savings":
		return exchange.IncomeSavings, nil
	default:
		return "", errors.Errorf("unknown income type %q, want airdrop or savings", name)
	}
}

func normalizeCurrencies(currencies []string) []string {
	out := make([]string, 0, len(currencies))
	for _, c := range currencies {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c == "" || c == "USD" {
			continue
		}
		out = append(out, c)
	}
	return out
}
