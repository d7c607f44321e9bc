// Package pricesource turns the raw market-data collaborators into the
// enrichment pipeline's price feed: daily average prices in one or more
// fiat currencies, and span-capped income-history pagination.
package pricesource

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RyanLiu6/crypto-tracker/internal/exchange"
)

// quoteAsset pairs every ticker for the primary source; ADA trades as
// ADAUSDT and USDT is treated as the USD price.
const quoteAsset = "USDT"

// Source answers one question: what was a ticker worth, per currency, on a
// calendar day. Every result carries at least the USD entry.
type Source interface {
	AveragePrice(ctx context.Context, ticker string, date time.Time, currencies []string) (map[string]decimal.Decimal, error)
}

// ExchangeAPI is the narrow surface of the primary (exchange-based) price
// collaborator.
type ExchangeAPI interface {
	Listed(ctx context.Context, symbol string) (bool, error)
	HourlyCandles(ctx context.Context, symbol string, start, end time.Time) ([]exchange.Candle, error)
	IncomeEvents(ctx context.Context, asset string, kind exchange.IncomeKind, start, end time.Time) ([]exchange.IncomeEvent, error)
}

// SnapshotAPI is the narrow surface of the fallback (aggregator) price
// collaborator.
type SnapshotAPI interface {
	SnapshotPrices(ctx context.Context, ticker string, date time.Time, currencies []string) (map[string]decimal.Decimal, error)
}

// FiatConverter is a historical fiat-to-fiat conversion lookup.
type FiatConverter interface {
	Convert(amount decimal.Decimal, from, to string, at time.Time) (decimal.Decimal, error)
}
