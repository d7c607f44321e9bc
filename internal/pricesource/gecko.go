package pricesource

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RyanLiu6/crypto-tracker/internal/domain"
	"github.com/RyanLiu6/crypto-tracker/internal/exchange"
)

// SnapshotSource is the fallback price source: one daily snapshot price per
// currency from the aggregator, used for assets the exchange does not list.
type SnapshotSource struct {
	api SnapshotAPI
}

// NewSnapshotSource builds the fallback price source.
func NewSnapshotSource(api SnapshotAPI) *SnapshotSource {
	return &SnapshotSource{api: api}
}

// AveragePrice returns the aggregator's snapshot price for the day. Extra
// currencies come straight from the aggregator's multi-currency quote, no
// fiat conversion involved.
func (s *SnapshotSource) AveragePrice(ctx context.Context, ticker string, date time.Time, currencies []string) (map[string]decimal.Decimal, error) {
	prices, err := s.api.SnapshotPrices(ctx, ticker, date, currencies)
	if err != nil {
		if errors.Is(err, exchange.ErrMissingMarketData) || errors.Is(err, exchange.ErrUnknownGeckoAsset) {
			return nil, &domain.PriceUnavailableError{Ticker: ticker, Date: date, Err: err}
		}
		return nil, errors.Wrapf(err, "snapshot price for %s", ticker)
	}
	if _, ok := prices[domain.FiatUSD]; !ok {
		return nil, &domain.PriceUnavailableError{
			Ticker: ticker,
			Date:   date,
			Err:    errors.New("aggregator quote has no USD entry"),
		}
	}
	return prices, nil
}
