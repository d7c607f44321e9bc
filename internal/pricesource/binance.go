package pricesource

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/internal/dates"
	"github.com/RyanLiu6/crypto-tracker/internal/domain"
	"github.com/RyanLiu6/crypto-tracker/internal/exchange"
)

// ExchangeSource estimates a day's price from the exchange's hourly
// candles: each candle contributes the mean of its open and close, and the
// day price is the mean of those per-candle means. Both averaging levels
// are part of the contract, not an implementation shortcut.
type ExchangeSource struct {
	api    ExchangeAPI
	fx     FiatConverter
	logger *zap.Logger
}

// NewExchangeSource builds the primary price source.
func NewExchangeSource(api ExchangeAPI, fx FiatConverter, logger *zap.Logger) *ExchangeSource {
	return &ExchangeSource{api: api, fx: fx, logger: logger}
}

// AveragePrice prices the ticker on the given calendar day in USD plus the
// requested extra currencies.
func (s *ExchangeSource) AveragePrice(ctx context.Context, ticker string, date time.Time, currencies []string) (map[string]decimal.Decimal, error) {
	if len(currencies) > 0 && s.fx == nil {
		return nil, errors.New("extra currencies requested but no fiat converter configured")
	}
	start, end := dates.DayBounds(date)

	candles, err := s.api.HourlyCandles(ctx, ticker+quoteAsset, start, end)
	if err != nil {
		return nil, errors.Wrapf(err, "average price for %s", ticker)
	}
	if len(candles) == 0 {
		return nil, &domain.PriceUnavailableError{
			Ticker: ticker,
			Date:   date,
			Err:    errors.New("exchange returned no candles for the day"),
		}
	}

	usd := averageCandles(candles)
	prices := map[string]decimal.Decimal{domain.FiatUSD: usd}

	// Fiat conversions are keyed at the middle of the trading day so a rate
	// from the wrong side of a date boundary is never used.
	midday := dates.Midday(date)
	for _, currency := range currencies {
		converted, err := s.fx.Convert(usd, domain.FiatUSD, currency, midday)
		if err != nil {
			s.logger.Warn("fiat conversion unavailable",
				zap.String("ticker", ticker),
				zap.String("currency", currency),
				zap.Time("date", date),
				zap.Error(err))
			continue
		}
		prices[currency] = converted
	}
	return prices, nil
}

// averageCandles applies the two-level averaging contract.
func averageCandles(candles []exchange.Candle) decimal.Decimal {
	two := decimal.NewFromInt(2)
	sum := decimal.Zero
	for _, c := range candles {
		sum = sum.Add(c.Open.Add(c.Close).Div(two))
	}
	return sum.Div(decimal.NewFromInt(int64(len(candles))))
}
