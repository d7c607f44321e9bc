package pricesource

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Router picks the price source per ticker: the exchange when it lists the
// asset, the aggregator otherwise. The listing probe and the price fetch
// are separate calls; a listing can in principle change between them, so a
// positive probe never guarantees the fetch succeeds.
type Router struct {
	api      ExchangeAPI
	primary  Source
	fallback Source
	logger   *zap.Logger

	// listing results are stable for the life of a batch run
	listed map[string]bool
}

// NewRouter builds the routing source.
func NewRouter(api ExchangeAPI, primary, fallback Source, logger *zap.Logger) *Router {
	return &Router{
		api:      api,
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		listed:   make(map[string]bool),
	}
}

// AveragePrice routes the fetch to whichever source covers the ticker.
func (r *Router) AveragePrice(ctx context.Context, ticker string, date time.Time, currencies []string) (map[string]decimal.Decimal, error) {
	onExchange, err := r.tickerListed(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if onExchange {
		return r.primary.AveragePrice(ctx, ticker, date, currencies)
	}
	return r.fallback.AveragePrice(ctx, ticker, date, currencies)
}

func (r *Router) tickerListed(ctx context.Context, ticker string) (bool, error) {
	if listed, ok := r.listed[ticker]; ok {
		return listed, nil
	}
	listed, err := r.api.Listed(ctx, ticker+quoteAsset)
	if err != nil {
		return false, errors.Wrapf(err, "resolve price source for %s", ticker)
	}
	if !listed {
		r.logger.Info("ticker not on exchange, using aggregator prices", zap.String("ticker", ticker))
	}
	r.listed[ticker] = listed
	return listed, nil
}
