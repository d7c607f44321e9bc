// Package pipeline orchestrates a batch run: parse or fetch raw records,
// enrich each one with its historical price, and hand the result to the
// CSV sink. Records move Parsed → PriceFetched → Serialized, in input
// order, with no state skipped.
package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/internal/domain"
	"github.com/RyanLiu6/crypto-tracker/internal/exchange"
	"github.com/RyanLiu6/crypto-tracker/internal/parser"
	"github.com/RyanLiu6/crypto-tracker/internal/pricesource"
)

// HistorySource fetches complete income histories (pagination handled
// inside).
type HistorySource interface {
	Events(ctx context.Context, asset string, kind exchange.IncomeKind, start, end time.Time) ([]exchange.IncomeEvent, error)
}

// Result is the outcome of a run: the enriched records in output order and
// the rows skipped because no price existed for their date.
type Result struct {
	Records []domain.Record
	Skipped []*domain.PriceUnavailableError
}

// Tracker runs the enrichment pipeline for one ticker.
type Tracker struct {
	ticker     string
	currencies []string
	source     pricesource.Source
	history    HistorySource
	registry   parser.Registry
	failFast   bool
	logger     *zap.Logger
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithFailFast makes the first missing price abort the run instead of
// skipping the record.
func WithFailFast() Option {
	return func(t *Tracker) { t.failFast = true }
}

// WithRegistry overrides the default ticker→variant registry.
func WithRegistry(r parser.Registry) Option {
	return func(t *Tracker) { t.registry = r }
}

// New builds a Tracker. currencies are the extra reporting currencies
// beyond USD.
func New(ticker string, currencies []string, source pricesource.Source, history HistorySource, logger *zap.Logger, opts ...Option) *Tracker {
	t := &Tracker{
		ticker:     ticker,
		currencies: currencies,
		source:     source,
		history:    history,
		registry:   parser.DefaultRegistry(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ProcessFile parses a reward export and enriches every record, preserving
// input row order in the output.
func (t *Tracker) ProcessFile(ctx context.Context, input io.Reader) (*Result, error) {
	variant := t.registry.Resolve(t.ticker)
	t.logger.Info("parsing reward file",
		zap.String("ticker", t.ticker),
		zap.String("variant", string(variant)))

	records, err := parser.New(variant, t.currencies).Parse(input)
	if err != nil {
		return nil, err
	}
	return t.enrich(ctx, records)
}

// ProcessIncome replaces the parse step with an exchange income-history
// query: each upstream event becomes an accrual record dated at the
// event's calendar day. The history source returns events already sorted
// ascending by event time, and that order is preserved.
func (t *Tracker) ProcessIncome(ctx context.Context, kind exchange.IncomeKind, start, end time.Time) (*Result, error) {
	events, err := t.history.Events(ctx, t.ticker, kind, start, end)
	if err != nil {
		return nil, errors.Wrapf(err, "income history for %s", t.ticker)
	}
	t.logger.Info("fetched income history",
		zap.String("ticker", t.ticker),
		zap.String("kind", string(kind)),
		zap.Int("events", len(events)))

	records := make([]domain.Record, 0, len(events))
	for _, event := range events {
		records = append(records, domain.NewAccrualRecord(event.Time, event.Amount, t.currencies))
	}
	return t.enrich(ctx, records)
}

// enrich fetches one price per record, in order, and attaches the
// valuation. Missing prices skip the record (or abort under fail-fast);
// every other error is fatal.
func (t *Tracker) enrich(ctx context.Context, records []domain.Record) (*Result, error) {
	result := &Result{}
	for _, record := range records {
		prices, err := t.source.AveragePrice(ctx, t.ticker, record.PricingDate(), t.currencies)
		if err != nil {
			var unavailable *domain.PriceUnavailableError
			if errors.As(err, &unavailable) {
				if t.failFast {
					return nil, err
				}
				t.logger.Warn("skipping record, price unavailable",
					zap.Time("date", unavailable.Date),
					zap.Error(unavailable.Err))
				result.Skipped = append(result.Skipped, unavailable)
				continue
			}
			return nil, err
		}

		if err := record.Attach(domain.NewValuation(record.Quantity(), prices)); err != nil {
			return nil, errors.Wrap(err, "attach valuation")
		}
		result.Records = append(result.Records, record)
	}

	if len(result.Skipped) > 0 {
		t.logger.Warn("records omitted from output, no price data",
			zap.String("ticker", t.ticker),
			zap.Int("omitted", len(result.Skipped)),
			zap.Int("written", len(result.Records)))
	}
	return result, nil
}
