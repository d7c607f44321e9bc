package pricesource

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/internal/exchange"
)

// MaxSpan is the longest date window the income-history endpoints accept
// per call; longer queries are split into sequential sub-ranges.
const MaxSpan = 30 * 24 * time.Hour

// DateRange is a half-open-ish query window; Start and End are both sent
// to the upstream, which treats them inclusively.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// SplitRange cuts [start, end] into consecutive sub-ranges no longer than
// maxSpan. Sub-ranges meet exactly at their boundaries, so a record sitting
// on a boundary may appear in two responses; callers tolerate that.
func SplitRange(start, end time.Time, maxSpan time.Duration) []DateRange {
	if end.Before(start) || maxSpan <= 0 {
		return nil
	}

	var ranges []DateRange
	for cursor := start; cursor.Before(end); cursor = cursor.Add(maxSpan) {
		windowEnd := cursor.Add(maxSpan)
		if windowEnd.After(end) {
			windowEnd = end
		}
		ranges = append(ranges, DateRange{Start: cursor, End: windowEnd})
	}
	if len(ranges) == 0 {
		// start == end still queries the single instant.
		ranges = append(ranges, DateRange{Start: start, End: end})
	}
	return ranges
}

// History fetches complete income histories across the upstream's span cap.
type History struct {
	api    ExchangeAPI
	logger *zap.Logger
}

// NewHistory builds an income-history fetcher.
func NewHistory(api ExchangeAPI, logger *zap.Logger) *History {
	return &History{api: api, logger: logger}
}

// Events returns every income event for the asset in [start, end], issuing
// one upstream call per sub-range and merging the results in ascending
// event-time order.
func (h *History) Events(ctx context.Context, asset string, kind exchange.IncomeKind, start, end time.Time) ([]exchange.IncomeEvent, error) {
	ranges := SplitRange(start, end, MaxSpan)
	h.logger.Debug("fetching income history",
		zap.String("asset", asset),
		zap.String("kind", string(kind)),
		zap.Int("windows", len(ranges)))

	var events []exchange.IncomeEvent
	for _, window := range ranges {
		page, err := h.api.IncomeEvents(ctx, asset, kind, window.Start, window.End)
		if err != nil {
			return nil, errors.Wrapf(err, "income history window %s..%s",
				window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
		}
		events = append(events, page...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time.Before(events[j].Time)
	})
	return events, nil
}
