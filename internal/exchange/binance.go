// Package exchange wraps the third-party market-data collaborators behind
// narrow interfaces: the Binance client for listed assets and income
// history, and CoinGecko as the fallback price feed.
package exchange

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/internal/dates"
	"github.com/RyanLiu6/crypto-tracker/pkg/retrier"
)

const (
	klineInterval = "1h"
	// one local calendar day never produces more than 24 hourly candles
	klineLimit = 24

	dividendPageLimit = 500
	savingsPageLimit  = 100
)

// binanceErrInvalidSymbol is the Binance API code for an unknown trading
// symbol, which the listing check treats as "not listed" rather than a
// failure.
const binanceErrInvalidSymbol = -1121

// Candle is one intraday OHLC bar reduced to the open/close pair the
// averaging contract needs.
type Candle struct {
	OpenTime  time.Time
	Open      decimal.Decimal
	Close     decimal.Decimal
	CloseTime time.Time
}

// IncomeKind selects which Binance income history endpoint to query.
type IncomeKind string

const (
	// IncomeAirdrop covers asset dividend records (airdrops, distributions).
	IncomeAirdrop IncomeKind = "AIRDROP"
	// IncomeSavings covers flexible-earn interest payouts.
	IncomeSavings IncomeKind = "SAVINGS"
)

// IncomeEvent is one reward or interest payout reported by the exchange.
type IncomeEvent struct {
	Time   time.Time
	Amount decimal.Decimal
}

// Binance adapts the go-binance client to the surface the price source
// needs. All calls go through the retrier; data-not-found conditions are
// marked permanent so they surface immediately.
type Binance struct {
	client  *binance.Client
	retrier *retrier.Retrier
	logger  *zap.Logger
}

// NewBinance wraps an authenticated go-binance client.
func NewBinance(client *binance.Client, logger *zap.Logger) *Binance {
	return &Binance{
		client:  client,
		retrier: retrier.New(),
		logger:  logger,
	}
}

// Listed reports whether the symbol trades on Binance. This is a fast
// existence probe only; a later price fetch can still fail independently.
func (b *Binance) Listed(ctx context.Context, symbol string) (bool, error) {
	listed, err := retrier.DoWithData(b.retrier, ctx, func(ctx context.Context) (bool, error) {
		_, err := b.client.NewListPricesService().Symbol(symbol).Do(ctx)
		if err != nil {
			var apiErr *common.APIError
			if errors.As(err, &apiErr) && apiErr.Code == binanceErrInvalidSymbol {
				return false, retrier.Permanent(errNotListed)
			}
			return false, errors.Wrapf(err, "listing check for %s", symbol)
		}
		return true, nil
	})
	if errors.Is(err, errNotListed) {
		b.logger.Debug("symbol not listed on binance", zap.String("symbol", symbol))
		return false, nil
	}
	return listed, err
}

var errNotListed = errors.New("symbol not listed")

// HourlyCandles fetches the 1h klines covering [start, end].
func (b *Binance) HourlyCandles(ctx context.Context, symbol string, start, end time.Time) ([]Candle, error) {
	klines, err := retrier.DoWithData(b.retrier, ctx, func(ctx context.Context) ([]*binance.Kline, error) {
		return b.client.NewKlinesService().
			Symbol(symbol).
			Interval(klineInterval).
			StartTime(start.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(klineLimit).
			Do(ctx)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch klines for %s", symbol)
	}

	candles := make([]Candle, 0, len(klines))
	for i, k := range klines {
		// Binance occasionally returns a candle closing past the requested
		// window; it belongs to the next day and is dropped.
		if k.CloseTime > end.UnixMilli() {
			continue
		}
		open, err := decimal.NewFromString(k.Open)
		if err != nil {
			return nil, errors.Wrapf(err, "parse open price at index %d", i)
		}
		close, err := decimal.NewFromString(k.Close)
		if err != nil {
			return nil, errors.Wrapf(err, "parse close price at index %d", i)
		}
		candles = append(candles, Candle{
			OpenTime:  dates.FromMilli(k.OpenTime),
			Open:      open,
			Close:     close,
			CloseTime: dates.FromMilli(k.CloseTime),
		})
	}
	return candles, nil
}

// IncomeEvents fetches one window of income history for an asset. Windows
// longer than the API's span cap must be split by the caller; this method
// issues exactly one upstream query.
func (b *Binance) IncomeEvents(ctx context.Context, asset string, kind IncomeKind, start, end time.Time) ([]IncomeEvent, error) {
	switch kind {
	case IncomeAirdrop:
		return b.dividendEvents(ctx, asset, start, end)
	case IncomeSavings:
		return b.savingsEvents(ctx, asset, start, end)
	default:
		return nil, errors.Errorf("unknown income kind %q", kind)
	}
}

func (b *Binance) dividendEvents(ctx context.Context, asset string, start, end time.Time) ([]IncomeEvent, error) {
	res, err := retrier.DoWithData(b.retrier, ctx, func(ctx context.Context) (*binance.DividendResponseWrapper, error) {
		return b.client.NewAssetDividendService().
			Asset(asset).
			StartTime(start.UnixMilli()).
			EndTime(end.UnixMilli()).
			Limit(dividendPageLimit).
			Do(ctx)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "fetch dividend history for %s", asset)
	}
	if res == nil || res.Rows == nil {
		return nil, nil
	}

	rows := *res.Rows
	// The endpoint has no page cursor, so a window holding more rows than
	// the limit cannot be recovered by paging. Failing loudly beats a
	// silently incomplete ledger.
	if int(res.Total) > len(rows) {
		return nil, errors.Errorf(
			"dividend history for %s holds %d rows, more than the %d-row page limit; narrow the date range",
			asset, res.Total, dividendPageLimit)
	}

	events := make([]IncomeEvent, 0, len(rows))
	for _, row := range rows {
		amount, err := decimal.NewFromString(row.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "parse dividend amount %q", row.Amount)
		}
		events = append(events, IncomeEvent{
			Time:   dates.FromMilli(row.Time),
			Amount: amount,
		})
	}
	return events, nil
}

// savingsRewardsPath is the simple-earn flexible rewards history endpoint.
// The client library exposes no service for it, so the shim signs and
// issues the request itself.
const savingsRewardsPath = "/sapi/v1/simple-earn/flexible/history/rewardsRecord"

type savingsRewardsPage struct {
	Rows []struct {
		Asset   string `json:"asset"`
		Rewards string `json:"rewards"`
		Time    int64  `json:"time"`
	} `json:"rows"`
	Total int `json:"total"`
}

func (b *Binance) savingsEvents(ctx context.Context, asset string, start, end time.Time) ([]IncomeEvent, error) {
	var events []IncomeEvent
	for current := 1; ; current++ {
		page, err := retrier.DoWithData(b.retrier, ctx, func(ctx context.Context) (*savingsRewardsPage, error) {
			return b.fetchSavingsRewards(ctx, asset, start, end, current)
		})
		if err != nil {
			return nil, errors.Wrapf(err, "fetch savings interest history for %s", asset)
		}

		for _, row := range page.Rows {
			amount, err := decimal.NewFromString(row.Rewards)
			if err != nil {
				return nil, errors.Wrapf(err, "parse interest amount %q", row.Rewards)
			}
			events = append(events, IncomeEvent{
				Time:   dates.FromMilli(row.Time),
				Amount: amount,
			})
		}

		if len(page.Rows) < savingsPageLimit || len(events) >= page.Total {
			return events, nil
		}
	}
}

func (b *Binance) fetchSavingsRewards(ctx context.Context, asset string, start, end time.Time, current int) (*savingsRewardsPage, error) {
	params := url.Values{}
	params.Set("asset", asset)
	params.Set("type", "REALTIME")
	params.Set("startTime", strconv.FormatInt(start.UnixMilli(), 10))
	params.Set("endTime", strconv.FormatInt(end.UnixMilli(), 10))
	params.Set("current", strconv.Itoa(current))
	params.Set("size", strconv.Itoa(savingsPageLimit))
	params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))

	query := params.Encode()
	mac := hmac.New(sha256.New, []byte(b.client.SecretKey))
	mac.Write([]byte(query))
	query += "&signature=" + hex.EncodeToString(mac.Sum(nil))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		b.client.BaseURL+savingsRewardsPath+"?"+query, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build rewards history request")
	}
	req.Header.Set("X-MBX-APIKEY", b.client.APIKey)

	httpClient := b.client.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "rewards history request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read rewards history response")
	}
	if resp.StatusCode != http.StatusOK {
		err := errors.Errorf("rewards history returned status %d: %s", resp.StatusCode, body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return nil, retrier.Permanent(err)
		}
		return nil, err
	}

	page := &savingsRewardsPage{}
	if err := json.Unmarshal(body, page); err != nil {
		return nil, errors.Wrap(err, "decode rewards history response")
	}
	return page, nil
}
