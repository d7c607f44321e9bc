package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/pkg/retrier"
)

const geckoBaseURL = "https://api.coingecko.com/api/v3"

var (
	// ErrMissingMarketData means CoinGecko has no market data for the asset
	// on the requested date, e.g. the asset was not yet listed.
	ErrMissingMarketData = errors.New("missing market data in CoinGecko response")
	// ErrUnknownGeckoAsset means the ticker has no CoinGecko id.
	ErrUnknownGeckoAsset = errors.New("ticker not found in CoinGecko coins list")
)

// Gecko is the fallback price feed: one daily snapshot price per currency,
// no API key required.
type Gecko struct {
	httpClient *http.Client
	baseURL    string
	retrier    *retrier.Retrier
	logger     *zap.Logger

	// symbol (upper case) -> CoinGecko coin id, resolved lazily on first use.
	coinIDs map[string]string
}

// NewGecko builds a CoinGecko client. A nil httpClient falls back to a
// client with a sane timeout.
func NewGecko(httpClient *http.Client, logger *zap.Logger) *Gecko {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Gecko{
		httpClient: httpClient,
		baseURL:    geckoBaseURL,
		retrier:    retrier.New(),
		logger:     logger,
	}
}

// SnapshotPrices returns the daily snapshot price of a ticker in every
// requested currency (plus USD) for the given date.
func (g *Gecko) SnapshotPrices(ctx context.Context, ticker string, date time.Time, currencies []string) (map[string]decimal.Decimal, error) {
	coinID, err := g.coinID(ctx, ticker)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/coins/%s/history?date=%s", g.baseURL, coinID, date.Format("02-01-2006"))
	body, err := g.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var payload struct {
		MarketData *struct {
			CurrentPrice map[string]float64 `json:"current_price"`
		} `json:"market_data"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.Wrap(err, "decode CoinGecko history response")
	}
	if payload.MarketData == nil || len(payload.MarketData.CurrentPrice) == 0 {
		return nil, errors.Wrapf(ErrMissingMarketData, "coin %s on %s", coinID, date.Format("2006-01-02"))
	}

	prices := make(map[string]decimal.Decimal)
	for _, currency := range append([]string{"USD"}, currencies...) {
		raw, ok := payload.MarketData.CurrentPrice[strings.ToLower(currency)]
		if !ok {
			if currency == "USD" {
				return nil, errors.Wrapf(ErrMissingMarketData, "no USD price for %s", coinID)
			}
			g.logger.Warn("currency missing from CoinGecko snapshot",
				zap.String("coin", coinID), zap.String("currency", currency))
			continue
		}
		prices[currency] = decimal.NewFromFloat(raw)
	}
	return prices, nil
}

// coinID resolves an exchange ticker to a CoinGecko coin id, fetching and
// caching the full coins list on first use.
func (g *Gecko) coinID(ctx context.Context, ticker string) (string, error) {
	if g.coinIDs == nil {
		ids, err := g.fetchCoinsList(ctx)
		if err != nil {
			return "", err
		}
		g.coinIDs = ids
	}
	id, ok := g.coinIDs[strings.ToUpper(ticker)]
	if !ok {
		return "", errors.Wrapf(ErrUnknownGeckoAsset, "%s", ticker)
	}
	return id, nil
}

func (g *Gecko) fetchCoinsList(ctx context.Context) (map[string]string, error) {
	body, err := g.fetch(ctx, g.baseURL+"/coins/list")
	if err != nil {
		return nil, err
	}

	var coins []struct {
		ID     string `json:"id"`
		Symbol string `json:"symbol"`
	}
	if err := json.Unmarshal(body, &coins); err != nil {
		return nil, errors.Wrap(err, "decode CoinGecko coins list")
	}

	// First listing wins per symbol; CoinGecko orders canonical assets first.
	ids := make(map[string]string, len(coins))
	for _, coin := range coins {
		symbol := strings.ToUpper(coin.Symbol)
		if _, exists := ids[symbol]; !exists {
			ids[symbol] = coin.ID
		}
	}
	return ids, nil
}

func (g *Gecko) fetch(ctx context.Context, url string) ([]byte, error) {
	return retrier.DoWithData(g.retrier, ctx, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrap(err, "build CoinGecko request")
		}
		resp, err := g.httpClient.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "CoinGecko request failed")
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, retrier.Permanent(errors.Errorf("CoinGecko returned 404 for %s", url))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, errors.Errorf("CoinGecko returned status %d", resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	})
}
