package exchange

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestGecko(t *testing.T, handler http.HandlerFunc) *Gecko {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	g := NewGecko(server.Client(), zap.NewNop())
	g.baseURL = server.URL
	return g
}

const coinsList = `[{"id":"cardano","symbol":"ada","name":"Cardano"},{"id":"vethor-token","symbol":"vtho","name":"VeThor"}]`

func TestSnapshotPrices(t *testing.T) {
	g := newTestGecko(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/list":
			w.Write([]byte(coinsList))
		case "/coins/cardano/history":
			require.Equal(t, "15-03-2021", r.URL.Query().Get("date"))
			w.Write([]byte(`{"market_data":{"current_price":{"usd":1.07,"cad":1.33,"eur":0.9}}}`))
		default:
			http.NotFound(w, r)
		}
	})

	date := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	prices, err := g.SnapshotPrices(context.Background(), "ADA", date, []string{"CAD"})
	require.NoError(t, err)

	require.True(t, decimal.NewFromFloat(1.07).Equal(prices["USD"]), "got %s", prices["USD"])
	require.True(t, decimal.NewFromFloat(1.33).Equal(prices["CAD"]), "got %s", prices["CAD"])
	require.NotContains(t, prices, "EUR", "only requested currencies are returned")
}

func TestSnapshotPricesMissingMarketData(t *testing.T) {
	g := newTestGecko(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/coins/list":
			w.Write([]byte(coinsList))
		default:
			w.Write([]byte(`{"id":"cardano"}`))
		}
	})

	date := time.Date(2015, time.January, 1, 0, 0, 0, 0, time.UTC)
	_, err := g.SnapshotPrices(context.Background(), "ADA", date, nil)
	require.ErrorIs(t, err, ErrMissingMarketData)
}

func TestSnapshotPricesUnknownTicker(t *testing.T) {
	g := newTestGecko(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(coinsList))
	})

	date := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	_, err := g.SnapshotPrices(context.Background(), "NOPE", date, nil)
	require.ErrorIs(t, err, ErrUnknownGeckoAsset)
}

func TestCoinsListCachedAcrossCalls(t *testing.T) {
	listCalls := 0
	g := newTestGecko(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/coins/list" {
			listCalls++
			w.Write([]byte(coinsList))
			return
		}
		w.Write([]byte(`{"market_data":{"current_price":{"usd":1.0}}}`))
	})

	date := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	_, err := g.SnapshotPrices(ctx, "ADA", date, nil)
	require.NoError(t, err)
	_, err = g.SnapshotPrices(ctx, "VTHO", date, nil)
	require.NoError(t, err)

	require.Equal(t, 1, listCalls)
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	calls := 0
	g := newTestGecko(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.NotFound(w, r)
	})

	_, err := g.fetch(context.Background(), g.baseURL+"/coins/list")
	require.Error(t, err)
	require.Equal(t, 1, calls, "404 is permanent and must not be retried")
	require.False(t, errors.Is(err, context.DeadlineExceeded))
}
