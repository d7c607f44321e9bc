// Package fx converts fiat amounts between currencies using the ECB daily
// reference-rate history. Rates are EUR-based; a USD→EUR conversion on a
// date is the ratio of the two EUR rates published that day.
package fx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RyanLiu6/crypto-tracker/internal/dates"
)

// DefaultRatesURL is the ECB euro foreign exchange reference-rate history.
const DefaultRatesURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-hist.zip"

const fiatEUR = "EUR"

// The ECB publishes no rates on weekends and holidays; lookups walk back at
// most this many days before giving up.
const maxLookbackDays = 7

// ErrNoRate means no reference rate exists for a currency near the
// requested date.
var ErrNoRate = errors.New("no reference rate for currency/date")

// Converter answers historical fiat-to-fiat conversions.
type Converter struct {
	// day (midnight UTC) -> currency code -> units per EUR
	rates map[time.Time]map[string]decimal.Decimal
}

// Load downloads and parses the ECB rate history archive.
func Load(ctx context.Context, url string, httpClient *http.Client) (*Converter, error) {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build rates request")
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "download ECB rate history")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("ECB rate history returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read ECB rate history")
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, errors.Wrap(err, "open ECB rate archive")
	}
	for _, f := range zr.File {
		if !strings.HasSuffix(f.Name, ".csv") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrapf(err, "open %s", f.Name)
		}
		defer rc.Close()
		return Parse(rc)
	}
	return nil, errors.New("no csv file in ECB rate archive")
}

// Parse reads the eurofxref-hist CSV: a Date column followed by one column
// of units-per-EUR rates per currency, most recent day first.
func Parse(r io.Reader) (*Converter, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read rate history header")
	}
	if len(header) < 2 || header[0] != "Date" {
		return nil, errors.New("unexpected rate history header")
	}

	rates := make(map[time.Time]map[string]decimal.Decimal)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "read rate history row")
		}

		day, err := time.Parse("2006-01-02", row[0])
		if err != nil {
			return nil, errors.Wrapf(err, "parse rate date %q", row[0])
		}

		daily := make(map[string]decimal.Decimal, len(header)-1)
		for i := 1; i < len(header) && i < len(row); i++ {
			currency := strings.TrimSpace(header[i])
			cell := strings.TrimSpace(row[i])
			if currency == "" || cell == "" || cell == "N/A" {
				continue
			}
			rate, err := decimal.NewFromString(cell)
			if err != nil {
				return nil, errors.Wrapf(err, "parse rate %q for %s", cell, currency)
			}
			daily[currency] = rate
		}
		rates[dates.Day(day)] = daily
	}

	return &Converter{rates: rates}, nil
}

// Convert converts amount from one currency to another using the rates in
// effect at the given instant. The instant's calendar day selects the rate
// row; days without a publication fall back to the most recent prior day.
func (c *Converter) Convert(amount decimal.Decimal, from, to string, at time.Time) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	daily, err := c.ratesFor(at)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "%s to %s", from, to)
	}

	fromRate, err := eurRate(daily, from)
	if err != nil {
		return decimal.Decimal{}, err
	}
	toRate, err := eurRate(daily, to)
	if err != nil {
		return decimal.Decimal{}, err
	}

	return amount.Mul(toRate).Div(fromRate), nil
}

func (c *Converter) ratesFor(at time.Time) (map[string]decimal.Decimal, error) {
	day := dates.Day(at)
	for i := 0; i <= maxLookbackDays; i++ {
		if daily, ok := c.rates[day.AddDate(0, 0, -i)]; ok {
			return daily, nil
		}
	}
	return nil, errors.Wrapf(ErrNoRate, "around %s", day.Format("2006-01-02"))
}

func eurRate(daily map[string]decimal.Decimal, currency string) (decimal.Decimal, error) {
	if currency == fiatEUR {
		return decimal.NewFromInt(1), nil
	}
	rate, ok := daily[currency]
	if !ok {
		return decimal.Decimal{}, errors.Wrapf(ErrNoRate, "currency %s", currency)
	}
	return rate, nil
}
