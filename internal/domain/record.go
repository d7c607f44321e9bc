// Package domain holds the transaction record model: the closed set of
// record variants, their per-variant output schemas, and the set-once
// valuation attached during price enrichment.
package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Column header templates shared by the record variants. Ticker- and
// currency-specific columns are produced with fmt.Sprintf.
const (
	FieldEpoch     = "Epoch"
	FieldDate      = "Date"
	FieldStartDate = "Start Date"
	FieldEndDate   = "End Date"

	fieldAmountTmpl = "Amount (%s)"
	fieldFeeTmpl    = "TXN Fee (%s)"
	fieldPriceTmpl  = "Average Price (%s)"
	fieldValueTmpl  = "Value (%s)"
)

// AmountField returns the ticker-specific amount column name, e.g. "Amount (ADA)".
func AmountField(ticker string) string { return fmt.Sprintf(fieldAmountTmpl, ticker) }

// FeeField returns the fee column name for an asset or currency code.
func FeeField(code string) string { return fmt.Sprintf(fieldFeeTmpl, code) }

// PriceField returns the average-price column name for a currency code.
func PriceField(currency string) string { return fmt.Sprintf(fieldPriceTmpl, currency) }

// ValueField returns the value column name for a currency code.
func ValueField(currency string) string { return fmt.Sprintf(fieldValueTmpl, currency) }

// Record is one ledger line. A record is created once by parsing (or by an
// income-history fetch), enriched exactly once via Attach, then serialized
// and discarded.
type Record interface {
	// PricingDate is the calendar day whose historical price values the record.
	PricingDate() time.Time
	// Quantity is the asset amount the valuation multiplies.
	Quantity() decimal.Decimal
	// Attach moves the record from unpriced to priced. Fails on a second
	// call and when the base fiat entry is missing.
	Attach(Valuation) error
	// Fields is the ordered output column schema. Deterministic for a given
	// variant, ticker and currency list.
	Fields(ticker string) []string
	// Row renders the record as an output row keyed exactly by Fields.
	// Returns ErrUnpriced if enrichment has not run.
	Row(ticker string) (map[string]string, error)
}

// appendCurrencyFields appends base-fiat price/value columns followed by one
// price/value pair per extra currency, preserving the configured order.
func appendCurrencyFields(fields []string, extra []string) []string {
	fields = append(fields, PriceField(FiatUSD), ValueField(FiatUSD))
	for _, c := range extra {
		fields = append(fields, PriceField(c), ValueField(c))
	}
	return fields
}

// writeCurrencyColumns fills the price/value columns for the base fiat and
// every extra currency present in the valuation.
func writeCurrencyColumns(row map[string]string, v Valuation, extra []string) {
	base := v[FiatUSD]
	row[PriceField(FiatUSD)] = base.Price.String()
	row[ValueField(FiatUSD)] = base.Value.String()
	for _, c := range extra {
		// A requested currency the source could not convert still gets its
		// columns, empty, so the row stays aligned with the schema.
		point, ok := v[c]
		if !ok {
			row[PriceField(c)] = ""
			row[ValueField(c)] = ""
			continue
		}
		row[PriceField(c)] = point.Price.String()
		row[ValueField(c)] = point.Value.String()
	}
}
