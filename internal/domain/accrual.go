package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/RyanLiu6/crypto-tracker/internal/dates"
)

// AccrualRecord is an interest or dividend event reconstructed from an
// exchange income-history query rather than parsed from a file. Dates carry
// day granularity only; the upstream event time is truncated on construction.
type AccrualRecord struct {
	valuation

	Date       time.Time
	Amount     decimal.Decimal
	Currencies []string
}

// NewAccrualRecord builds a record from an upstream event timestamp,
// zeroing the time of day.
func NewAccrualRecord(eventTime time.Time, amount decimal.Decimal, currencies []string) *AccrualRecord {
	return &AccrualRecord{
		Date:       dates.Day(eventTime),
		Amount:     amount,
		Currencies: currencies,
	}
}

func (r *AccrualRecord) PricingDate() time.Time    { return r.Date }
func (r *AccrualRecord) Quantity() decimal.Decimal { return r.Amount }

func (r *AccrualRecord) Fields(ticker string) []string {
	fields := []string{
		FieldDate,
		AmountField(ticker),
	}
	return appendCurrencyFields(fields, r.Currencies)
}

func (r *AccrualRecord) Row(ticker string) (map[string]string, error) {
	v, err := r.get()
	if err != nil {
		return nil, err
	}

	row := map[string]string{
		FieldDate:           dates.Format(r.Date),
		AmountField(ticker): r.Amount.String(),
	}
	writeCurrencyColumns(row, v, r.Currencies)
	return row, nil
}
