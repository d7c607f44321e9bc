package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/RyanLiu6/crypto-tracker/internal/dates"
)

// GenericRecord is a plain dated transaction: deposit, withdrawal or
// staking reward with an optional fee denominated in the same asset.
type GenericRecord struct {
	valuation

	Date       time.Time
	Amount     decimal.Decimal
	TxnFee     decimal.Decimal
	Currencies []string
}

func (r *GenericRecord) PricingDate() time.Time    { return r.Date }
func (r *GenericRecord) Quantity() decimal.Decimal { return r.Amount }

func (r *GenericRecord) Fields(ticker string) []string {
	fields := []string{
		FieldDate,
		AmountField(ticker),
		FeeField(ticker),
		FeeField(FiatUSD),
	}
	return appendCurrencyFields(fields, r.Currencies)
}

func (r *GenericRecord) Row(ticker string) (map[string]string, error) {
	v, err := r.get()
	if err != nil {
		return nil, err
	}

	row := map[string]string{
		FieldDate:           dates.Format(r.Date),
		AmountField(ticker): r.Amount.String(),
		FeeField(ticker):    r.TxnFee.String(),
		// The fee is assumed to be denominated in the same asset as the
		// principal, so it is valued at the day's base-asset price.
		FeeField(FiatUSD): r.TxnFee.Mul(v[FiatUSD].Price).String(),
	}
	writeCurrencyColumns(row, v, r.Currencies)
	return row, nil
}
