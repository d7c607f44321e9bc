package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RyanLiu6/crypto-tracker/internal/dates"
)

// EpochRecord is a staking reward paid once per protocol epoch, e.g. a
// Cardano delegation reward. The reward lands at the end of the epoch, so
// the end date is the pricing date.
type EpochRecord struct {
	valuation

	Epoch      int
	StartDate  time.Time
	EndDate    time.Time
	Amount     decimal.Decimal
	Currencies []string
}

func (r *EpochRecord) PricingDate() time.Time    { return r.EndDate }
func (r *EpochRecord) Quantity() decimal.Decimal { return r.Amount }

func (r *EpochRecord) Fields(ticker string) []string {
	fields := []string{
		FieldEpoch,
		FieldStartDate,
		FieldEndDate,
		AmountField(ticker),
	}
	return appendCurrencyFields(fields, r.Currencies)
}

func (r *EpochRecord) Row(ticker string) (map[string]string, error) {
	v, err := r.get()
	if err != nil {
		return nil, err
	}

	row := map[string]string{
		FieldEpoch:          strconv.Itoa(r.Epoch),
		FieldStartDate:      dates.Format(r.StartDate),
		FieldEndDate:        dates.Format(r.EndDate),
		AmountField(ticker): r.Amount.String(),
	}
	writeCurrencyColumns(row, v, r.Currencies)
	return row, nil
}
