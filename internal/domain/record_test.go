package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func priceUSD(price float64) map[string]decimal.Decimal {
	return map[string]decimal.Decimal{FiatUSD: decimal.NewFromFloat(price)}
}

func TestGenericRecordRoundTrip(t *testing.T) {
	rec := &GenericRecord{
		Date:   day(2021, time.March, 15),
		Amount: decimal.NewFromFloat(5.0),
		TxnFee: decimal.NewFromFloat(0.1),
	}

	require.NoError(t, rec.Attach(NewValuation(rec.Quantity(), priceUSD(10.0))))

	row, err := rec.Row("ADA")
	require.NoError(t, err)
	require.Equal(t, "50", row[ValueField(FiatUSD)])
	require.Equal(t, "1", row[FeeField(FiatUSD)])
	require.Equal(t, "10", row[PriceField(FiatUSD)])
	require.Equal(t, "5", row[AmountField("ADA")])
	require.Equal(t, "03/15/2021", row[FieldDate])
}

func TestRowBeforeEnrichmentFails(t *testing.T) {
	rec := &GenericRecord{Date: day(2021, time.March, 15), Amount: decimal.NewFromInt(1)}

	_, err := rec.Row("ADA")
	require.ErrorIs(t, err, ErrUnpriced)
}

func TestAttachRequiresBaseFiat(t *testing.T) {
	rec := &GenericRecord{Date: day(2021, time.March, 15), Amount: decimal.NewFromInt(1)}

	err := rec.Attach(NewValuation(rec.Quantity(), map[string]decimal.Decimal{
		"EUR": decimal.NewFromInt(8),
	}))
	require.ErrorIs(t, err, ErrUnpriced)
}

func TestAttachTwiceFails(t *testing.T) {
	rec := &GenericRecord{Date: day(2021, time.March, 15), Amount: decimal.NewFromInt(1)}

	require.NoError(t, rec.Attach(NewValuation(rec.Quantity(), priceUSD(10))))
	err := rec.Attach(NewValuation(rec.Quantity(), priceUSD(10)))
	require.ErrorIs(t, err, ErrAlreadyPriced)
}

func TestEpochRecordPricesAtEndDate(t *testing.T) {
	rec := &EpochRecord{
		Epoch:     251,
		StartDate: day(2021, time.March, 1),
		EndDate:   day(2021, time.March, 5),
		Amount:    decimal.NewFromInt(3),
	}
	require.Equal(t, day(2021, time.March, 5), rec.PricingDate())
}

func TestRowKeysMatchFields(t *testing.T) {
	records := map[string]Record{
		"generic": &GenericRecord{
			Date:       day(2021, time.March, 15),
			Amount:     decimal.NewFromInt(2),
			TxnFee:     decimal.NewFromInt(1),
			Currencies: []string{"CAD", "EUR"},
		},
		"epoch": &EpochRecord{
			Epoch:      251,
			StartDate:  day(2021, time.March, 1),
			EndDate:    day(2021, time.March, 5),
			Amount:     decimal.NewFromInt(2),
			Currencies: []string{"CAD"},
		},
		"accrual": NewAccrualRecord(day(2021, time.March, 15), decimal.NewFromInt(2), nil),
	}

	for name, rec := range records {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, rec.Attach(NewValuation(rec.Quantity(), map[string]decimal.Decimal{
				FiatUSD: decimal.NewFromInt(10),
				"CAD":   decimal.NewFromInt(13),
				"EUR":   decimal.NewFromInt(9),
			})))

			row, err := rec.Row("ADA")
			require.NoError(t, err)

			fields := rec.Fields("ADA")
			require.Len(t, row, len(fields))
			for _, field := range fields {
				require.Contains(t, row, field)
			}
		})
	}
}

func TestMissingExtraCurrencyLeavesEmptyColumns(t *testing.T) {
	rec := &AccrualRecord{
		Date:       day(2021, time.March, 15),
		Amount:     decimal.NewFromInt(2),
		Currencies: []string{"CAD"},
	}
	require.NoError(t, rec.Attach(NewValuation(rec.Quantity(), priceUSD(10))))

	row, err := rec.Row("VET")
	require.NoError(t, err)
	require.Equal(t, "", row[PriceField("CAD")])
	require.Equal(t, "", row[ValueField("CAD")])
}

func TestAccrualRecordTruncatesEventTime(t *testing.T) {
	eventTime := time.Date(2021, time.March, 15, 17, 42, 3, 0, time.UTC)
	rec := NewAccrualRecord(eventTime, decimal.NewFromInt(1), nil)
	require.Equal(t, day(2021, time.March, 15), rec.Date)
}
