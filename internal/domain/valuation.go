package domain

import (
	"github.com/shopspring/decimal"
)

// FiatUSD is the base reporting currency. Every enriched record must carry
// a USD entry before it can be serialized.
const FiatUSD = "USD"

// PricePoint is the per-currency result of enrichment: the asset's average
// price on the record's pricing date and the record amount valued at it.
type PricePoint struct {
	Price decimal.Decimal
	Value decimal.Decimal
}

// Valuation maps a currency code to its price point.
type Valuation map[string]PricePoint

// NewValuation values amount at each of the given per-currency prices.
func NewValuation(amount decimal.Decimal, prices map[string]decimal.Decimal) Valuation {
	v := make(Valuation, len(prices))
	for currency, price := range prices {
		v[currency] = PricePoint{Price: price, Value: amount.Mul(price)}
	}
	return v
}

// valuation is the set-once enrichment state embedded in every record
// variant. A nil map means unpriced; Attach moves the record to priced
// exactly once.
type valuation struct {
	priced Valuation
}

// Attach populates the record's valuation. It fails if the record was
// already enriched or if the base fiat entry is absent.
func (s *valuation) Attach(v Valuation) error {
	if s.priced != nil {
		return ErrAlreadyPriced
	}
	if _, ok := v[FiatUSD]; !ok {
		return ErrUnpriced
	}
	s.priced = v
	return nil
}

// Priced reports whether enrichment has run.
func (s *valuation) Priced() bool { return s.priced != nil }

func (s *valuation) get() (Valuation, error) {
	if s.priced == nil {
		return nil, ErrUnpriced
	}
	return s.priced, nil
}
