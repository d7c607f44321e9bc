package parser

import (
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Variant names a record shape a reward file can carry. The set is closed;
// which variant a ticker uses is resolved once, up front, from the
// registry rather than by per-row ticker comparisons.
type Variant string

const (
	// VariantGeneric rows are date, amount, fee.
	VariantGeneric Variant = "generic"
	// VariantEpoch rows are epoch, start date, end date, amount.
	VariantEpoch Variant = "epoch"
	// VariantSpread files hold a single start, end, per-day-amount row that
	// expands to one generic record per day in the range.
	VariantSpread Variant = "spread"
)

// Registry maps tickers to the variant their export files use. Unknown
// tickers parse as generic.
type Registry map[string]Variant

// DefaultRegistry covers the assets with known non-generic export shapes.
func DefaultRegistry() Registry {
	return Registry{
		"ADA":  VariantEpoch,  // Cardano delegation rewards are per epoch
		"VTHO": VariantSpread, // VeThor generation is a constant daily rate
	}
}

// Resolve returns the variant registered for a ticker, defaulting to
// generic.
func (r Registry) Resolve(ticker string) Variant {
	if v, ok := r[strings.ToUpper(ticker)]; ok {
		return v
	}
	return VariantGeneric
}

// MergeYAML overlays ticker→variant entries from a YAML document onto the
// registry. Entries with unknown variant names are rejected.
func (r Registry) MergeYAML(data []byte) error {
	var overlay map[string]string
	if err := yaml.Unmarshal(data, &overlay); err != nil {
		return errors.Wrap(err, "parse variant registry yaml")
	}
	for ticker, name := range overlay {
		variant := Variant(strings.ToLower(name))
		switch variant {
		case VariantGeneric, VariantEpoch, VariantSpread:
			r[strings.ToUpper(ticker)] = variant
		default:
			return errors.Errorf("unknown record variant %q for ticker %s", name, ticker)
		}
	}
	return nil
}
