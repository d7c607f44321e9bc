package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// ErrEmptyResult is returned when a write is attempted with zero records.
// No output file is created in that case.
var ErrEmptyResult = errors.New("no records to write")

// ErrUnpriced is returned when a record is serialized before enrichment
// populated its base-fiat valuation. This is a programming error, not an
// input error.
var ErrUnpriced = errors.New("record serialized before price enrichment")

// ErrAlreadyPriced is returned when enrichment is attempted twice on the
// same record.
var ErrAlreadyPriced = errors.New("record already enriched")

// MalformedRowError reports an input line that could not be parsed.
// Parsing failures abort the whole run: a partial ledger is unsafe for
// tax reporting.
type MalformedRowError struct {
	Line int
	Err  error
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("malformed row at line %d: %v", e.Line, e.Err)
}

func (e *MalformedRowError) Unwrap() error { return e.Err }

// PriceUnavailableError reports that no price data exists for an asset on
// a given date. It is collected per record; the run continues unless
// fail-fast is requested.
type PriceUnavailableError struct {
	Ticker string
	Date   time.Time
	Err    error
}

func (e *PriceUnavailableError) Error() string {
	return fmt.Sprintf("no price for %s on %s: %v", e.Ticker, e.Date.Format("2006-01-02"), e.Err)
}

func (e *PriceUnavailableError) Unwrap() error { return e.Err }

// SchemaMismatchError reports that a serialized row's keys diverge from the
// record's declared field schema. Always fatal.
type SchemaMismatchError struct {
	Missing []string
	Extra   []string
}

func (e *SchemaMismatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Extra) > 0 {
		parts = append(parts, "extra: "+strings.Join(e.Extra, ", "))
	}
	return "row keys do not match declared schema (" + strings.Join(parts, "; ") + ")"
}
