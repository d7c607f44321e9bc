// Package cleaner filters a Binance account-statement export down to the
// operations relevant to buy/sell/transfer accounting. Savings and staking
// rows are dropped; those are reconstructed from income history instead.
package cleaner

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/RyanLiu6/crypto-tracker/internal/domain"
)

const operationColumn = "Operation"

var keepOperations = map[string]struct{}{
	"Deposit":             {},
	"Withdraw":            {},
	"Buy":                 {},
	"Sell":                {},
	"Fee":                 {},
	"Transaction Related": {},
}

// Some operations carry a variable suffix, e.g. "Small assets exchange BNB".
var keepPrefixes = []string{
	"Small assets exchange",
}

// Clean copies the header and every row whose operation is relevant from r
// to w, returning the number of rows kept. A statement that filters down
// to nothing is ErrEmptyResult.
func Clean(r io.Reader, w io.Writer) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, errors.Wrap(err, "read statement header")
	}
	opIndex := -1
	for i, name := range header {
		if strings.TrimSpace(name) == operationColumn {
			opIndex = i
			break
		}
	}
	if opIndex < 0 {
		return 0, errors.Errorf("statement has no %q column", operationColumn)
	}

	// Rows are collected first so nothing is written when the statement
	// filters down to nothing.
	var rows [][]string
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return 0, &domain.MalformedRowError{Line: line, Err: err}
		}
		if keep(strings.TrimSpace(row[opIndex])) {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return 0, domain.ErrEmptyResult
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return 0, errors.Wrap(err, "write header")
	}
	for i, row := range rows {
		if err := writer.Write(row); err != nil {
			return 0, errors.Wrapf(err, "write row %d", i)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, errors.Wrap(err, "flush cleaned statement")
	}
	return len(rows), nil
}

func keep(operation string) bool {
	if _, ok := keepOperations[operation]; ok {
		return true
	}
	for _, prefix := range keepPrefixes {
		if strings.HasPrefix(operation, prefix) {
			return true
		}
	}
	return false
}
