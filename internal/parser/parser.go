// Package parser reads reward export CSVs into record model instances.
// Files are comma-delimited with optional surrounding whitespace and `|`
// as the quote character; columns are positional, so a wrong column count
// is a malformed row and aborts the run.
package parser

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/RyanLiu6/crypto-tracker/internal/dates"
	"github.com/RyanLiu6/crypto-tracker/internal/domain"
)

// Parser turns one reward file into ordered records of a single variant.
type Parser struct {
	variant    Variant
	currencies []string
}

// New builds a parser for the given variant. currencies is the list of
// extra reporting currencies records will carry beyond USD.
func New(variant Variant, currencies []string) *Parser {
	return &Parser{variant: variant, currencies: currencies}
}

// Parse reads every row of the input, preserving row order.
func (p *Parser) Parse(r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var records []domain.Record
	line := 0
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &domain.MalformedRowError{Line: line, Err: err}
		}
		cleanRow(row)

		switch p.variant {
		case VariantEpoch:
			rec, err := p.parseEpoch(row)
			if err != nil {
				return nil, &domain.MalformedRowError{Line: line, Err: err}
			}
			records = append(records, rec)
		case VariantSpread:
			if len(records) > 0 {
				return nil, &domain.MalformedRowError{Line: line, Err: errors.New("spread files carry exactly one row")}
			}
			spread, err := p.parseSpread(row)
			if err != nil {
				return nil, &domain.MalformedRowError{Line: line, Err: err}
			}
			records = append(records, spread...)
		default:
			rec, err := p.parseGeneric(row)
			if err != nil {
				return nil, &domain.MalformedRowError{Line: line, Err: err}
			}
			records = append(records, rec)
		}
	}
	return records, nil
}

// cleanRow strips surrounding whitespace and the `|` quoting some exports
// wrap fields in.
func cleanRow(row []string) {
	for i, field := range row {
		field = strings.TrimSpace(field)
		if len(field) >= 2 && field[0] == '|' && field[len(field)-1] == '|' {
			field = strings.TrimSpace(field[1 : len(field)-1])
		}
		row[i] = field
	}
}

func (p *Parser) parseGeneric(row []string) (*domain.GenericRecord, error) {
	if len(row) != 3 {
		return nil, errors.Errorf("expected 3 columns (date, amount, fee), got %d", len(row))
	}
	date, err := dates.Parse(row[0])
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(row[1])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", row[1])
	}
	fee, err := decimal.NewFromString(row[2])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid fee %q", row[2])
	}
	return &domain.GenericRecord{
		Date:       date,
		Amount:     amount,
		TxnFee:     fee,
		Currencies: p.currencies,
	}, nil
}

func (p *Parser) parseEpoch(row []string) (*domain.EpochRecord, error) {
	if len(row) != 4 {
		return nil, errors.Errorf("expected 4 columns (epoch, start, end, amount), got %d", len(row))
	}
	epoch, err := strconv.Atoi(row[0])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid epoch %q", row[0])
	}
	start, err := dates.Parse(row[1])
	if err != nil {
		return nil, err
	}
	end, err := dates.Parse(row[2])
	if err != nil {
		return nil, err
	}
	amount, err := decimal.NewFromString(row[3])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid amount %q", row[3])
	}
	return &domain.EpochRecord{
		Epoch:      epoch,
		StartDate:  start,
		EndDate:    end,
		Amount:     amount,
		Currencies: p.currencies,
	}, nil
}

// parseSpread expands a single (start, end, per-day amount) row into one
// generic record per calendar day, fee-free.
func (p *Parser) parseSpread(row []string) ([]domain.Record, error) {
	if len(row) != 3 {
		return nil, errors.Errorf("expected 3 columns (start, end, amount per day), got %d", len(row))
	}
	start, err := dates.Parse(row[0])
	if err != nil {
		return nil, err
	}
	end, err := dates.Parse(row[1])
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, errors.Errorf("end date %s precedes start date %s", row[1], row[0])
	}
	perDay, err := decimal.NewFromString(row[2])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid per-day amount %q", row[2])
	}

	var records []domain.Record
	for _, day := range dates.Range(start, end) {
		records = append(records, &domain.GenericRecord{
			Date:       day,
			Amount:     perDay,
			TxnFee:     decimal.Zero,
			Currencies: p.currencies,
		})
	}
	return records, nil
}
