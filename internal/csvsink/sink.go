// Package csvsink writes enriched records to disk using the record
// variant's declared column schema.
package csvsink

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/internal/domain"
)

// DefaultFilename generates an output name from the ticker and the current
// time in milliseconds. Only the shape is deterministic, never the value.
func DefaultFilename(ticker string) string {
	return fmt.Sprintf("%s_%d.csv", ticker, time.Now().UnixMilli())
}

// Sink writes enriched records as CSV.
type Sink struct {
	logger *zap.Logger
}

// New builds a Sink.
func New(logger *zap.Logger) *Sink {
	return &Sink{logger: logger}
}

// WriteFile writes the records to path. With zero records it fails with
// ErrEmptyResult before creating anything on disk.
func (s *Sink) WriteFile(path, ticker string, records []domain.Record) error {
	if len(records) == 0 {
		return errors.Wrapf(domain.ErrEmptyResult, "refusing to create %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create output file %s", path)
	}
	defer f.Close()

	if err := s.Write(f, ticker, records); err != nil {
		return err
	}
	s.logger.Info("csv file written", zap.String("path", path), zap.Int("rows", len(records)))
	return nil
}

// Write emits a header row from the first record's schema followed by one
// data row per record, in the order given.
func (s *Sink) Write(w io.Writer, ticker string, records []domain.Record) error {
	if len(records) == 0 {
		return domain.ErrEmptyResult
	}

	fields := records[0].Fields(ticker)
	out := csv.NewWriter(w)

	if err := out.Write(fields); err != nil {
		return errors.Wrap(err, "write header")
	}
	for i, record := range records {
		row, err := record.Row(ticker)
		if err != nil {
			return errors.Wrapf(err, "serialize record %d", i)
		}
		if err := checkSchema(fields, row); err != nil {
			return errors.Wrapf(err, "record %d", i)
		}

		cells := make([]string, len(fields))
		for j, field := range fields {
			cells[j] = row[field]
		}
		if err := out.Write(cells); err != nil {
			return errors.Wrapf(err, "write record %d", i)
		}
	}

	out.Flush()
	return errors.Wrap(out.Error(), "flush csv")
}

// checkSchema verifies the serialized keys match the declared schema
// exactly. A mismatch is a programming error in a record variant and is
// always fatal.
func checkSchema(fields []string, row map[string]string) error {
	declared := make(map[string]struct{}, len(fields))
	mismatch := &domain.SchemaMismatchError{}
	for _, field := range fields {
		declared[field] = struct{}{}
		if _, ok := row[field]; !ok {
			mismatch.Missing = append(mismatch.Missing, field)
		}
	}
	for key := range row {
		if _, ok := declared[key]; !ok {
			mismatch.Extra = append(mismatch.Extra, key)
		}
	}
	if len(mismatch.Missing) > 0 || len(mismatch.Extra) > 0 {
		return mismatch
	}
	return nil
}
