package csvsink

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/RyanLiu6/crypto-tracker/internal/domain"
)

func enrichedGeneric(t *testing.T, amount, fee float64, price int64) *domain.GenericRecord {
	t.Helper()
	rec := &domain.GenericRecord{
		Date:   time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC),
		Amount: decimal.NewFromFloat(amount),
		TxnFee: decimal.NewFromFloat(fee),
	}
	require.NoError(t, rec.Attach(domain.NewValuation(rec.Quantity(), map[string]decimal.Decimal{
		domain.FiatUSD: decimal.NewFromInt(price),
	})))
	return rec
}

func TestWriteFileEmptyResultCreatesNothing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	err := New(zap.NewNop()).WriteFile(path, "ADA", nil)
	require.ErrorIs(t, err, domain.ErrEmptyResult)

	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr), "no output file may exist after EmptyResult")
}

func TestWriteHeaderAndRows(t *testing.T) {
	records := []domain.Record{
		enrichedGeneric(t, 5.0, 0.1, 10),
		enrichedGeneric(t, 2.0, 0, 20),
	}

	var buf bytes.Buffer
	require.NoError(t, New(zap.NewNop()).Write(&buf, "ADA", records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t,
		"Date,Amount (ADA),TXN Fee (ADA),TXN Fee (USD),Average Price (USD),Value (USD)",
		lines[0])
	require.Equal(t, "03/15/2021,5,0.1,1,10,50", lines[1])
	require.Equal(t, "03/15/2021,2,0,0,20,40", lines[2])
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ADA_rewards.csv")

	require.NoError(t, New(zap.NewNop()).WriteFile(path, "ADA", []domain.Record{
		enrichedGeneric(t, 5.0, 0.1, 10),
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Value (USD)")
	require.Contains(t, string(data), "50")
}

// brokenRecord declares one schema but serializes another.
type brokenRecord struct {
	*domain.GenericRecord
}

func (r *brokenRecord) Fields(ticker string) []string {
	return append(r.GenericRecord.Fields(ticker), "Phantom")
}

func TestSchemaMismatchIsFatal(t *testing.T) {
	rec := &brokenRecord{GenericRecord: enrichedGeneric(t, 1, 0, 10)}

	var buf bytes.Buffer
	err := New(zap.NewNop()).Write(&buf, "ADA", []domain.Record{rec})

	var mismatch *domain.SchemaMismatchError
	require.ErrorAs(t, err, &mismatch)
	require.Equal(t, []string{"Phantom"}, mismatch.Missing)
}

func TestDefaultFilenameShape(t *testing.T) {
	name := DefaultFilename("ADA")
	require.True(t, strings.HasPrefix(name, "ADA_"))
	require.True(t, strings.HasSuffix(name, ".csv"))
}
