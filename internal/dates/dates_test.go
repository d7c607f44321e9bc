package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseFormatRoundTrip(t *testing.T) {
	parsed, err := Parse("03/15/2021")
	require.NoError(t, err)
	require.Equal(t, time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC), parsed)
	require.Equal(t, "03/15/2021", Format(parsed))
}

func TestParseRejectsISODates(t *testing.T) {
	_, err := Parse("2021-03-15")
	require.Error(t, err)
}

func TestDayBounds(t *testing.T) {
	day := time.Date(2021, time.March, 15, 9, 30, 0, 0, time.UTC)
	start, end := DayBounds(day)
	require.Equal(t, time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC), start)
	require.Equal(t, time.Date(2021, time.March, 15, 23, 59, 59, 999000000, time.UTC), end)
}

func TestMidday(t *testing.T) {
	day := time.Date(2021, time.March, 15, 23, 45, 0, 0, time.UTC)
	require.Equal(t, time.Date(2021, time.March, 15, 12, 0, 0, 0, time.UTC), Midday(day))
}

func TestRangeInclusive(t *testing.T) {
	start := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, time.March, 18, 0, 0, 0, 0, time.UTC)

	days := Range(start, end)
	require.Len(t, days, 4)
	require.Equal(t, start, days[0])
	require.Equal(t, end, days[3])
}

func TestRangeSingleDay(t *testing.T) {
	day := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	require.Equal(t, []time.Time{day}, Range(day, day))
}

func TestRangeReversedIsEmpty(t *testing.T) {
	start := time.Date(2021, time.March, 18, 0, 0, 0, 0, time.UTC)
	end := time.Date(2021, time.March, 15, 0, 0, 0, 0, time.UTC)
	require.Empty(t, Range(start, end))
}

func TestFromMilli(t *testing.T) {
	at := time.Date(2021, time.March, 15, 10, 30, 0, 0, time.UTC)
	require.Equal(t, at, FromMilli(at.UnixMilli()))
}
