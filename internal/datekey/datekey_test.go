package datekey

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	dates := []time.Time{
		time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local),
		time.Date(2024, 3, 5, 23, 59, 59, 0, time.Local),
		time.Date(2024, 2, 29, 12, 0, 0, 0, time.Local),
		time.Date(1999, 12, 31, 6, 30, 0, 0, time.Local),
		time.Date(2030, 1, 1, 0, 0, 1, 0, time.Local),
	}

	for _, d := range dates {
		key := FromTime(d)
		back, err := Parse(key)
		require.NoError(t, err)
		assert.Equal(t, d.Year(), back.Year())
		assert.Equal(t, d.Month(), back.Month())
		assert.Equal(t, d.Day(), back.Day())
	}
}

func TestFromTimeFormat(t *testing.T) {
	d := time.Date(2024, 3, 5, 14, 0, 0, 0, time.Local)
	assert.Equal(t, Key("2024-03-05"), FromTime(d))
}

func TestParseRejectsGarbage(t *testing.T) {
	for _, raw := range []Key{"", "2024-3-5", "05-03-2024", "not-a-date"} {
		_, err := Parse(raw)
		assert.Error(t, err, "key %q", raw)
		assert.False(t, raw.Valid())
	}
}

func TestMonthKeys(t *testing.T) {
	keys := MonthKeys(time.Date(2024, 2, 15, 0, 0, 0, 0, time.Local))
	require.Len(t, keys, 29) // leap year
	assert.Equal(t, Key("2024-02-01"), keys[0])
	assert.Equal(t, Key("2024-02-29"), keys[28])

	keys = MonthKeys(time.Date(2023, 2, 1, 0, 0, 0, 0, time.Local))
	assert.Len(t, keys, 28)
}

func TestMonthKey(t *testing.T) {
	d := time.Date(2024, 3, 31, 0, 0, 0, 0, time.Local)
	assert.Equal(t, "2024-03", MonthKey(d))

	first, err := ParseMonthKey("2024-03")
	require.NoError(t, err)
	assert.Equal(t, time.Month(3), first.Month())
	assert.Equal(t, 1, first.Day())
}

func TestDaysIn(t *testing.T) {
	assert.Equal(t, 31, DaysIn(time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)))
	assert.Equal(t, 30, DaysIn(time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local)))
}
