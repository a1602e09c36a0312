package stamp_test

import (
	"testing"
	"time"

	"github.com/KimNorgaard/go-conl/stamp"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseRateHistory(t *testing.T) {
	t.Run("sorts entries by date regardless of input order", func(t *testing.T) {
		input := "2019-01-27 = 0.55\n" +
			"2014-01-26 = 0.49\n" +
			"2017-01-22 = 0.49\n" +
			"2016-04-10 = 0.47\n"

		h, err := stamp.ParseRateHistory("letter", []byte(input))
		require.NoError(t, err)
		require.Equal(t, "letter", h.Name)
		require.Equal(t, 4, h.Len())

		rate, ok := h.RateOn(day(2016, time.June, 1))
		require.True(t, ok)
		require.Equal(t, 0.47, rate)
	})

	t.Run("skips keys that are not dates", func(t *testing.T) {
		input := "2016-04-10 = 0.47\n" +
			"notes = 0.99\n" +
			"2019-01-27 = 0.55\n"

		h, err := stamp.ParseRateHistory("letter", []byte(input))
		require.NoError(t, err)
		require.Equal(t, 2, h.Len())
	})

	t.Run("rejects non-numeric amounts", func(t *testing.T) {
		_, err := stamp.ParseRateHistory("letter", []byte("2016-04-10 = abc\n"))
		require.EqualError(t, err, `stamp: parse rate table letter: conl: cannot unmarshal "abc" into Go value of type float64`)
	})

	t.Run("rejects malformed documents", func(t *testing.T) {
		_, err := stamp.ParseRateHistory("letter", []byte("  bad\n"))
		require.EqualError(t, err, "stamp: parse rate table letter: conl: line 1: unexpected indent")
	})

	t.Run("handles an empty table", func(t *testing.T) {
		h, err := stamp.ParseRateHistory("letter", nil)
		require.NoError(t, err)
		require.Equal(t, 0, h.Len())

		_, ok := h.RateOn(day(2020, time.January, 1))
		require.False(t, ok)
	})
}

func TestRateHistoryRateOn(t *testing.T) {
	input := "2014-01-26 = 0.49\n" +
		"2016-04-10 = 0.47\n" +
		"2017-01-22 = 0.49\n" +
		"2019-01-27 = 0.55\n"
	h, err := stamp.ParseRateHistory("letter", []byte(input))
	require.NoError(t, err)

	tests := []struct {
		name string
		date time.Time
		want float64
		ok   bool
	}{
		{"before the first entry", day(2013, time.December, 31), 0, false},
		{"on an effective date", day(2014, time.January, 26), 0.49, true},
		{"between entries", day(2016, time.June, 1), 0.47, true},
		{"on a later effective date", day(2019, time.January, 27), 0.55, true},
		{"after the last entry", day(2030, time.January, 1), 0.55, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rate, ok := h.RateOn(tc.date)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, rate)
		})
	}
}

func TestFormatRates(t *testing.T) {
	got, err := stamp.FormatRates(map[string]float64{
		"2019-01-27": 0.55,
		"2014-01-26": 0.49,
		"2018-01-21": 0.5,
	})
	require.NoError(t, err)

	want := "2014-01-26 = 0.49\n" +
		"2018-01-21 = 0.50\n" +
		"2019-01-27 = 0.55\n"
	require.Equal(t, want, string(got))
}
