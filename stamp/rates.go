package stamp

import (
	"fmt"
	"sort"
	"time"

	"github.com/KimNorgaard/go-conl"
)

const rateDateLayout = "2006-01-02"

// RateHistory holds one rate class's price changes ordered by effective
// date.
type RateHistory struct {
	Name string

	entries []rateEntry
}

type rateEntry struct {
	effective time.Time
	rate      float64
}

// ParseRateHistory reads a flat date = rate table. Keys that do not parse
// as ISO dates are skipped; values must be numbers.
func ParseRateHistory(name string, data []byte) (*RateHistory, error) {
	var table map[string]float64
	if err := conl.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("stamp: parse rate table %s: %w", name, err)
	}

	h := &RateHistory{Name: name}
	for key, rate := range table {
		date, err := time.Parse(rateDateLayout, key)
		if err != nil {
			continue
		}
		h.entries = append(h.entries, rateEntry{effective: date, rate: rate})
	}
	sort.Slice(h.entries, func(i, j int) bool {
		return h.entries[i].effective.Before(h.entries[j].effective)
	})
	return h, nil
}

// Len returns the number of dated entries.
func (h *RateHistory) Len() int {
	return len(h.entries)
}

// RateOn returns the rate in effect on the given date, that is the rate of
// the latest entry not after it. ok is false when the date precedes the
// first entry.
func (h *RateHistory) RateOn(date time.Time) (rate float64, ok bool) {
	for _, e := range h.entries {
		if e.effective.After(date) {
			break
		}
		rate, ok = e.rate, true
	}
	return rate, ok
}

// FormatRates renders a rate table in canonical form: dates sorted
// ascending, amounts with two decimals.
func FormatRates(rates map[string]float64) ([]byte, error) {
	out := make(map[string]Rate, len(rates))
	for date, rate := range rates {
		out[date] = Rate(rate)
	}
	return conl.Marshal(out)
}
