package daterange

import (
	"fmt"
	"strings"
	"time"
)

// Range is a parsed trip date span.
type Range struct {
	Start time.Time
	End   time.Time
}

// Days is the trip length in days, inclusive of both endpoints.
func (r Range) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// Nights is the number of hotel nights.
func (r Range) Nights() int {
	n := r.Days() - 1
	if n < 0 {
		return 0
	}
	return n
}

// InPast reports whether the whole range is already behind the reference
// time. Providers cannot quote historical fares, so callers skip live search
// for past ranges.
func (r Range) InPast(now time.Time) bool {
	return r.End.Before(now.Truncate(24 * time.Hour))
}

var separators = []string{" to ", " - ", " – ", " — ", "–", "—"}

var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// Parse accepts the date-range strings the client is allowed to send, e.g.
// "2026-09-01 to 2026-09-07", "Sep 1, 2026 - Sep 7, 2026" or
// "1 September 2026 – 7 September 2026".
func Parse(raw string) (Range, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Range{}, fmt.Errorf("date range is empty")
	}

	var startStr, endStr string
	for _, sep := range separators {
		if idx := strings.Index(raw, sep); idx > 0 {
			startStr = strings.TrimSpace(raw[:idx])
			endStr = strings.TrimSpace(raw[idx+len(sep):])
			break
		}
	}
	if startStr == "" {
		// Single date: a one-day trip.
		start, err := parseDate(raw)
		if err != nil {
			return Range{}, err
		}
		return Range{Start: start, End: start}, nil
	}

	start, err := parseDate(startStr)
	if err != nil {
		return Range{}, fmt.Errorf("invalid start date %q: %w", startStr, err)
	}
	end, err := parseDate(endStr)
	if err != nil {
		return Range{}, fmt.Errorf("invalid end date %q: %w", endStr, err)
	}
	if end.Before(start) {
		return Range{}, fmt.Errorf("end date %q is before start date %q", endStr, startStr)
	}
	return Range{Start: start, End: end}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}
