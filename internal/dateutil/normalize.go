// Package dateutil canonicalizes the date and time strings that arrive from
// form inputs and from spreadsheet rows. The plant's forms use the ISO date
// input format, older rows were typed day-first (DD/MM/YYYY or DD.MM.YYYY),
// and the sheet engine occasionally serializes a bare clock time as a full
// date-time anchored at its 1899 epoch. Everything here is pure string work:
// no time.Parse, no clock, no locale tables.
package dateutil

import (
	"fmt"
	"strconv"
	"strings"
)

// Sentinels emitted for unparseable input. The sort sentinel compares after
// every real date so broken rows sink to the bottom of a most-recent-first view.
const (
	InvalidSortKey = "9999-99-99 99:99"
	InvalidDate    = "9999-99-99"
	DisplayDash    = "-"
	DefaultTime    = "00:00"
)

// sheetEpochToken marks a spreadsheet serial-time artifact such as
// "1899-12-30T06:03:04.000Z" that really means "06:03".
const sheetEpochToken = "1899"

// Date is a parsed (year, month, day) triple. Zero value is invalid.
type Date struct {
	Year  int
	Month int
	Day   int
}

// Valid reports whether d holds a plausible calendar triple. Range checks are
// deliberately loose: the normalizer's job is shape canonicalization, not
// calendar validation.
func (d Date) Valid() bool {
	return d.Year >= 1000 && d.Year <= 9998 &&
		d.Month >= 1 && d.Month <= 12 &&
		d.Day >= 1 && d.Day <= 31
}

// ISO renders the date as zero-padded YYYY-MM-DD.
func (d Date) ISO() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Display renders the date day-first (DD/MM/YYYY), the plant's locale format.
func (d Date) Display() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// ParseDate accepts YYYY-MM-DD, DD/MM/YYYY or DD.MM.YYYY. Anything else,
// including an empty string, returns ok=false.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, false
	}

	var parts []string
	iso := false
	if strings.Contains(s, "-") {
		parts = strings.Split(s, "-")
		iso = true
	} else {
		parts = strings.Split(strings.ReplaceAll(s, ".", "/"), "/")
	}
	if len(parts) != 3 {
		return Date{}, false
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Date{}, false
		}
		nums[i] = n
	}

	var d Date
	if iso {
		d = Date{Year: nums[0], Month: nums[1], Day: nums[2]}
	} else {
		// Day-first convention for the slash/dot shapes.
		d = Date{Year: nums[2], Month: nums[1], Day: nums[0]}
	}
	if !d.Valid() {
		return Date{}, false
	}
	return d, true
}

// NormalizeTime canonicalizes a clock string to HH:mm. An empty input yields
// fallback (pass "" to get DefaultTime). Spreadsheet artifacts carrying the
// 1899 epoch or an ISO T separator are unwrapped by taking the substring after
// the T and truncating to five characters.
func NormalizeTime(s, fallback string) string {
	if fallback == "" {
		fallback = DefaultTime
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}

	if strings.Contains(s, sheetEpochToken) || strings.Contains(s, "T") {
		if idx := strings.Index(s, "T"); idx >= 0 && len(s) > idx+1 {
			s = s[idx+1:]
			if len(s) > 5 {
				s = s[:5]
			}
		} else {
			return fallback
		}
	}

	hh, mm, ok := splitClock(s)
	if !ok {
		return fallback
	}
	return fmt.Sprintf("%02d:%02d", hh, mm)
}

func splitClock(s string) (int, int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 {
		return 0, 0, false
	}
	hh, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || hh < 0 || hh > 23 {
		return 0, 0, false
	}
	mm, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || mm < 0 || mm > 59 {
		return 0, 0, false
	}
	return hh, mm, true
}

// ISODate normalizes any accepted date shape to YYYY-MM-DD, or InvalidDate.
func ISODate(s string) string {
	d, ok := ParseDate(s)
	if !ok {
		return InvalidDate
	}
	return d.ISO()
}

// DisplayDate normalizes any accepted date shape to DD/MM/YYYY, or a dash.
func DisplayDate(s string) string {
	d, ok := ParseDate(s)
	if !ok {
		return DisplayDash
	}
	return d.Display()
}

// SortKey derives the composite ordering token "YYYY-MM-DD HH:mm". Keys are
// lexicographically comparable without any date parsing; descending order is
// most-recent-first. A missing date short-circuits to the invalid sentinel
// without looking at the time at all.
func SortKey(date, clock string) string {
	d, ok := ParseDate(date)
	if !ok {
		return InvalidSortKey
	}
	return d.ISO() + " " + NormalizeTime(clock, DefaultTime)
}

// DisplayDateTime renders "DD/MM/YYYY HH:mm" for tables and provenance
// columns. A missing date yields a dash; the time falls back to 00:00.
func DisplayDateTime(date, clock string) string {
	d, ok := ParseDate(date)
	if !ok {
		return DisplayDash
	}
	return d.Display() + " " + NormalizeTime(clock, DefaultTime)
}

// TimeOnly extracts just the HH:mm portion, absorbing sheet artifacts.
func TimeOnly(clock string) string {
	return NormalizeTime(clock, DefaultTime)
}
