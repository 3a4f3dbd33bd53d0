package tzconvert

import (
	"strings"
	"time"
)

// Layouts accepted for naive timestamps. Both are fixed width.
const (
	// LayoutA is MM.DD.YYYY HH:MM:SS on a 24-hour clock.
	LayoutA = "01.02.2006 15:04:05"
	// LayoutB is hh:mmXM YYYY-MM-DD on a 12-hour clock, e.g. "12:30pm 2024-02-01".
	LayoutB = "03:04pm 2006-01-02"
	// DisplayLayout renders a zoned instant as "2024-02-01 12:30:05 MSK+0300".
	DisplayLayout = "2006-01-02 15:04:05 MST-0700"
)

// ParseA parses a Format A string into a naive wall-clock reading.
// The returned time carries time.UTC only as a placeholder location.
// Years run from 0001 to 9999.
func ParseA(field, s string) (time.Time, error) {
	// time.Parse accepts a single-digit 24-hour field; the length check
	// rejects that along with every other unpadded field.
	if len(s) != len(LayoutA) {
		return time.Time{}, malformed(field, s, nil)
	}
	t, err := time.Parse(LayoutA, s)
	if err != nil {
		return time.Time{}, malformed(field, s, err)
	}
	if t.Year() < 1 {
		return time.Time{}, malformed(field, s, nil)
	}
	return t, nil
}

// ParseB parses a Format B string into a naive wall-clock reading.
// The am/pm marker is matched case-insensitively.
func ParseB(field, s string) (time.Time, error) {
	if len(s) != len(LayoutB) {
		return time.Time{}, malformed(field, s, nil)
	}
	// time.Parse lets "00" through for the 12-hour field.
	if s[:2] == "00" {
		return time.Time{}, malformed(field, s, nil)
	}
	normalized := s[:5] + strings.ToLower(s[5:7]) + s[7:]
	t, err := time.Parse(LayoutB, normalized)
	if err != nil {
		return time.Time{}, malformed(field, s, err)
	}
	if t.Year() < 1 {
		return time.Time{}, malformed(field, s, nil)
	}
	return t, nil
}

// Display formats t in its own location using DisplayLayout.
func Display(t time.Time) string {
	return t.Format(DisplayLayout)
}

func malformed(field, s string, err error) error {
	return &Error{Kind: KindMalformedTimestamp, Field: field, Value: s, Err: err}
}
