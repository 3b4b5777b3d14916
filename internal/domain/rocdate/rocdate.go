// Package rocdate normalizes the regulator's minguo (ROC) calendar date
// strings into Gregorian dates. The minguo year is offset from the Gregorian
// year by 1911; month and day pass through unchanged.
//
// Malformed input never produces an error: it yields the Undefined sentinel,
// and callers must guard with IsUndefined before using a date in range
// comparisons.
package rocdate

import (
	"strconv"
	"strings"
	"time"
)

// EpochOffset is the difference between minguo and Gregorian year numbering.
const EpochOffset = 1911

// RangeSeparator joins the two sides of a disposition period string,
// e.g. "115/01/20～115/02/02". It is a full-width wave dash, not an ASCII
// tilde.
const RangeSeparator = "～"

// compactLen is the length of the undelimited form YYYMMDD.
const compactLen = 7

// Undefined is the sentinel returned for malformed input.
var Undefined = time.Time{}

// IsUndefined reports whether t is the malformed-input sentinel.
func IsUndefined(t time.Time) bool {
	return t.IsZero()
}

// Parse converts a minguo date string to a Gregorian date at UTC midnight.
// Two shapes are accepted: the 7-digit compact form "1130120" and the
// slash-delimited form "113/01/20". Anything else yields Undefined.
func Parse(s string) time.Time {
	s = strings.TrimSpace(s)

	var yearStr, monthStr, dayStr string
	switch {
	case strings.Contains(s, "/"):
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return Undefined
		}
		yearStr, monthStr, dayStr = parts[0], parts[1], parts[2]
	case len(s) == compactLen:
		yearStr, monthStr, dayStr = s[:3], s[3:5], s[5:7]
	default:
		return Undefined
	}

	year, err := strconv.Atoi(yearStr)
	if err != nil || year <= 0 {
		return Undefined
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil {
		return Undefined
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil {
		return Undefined
	}

	return makeDate(year+EpochOffset, month, day)
}

// ParseRange splits a period string on RangeSeparator and normalizes each
// side independently. A missing side yields Undefined for that side.
func ParseRange(s string) (start, end time.Time) {
	parts := strings.Split(s, RangeSeparator)
	if len(parts) > 0 {
		start = Parse(parts[0])
	} else {
		start = Undefined
	}
	if len(parts) > 1 {
		end = Parse(parts[1])
	} else {
		end = Undefined
	}
	return start, end
}

// makeDate builds a UTC-midnight date, rejecting out-of-range components.
// time.Date silently normalizes overflow (month 13 becomes January of the
// next year), so the round trip must reproduce the inputs exactly.
func makeDate(year, month, day int) time.Time {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return Undefined
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return Undefined
	}
	return t
}
