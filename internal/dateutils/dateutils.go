// Package dateutils parses the date formats found in bank exports and provides
// the month arithmetic used by reports.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayoutISO   = "2006-01-02"
	DateLayoutMonth = "2006-01"
)

// statementLayouts are tried first, in order. Single-digit months and days are
// accepted.
var statementLayouts = []string{
	"1/2/2006", // MM/DD/YYYY
	"2006-1-2", // YYYY-MM-DD
	"1-2-2006", // MM-DD-YYYY
}

// fallbackLayouts are tried when no statement layout matches.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

// ParseStatementDate parses a statement date into a UTC calendar date.
func ParseStatementDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range statementLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// ToISODate formats date as YYYY-MM-DD.
func ToISODate(date time.Time) string {
	return date.Format(DateLayoutISO)
}

// StartOfMonth returns the first day of the month for date.
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// EndOfMonth returns the last day of the month for date.
func EndOfMonth(date time.Time) time.Time {
	return StartOfMonth(date).AddDate(0, 1, -1)
}

// MonthRange parses "YYYY-MM" and returns the first and last day of that month.
func MonthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayoutMonth, month)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid month %q, expected YYYY-MM: %w", month, err)
	}
	return start, EndOfMonth(start), nil
}

// CurrentMonth returns now formatted as YYYY-MM.
func CurrentMonth(now time.Time) string {
	return now.Format(DateLayoutMonth)
}
