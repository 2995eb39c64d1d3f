// Package dateutils normalizes the calendar dates accepted on import and in
// query filters.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"fjacquet/expense-categorizer/internal/models"
)

// Day-first layouts win over month-first ones.
var importLayouts = []string{
	models.DateLayout,
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
	"2006/01/02",
	"2-Jan-2006",
	"02 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

var spaces = regexp.MustCompile(`\s+`)

// CleanDateString trims and collapses whitespace.
func CleanDateString(dateStr string) string {
	return spaces.ReplaceAllString(strings.TrimSpace(dateStr), " ")
}

// ParseDate tries every accepted layout and returns the first that parses.
func ParseDate(dateStr string) (time.Time, string, error) {
	dateStr = CleanDateString(dateStr)
	for _, layout := range importLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, layout, nil
		}
	}
	return time.Time{}, "", fmt.Errorf("unable to parse date: %s", dateStr)
}

// NormalizeDate converts dateStr to YYYY-MM-DD. Empty input stays empty.
func NormalizeDate(dateStr string) (string, error) {
	if CleanDateString(dateStr) == "" {
		return "", nil
	}
	t, _, err := ParseDate(dateStr)
	if err != nil {
		return "", err
	}
	return t.Format(models.DateLayout), nil
}

// MonthBounds returns the first and last day of a YYYY-MM month.
func MonthBounds(month string) (start, end string, err error) {
	t, err := time.Parse(models.MonthLayout, strings.TrimSpace(month))
	if err != nil {
		return "", "", fmt.Errorf("unable to parse month: %s", month)
	}
	last := t.AddDate(0, 1, -1)
	return t.Format(models.DateLayout), last.Format(models.DateLayout), nil
}
