// Parses and formats the DD-MM-YYYY display dates stored in records.

package record

import (
	"strings"
	"time"
)

// DateLayout is the storage and display format of every record date.
const DateLayout = "02-01-2006"

// inputLayouts are tried in order by NormalizeDate.
var inputLayouts = []string{
	"2-1-2006",
	"2006-1-2",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2/1/2006",
	"2006/1/2",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// FormatDate formats t as DD-MM-YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseDate parses a DD-MM-YYYY date.
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// NormalizeDate converts s to DD-MM-YYYY.
//
// ISO (YYYY-MM-DD), DD-MM-YYYY and a few common human formats are accepted.
// Empty or unparseable input yields the date of now.
func NormalizeDate(s string, now time.Time) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return FormatDate(now)
	}
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FormatDate(t)
		}
	}
	return FormatDate(now)
}

// SortKey returns the time used to order records by date. Records with a
// missing or invalid date sort as the Unix epoch.
func SortKey(r Record) time.Time {
	if t, ok := ParseDate(r.Date()); ok {
		return t
	}
	return time.Unix(0, 0).UTC()
}
