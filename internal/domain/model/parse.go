package model

import (
	"strconv"
	"strings"
	"time"
)

// Layouts accepted for approval dates. The API emits MySQL datetimes in UTC;
// older data files carry plain dates or ISO timestamps.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseCount parses a decimal-string counter. Missing or malformed values
// count as zero.
func ParseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// ParseDate parses an approval date. The zero time and false are returned
// when s matches no known layout.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ISOTimestamp formats t the way the data files store timestamps.
func ISOTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// APIDate formats t as the MySQL datetime the osu! v1 API expects.
func APIDate(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}
