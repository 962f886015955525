package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// CleanStringPtr cleans *s in place and turns blank strings into nil.
func CleanStringPtr(s *string, lower ...bool) *string {
	if s == nil {
		return nil
	}
	cs := CleanString(*s, lower...)
	if cs == "" {
		return nil
	}
	return &cs
}

// UniqueIDs drops repeated ids, keeping first-seen order.
func UniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

// Truncate cuts s to at most max runes.
func Truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// ParseClock normalizes HH:MM or HH:MM:SS into HH:MM:SS.
func ParseClock(s string) (string, bool) {
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(TimeLayout), true
		}
	}
	return "", false
}

// NormalizeClock returns s as HH:MM:SS, or s unchanged when it cannot be parsed.
func NormalizeClock(s string) string {
	if c, ok := ParseClock(s); ok {
		return c
	}
	return s
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Now is the service clock. The database session runs in UTC, so is Now.
func Now() time.Time {
	return time.Now().UTC()
}

// FormatTimestamp renders t in UTC the way DATETIME columns are read back: YYYY-MM-DD HH:MM:SS.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(DateTimeLayout)
}

// AddDays shifts a YYYY-MM-DD date by n days.
func AddDays(date string, n int) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", err
	}
	return FormatDate(t.AddDate(0, 0, n)), nil
}

func StringPtr(s string) *string { return &s }

func Int64Ptr(i int64) *int64 { return &i }

func BoolPtr(b bool) *bool { return &b }
