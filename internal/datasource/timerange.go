package datasource

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	quarterRe = regexp.MustCompile(`^(\d{4})\s*Q(\d)$`)
	yearRe    = regexp.MustCompile(`^(\d{4})\s*年?$`)
	monthRe   = regexp.MustCompile(`^(\d{4})[\-/年](\d{1,2})月?$`)
	recentRe  = regexp.MustCompile(`最近\s*(\d+|[一二三四五六七八九十]+)\s*個月`)
	lastNRe   = regexp.MustCompile(`(?i)last\s+(\d+)\s+months?`)
)

var cnDigits = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5,
	"六": 6, "七": 7, "八": 8, "九": 9, "十": 10,
}

// ParseTimeRange turns a natural-language time range into [start, end].
// Supported forms: quarters (2024Q4), years (2024, 2024年), months (2024-10,
// 2024/10, 2024年10月), "最近N個月" / "last N months", and "半年" / "half a
// year". The boolean reports whether the phrase was understood.
func ParseTimeRange(phrase string, now time.Time) (time.Time, time.Time, bool) {
	text := strings.ToUpper(strings.TrimSpace(phrase))
	if text == "" {
		return time.Time{}, time.Time{}, false
	}

	if m := quarterRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		if q >= 1 && q <= 4 {
			startMonth := time.Month((q-1)*3 + 1)
			start := time.Date(year, startMonth, 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 3, 0).Add(-time.Nanosecond)
			return start, end, true
		}
	}

	if m := yearRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(1, 0, 0).Add(-time.Nanosecond)
		return start, end, true
	}

	if m := monthRe.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month >= 1 && month <= 12 {
			start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
			end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
			return start, end, true
		}
	}

	if m := recentRe.FindStringSubmatch(phrase); m != nil {
		n, ok := cnDigits[m[1]]
		if !ok {
			n, _ = strconv.Atoi(m[1])
		}
		if n > 0 {
			return now.AddDate(0, -n, 0), now, true
		}
	}

	if m := lastNRe.FindStringSubmatch(phrase); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n > 0 {
			return now.AddDate(0, -n, 0), now, true
		}
	}

	if strings.Contains(phrase, "半年") || strings.Contains(strings.ToLower(phrase), "half a year") {
		return now.AddDate(0, -6, 0), now, true
	}

	return time.Time{}, time.Time{}, false
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-01-02 15:04:05",
	"2006/1/2",
	"2006-1-2",
	time.RFC3339,
}

// ParseDate parses a spreadsheet date cell against the accepted layouts.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
