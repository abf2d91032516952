package csvimport

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const isoDate = "2006-01-02"

// dateFormat is one candidate interpretation of a raw date cell.
// parse returns the canonical YYYY-MM-DD form and whether it matched.
type dateFormat struct {
	name  string
	parse func(raw string) (string, bool)
}

var (
	reDayMonthDot2   = regexp.MustCompile(`^(\d{2})\.(\d{2})\.(\d{4})$`)
	reDayMonthSlash2 = regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})$`)
	reDayMonthDot    = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4})$`)
	reDayMonthSlash  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reYearDash       = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
	reYearDot        = regexp.MustCompile(`^(\d{4})\.(\d{1,2})\.(\d{1,2})$`)
	reAmbiguousSlash = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	reAmbiguousDash  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
)

// isoLayouts are the layouts accepted as native ISO input.
var isoLayouts = []string{
	isoDate,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// dateFormats is tried in order; the first match wins.
var dateFormats = []dateFormat{
	{name: "YYYY-MM-DD", parse: parseISO},
	{name: "DD.MM.YYYY", parse: dayMonthYear(reDayMonthDot2)},
	{name: "DD/MM/YYYY", parse: dayMonthYear(reDayMonthSlash2)},
	{name: "D.M.YYYY", parse: dayMonthYear(reDayMonthDot)},
	{name: "D/M/YYYY", parse: dayMonthYear(reDayMonthSlash)},
	{name: "YYYY-M-D", parse: yearMonthDay(reYearDash)},
	{name: "YYYY.M.D", parse: yearMonthDay(reYearDot)},
	{name: "DD/MM/YYYY or MM/DD/YYYY", parse: parseAmbiguousSlash},
	{name: "MM-DD-YYYY", parse: parseAmbiguousDash},
}

// dateFormatNames lists dateFormats names for error messages.
func dateFormatNames() []string {
	names := make([]string, len(dateFormats))
	for i, f := range dateFormats {
		names[i] = f.name
	}
	return names
}

// ParseDate resolves a raw date cell to YYYY-MM-DD.
func ParseDate(raw string) (string, bool) {
	for _, f := range dateFormats {
		if d, ok := f.parse(raw); ok {
			return d, true
		}
	}
	return "", false
}

func parseISO(raw string) (string, bool) {
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(isoDate), true
		}
	}
	return "", false
}

func dayMonthYear(re *regexp.Regexp) func(string) (string, bool) {
	return func(raw string) (string, bool) {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			return "", false
		}
		return calendarDate(m[3], m[2], m[1])
	}
}

func yearMonthDay(re *regexp.Regexp) func(string) (string, bool) {
	return func(raw string) (string, bool) {
		m := re.FindStringSubmatch(raw)
		if m == nil {
			return "", false
		}
		return calendarDate(m[1], m[2], m[3])
	}
}

// parseAmbiguousSlash reads A/B/YYYY as day/month first, then month/day.
func parseAmbiguousSlash(raw string) (string, bool) {
	m := reAmbiguousSlash.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	if d, ok := calendarDate(m[3], m[2], m[1]); ok {
		return d, true
	}
	return calendarDate(m[3], m[1], m[2])
}

// parseAmbiguousDash reads A-B-YYYY as month-day only.
func parseAmbiguousDash(raw string) (string, bool) {
	m := reAmbiguousDash.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return calendarDate(m[3], m[1], m[2])
}

// calendarDate validates numeric parts and rejects dates that time.Date would roll over.
func calendarDate(year, month, day string) (string, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return "", false
	}
	mo, err := strconv.Atoi(month)
	if err != nil || mo < 1 || mo > 12 {
		return "", false
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 || d > 31 {
		return "", false
	}
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), true
}

// dateParts derives the weekday name and quarter of a canonical date.
func dateParts(iso string) (dayOfWeek, quarter string) {
	t, err := time.Parse(isoDate, iso)
	if err != nil {
		return "", ""
	}
	return t.Weekday().String(), fmt.Sprintf("Q%d", (int(t.Month())+2)/3)
}
