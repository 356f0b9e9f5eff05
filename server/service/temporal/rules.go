package temporal

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthAlternation = `january|february|march|april|may|june|july|august|september|october|november|december|sept|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec`

// Patterns for temporal extraction
var (
	// Date patterns
	dayMonthYearPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthAlternation + `)\s+(\d{4})\b`)
	dayMonthPattern     = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthAlternation + `)\b`)
	numericDatePattern  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)

	// Weekday pattern
	weekdayPattern = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday)\b`)

	// Time patterns. A time token is "H", "H:MM", optionally followed
	// by am/pm; a range joins two tokens with "to" or "-".
	timeRangePattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\s*(?:to|-)\s*(\d{1,2})(?::(\d{2}))?\s*(am|pm)?\b`)
	bareTimePattern  = regexp.MustCompile(`(?i)\b(\d{1,2}):(\d{2})\s*(am|pm)?\b|\b(\d{1,2})\s*(am|pm)\b`)

	// Duration pattern
	durationPattern = regexp.MustCompile(`(?i)\b(\d+)\s*(hours?|hrs?|minutes?|mins?)\b`)
)

var monthsByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// partial is one rule's tagged contribution. The merge step in
// extractor.go applies the precedence policy across partials; rules
// themselves never look at each other's output.
type partial struct {
	dates      []string
	daysOfWeek []string
	timeRanges []TimeRange
	durations  []int
}

type rule struct {
	name string
	scan func(text string, now time.Time) partial
}

// orderedRules lists every extraction rule highest-precedence first.
// Order is load-bearing: the merge keeps the first non-empty result
// per field.
var orderedRules = []rule{
	{name: "date-day-month-year", scan: scanDayMonthYear},
	{name: "date-day-month", scan: scanDayMonth},
	{name: "date-numeric", scan: scanNumericDate},
	{name: "weekday", scan: scanWeekdays},
	{name: "time-range-explicit", scan: scanExplicitRanges},
	{name: "time-range-synthetic", scan: scanBareTimePair},
	{name: "duration", scan: scanDuration},
}

func normalizeDate(day int, month time.Month, year int) (string, bool) {
	if day < 1 || day > 31 {
		return "", false
	}
	return strconv.Itoa(day) + " " + month.String() + " " + strconv.Itoa(year), true
}

func scanDayMonthYear(text string, _ time.Time) partial {
	var p partial
	for _, m := range dayMonthYearPattern.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month := monthsByName[strings.ToLower(m[2])]
		year, _ := strconv.Atoi(m[3])
		if date, ok := normalizeDate(day, month, year); ok {
			p.dates = append(p.dates, date)
		}
	}
	return p
}

func scanDayMonth(text string, now time.Time) partial {
	var p partial
	for _, m := range dayMonthPattern.FindAllStringSubmatch(text, -1) {
		day, _ := strconv.Atoi(m[1])
		month := monthsByName[strings.ToLower(m[2])]
		if date, ok := normalizeDate(day, month, now.Year()); ok {
			p.dates = append(p.dates, date)
		}
	}
	return p
}

func scanNumericDate(text string, _ time.Time) partial {
	var p partial
	for _, m := range numericDatePattern.FindAllStringSubmatch(text, -1) {
		first, _ := strconv.Atoi(m[1])
		second, _ := strconv.Atoi(m[2])
		rawYear := m[3]
		if len(rawYear) == 2 {
			rawYear = "20" + rawYear
		}
		year, _ := strconv.Atoi(rawYear)

		// A first group above 12 can only be a day, forcing day-first
		// interpretation; otherwise month-first is assumed.
		day, month := second, first
		if first > 12 {
			day, month = first, second
		}
		if month < 1 || month > 12 {
			continue
		}
		if date, ok := normalizeDate(day, time.Month(month), year); ok {
			p.dates = append(p.dates, date)
		}
	}
	return p
}

func scanWeekdays(text string, _ time.Time) partial {
	var p partial
	for _, m := range weekdayPattern.FindAllStringSubmatch(text, -1) {
		p.daysOfWeek = append(p.daysOfWeek, strings.ToLower(m[1]))
	}
	return p
}

func newTimeOfDay(rawHour, rawMinute, rawMeridiem string) TimeOfDay {
	hour, _ := strconv.Atoi(rawHour)
	minute := 0
	if rawMinute != "" {
		minute, _ = strconv.Atoi(rawMinute)
	}
	// A time with no explicit meridiem defaults to "am". This applies
	// to a range's end as well, so "9 to 5" ends at 5:00 am.
	meridiem := strings.ToLower(rawMeridiem)
	if meridiem == "" {
		meridiem = "am"
	}
	return TimeOfDay{Hour: hour, Minute: minute, Meridiem: meridiem}
}

func scanExplicitRanges(text string, _ time.Time) partial {
	var p partial
	for _, m := range timeRangePattern.FindAllStringSubmatch(text, -1) {
		p.timeRanges = append(p.timeRanges, TimeRange{
			Start: newTimeOfDay(m[1], m[2], m[3]),
			End:   newTimeOfDay(m[4], m[5], m[6]),
		})
	}
	return p
}

// scanBareTimePair collects single time mentions and, when two or more
// exist, yields one synthetic range from the first to the last in text
// order (not sorted by clock value). The merge discards it whenever an
// explicit range matched.
func scanBareTimePair(text string, _ time.Time) partial {
	var p partial
	var found []TimeOfDay
	for _, m := range bareTimePattern.FindAllStringSubmatch(text, -1) {
		if m[1] != "" {
			found = append(found, newTimeOfDay(m[1], m[2], m[3]))
		} else {
			found = append(found, newTimeOfDay(m[4], "", m[5]))
		}
	}
	if len(found) >= 2 {
		p.timeRanges = append(p.timeRanges, TimeRange{Start: found[0], End: found[len(found)-1]})
	}
	return p
}

func scanDuration(text string, _ time.Time) partial {
	var p partial
	for _, m := range durationPattern.FindAllStringSubmatch(text, -1) {
		value, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(strings.ToLower(m[2]), "h") {
			value *= 60
		}
		p.durations = append(p.durations, value)
	}
	return p
}
