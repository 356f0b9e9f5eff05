package availability

import (
	"strings"
	"time"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/temporal"
)

// DefaultCandidateDays is how many business days the search defaults to
// when the email named no date or weekday.
const DefaultCandidateDays = 3

var weekdaysByName = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Candidates builds the date search space from an extraction, in
// precedence order: explicit dates win outright, then mentioned
// weekdays rolled forward to their next future occurrence, then the
// next three business days starting tomorrow. The current date itself
// is never a candidate.
//
// "now" is the single clock reading for the whole resolution; it is
// interpreted in loc for all rollover arithmetic.
func Candidates(extraction temporal.Extraction, now time.Time, loc *time.Location) []CandidateDate {
	if dates := explicitCandidates(extraction.Dates, loc); len(dates) > 0 {
		return dates
	}
	if dates := weekdayCandidates(extraction.DaysOfWeek, now, loc); len(dates) > 0 {
		return dates
	}
	return defaultCandidates(now, loc)
}

func candidateOf(t time.Time, loc *time.Location) CandidateDate {
	local := t.In(loc)
	return CandidateDate{
		Year:     local.Year(),
		Month:    local.Month(),
		Day:      local.Day(),
		Timezone: loc.String(),
	}
}

func explicitCandidates(dates []string, loc *time.Location) []CandidateDate {
	var out []CandidateDate
	for _, raw := range dates {
		parsed, err := time.ParseInLocation(temporal.DateLayout, raw, loc)
		if err != nil {
			// Normalized by the extractor; a parse failure means an
			// impossible calendar date (e.g. "31 February"), skipped.
			continue
		}
		out = append(out, candidateOf(parsed, loc))
	}
	return out
}

// weekdayCandidates rolls each mentioned weekday forward to its next
// occurrence strictly after today: if today already is that weekday,
// the candidate lands a full week out.
func weekdayCandidates(names []string, now time.Time, loc *time.Location) []CandidateDate {
	today := now.In(loc)
	var out []CandidateDate
	for _, name := range names {
		target, ok := weekdaysByName[strings.ToLower(name)]
		if !ok {
			continue
		}
		days := (int(target) - int(today.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		out = append(out, candidateOf(today.AddDate(0, 0, days), loc))
	}
	return out
}

// defaultCandidates returns the next DefaultCandidateDays business
// (Mon-Fri) dates starting tomorrow.
func defaultCandidates(now time.Time, loc *time.Location) []CandidateDate {
	day := now.In(loc)
	out := make([]CandidateDate, 0, DefaultCandidateDays)
	for len(out) < DefaultCandidateDays {
		day = day.AddDate(0, 0, 1)
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			continue
		}
		out = append(out, candidateOf(day, loc))
	}
	return out
}

// WindowFrom derives the working-hours window from an extraction: the
// first extracted time range overrides both bounds globally, for every
// candidate date; otherwise the default 09:00-17:00 window applies.
func WindowFrom(extraction temporal.Extraction) Window {
	if len(extraction.TimeRanges) == 0 {
		return DefaultWindow()
	}
	r := extraction.TimeRanges[0]
	return Window{
		StartHour:   r.Start.Hour24(),
		StartMinute: r.Start.Minute,
		EndHour:     r.End.Hour24(),
		EndMinute:   r.End.Minute,
	}
}
