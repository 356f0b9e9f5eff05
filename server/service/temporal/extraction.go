// Package temporal extracts candidate dates, weekday mentions, time
// ranges, and a meeting duration from free-form email text.
//
// Extraction is pure and never fails: absent matches yield empty
// collections and documented defaults. Ambiguity is resolved by fixed
// heuristics, not rejected.
package temporal

import "fmt"

// DefaultDurationMinutes applies when no duration phrase matched.
const DefaultDurationMinutes = 30

// TimeOfDay is a clock time in 12-hour text form, as written in the
// email. Hour keeps the literal digits (a 24-hour mention like "14:30"
// keeps hour 14); Meridiem is "am" or "pm", defaulting to "am" when
// the text carried none.
type TimeOfDay struct {
	Hour     int    `json:"hour"`
	Minute   int    `json:"minute"`
	Meridiem string `json:"meridiem"`
}

// Hour24 converts to a 24-hour clock hour. Literal hours above 12 are
// taken as already 24-hour regardless of meridiem.
func (t TimeOfDay) Hour24() int {
	switch {
	case t.Hour > 12:
		return t.Hour
	case t.Meridiem == "pm" && t.Hour != 12:
		return t.Hour + 12
	case t.Meridiem == "am" && t.Hour == 12:
		return 0
	default:
		return t.Hour
	}
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%d:%02d %s", t.Hour, t.Minute, t.Meridiem)
}

// TimeRange is an extracted start/end pair.
type TimeRange struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

// Extraction is the structured bag of temporal mentions pulled from
// one email body. It is ephemeral: built per email, never persisted,
// never shared between calls.
type Extraction struct {
	// Dates holds partially-normalized date strings in the form
	// "2 January 2006", in match order, duplicates preserved.
	Dates []string `json:"dates"`
	// DaysOfWeek holds lowercase weekday names in mention order,
	// duplicates preserved.
	DaysOfWeek []string `json:"daysOfWeek"`
	// TimeRanges holds extracted ranges. When no explicit range
	// matched but two or more bare times were found, it holds exactly
	// one synthetic range from the first to the last time in text
	// order.
	TimeRanges []TimeRange `json:"timeRanges"`
	// DurationMinutes is the requested meeting length.
	DurationMinutes int `json:"durationMinutes"`
}

// DateLayout parses the normalized strings in Extraction.Dates.
const DateLayout = "2 January 2006"
