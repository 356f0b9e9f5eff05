// Package timezone is the single point of truth for all zone-sensitive
// date/time conversions in the responder.
//
// Every other component routes instant<->wall-clock conversions through
// this package; nothing else is permitted to do offset arithmetic.
package timezone

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Display layouts. An instant renders as "2006-01-02 15:04:05" local
// wall-clock; the date and clock halves are also used separately.
const (
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04:05"
	DisplayLayout = DateLayout + " " + ClockLayout

	// Clock12Layout is the 12-hour rendering used for slot display.
	Clock12Layout = "03:04 PM"
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// InvalidTimezoneError reports an unrecognized IANA timezone name.
// It is fatal to the resolution call that produced it; callers must
// not substitute a default, since that would silently corrupt
// displayed times.
type InvalidTimezoneError struct {
	Name string
	Err  error
}

func (e *InvalidTimezoneError) Error() string {
	if e.Name == "" {
		return "invalid timezone: empty name"
	}
	return fmt.Sprintf("invalid timezone %q", e.Name)
}

func (e *InvalidTimezoneError) Unwrap() error {
	return e.Err
}

// LoadLocation resolves an IANA timezone name. Unknown or empty names
// fail with *InvalidTimezoneError; there is no silent default.
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return nil, &InvalidTimezoneError{Name: name}
	}
	if name == "UTC" {
		return UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &InvalidTimezoneError{Name: name, Err: err}
	}
	return loc, nil
}

// MustLoadLocation resolves a timezone or panics. Use only for names
// known valid at compile time.
func MustLoadLocation(name string) *time.Location {
	loc, err := LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValidTimezone checks whether an IANA timezone name resolves.
func IsValidTimezone(name string) bool {
	_, err := LoadLocation(name)
	return err == nil
}

// ToLocalDisplay renders an instant as local wall-clock text in the
// given location, second precision. Sub-second components do not
// survive the round trip and are deliberately not rendered.
func ToLocalDisplay(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DisplayLayout)
}

// ToZonedInstant interprets a local calendar date ("2006-01-02") and a
// wall-clock ("15:04" or "15:04:05") in the given location and returns
// the corresponding instant. Together with ToLocalDisplay it is
// idempotent: feeding the display halves back yields the original
// instant exactly (at second precision).
func ToZonedInstant(dateLocal, wallClock string, loc *time.Location) (time.Time, error) {
	layout := DisplayLayout
	if len(wallClock) == len("15:04") {
		layout = DateLayout + " 15:04"
	}
	t, err := time.ParseInLocation(layout, dateLocal+" "+wallClock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid local time %q %q: %w", dateLocal, wallClock, err)
	}
	return t, nil
}

// SplitDisplay splits a ToLocalDisplay result back into its date and
// wall-clock halves.
func SplitDisplay(display string) (dateLocal, wallClock string) {
	if i := strings.IndexByte(display, ' '); i >= 0 {
		return display[:i], display[i+1:]
	}
	return display, ""
}

// ParseClock parses a 24-hour "HH:MM" wall-clock string.
func ParseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid wall clock %q", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid wall clock %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid wall clock %q", s)
	}
	return hour, minute, nil
}

// StartOfDay returns 00:00:00 of t's calendar date in the given timezone.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// SameDate reports whether two instants fall on the same calendar date
// in the given timezone.
func SameDate(a, b time.Time, loc *time.Location) bool {
	al, bl := a.In(loc), b.In(loc)
	return al.Year() == bl.Year() && al.Month() == bl.Month() && al.Day() == bl.Day()
}

// FormatDate renders an instant's calendar date in the given timezone.
func FormatDate(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayout)
}

// WeekdayName renders an instant's weekday name ("Monday") in the given timezone.
func WeekdayName(t time.Time, loc *time.Location) string {
	return t.In(loc).Weekday().String()
}

// FormatClock12 renders an instant's time of day as "03:04 PM" in the
// given timezone.
func FormatClock12(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(Clock12Layout)
}

// Common timezone constants.
const (
	TimezoneUTC = "UTC"

	// TimezoneAsiaKolkata is India Standard Time, the documented
	// fallback zone of this deployment.
	TimezoneAsiaKolkata = "Asia/Kolkata"

	TimezoneAmericaNewYork = "America/New_York"
	TimezoneEuropeLondon   = "Europe/London"
)

// Common timezone locations (pre-loaded for performance).
var (
	LocationAsiaKolkata    = MustLoadLocation(TimezoneAsiaKolkata)
	LocationAmericaNewYork = MustLoadLocation(TimezoneAmericaNewYork)
	LocationEuropeLondon   = MustLoadLocation(TimezoneEuropeLondon)
)
