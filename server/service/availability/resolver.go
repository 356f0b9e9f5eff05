package availability

import (
	"time"

	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
)

// Resolve computes the open slots for every candidate date.
//
// Per date, the search cursor starts at the window start in tz and
// steps on the fixed 30-minute grid while a full duration still fits
// inside the window. A candidate interval [cursor, cursor+duration) is
// open iff it overlaps no busy interval belonging to that date; a busy
// interval belongs to a date when its start, projected into tz, falls
// on that calendar date.
//
// An unresolvable tz fails with *timezone.InvalidTimezoneError and no
// partial result. Empty candidates yield an empty SlotMap; empty busy
// intervals yield fully open dates. Nothing is shared across calls.
func Resolve(busy []BusyInterval, candidates []CandidateDate, window Window, durationMinutes int, tz string) (*SlotMap, error) {
	loc, err := timezone.LoadLocation(tz)
	if err != nil {
		return nil, err
	}

	duration := time.Duration(durationMinutes) * time.Minute
	step := SlotStepMinutes * time.Minute

	result := &SlotMap{Dates: make([]DateSlots, 0, len(candidates))}
	for _, date := range candidates {
		windowStart := time.Date(date.Year, date.Month, date.Day, window.StartHour, window.StartMinute, 0, 0, loc)
		windowEnd := time.Date(date.Year, date.Month, date.Day, window.EndHour, window.EndMinute, 0, 0, loc)

		dayBusy := busyOnDate(busy, windowStart, loc)

		entry := DateSlots{
			FormattedDate: timezone.FormatDate(windowStart, loc),
			DayOfWeek:     timezone.WeekdayName(windowStart, loc),
			Slots:         []Slot{},
		}
		for cursor := windowStart; !cursor.Add(duration).After(windowEnd); cursor = cursor.Add(step) {
			slotEnd := cursor.Add(duration)
			if !overlapsAny(cursor, slotEnd, dayBusy) {
				entry.Slots = append(entry.Slots, newSlot(cursor, slotEnd, loc))
			}
		}
		entry.HasAvailability = len(entry.Slots) > 0
		result.HasAnyAvailability = result.HasAnyAvailability || entry.HasAvailability
		result.Dates = append(result.Dates, entry)
	}
	return result, nil
}

// busyOnDate selects the busy intervals whose start falls on the same
// calendar date as dayAnchor when projected into loc.
func busyOnDate(busy []BusyInterval, dayAnchor time.Time, loc *time.Location) []BusyInterval {
	var out []BusyInterval
	for _, interval := range busy {
		if timezone.SameDate(interval.Start, dayAnchor, loc) {
			out = append(out, interval)
		}
	}
	return out
}

// overlapsAny applies the closed-open overlap test: a slot and a busy
// interval overlap iff slotStart < busyEnd && busyStart < slotEnd. A
// slot ending exactly at a busy start (or starting exactly at a busy
// end) is open.
func overlapsAny(slotStart, slotEnd time.Time, busy []BusyInterval) bool {
	for _, interval := range busy {
		if slotStart.Before(interval.End) && interval.Start.Before(slotEnd) {
			return true
		}
	}
	return false
}
