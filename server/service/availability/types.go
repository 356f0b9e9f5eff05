// Package availability computes open meeting slots for candidate dates
// against a set of busy calendar intervals.
//
// Everything here is pure: inputs are immutable for the duration of a
// call, outputs are built fresh per call and never cached, and no slot
// data survives between resolutions.
package availability

import (
	"time"

	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
)

// SlotStepMinutes is the fixed grid the slot search walks. Slots are
// evaluated at 30-minute boundaries regardless of requested duration,
// so adjacent accepted slots may overlap; the output is a menu of
// valid starting points, not a partition.
const SlotStepMinutes = 30

// Default working-hours window applied when the email carried no time
// range.
const (
	DefaultWindowStartHour = 9
	DefaultWindowEndHour   = 17
)

// BusyInterval is one calendar-blocked range, carried as absolute
// instants until the moment of display. Never mutated after creation.
type BusyInterval struct {
	Title string    `json:"title,omitempty"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CandidateDate is a calendar date plus the IANA timezone it is to be
// interpreted in.
type CandidateDate struct {
	Year     int        `json:"year"`
	Month    time.Month `json:"month"`
	Day      int        `json:"day"`
	Timezone string     `json:"timezone"`
}

// Window is the wall-clock working-hours window applied identically to
// every candidate date.
type Window struct {
	StartHour   int `json:"startHour"`
	StartMinute int `json:"startMinute"`
	EndHour     int `json:"endHour"`
	EndMinute   int `json:"endMinute"`
}

// DefaultWindow returns the 09:00-17:00 working-hours window.
func DefaultWindow() Window {
	return Window{StartHour: DefaultWindowStartHour, EndHour: DefaultWindowEndHour}
}

// Slot is one open interval of the requested duration, anchored to the
// 30-minute grid.
type Slot struct {
	Start          time.Time `json:"start"`
	End            time.Time `json:"end"`
	StartFormatted string    `json:"startFormatted"`
	EndFormatted   string    `json:"endFormatted"`
}

// DateSlots holds one candidate date's resolution result.
type DateSlots struct {
	FormattedDate   string `json:"formattedDate"`
	DayOfWeek       string `json:"dayOfWeek"`
	Slots           []Slot `json:"slots"`
	HasAvailability bool   `json:"hasAvailability"`
}

// SlotMap is the ordered per-date availability result. Callers iterate
// it in date order, so it is a slice rather than a Go map; ByDate
// serves the occasional keyed lookup.
type SlotMap struct {
	Dates              []DateSlots `json:"dates"`
	HasAnyAvailability bool        `json:"hasAnyAvailability"`
}

// ByDate returns the entry for a formatted date ("2006-01-02"), if any.
func (m *SlotMap) ByDate(formattedDate string) (*DateSlots, bool) {
	for i := range m.Dates {
		if m.Dates[i].FormattedDate == formattedDate {
			return &m.Dates[i], true
		}
	}
	return nil, false
}

func newSlot(start, end time.Time, loc *time.Location) Slot {
	return Slot{
		Start:          start,
		End:            end,
		StartFormatted: timezone.FormatClock12(start, loc),
		EndFormatted:   timezone.FormatClock12(end, loc),
	}
}
