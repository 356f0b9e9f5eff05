package ics

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
)

// maxOccurrencesPerEvent caps recurrence expansion so a malformed
// RRULE cannot blow up a sweep.
const maxOccurrencesPerEvent = 1000

type event struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool

	RawRRule     string
	ExDates      []time.Time
	RecurrenceID *time.Time
}

// parseEvents normalizes the calendar's VEVENTs. Events without a
// usable DTSTART are skipped; the rest of the feed still parses.
func parseEvents(calendar *ical.Calendar) []event {
	events := make([]event, 0, len(calendar.Events()))
	for _, ve := range calendar.Events() {
		ev, ok := parseVEvent(ve)
		if !ok {
			continue
		}
		events = append(events, ev)
	}
	return events
}

func parseVEvent(ve *ical.VEvent) (event, bool) {
	var out event

	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		out.UID = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		slog.Warn("skipping ics event with unparseable start", "uid", out.UID, "error", err)
		return out, false
	}
	out.Start = start

	if end, endErr := ve.GetEndAt(); endErr == nil {
		out.End = end
	}

	if p := ve.GetProperty(ical.ComponentPropertyDtStart); p != nil {
		out.AllDay = isDateOnly(p)
	}
	if out.AllDay {
		// All-day events block the whole day in the feed's zone.
		day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
		out.Start = day
		if out.End.IsZero() || !out.End.After(day) {
			out.End = day.Add(24 * time.Hour)
		}
	} else if out.End.IsZero() || !out.End.After(out.Start) {
		// DTEND is optional; a zero-length event still occupies an
		// instant on the grid.
		out.End = out.Start.Add(30 * time.Minute)
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		out.RawRRule = p.Value
	}

	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, raw := range strings.Split(p.Value, ",") {
			if t, ok := parseICSTime(strings.TrimSpace(raw), start.Location()); ok {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, ok := parseICSTime(p.Value, start.Location()); ok {
			out.RecurrenceID = &t
		}
	}

	return out, true
}

func isDateOnly(p *ical.IANAProperty) bool {
	if values, ok := p.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime handles the DATE-TIME and DATE forms used by EXDATE and
// RECURRENCE-ID values.
func parseICSTime(v string, loc *time.Location) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(v, "Z") {
		if t, err := time.Parse("20060102T150405Z", v); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if strings.Contains(v, "T") {
		if t, err := time.ParseInLocation("20060102T150405", v, loc); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation("20060102", v, loc); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// expandBusy turns events into busy intervals overlapping [from, to).
// Recurring events are expanded; overridden instances replace the base
// occurrence they point at.
func expandBusy(events []event, from, to time.Time) []availability.BusyInterval {
	// Overrides suppress the matching occurrence of their base event
	// and contribute their own times instead.
	overriddenStarts := make(map[string][]time.Time)
	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overriddenStarts[ev.UID] = append(overriddenStarts[ev.UID], *ev.RecurrenceID)
		}
	}

	busy := make([]availability.BusyInterval, 0, len(events))
	for _, ev := range events {
		if ev.RecurrenceID != nil || ev.RawRRule == "" {
			if ev.End.After(from) && ev.Start.Before(to) {
				busy = append(busy, busyInterval(ev, ev.Start, ev.End))
			}
			continue
		}
		busy = append(busy, expandRecurring(ev, overriddenStarts[ev.UID], from, to)...)
	}

	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })
	return busy
}

func expandRecurring(ev event, overridden []time.Time, from, to time.Time) []availability.BusyInterval {
	rule, err := rrule.StrToRRule(ev.RawRRule)
	if err != nil {
		slog.Warn("skipping unparseable rrule", "uid", ev.UID, "rrule", ev.RawRRule, "error", err)
		return nil
	}
	rule.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}
	for _, rid := range overridden {
		set.ExDate(rid.In(ev.Start.Location()))
	}

	duration := ev.End.Sub(ev.Start)
	// Widen the query start by the event duration so an occurrence that
	// began before the range but still overlaps it is not lost.
	rangeStart := from.Add(-duration).In(ev.Start.Location())
	rangeEnd := to.In(ev.Start.Location())

	starts := set.Between(rangeStart, rangeEnd, true)
	if len(starts) > maxOccurrencesPerEvent {
		slog.Warn("truncating recurrence expansion", "uid", ev.UID, "cap", maxOccurrencesPerEvent)
		starts = starts[:maxOccurrencesPerEvent]
	}

	out := make([]availability.BusyInterval, 0, len(starts))
	for _, start := range starts {
		end := start.Add(duration)
		if end.After(from) && start.Before(to) {
			out = append(out, busyInterval(ev, start, end))
		}
	}
	return out
}

func busyInterval(ev event, start, end time.Time) availability.BusyInterval {
	title := ev.Summary
	if title == "" {
		title = "Busy"
	}
	return availability.BusyInterval{Title: title, Start: start, End: end}
}
