package temporal

import "time"

// Extractor scans free text for temporal expressions. The zero cost of
// construction makes per-request reuse unnecessary; the struct exists
// to carry the injected clock.
type Extractor struct {
	now func() time.Time
}

// NewExtractor creates an extractor reading the real clock.
func NewExtractor() *Extractor {
	return &Extractor{now: time.Now}
}

// WithNow returns an extractor with the given clock. Used by callers
// that thread one "now" through a whole resolution, and by tests.
func (e *Extractor) WithNow(now func() time.Time) *Extractor {
	return &Extractor{now: now}
}

// Extract runs every rule over the text and merges the tagged partial
// results under the precedence policy. It never fails; text with no
// temporal content yields empty collections and the default duration.
//
// "Now" is read exactly once per call and passed into the rules that
// need it (the current-year assumption for year-less dates).
func (e *Extractor) Extract(text string) Extraction {
	now := e.now()

	partials := make([]partial, 0, len(orderedRules))
	for _, r := range orderedRules {
		partials = append(partials, r.scan(text, now))
	}
	return merge(partials)
}

// merge applies precedence across rule outputs:
//
//   - dates: the first rule (in orderedRules order) that produced any
//     date wins the whole field; later date rules never override it.
//   - daysOfWeek: collected independently of dates.
//   - timeRanges: explicit ranges win; the synthetic bare-time pair is
//     kept only when no explicit range matched.
//   - duration: the final match in the text wins, default 30.
//
// Within a winning rule nothing is deduplicated; overlapping matches
// all register.
func merge(partials []partial) Extraction {
	out := Extraction{
		Dates:           []string{},
		DaysOfWeek:      []string{},
		TimeRanges:      []TimeRange{},
		DurationMinutes: DefaultDurationMinutes,
	}

	var durations []int
	for _, p := range partials {
		if len(p.dates) > 0 && len(out.Dates) == 0 {
			out.Dates = append(out.Dates, p.dates...)
		}
		out.DaysOfWeek = append(out.DaysOfWeek, p.daysOfWeek...)
		if len(p.timeRanges) > 0 && len(out.TimeRanges) == 0 {
			out.TimeRanges = append(out.TimeRanges, p.timeRanges...)
		}
		durations = append(durations, p.durations...)
	}
	if len(durations) > 0 {
		out.DurationMinutes = durations[len(durations)-1]
	}
	return out
}
