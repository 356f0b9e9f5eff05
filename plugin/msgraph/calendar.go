package msgraph

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
)

// calendarView timestamps arrive without an offset; the Prefer header
// pins them to UTC.
const calendarTimeLayout = "2006-01-02T15:04:05"

type graphEvent struct {
	Subject string `json:"subject"`
	Start   struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
}

// ListBusy fetches the calendar view for a range as busy intervals in
// absolute instants.
func (c *Client) ListBusy(ctx context.Context, from, to time.Time) ([]availability.BusyInterval, error) {
	query := url.Values{}
	query.Set("startDateTime", from.UTC().Format(time.RFC3339))
	query.Set("endDateTime", to.UTC().Format(time.RFC3339))
	query.Set("$select", "subject,start,end")
	query.Set("$orderby", "start/dateTime")
	query.Set("$top", "50")

	headers := map[string]string{"Prefer": `outlook.timezone="UTC"`}

	var result struct {
		Value []graphEvent `json:"value"`
	}
	if err := c.do(ctx, http.MethodGet, c.userPath("/calendarView"), query, headers, nil, &result); err != nil {
		return nil, errors.Wrap(err, "failed to list calendar view")
	}

	busy := make([]availability.BusyInterval, 0, len(result.Value))
	for _, event := range result.Value {
		start, err := parseGraphTime(event.Start.DateTime)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid event start %q", event.Start.DateTime)
		}
		end, err := parseGraphTime(event.End.DateTime)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid event end %q", event.End.DateTime)
		}
		busy = append(busy, availability.BusyInterval{Title: event.Subject, Start: start, End: end})
	}
	return busy, nil
}

// parseGraphTime handles Graph's timestamps in UTC, with or without
// the fractional seconds ("2024-04-23T10:00:00.0000000") the API
// likes to append.
func parseGraphTime(value string) (time.Time, error) {
	return time.Parse(calendarTimeLayout, value)
}
