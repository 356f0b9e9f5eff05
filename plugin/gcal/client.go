// Package gcal exposes a Google Calendar as a busy-interval source
// through the FreeBusy API, authenticated with a service account.
package gcal

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
)

// Config describes one Google Calendar feed.
type Config struct {
	// Name labels the feed in logs and the email log.
	Name string
	// CredentialsFile points at the service account JSON key.
	CredentialsFile string
	// CalendarID selects the calendar. Empty means "primary".
	CalendarID string
}

func (c *Config) Validate() error {
	if c.CredentialsFile == "" {
		return errors.New("gcal feed requires a credentials file")
	}
	return nil
}

// Client wraps the Calendar API for busy lookups.
type Client struct {
	name       string
	calendarID string
	service    *calendar.Service
}

// NewClient builds a client from a service account key file.
func NewClient(ctx context.Context, config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(config.CredentialsFile)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read credentials file %s", config.CredentialsFile)
	}
	jwtConfig, err := google.JWTConfigFromJSON(data, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, errors.Wrap(err, "invalid service account credentials")
	}

	service, err := calendar.NewService(ctx, option.WithTokenSource(jwtConfig.TokenSource(ctx)))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}
	return newClient(config, service), nil
}

// NewClientFromHTTP builds a client on a pre-configured HTTP client,
// optionally pointed at a non-default endpoint. Used by tests.
func NewClientFromHTTP(ctx context.Context, config *Config, httpClient *http.Client, endpoint string) (*Client, error) {
	opts := []option.ClientOption{option.WithHTTPClient(httpClient)}
	if endpoint != "" {
		opts = append(opts, option.WithEndpoint(endpoint))
	}
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create calendar service")
	}
	return newClient(config, service), nil
}

func newClient(config *Config, service *calendar.Service) *Client {
	name := config.Name
	if name == "" {
		name = "gcal"
	}
	calendarID := config.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Client{name: name, calendarID: calendarID, service: service}
}

func (c *Client) Name() string {
	return c.name
}

// ListBusy queries FreeBusy for [from, to). FreeBusy carries no event
// titles, so every interval is reported as "Busy".
func (c *Client) ListBusy(ctx context.Context, from, to time.Time) ([]availability.BusyInterval, error) {
	request := &calendar.FreeBusyRequest{
		TimeMin: from.Format(time.RFC3339),
		TimeMax: to.Format(time.RFC3339),
		Items:   []*calendar.FreeBusyRequestItem{{Id: c.calendarID}},
	}

	response, err := c.service.Freebusy.Query(request).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrapf(err, "freebusy query failed for calendar %s", c.calendarID)
	}

	entry, ok := response.Calendars[c.calendarID]
	if !ok {
		return nil, errors.Errorf("freebusy response missing calendar %s", c.calendarID)
	}
	for _, calendarError := range entry.Errors {
		return nil, errors.Errorf("freebusy error for calendar %s: %s", c.calendarID, calendarError.Reason)
	}

	busy := make([]availability.BusyInterval, 0, len(entry.Busy))
	for _, period := range entry.Busy {
		start, err := time.Parse(time.RFC3339, period.Start)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid busy start %q", period.Start)
		}
		end, err := time.Parse(time.RFC3339, period.End)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid busy end %q", period.End)
		}
		busy = append(busy, availability.BusyInterval{Title: "Busy", Start: start, End: end})
	}
	return busy, nil
}
