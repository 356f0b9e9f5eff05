// Package ics exposes an iCalendar feed as a busy-interval source.
// Feeds may live behind an http(s) URL or on disk; recurring events
// are expanded inside the query range.
package ics

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/server/service/availability"
)

const defaultFetchTimeout = 15 * time.Second

// Config describes one ICS feed.
type Config struct {
	// Name labels the feed in logs and the email log.
	Name string
	// URL is an http(s) endpoint or a local file path.
	URL string
	// FetchTimeout bounds the HTTP fetch. Zero means the default.
	FetchTimeout time.Duration
}

func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("ics feed requires a url")
	}
	return nil
}

// Feed fetches and parses a single ICS subscription.
type Feed struct {
	name   string
	url    string
	client *http.Client
}

func NewFeed(config *Config) (*Feed, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	timeout := config.FetchTimeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	name := config.Name
	if name == "" {
		name = "ics"
	}
	return &Feed{
		name:   name,
		url:    config.URL,
		client: &http.Client{Timeout: timeout},
	}, nil
}

func (f *Feed) Name() string {
	return f.name
}

// ListBusy fetches the feed and returns every event instance that
// overlaps [from, to), recurrences included.
func (f *Feed) ListBusy(ctx context.Context, from, to time.Time) ([]availability.BusyInterval, error) {
	body, err := f.read(ctx)
	if err != nil {
		return nil, err
	}

	calendar, err := ical.ParseCalendar(strings.NewReader(string(body)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse ics feed %s", f.name)
	}

	events := parseEvents(calendar)
	return expandBusy(events, from, to), nil
}

func (f *Feed) read(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(f.url, "http://") && !strings.HasPrefix(f.url, "https://") {
		data, err := os.ReadFile(f.url)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read ics file %s", f.url)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create ics request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to fetch ics feed %s", f.name)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("ics feed %s returned status %d", f.name, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ics feed %s", f.name)
	}
	return data, nil
}
