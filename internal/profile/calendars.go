package profile

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// CalendarFeed describes one additional busy-interval source merged
// into availability resolution alongside the primary calendar.
type CalendarFeed struct {
	// Name labels the feed in logs.
	Name string `yaml:"name"`
	// Kind is "ics" or "gcal".
	Kind string `yaml:"kind"`
	// URL is the feed location for ics feeds (http(s):// or a file path).
	URL string `yaml:"url,omitempty"`
	// CalendarID selects the calendar for gcal feeds.
	CalendarID string `yaml:"calendarId,omitempty"`
}

type calendarsFile struct {
	Feeds []CalendarFeed `yaml:"feeds"`
}

// LoadCalendarFeeds reads the optional calendars file. A missing file
// is not an error; it simply means no extra feeds.
func LoadCalendarFeeds(path string) ([]CalendarFeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "unable to read calendars file %s", path)
	}

	var parsed calendarsFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, errors.Wrapf(err, "invalid calendars file %s", path)
	}

	feeds := make([]CalendarFeed, 0, len(parsed.Feeds))
	for _, feed := range parsed.Feeds {
		switch feed.Kind {
		case "ics":
			if feed.URL == "" {
				return nil, errors.Errorf("calendar feed %q: ics feeds require a url", feed.Name)
			}
		case "gcal":
			if feed.CalendarID == "" {
				return nil, errors.Errorf("calendar feed %q: gcal feeds require a calendarId", feed.Name)
			}
		default:
			return nil, errors.Errorf("calendar feed %q: unknown kind %q", feed.Name, feed.Kind)
		}
		feeds = append(feeds, feed)
	}
	return feeds, nil
}
