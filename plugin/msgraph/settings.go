package msgraph

import (
	"context"
	"net/http"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/pkg/errors"

	"github.com/vishalnagda1/outlook-mail-responder/server/timezone"
)

const settingsCacheTTL = 15 * time.Minute

// windowsZones maps the Windows-style time zone names Graph mailbox
// settings return to IANA names. Unmapped names fall back to the
// configured default at the caller.
var windowsZones = map[string]string{
	"India Standard Time":          "Asia/Kolkata",
	"Eastern Standard Time":        "America/New_York",
	"Central Standard Time":        "America/Chicago",
	"Mountain Standard Time":       "America/Denver",
	"Pacific Standard Time":        "America/Los_Angeles",
	"GMT Standard Time":            "Europe/London",
	"W. Europe Standard Time":      "Europe/Berlin",
	"Romance Standard Time":        "Europe/Paris",
	"Central Europe Standard Time": "Europe/Budapest",
	"China Standard Time":          "Asia/Shanghai",
	"Tokyo Standard Time":          "Asia/Tokyo",
	"Singapore Standard Time":      "Asia/Singapore",
	"AUS Eastern Standard Time":    "Australia/Sydney",
	"UTC":                          "UTC",
}

type settingsCache struct {
	cache *expirable.LRU[string, string]
}

func newSettingsCache() *settingsCache {
	return &settingsCache{
		cache: expirable.NewLRU[string, string](16, nil, settingsCacheTTL),
	}
}

// MailboxTimezone reads the mailbox timezone from Graph settings,
// mapped to an IANA name. Returns "" when the mailbox carries no
// usable zone; the caller substitutes the configured default. Cached
// for 15 minutes per mailbox.
func (c *Client) MailboxTimezone(ctx context.Context) (string, error) {
	if cached, ok := c.settingsCache.cache.Get(c.config.UserID); ok {
		return cached, nil
	}

	var settings struct {
		TimeZone string `json:"timeZone"`
	}
	if err := c.do(ctx, http.MethodGet, c.userPath("/mailboxSettings"), nil, nil, nil, &settings); err != nil {
		return "", errors.Wrap(err, "failed to read mailbox settings")
	}

	zone := toIANA(settings.TimeZone)
	c.settingsCache.cache.Add(c.config.UserID, zone)
	return zone, nil
}

func toIANA(name string) string {
	if name == "" {
		return ""
	}
	if mapped, ok := windowsZones[name]; ok {
		return mapped
	}
	// Some tenants already store IANA names.
	if timezone.IsValidTimezone(name) {
		return name
	}
	return ""
}
