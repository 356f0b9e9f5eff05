package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearResponderEnvVars() {
	for _, env := range os.Environ() {
		key, _, ok := strings.Cut(env, "=")
		if ok && strings.HasPrefix(key, "RESPONDER_") {
			os.Unsetenv(key)
		}
	}
}

func TestProfileDefaults(t *testing.T) {
	clearResponderEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	tests := []struct {
		name     string
		expected string
		actual   string
	}{
		{"DefaultTimezone default", "Asia/Kolkata", profile.DefaultTimezone},
		{"MailSource default", "msgraph", profile.MailSource},
		{"GraphBaseURL default", "https://graph.microsoft.com/v1.0", profile.GraphBaseURL},
		{"IMAPPort default", "993", profile.IMAPPort},
		{"LLMBaseURL default", "http://localhost:11434/v1", profile.LLMBaseURL},
		{"LLMModel default", "llama3.1:8b", profile.LLMModel},
		{"SweepSpec default", "@every 2m", profile.SweepSpec},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.actual)
		})
	}

	assert.False(t, profile.LLMEnabled, "LLM should be disabled by default")
	assert.True(t, profile.SweepEnabled, "sweep should be enabled by default")
	assert.True(t, profile.IMAPTLS, "IMAP TLS should be on by default")
}

func TestProfileFromEnv(t *testing.T) {
	clearResponderEnvVars()

	os.Setenv("RESPONDER_DEFAULT_TIMEZONE", "Europe/Berlin")
	os.Setenv("RESPONDER_LLM_ENABLED", "true")
	os.Setenv("RESPONDER_LLM_MODEL", "llama3.2:3b")
	os.Setenv("RESPONDER_MAIL_SOURCE", "imap")
	os.Setenv("RESPONDER_SWEEP_ENABLED", "false")
	defer clearResponderEnvVars()

	profile := &Profile{}
	profile.FromEnv()

	assert.Equal(t, "Europe/Berlin", profile.DefaultTimezone)
	assert.True(t, profile.LLMEnabled)
	assert.Equal(t, "llama3.2:3b", profile.LLMModel)
	assert.Equal(t, "imap", profile.MailSource)
	assert.False(t, profile.SweepEnabled)
}

func TestProfileValidate(t *testing.T) {
	clearResponderEnvVars()

	dir := t.TempDir()

	t.Run("sqlite DSN derived from data dir", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Data: dir, Driver: "sqlite"}
		profile.FromEnv()
		require.NoError(t, profile.Validate())
		assert.Equal(t, filepath.Join(dir, "responder_dev.db"), profile.DSN)
		assert.Equal(t, filepath.Join(dir, "calendars.yaml"), profile.CalendarsFile)
	})

	t.Run("unknown mode coerced to demo", func(t *testing.T) {
		profile := &Profile{Mode: "staging", Data: dir, Driver: "sqlite"}
		profile.FromEnv()
		require.NoError(t, profile.Validate())
		assert.Equal(t, "demo", profile.Mode)
	})

	t.Run("unknown mail source rejected", func(t *testing.T) {
		profile := &Profile{Mode: "dev", Data: dir, Driver: "sqlite"}
		profile.FromEnv()
		profile.MailSource = "pigeon"
		assert.Error(t, profile.Validate())
	})

	t.Run("prod requires session secret", func(t *testing.T) {
		profile := &Profile{Mode: "prod", Data: dir, Driver: "sqlite"}
		profile.FromEnv()
		profile.SessionSecret = ""
		assert.Error(t, profile.Validate())
	})
}

func TestLoadCalendarFeeds(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file yields no feeds", func(t *testing.T) {
		feeds, err := LoadCalendarFeeds(filepath.Join(dir, "absent.yaml"))
		require.NoError(t, err)
		assert.Empty(t, feeds)
	})

	t.Run("valid feeds parsed", func(t *testing.T) {
		path := filepath.Join(dir, "calendars.yaml")
		content := "feeds:\n" +
			"  - name: team\n" +
			"    kind: ics\n" +
			"    url: https://example.com/team.ics\n" +
			"  - name: personal\n" +
			"    kind: gcal\n" +
			"    calendarId: primary\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		feeds, err := LoadCalendarFeeds(path)
		require.NoError(t, err)
		require.Len(t, feeds, 2)
		assert.Equal(t, "ics", feeds[0].Kind)
		assert.Equal(t, "https://example.com/team.ics", feeds[0].URL)
		assert.Equal(t, "gcal", feeds[1].Kind)
		assert.Equal(t, "primary", feeds[1].CalendarID)
	})

	t.Run("ics feed without url rejected", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("feeds:\n  - name: broken\n    kind: ics\n"), 0600))
		_, err := LoadCalendarFeeds(path)
		assert.Error(t, err)
	})
}
