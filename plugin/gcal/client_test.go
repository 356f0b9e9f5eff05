package gcal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, config *Config) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClientFromHTTP(context.Background(), config, server.Client(), server.URL)
	require.NoError(t, err)
	return client
}

func TestListBusy(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, "/freeBusy"))

		var body struct {
			TimeMin string `json:"timeMin"`
			TimeMax string `json:"timeMax"`
			Items   []struct {
				ID string `json:"id"`
			} `json:"items"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Items, 1)
		assert.Equal(t, "work@example.com", body.Items[0].ID)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"calendars": {
				"work@example.com": {
					"busy": [
						{"start": "2024-04-15T09:00:00Z", "end": "2024-04-15T10:00:00Z"},
						{"start": "2024-04-15T14:00:00Z", "end": "2024-04-15T15:30:00Z"}
					]
				}
			}
		}`))
	}, &Config{Name: "work", CalendarID: "work@example.com"})

	from := time.Date(2024, 4, 15, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 4, 16, 0, 0, 0, 0, time.UTC)

	busy, err := client.ListBusy(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, busy, 2)

	assert.Equal(t, "Busy", busy[0].Title)
	assert.Equal(t, time.Date(2024, 4, 15, 9, 0, 0, 0, time.UTC), busy[0].Start)
	assert.Equal(t, time.Date(2024, 4, 15, 10, 0, 0, 0, time.UTC), busy[0].End)
	assert.Equal(t, 90*time.Minute, busy[1].End.Sub(busy[1].Start))
}

func TestListBusyDefaultsToPrimary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"calendars": {"primary": {"busy": []}}}`))
	}, &Config{})

	assert.Equal(t, "gcal", client.Name())

	busy, err := client.ListBusy(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, busy)
}

func TestListBusySurfacesCalendarErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"calendars": {
				"primary": {
					"errors": [{"domain": "global", "reason": "notFound"}],
					"busy": []
				}
			}
		}`))
	}, &Config{})

	_, err := client.ListBusy(context.Background(), time.Now(), time.Now().Add(time.Hour))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notFound")
}

func TestConfigValidate(t *testing.T) {
	assert.Error(t, (&Config{}).Validate())
	assert.NoError(t, (&Config{CredentialsFile: "/etc/responder/gcal.json"}).Validate())
}
