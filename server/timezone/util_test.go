package timezone

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{
			name:    "UTC",
			tz:      "UTC",
			wantErr: false,
		},
		{
			name:    "empty name is invalid",
			tz:      "",
			wantErr: true,
		},
		{
			name:    "Asia/Kolkata",
			tz:      "Asia/Kolkata",
			wantErr: false,
		},
		{
			name:    "America/New_York",
			tz:      "America/New_York",
			wantErr: false,
		},
		{
			name:    "unknown zone",
			tz:      "Invalid/Timezone",
			wantErr: true,
		},
		{
			name:    "garbage",
			tz:      "not a zone",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.tz)
			if tt.wantErr {
				require.Error(t, err)
				var tzErr *InvalidTimezoneError
				assert.True(t, errors.As(err, &tzErr), "error must be typed *InvalidTimezoneError")
				assert.Equal(t, tt.tz, tzErr.Name)
				assert.Nil(t, loc, "no location on error, never a silent default")
				return
			}
			require.NoError(t, err)
			require.NotNil(t, loc)
		})
	}
}

func TestDisplayRoundTripIsIdempotent(t *testing.T) {
	zones := []string{"UTC", "Asia/Kolkata", "America/New_York", "Europe/London", "Australia/Sydney"}
	instants := []time.Time{
		time.Date(2024, 4, 23, 9, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2025, 6, 15, 4, 30, 0, 0, time.UTC),
		// Around northern-hemisphere DST transitions, outside the
		// ambiguous fall-back hour (a wall clock cannot name which of
		// the two repeated hours it meant).
		time.Date(2024, 3, 10, 6, 30, 0, 0, time.UTC),
		time.Date(2024, 11, 3, 12, 0, 0, 0, time.UTC),
	}

	for _, zone := range zones {
		loc, err := LoadLocation(zone)
		require.NoError(t, err)
		for _, instant := range instants {
			display := ToLocalDisplay(instant, loc)
			dateLocal, wallClock := SplitDisplay(display)
			back, err := ToZonedInstant(dateLocal, wallClock, loc)
			require.NoError(t, err)
			assert.True(t, instant.Equal(back), "round trip drifted for %s in %s: %s", instant, zone, display)
		}
	}
}

func TestToZonedInstant(t *testing.T) {
	kolkata := MustLoadLocation("Asia/Kolkata")

	t.Run("minute precision accepted", func(t *testing.T) {
		got, err := ToZonedInstant("2024-04-23", "09:00", kolkata)
		require.NoError(t, err)
		want := time.Date(2024, 4, 23, 9, 0, 0, 0, kolkata)
		assert.True(t, want.Equal(got))
	})

	t.Run("second precision accepted", func(t *testing.T) {
		got, err := ToZonedInstant("2024-04-23", "09:15:30", kolkata)
		require.NoError(t, err)
		want := time.Date(2024, 4, 23, 9, 15, 30, 0, kolkata)
		assert.True(t, want.Equal(got))
	})

	t.Run("malformed clock rejected", func(t *testing.T) {
		_, err := ToZonedInstant("2024-04-23", "nine", kolkata)
		assert.Error(t, err)
	})

	t.Run("repeated calls are stable", func(t *testing.T) {
		first, err := ToZonedInstant("2024-04-23", "09:00", kolkata)
		require.NoError(t, err)
		second, err := ToZonedInstant("2024-04-23", "09:00", kolkata)
		require.NoError(t, err)
		assert.True(t, first.Equal(second))
	})
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in       string
		hour     int
		minute   int
		wantErr  bool
	}{
		{"09:00", 9, 0, false},
		{"17:30", 17, 30, false},
		{"00:00", 0, 0, false},
		{"23:59", 23, 59, false},
		{"24:00", 0, 0, true},
		{"12:60", 0, 0, true},
		{"12", 0, 0, true},
		{"ab:cd", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			hour, minute, err := ParseClock(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestDayHelpers(t *testing.T) {
	ny := MustLoadLocation("America/New_York")

	// 2024-04-23 01:30 UTC is still 2024-04-22 in New York.
	instant := time.Date(2024, 4, 23, 1, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-04-22", FormatDate(instant, ny))
	assert.Equal(t, "2024-04-23", FormatDate(instant, UTC))
	assert.Equal(t, "Monday", WeekdayName(instant, ny))
	assert.Equal(t, "Tuesday", WeekdayName(instant, UTC))

	start := StartOfDay(instant, ny)
	assert.Equal(t, "2024-04-22 00:00:00", ToLocalDisplay(start, ny))

	other := time.Date(2024, 4, 22, 23, 0, 0, 0, ny)
	assert.True(t, SameDate(instant, other, ny))
	assert.False(t, SameDate(instant, other, UTC))
}

func TestFormatClock12(t *testing.T) {
	kolkata := MustLoadLocation("Asia/Kolkata")
	morning := time.Date(2024, 4, 23, 9, 0, 0, 0, kolkata)
	afternoon := time.Date(2024, 4, 23, 15, 30, 0, 0, kolkata)

	assert.Equal(t, "09:00 AM", FormatClock12(morning, kolkata))
	assert.Equal(t, "03:30 PM", FormatClock12(afternoon, kolkata))
}
