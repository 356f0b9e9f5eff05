package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedExtractor(t time.Time) *Extractor {
	return NewExtractor().WithNow(func() time.Time { return t })
}

var extractionNow = time.Date(2024, time.April, 22, 10, 0, 0, 0, time.UTC)

func TestExtract_NoTemporalContent(t *testing.T) {
	got := fixedExtractor(extractionNow).Extract("Thanks for your help")

	assert.Empty(t, got.Dates)
	assert.Empty(t, got.DaysOfWeek)
	assert.Empty(t, got.TimeRanges)
	assert.Equal(t, DefaultDurationMinutes, got.DurationMinutes)
}

func TestExtract_SchedulingRequest(t *testing.T) {
	got := fixedExtractor(extractionNow).Extract("Let's meet 2pm to 3:30pm on Friday for 45 minutes")

	assert.Empty(t, got.Dates)
	assert.Equal(t, []string{"friday"}, got.DaysOfWeek)
	require.Len(t, got.TimeRanges, 1)
	assert.Equal(t, TimeOfDay{Hour: 2, Meridiem: "pm"}, got.TimeRanges[0].Start)
	assert.Equal(t, TimeOfDay{Hour: 3, Minute: 30, Meridiem: "pm"}, got.TimeRanges[0].End)
	assert.Equal(t, 45, got.DurationMinutes)
}

func TestExtract_DatePrecedence(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "explicit day month year",
			text: "How about 23rd April 2024?",
			want: []string{"23 April 2024"},
		},
		{
			name: "abbreviated month with year",
			text: "I could do 23 Apr 2025",
			want: []string{"23 April 2025"},
		},
		{
			name: "day month assumes the extraction year",
			text: "free on 23rd of April in the afternoon",
			want: []string{"23 April 2024"},
		},
		{
			name: "full date beats yearless mention of the same span",
			text: "23rd April 2024 works, or maybe 25th of April",
			want: []string{"23 April 2024"},
		},
		{
			name: "numeric month first by default",
			text: "are you around on 4/23/2024?",
			want: []string{"23 April 2024"},
		},
		{
			name: "numeric first group above 12 forces day first",
			text: "are you around on 23/4/2024?",
			want: []string{"23 April 2024"},
		},
		{
			name: "two digit year expands with 20 prefix",
			text: "see you 23/4/24",
			want: []string{"23 April 2024"},
		},
		{
			name: "impossible numeric month is dropped",
			text: "ref 99/99/2024 in the invoice",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixedExtractor(extractionNow).Extract(tt.text)
			assert.Equal(t, tt.want, got.Dates)
		})
	}
}

func TestExtract_WeekdaysIndependentOfDates(t *testing.T) {
	got := fixedExtractor(extractionNow).Extract("Tuesday or Friday, or Friday the 23rd April 2024")

	assert.Equal(t, []string{"23 April 2024"}, got.Dates)
	assert.Equal(t, []string{"tuesday", "friday", "friday"}, got.DaysOfWeek,
		"weekday mentions collect alongside dates, duplicates preserved")
}

func TestExtract_TimeRanges(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  []TimeRange
		count int
	}{
		{
			name: "explicit to range",
			text: "anywhere from 10am to 11:30am suits me",
			want: []TimeRange{{
				Start: TimeOfDay{Hour: 10, Meridiem: "am"},
				End:   TimeOfDay{Hour: 11, Minute: 30, Meridiem: "am"},
			}},
		},
		{
			name: "dash range",
			text: "block 2-4pm please",
			want: []TimeRange{{
				Start: TimeOfDay{Hour: 2, Meridiem: "am"},
				End:   TimeOfDay{Hour: 4, Meridiem: "pm"},
			}},
		},
		{
			name: "missing end meridiem defaults to am",
			text: "the office runs 9 to 5",
			want: []TimeRange{{
				Start: TimeOfDay{Hour: 9, Meridiem: "am"},
				End:   TimeOfDay{Hour: 5, Meridiem: "am"},
			}},
		},
		{
			name: "two bare times synthesize one range in text order",
			text: "I finish at 4pm but could start again at 9am tomorrow",
			want: []TimeRange{{
				Start: TimeOfDay{Hour: 4, Meridiem: "pm"},
				End:   TimeOfDay{Hour: 9, Meridiem: "am"},
			}},
		},
		{
			name: "one bare time yields no range",
			text: "call me at 3pm",
			want: []TimeRange{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixedExtractor(extractionNow).Extract(tt.text)
			assert.Equal(t, tt.want, got.TimeRanges)
		})
	}
}

func TestExtract_ExplicitRangeSuppressesSyntheticPair(t *testing.T) {
	got := fixedExtractor(extractionNow).Extract("10am to 11am, though 3pm and 4pm are also fine")

	require.NotEmpty(t, got.TimeRanges)
	assert.Equal(t, TimeOfDay{Hour: 10, Meridiem: "am"}, got.TimeRanges[0].Start,
		"the explicit range wins; bare times never synthesize when one matched")
}

func TestExtract_DurationLastMatchWins(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int
	}{
		{
			name: "minutes",
			text: "a quick 45 minutes",
			want: 45,
		},
		{
			name: "hours convert to minutes",
			text: "book 2 hours",
			want: 120,
		},
		{
			name: "abbreviated units",
			text: "15 mins or so",
			want: 15,
		},
		{
			name: "final match wins over earlier ones",
			text: "not 30 minutes, let's make it 1 hour",
			want: 60,
		},
		{
			name: "no phrase defaults to 30",
			want: DefaultDurationMinutes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fixedExtractor(extractionNow).Extract(tt.text)
			assert.Equal(t, tt.want, got.DurationMinutes)
		})
	}
}

func TestTimeOfDayHour24(t *testing.T) {
	tests := []struct {
		name string
		in   TimeOfDay
		want int
	}{
		{name: "am morning", in: TimeOfDay{Hour: 9, Meridiem: "am"}, want: 9},
		{name: "pm afternoon", in: TimeOfDay{Hour: 2, Meridiem: "pm"}, want: 14},
		{name: "noon", in: TimeOfDay{Hour: 12, Meridiem: "pm"}, want: 12},
		{name: "midnight", in: TimeOfDay{Hour: 12, Meridiem: "am"}, want: 0},
		{name: "literal 24-hour mention kept", in: TimeOfDay{Hour: 14, Minute: 30, Meridiem: "am"}, want: 14},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Hour24())
		})
	}
}

func TestExtract_ReadsClockOnce(t *testing.T) {
	calls := 0
	extractor := NewExtractor().WithNow(func() time.Time {
		calls++
		return extractionNow
	})

	extractor.Extract("on 23rd of April, or 24th of April, or Friday")
	assert.Equal(t, 1, calls, "now is read exactly once per extraction")
}
