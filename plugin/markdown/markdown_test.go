package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "paragraphs",
			text: "Hi Alice,\n\nTuesday works.",
			want: []string{"<p>Hi Alice,</p>", "<p>Tuesday works.</p>"},
		},
		{
			name: "hard wraps become br",
			text: "Tuesday, 2024-04-23:\n10:00 AM to 10:30 AM",
			want: []string{"<br>"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.text)
			require.NoError(t, err)
			for _, fragment := range tt.want {
				assert.Contains(t, got, fragment)
			}
		})
	}
}
