package mailtext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "plain text passes through",
			body: "Can we meet on Tuesday?",
			want: "Can we meet on Tuesday?",
		},
		{
			name: "tags stripped and blocks become lines",
			body: "<html><body><p>Hi there,</p><p>Can we meet <b>Tuesday</b> at 2pm?</p></body></html>",
			want: "Hi there,\nCan we meet Tuesday at 2pm?",
		},
		{
			name: "style and script content dropped",
			body: "<html><head><style>p { color: red }</style></head><body><p>Visible</p><script>alert(1)</script></body></html>",
			want: "Visible",
		},
		{
			name: "br breaks lines",
			body: "line one<br>line two<br/>line three",
			want: "line one\nline two\nline three",
		},
		{
			name: "entities decode",
			body: "<p>Tom &amp; Jerry &lt;3</p>",
			want: "Tom & Jerry <3",
		},
		{
			name: "nested whitespace collapses",
			body: "<div>\n\t  lots   of\n\n space\t</div>",
			want: "lots of\nspace",
		},
		{
			name: "empty input",
			body: "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTMLToText(tt.body))
		})
	}
}

func TestSnippet(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxRunes int
		want     string
	}{
		{
			name:     "short text untouched",
			text:     "Quick note",
			maxRunes: 50,
			want:     "Quick note",
		},
		{
			name:     "truncates at a word boundary with ellipsis",
			text:     "The quick brown fox jumps over the lazy dog",
			maxRunes: 20,
			want:     "The quick brown fox...",
		},
		{
			name:     "newlines collapse before measuring",
			text:     "first line\nsecond line",
			maxRunes: 50,
			want:     "first line second line",
		},
		{
			name:     "zero budget uses the default",
			text:     strings.Repeat("word ", 40),
			maxRunes: 0,
			want:     strings.Repeat("word ", 23) + "word...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Snippet(tt.text, tt.maxRunes)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSnippet_RuneSafe(t *testing.T) {
	text := strings.Repeat("日程", 100)
	got := Snippet(text, 10)
	assert.True(t, strings.HasSuffix(got, "..."))
	for _, r := range got {
		assert.NotEqual(t, '�', r, "snippet must never split a multi-byte rune")
	}
}
