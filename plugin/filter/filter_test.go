package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileAndMatch(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		sender  string
		subject string
		body    string
		want    bool
	}{
		{
			name:   "empty rule matches everything",
			source: "",
			sender: "anyone@example.com",
			want:   true,
		},
		{
			name:    "subject contains",
			source:  `subject.contains("meeting")`,
			subject: "Project meeting notes",
			want:    true,
		},
		{
			name:    "subject does not contain",
			source:  `subject.contains("meeting")`,
			subject: "Invoice overdue",
			want:    false,
		},
		{
			name:   "sender domain check",
			source: `sender.endsWith("@example.com")`,
			sender: "alice@example.com",
			want:   true,
		},
		{
			name:    "compound rule",
			source:  `sender.endsWith("@example.com") && !subject.startsWith("[spam]")`,
			sender:  "alice@example.com",
			subject: "[spam] win big",
			want:    false,
		},
		{
			name:   "body keyword",
			source: `body.contains("schedule") || body.contains("meet")`,
			body:   "can we meet tomorrow",
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule, err := Compile(tt.source)
			require.NoError(t, err)

			got, err := rule.Match(tt.sender, tt.subject, tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{
			name:   "syntax error",
			source: `subject.contains(`,
		},
		{
			name:   "unknown variable",
			source: `recipient == "x"`,
		},
		{
			name:   "non-boolean result",
			source: `subject + body`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source)
			assert.Error(t, err)
		})
	}
}
