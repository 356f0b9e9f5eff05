package llm

import (
	"regexp"
	"strings"
)

var (
	// Fenced wrappers the model sometimes puts around the whole reply,
	// e.g. ```email ... ``` or a bare ``` pair.
	fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\n?(.*?)\\n?```$")

	// Header lines the model echoes from the prompt.
	headerLinePattern = regexp.MustCompile(`(?i)^(subject|re|to|from|cc)\s*:`)

	greetingPattern = regexp.MustCompile(`(?i)^(hi|hello|dear|hey)\b`)

	// Lines that open a signature block the model invented. The real
	// signature is appended by the caller, so any model-made one is
	// dropped from its first line onward.
	signaturePattern = regexp.MustCompile(`(?i)^(best regards|kind regards|regards|sincerely|best wishes|warm regards|cheers|thanks and regards)\s*,?\s*$`)
)

// Sanitize strips model artifacts from a drafted reply: code fences
// around the body, echoed subject/header lines, duplicated greeting
// lines, and trailing signature blocks. The result is the bare reply
// body ready for the caller's own signature.
func Sanitize(response string) string {
	text := strings.TrimSpace(response)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	greeted := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if headerLinePattern.MatchString(trimmed) {
			continue
		}
		if greetingPattern.MatchString(trimmed) {
			if greeted {
				continue
			}
			greeted = true
		}
		if signaturePattern.MatchString(trimmed) {
			// Everything from the signature opener down is discarded.
			break
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
