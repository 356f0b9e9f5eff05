// Package mailtext reduces email bodies to the plain text the core
// consumes: HTML stripped, whitespace collapsed, with a rune-safe
// snippet helper for the email log.
package mailtext

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// DefaultSnippetLength is the snippet budget used by the email log.
const DefaultSnippetLength = 120

// Tags whose content never belongs in the reply context.
var skippedTags = map[string]bool{
	"script": true,
	"style":  true,
	"head":   true,
	"title":  true,
}

// Block-level tags that imply a line break in the text rendering.
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "tr": true, "li": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "table": true, "ul": true, "ol": true,
}

// HTMLToText strips markup from an HTML email body and returns plain
// text with collapsed whitespace. Non-HTML input passes through with
// the same whitespace normalization, so callers can feed either body
// format without sniffing it first.
func HTMLToText(body string) string {
	tokenizer := html.NewTokenizer(strings.NewReader(body))

	var b strings.Builder
	skipDepth := 0
	for {
		tokenType := tokenizer.Next()
		switch tokenType {
		case html.ErrorToken:
			return collapseWhitespace(b.String())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skippedTags[tag] && tokenType == html.StartTagToken {
				skipDepth++
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			tag := string(name)
			if skippedTags[tag] && skipDepth > 0 {
				skipDepth--
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.Write(tokenizer.Text())
			}
		}
	}
}

// collapseWhitespace trims lines, drops runs of blank lines, and
// squeezes intra-line whitespace runs to one space.
func collapseWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

// Snippet truncates text to at most maxRunes runes, backing up to the
// previous word boundary and appending an ellipsis when it cut
// anything. Rune-safe: multi-byte text never splits mid-character.
func Snippet(text string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = DefaultSnippetLength
	}
	text = strings.Join(strings.Fields(text), " ")

	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}

	end := maxRunes
	for i := end - 1; i > 0 && i > end-20; i-- {
		if unicode.IsSpace(runes[i]) {
			end = i
			break
		}
	}
	return strings.TrimRight(string(runes[:end]), " ") + "..."
}
