// Package markdown renders drafted reply text to the HTML body format
// Microsoft Graph drafts expect. Hard wraps are enabled so the
// narrator's newlines survive as <br> without manual substitution.
package markdown

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

var renderer = goldmark.New(
	goldmark.WithRendererOptions(
		html.WithHardWraps(),
	),
)

// ToHTML converts reply text to an HTML fragment. Plain narrator
// output passes through as paragraphs with line breaks preserved.
func ToHTML(text string) (string, error) {
	var b strings.Builder
	if err := renderer.Convert([]byte(text), &b); err != nil {
		return "", errors.Wrap(err, "failed to render reply body")
	}
	return b.String(), nil
}
