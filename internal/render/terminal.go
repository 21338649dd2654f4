package render

import (
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
)

// ansiEscape matches CSI and OSC sequences a model could use to drive the terminal.
var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(\x07|\x1b\\)|\x1b[@-_]`)

// StripControl removes terminal escape sequences and control characters,
// keeping newlines and tabs.
func StripControl(s string) string {
	s = ansiEscape.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		}
		return r
	}, s)
}

// TerminalRenderer renders answers for a terminal with glamour.
type TerminalRenderer struct {
	tr *glamour.TermRenderer
}

// NewTerminalRenderer builds a renderer wrapping at width. style is a glamour
// style name ("dark", "light", "notty", ...); empty picks one from the terminal.
func NewTerminalRenderer(style string, width int) (*TerminalRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return &TerminalRenderer{tr: tr}, nil
}

// Render applies the same term filtering, truncation and emphasis as
// Markdown; markup is interpreted by glamour instead of a browser, so raw HTML
// tags are stripped and control sequences removed beforehand.
func (r *TerminalRenderer) Render(content string, terms []string) string {
	cleaned := StripTags(StripControl(content))
	processed := Emphasize(TruncateContent(cleaned), FilterEmphasisTerms(terms))

	out, err := r.tr.Render(processed)
	if err != nil {
		return processed
	}
	return strings.TrimRight(out, "\n")
}
