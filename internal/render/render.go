// Package render turns model answers into display-safe output.
//
// Answer text is untrusted: it comes from a model that may have been steered
// by retrieved documents, and so do the emphasis terms that accompany it.
// Every path out of this package goes through a sanitizer.
package render

import (
	"bytes"
	"html"
	"html/template"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	MaxEmphasisTerms   = 20
	MaxEmphasisTermLen = 50
	MaxContentChars    = 10000
	// a term holding a run this long of one character is rejected
	maxCharRun = 11

	ellipsis = "..."
)

var (
	emphasisTermChars = regexp.MustCompile(`^[A-Za-z0-9\s\-_.,!?]+$`)
	nonWordChars      = regexp.MustCompile(`[^A-Za-z0-9_]`)

	markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

	bodyPolicy   = newBodyPolicy()
	strictPolicy = bluemonday.StrictPolicy()

	linkSchemes = map[string]bool{"http": true, "https": true, "s3": true}
)

func newBodyPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Input is an answer as received from the prompt endpoint.
type Input struct {
	Content     string
	Title       string
	Link        string
	WordsToBold []string
}

// Output is the display-safe form of an Input.
type Output struct {
	Body  template.HTML
	Title template.HTML // escaped text, never markup
	Link  string        // empty when the link was rejected
}

// Render produces the display form of a successful answer.
func Render(in Input) Output {
	return Output{
		Body:  Markdown(in.Content, in.WordsToBold),
		Title: PlainText(in.Title),
		Link:  SafeLink(in.Link),
	}
}

// FilterEmphasisTerms drops terms that are empty, longer than 50 characters,
// outside the allowed character set or made of long single-character runs,
// and keeps at most 20 of the rest.
func FilterEmphasisTerms(terms []string) []string {
	safe := make([]string, 0, len(terms))
	for _, term := range terms {
		if len(safe) == MaxEmphasisTerms {
			break
		}
		if term == "" || utf8.RuneCountInString(term) > MaxEmphasisTermLen {
			continue
		}
		if !emphasisTermChars.MatchString(term) {
			continue
		}
		if hasCharRun(term, maxCharRun) {
			continue
		}
		safe = append(safe, term)
	}
	return safe
}

func hasCharRun(s string, n int) bool {
	var prev rune
	run := 0
	for i, r := range s {
		if i > 0 && r == prev {
			run++
		} else {
			run = 1
		}
		if run >= n {
			return true
		}
		prev = r
	}
	return false
}

// TruncateContent caps content at MaxContentChars characters.
func TruncateContent(content string) string {
	if utf8.RuneCountInString(content) <= MaxContentChars {
		return content
	}
	runes := []rune(content)
	return string(runes[:MaxContentChars]) + ellipsis
}

// Emphasize wraps every whitespace-delimited token whose letters and digits
// match one of terms (case-insensitively) in markdown bold. Whitespace is kept
// as is; terms are expected to be filtered already.
func Emphasize(content string, terms []string) string {
	if len(terms) == 0 {
		return content
	}

	wanted := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		wanted[strings.ToLower(term)] = struct{}{}
	}

	var b strings.Builder
	b.Grow(len(content))
	for _, token := range splitKeepingSpace(content) {
		first, _ := utf8.DecodeRuneInString(token)
		if unicode.IsSpace(first) {
			b.WriteString(token)
			continue
		}
		normalized := strings.ToLower(nonWordChars.ReplaceAllString(token, ""))
		if _, ok := wanted[normalized]; ok && normalized != "" {
			b.WriteString("**")
			b.WriteString(token)
			b.WriteString("**")
			continue
		}
		b.WriteString(token)
	}
	return b.String()
}

// splitKeepingSpace splits s into alternating runs of whitespace and
// non-whitespace; concatenating the result gives back s.
func splitKeepingSpace(s string) []string {
	var tokens []string
	start := 0
	inSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i > start && space != inSpace {
			tokens = append(tokens, s[start:i])
			start = i
		}
		inSpace = space
	}
	if start < len(s) {
		tokens = append(tokens, s[start:])
	}
	return tokens
}

// Markdown renders answer text to sanitized HTML: terms are filtered, the
// text is truncated, matching tokens are bolded, and the markdown output is
// run through the sanitizer.
func Markdown(content string, terms []string) template.HTML {
	processed := Emphasize(TruncateContent(content), FilterEmphasisTerms(terms))

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(processed), &buf); err != nil {
		// never hand unparsed text to the page as markup
		return template.HTML("<p>" + html.EscapeString(processed) + "</p>")
	}

	return template.HTML(bodyPolicy.SanitizeBytes(buf.Bytes()))
}

// StripTags removes every tag from s, leaving unescaped text.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	// StrictPolicy entity-encodes what it keeps
	return html.UnescapeString(strictPolicy.Sanitize(s))
}

// PlainText strips every tag from s and escapes the remaining text, so the
// result displays as text whatever it looked like.
func PlainText(s string) template.HTML {
	return template.HTML(html.EscapeString(StripTags(s)))
}

// SafeLink returns link when it is an absolute http, https or s3 URL.
func SafeLink(link string) string {
	link = strings.TrimSpace(link)
	if link == "" {
		return ""
	}
	u, err := url.Parse(link)
	if err != nil || !linkSchemes[strings.ToLower(u.Scheme)] || u.Host == "" {
		return ""
	}
	return u.String()
}
