package render

import (
	"strings"
	"testing"

	"bedrock-chat/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterEmphasisTerms(t *testing.T) {
	got := FilterEmphasisTerms([]string{"Tokyo", strings.Repeat("a", 15), ""})
	assert.Equal(t, []string{"Tokyo"}, got)

	tests := []struct {
		name string
		term string
		keep bool
	}{
		{"plain word", "Kyoto", true},
		{"phrase with punctuation", "Mt. Fuji, Japan!", true},
		{"hyphen and underscore", "day-trip_2", true},
		{"fifty characters", strings.Repeat("ab", 25), true},
		{"fifty one characters", strings.Repeat("ab", 25) + "c", false},
		{"regex metacharacters", "(a+)+", false},
		{"markup", "<b>", false},
		{"non ascii", "東京", false},
		{"ten repeats", "x" + strings.Repeat("z", 10), true},
		{"eleven repeats", "x" + strings.Repeat("z", 11), false},
		{"repeated spaces", "a" + strings.Repeat(" ", 11) + "b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterEmphasisTerms([]string{tt.term})
			if tt.keep {
				assert.Equal(t, []string{tt.term}, got)
			} else {
				assert.Empty(t, got)
			}
		})
	}
}

func TestFilterEmphasisTermsCapsAtTwenty(t *testing.T) {
	terms := make([]string, 0, 30)
	terms = append(terms, "", "bad<term>")
	for i := 0; i < 28; i++ {
		terms = append(terms, "word"+string(rune('a'+i%26))+string(rune('a'+i/26)))
	}

	got := FilterEmphasisTerms(terms)
	require.Len(t, got, MaxEmphasisTerms)
	assert.Equal(t, terms[2], got[0])
}

func TestTruncateContent(t *testing.T) {
	short := strings.Repeat("a", MaxContentChars)
	assert.Equal(t, short, TruncateContent(short))

	long := strings.Repeat("é", MaxContentChars+5)
	got := TruncateContent(long)
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, MaxContentChars+3, len([]rune(got)))
}

func TestEmphasize(t *testing.T) {
	assert.Equal(t, "Visit **Tokyo**", Emphasize("Visit Tokyo", []string{"Tokyo"}))
	assert.Equal(t, "**tokyo,** then **TOKYO!**", Emphasize("tokyo, then TOKYO!", []string{"Tokyo"}))
	assert.Equal(t, "Tokyoites love Tokyo-ish things", Emphasize("Tokyoites love Tokyo-ish things", []string{"Tokyo"}),
		"whole tokens only")
	assert.Equal(t, "a \t\n **b**  c", Emphasize("a \t\n b  c", []string{"B"}), "whitespace kept verbatim")
	assert.Equal(t, "... !!", Emphasize("... !!", []string{"..."}), "punctuation-only tokens never match")
	assert.Equal(t, "unchanged", Emphasize("unchanged", nil))
}

func TestMarkdownBoldsFilteredTerms(t *testing.T) {
	out := string(Markdown("Visit Tokyo", []string{"Tokyo", strings.Repeat("a", 15), ""}))
	assert.Contains(t, out, "<strong>Tokyo</strong>")
	assert.Contains(t, out, "<p>")
}

func TestMarkdownNeutralizesScripts(t *testing.T) {
	inputs := []string{
		"<script>alert(1)</script>",
		"hello <img src=x onerror=alert(1)>",
		"[click](javascript:alert(1))",
		"<a href=\"javascript:alert(1)\">x</a>",
		"<iframe src=\"https://evil.example\"></iframe>",
	}
	for _, in := range inputs {
		out := strings.ToLower(string(Markdown(in, nil)))
		assert.NotContains(t, out, "<script", in)
		assert.NotContains(t, out, "onerror", in)
		assert.NotContains(t, out, "javascript:", in)
		assert.NotContains(t, out, "<iframe", in)
	}
}

func TestMarkdownKeepsLinks(t *testing.T) {
	out := string(Markdown("See [the guide](https://example.com/guide) or https://example.org", nil))
	assert.Contains(t, out, `href="https://example.com/guide"`)
	assert.Contains(t, out, `href="https://example.org"`)
	assert.Contains(t, out, "nofollow")
}

func TestPlainTextStripsAllMarkup(t *testing.T) {
	out := string(PlainText(`<b>Kyoto</b> & "temples" <script>alert(1)</script><img src=x onerror=alert(1)>`))
	assert.NotContains(t, out, "<")
	assert.NotContains(t, out, ">")
	assert.Contains(t, out, "Kyoto")
	assert.Contains(t, out, "&amp;")
	assert.Empty(t, PlainText(""))
}

func TestSafeLink(t *testing.T) {
	assert.Equal(t, "https://example.com/a?b=c", SafeLink(" https://example.com/a?b=c "))
	assert.Equal(t, "s3://bucket/videos/tokyo.mp4", SafeLink("s3://bucket/videos/tokyo.mp4"))
	assert.Empty(t, SafeLink("javascript:alert(1)"))
	assert.Empty(t, SafeLink("data:text/html;base64,PHNjcmlwdD4="))
	assert.Empty(t, SafeLink("/relative/path"))
	assert.Empty(t, SafeLink(""))
}

func TestRender(t *testing.T) {
	out := Render(Input{
		Content:     "Go to Osaka",
		Title:       "<i>Osaka</i> food tour",
		Link:        "https://example.com/v",
		WordsToBold: []string{"osaka"},
	})

	assert.Contains(t, string(out.Body), "<strong>Osaka</strong>")
	assert.Equal(t, "Osaka food tour", string(out.Title))
	assert.Equal(t, "https://example.com/v", out.Link)
}

func TestCartLink(t *testing.T) {
	items := []model.CartItem{{SKU: "B00X", Quantity: 2}, {SKU: "B00Y", Quantity: 1}}

	link := CartLink("https://www.amazon.com/gp/aws/cart/add.html", items)
	assert.Equal(t, "https://www.amazon.com/gp/aws/cart/add.html?ASIN.1=B00X&ASIN.2=B00Y&Quantity.1=2&Quantity.2=1", link)

	assert.Empty(t, CartLink("https://www.amazon.com/gp/aws/cart/add.html", nil))
	assert.Empty(t, CartLink("javascript:alert(1)", items))
}
