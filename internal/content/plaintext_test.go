package content

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestStripToPlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "paragraph",
			input: "<p>Hello world</p>",
			want:  "Hello world",
		},
		{
			name:  "adjacent blocks keep a word boundary",
			input: "<p>one</p><p>two</p>",
			want:  "one two",
		},
		{
			name:  "nested inline tags",
			input: "<p>Hello <strong>bold</strong> <em>world</em></p>",
			want:  "Hello bold world",
		},
		{
			name:  "nbsp entity",
			input: "a&nbsp;&nbsp;b",
			want:  "a b",
		},
		{
			name:  "decoded nbsp rune",
			input: "a\u00a0b",
			want:  "a b",
		},
		{
			name:  "numeric nbsp entities",
			input: "a&#160;b&#xa0;c&#xA0;d",
			want:  "a b c d",
		},
		{
			name:  "unicode space separators",
			input: "<p>a</p>\u3000<p>b</p>\u2003c",
			want:  "a b c",
		},
		{
			name:  "tabs and newlines",
			input: "<ul>\n\t<li>x</li>\n\t<li>y</li>\n</ul>",
			want:  "x y",
		},
		{
			name:  "unclosed tag left in place",
			input: "<p>Hello <b",
			want:  "Hello <b",
		},
		{
			name:  "attributes",
			input: `<a href="https://example.com" class="x">link</a>`,
			want:  "link",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only markup",
			input: "<p><br></p>",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripToPlainText(tt.input)
			if got != tt.want {
				t.Errorf("StripToPlainText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCountWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"empty", "", 0},
		{"whitespace only", "   \n\t ", 0},
		{"markup only", "<p></p><div>&nbsp;</div>", 0},
		{"two words", "<p>Hello world</p>", 2},
		{"split across tags", "<p>one</p><p>two</p><p>three</p>", 3},
		{"punctuation stays attached", "Hello, world! It's fine.", 4},
		{"unclosed tag counts as token", "<p>Hello <b", 2},
		{"numeric nbsp separates words", "a&#160;b", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountWords(tt.input)
			if got != tt.want {
				t.Errorf("CountWords(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestExcerpt_Short(t *testing.T) {
	got := Excerpt("<p>Hello world</p>", DefaultExcerptLen)
	assert.Equal(t, "Hello world", got)
}

func TestExcerpt_ExactlyMax(t *testing.T) {
	text := strings.Repeat("a", 80)
	got := Excerpt(text, 80)
	assert.Equal(t, text, got)
	assert.NotContains(t, got, Ellipsis)
}

func TestExcerpt_Truncated(t *testing.T) {
	text := strings.Repeat("abcdefghi ", 9) // 90 chars
	got := Excerpt("<p>"+text+"</p>", 80)

	plain := StripToPlainText("<p>" + text + "</p>")
	assert.Equal(t, string([]rune(plain)[:80])+Ellipsis, got)
	assert.Equal(t, 81, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
	assert.False(t, strings.HasSuffix(got, "..."))
}

func TestExcerpt_CountsRunesNotBytes(t *testing.T) {
	text := strings.Repeat("é", 85)
	got := Excerpt(text, 80)
	assert.Equal(t, strings.Repeat("é", 80)+Ellipsis, got)
}

func TestExcerpt_DefaultLength(t *testing.T) {
	text := strings.Repeat("x", 100)
	got := Excerpt(text, 0)
	assert.Equal(t, DefaultExcerptLen+1, utf8.RuneCountInString(got))
}

func TestExcerpt_Empty(t *testing.T) {
	assert.Equal(t, "", Excerpt("", 80))
}

func TestExcerpt_Property(t *testing.T) {
	inputs := []string{
		"",
		"<p>short</p>",
		strings.Repeat("<span>word</span> ", 40),
		strings.Repeat("ü", 200),
		"<p>Hello <b",
		"a&nbsp;b&nbsp;c",
	}

	for _, in := range inputs {
		plain := StripToPlainText(in)
		got := Excerpt(in, DefaultExcerptLen)
		if utf8.RuneCountInString(plain) <= DefaultExcerptLen {
			assert.Equal(t, plain, got, "input %q", in)
			continue
		}
		body := strings.TrimSuffix(got, Ellipsis)
		assert.Equal(t, DefaultExcerptLen, utf8.RuneCountInString(body), "input %q", in)
		assert.Equal(t, 1, strings.Count(got, Ellipsis), "input %q", in)
	}
}
