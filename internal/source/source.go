// Package source models the reference material attached to a draft.
package source

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/idna"

	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/ident"
)

// Kind discriminates the three kinds of source.
type Kind string

const (
	KindLink Kind = "link" // carries URL
	KindText Kind = "text" // carries Content (pasted text)
	KindPDF  Kind = "pdf"  // carries Content (extracted text)
)

// textTitleLen bounds titles derived from text/PDF content.
const textTitleLen = 50

// ParseKind validates a kind name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindLink, KindText, KindPDF:
		return k, nil
	default:
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown source type %q (want link, text or pdf)", s))
	}
}

// Source is one reference material attached to a draft.
// Sources are never edited in place; the owning list is replaced instead.
type Source struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"type"`
	Title   string `json:"title"`
	URL     string `json:"url,omitempty"`
	Content string `json:"content,omitempty"`
}

// Validate checks that the source carries exactly the fields of its kind.
func (s Source) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return errors.NewInvalidRequest("source id is required")
	}
	switch s.Kind {
	case KindLink:
		if s.URL == "" {
			return errors.NewInvalidRequest("link source requires url")
		}
		if s.Content != "" {
			return errors.NewInvalidRequest("link source must not carry content")
		}
	case KindText, KindPDF:
		if s.URL != "" {
			return errors.NewInvalidRequest(fmt.Sprintf("%s source must not carry url", s.Kind))
		}
	default:
		return errors.NewInvalidRequest(fmt.Sprintf("unknown source type %q", s.Kind))
	}
	return nil
}

// NewLink creates a link source. A URL without a scheme is treated as https.
// An empty title defaults to the link's domain.
func NewLink(rawURL, title string) (Source, error) {
	u, err := normalizeURL(rawURL)
	if err != nil {
		return Source{}, err
	}
	if strings.TrimSpace(title) == "" {
		title = LinkTitle(u.String())
	}
	return Source{
		ID:    ident.New(),
		Kind:  KindLink,
		Title: strings.TrimSpace(title),
		URL:   u.String(),
	}, nil
}

// NewText creates a pasted-text source. An empty title is derived from the text.
func NewText(text, title string) (Source, error) {
	return newContentSource(KindText, text, title)
}

// NewPDF creates a source from text extracted from a PDF.
func NewPDF(text, title string) (Source, error) {
	return newContentSource(KindPDF, text, title)
}

func newContentSource(kind Kind, text, title string) (Source, error) {
	if strings.TrimSpace(text) == "" {
		return Source{}, errors.NewInvalidRequest(fmt.Sprintf("%s source requires content", kind))
	}
	if strings.TrimSpace(title) == "" {
		title = TextTitle(text)
	}
	return Source{
		ID:      ident.New(),
		Kind:    kind,
		Title:   strings.TrimSpace(title),
		Content: text,
	}, nil
}

// Restore rebuilds a source from stored fields, such as a seed file or an
// imported document. A missing id is generated and a missing title derived.
func Restore(id, kind, title, rawURL, text string) (Source, error) {
	k, err := ParseKind(kind)
	if err != nil {
		return Source{}, err
	}
	s := Source{
		ID:      strings.TrimSpace(id),
		Kind:    k,
		Title:   strings.TrimSpace(title),
		URL:     strings.TrimSpace(rawURL),
		Content: text,
	}
	if s.ID == "" {
		s.ID = ident.New()
	}
	if s.Title == "" {
		if k == KindLink {
			s.Title = LinkTitle(s.URL)
		} else {
			s.Title = TextTitle(s.Content)
		}
	}
	if err := s.Validate(); err != nil {
		return Source{}, err
	}
	return s, nil
}

// LinkTitle derives a display title from a URL: its host, lowercased,
// without "www." and with punycode decoded.
func LinkTitle(rawURL string) string {
	u, err := normalizeURL(rawURL)
	if err != nil {
		return strings.TrimSpace(rawURL)
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	if uni, err := idna.Lookup.ToUnicode(host); err == nil {
		host = uni
	}
	return host
}

// TextTitle derives a display title from pasted text: the first 50
// characters with whitespace collapsed, ellipsis-terminated when cut.
func TextTitle(text string) string {
	collapsed := strings.Join(strings.Fields(text), " ")
	if utf8.RuneCountInString(collapsed) <= textTitleLen {
		return collapsed
	}
	return string([]rune(collapsed)[:textTitleLen]) + "…"
}

func normalizeURL(rawURL string) (*url.URL, error) {
	raw := strings.TrimSpace(rawURL)
	if raw == "" {
		return nil, errors.NewInvalidRequest("url is required")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid url %q: %v", rawURL, err))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("unsupported url scheme %q", u.Scheme))
	}
	if u.Hostname() == "" {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("url %q has no host", rawURL))
	}
	return u, nil
}
