package source

import (
	"fmt"
	"io"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/hpungsan/quire/internal/errors"
)

// Clip extracts the readable article from an HTML page and returns it as a
// text source titled after the article.
func Clip(r io.Reader, pageURL string) (Source, error) {
	u, err := normalizeURL(pageURL)
	if err != nil {
		return Source{}, err
	}

	article, err := readability.FromReader(r, u)
	if err != nil {
		return Source{}, fmt.Errorf("readability extraction failed: %w", err)
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return Source{}, errors.NewInvalidRequest(fmt.Sprintf("no readable text at %s", u))
	}

	title := strings.TrimSpace(article.Title)
	if title == "" {
		title = LinkTitle(u.String())
	}
	return NewText(text, title)
}
