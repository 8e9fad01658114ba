package ops

import (
	"github.com/hpungsan/quire/internal/content"
	"github.com/hpungsan/quire/internal/errors"
)

// resolveContent turns the HTML or Markdown form of a body into sanitized
// HTML. It returns nil when neither was given.
func resolveContent(html, markdown string) (*string, error) {
	if html != "" && markdown != "" {
		return nil, errors.NewInvalidRequest("content and markdown are mutually exclusive")
	}
	switch {
	case markdown != "":
		converted, err := content.FromMarkdown(markdown)
		if err != nil {
			return nil, errors.NewInvalidRequest("invalid markdown: " + err.Error())
		}
		clean := content.Sanitize(converted)
		return &clean, nil
	case html != "":
		clean := content.Sanitize(html)
		return &clean, nil
	default:
		return nil, nil
	}
}
