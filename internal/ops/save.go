package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/store"
)

// SaveInput contains parameters for the Save operation.
// Nil fields are left unchanged.
type SaveInput struct {
	ID       string
	Title    *string
	Content  *string // HTML, sanitized before storing
	Markdown *string // converted to HTML; mutually exclusive with Content
}

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	draft.Summary
}

// Save applies a partial update. Derived metadata and updatedAt are
// recomputed even when nothing changed.
func Save(ctx context.Context, idx *store.Index, input SaveInput) (*SaveOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if input.Content != nil && input.Markdown != nil {
		return nil, errors.NewInvalidRequest("content and markdown are mutually exclusive")
	}

	html, err := resolveContent(deref(input.Content), deref(input.Markdown))
	if err != nil {
		return nil, err
	}
	if html == nil && (input.Content != nil || input.Markdown != nil) {
		cleared := ""
		html = &cleared
	}

	f, err := idx.Update(ctx, id, func(d *draft.Draft) error {
		if input.Title != nil {
			d.Title = *input.Title
		}
		if html != nil {
			d.Content = *html
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &SaveOutput{Summary: f.ToSummary()}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
