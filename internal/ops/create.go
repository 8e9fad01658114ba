package ops

import (
	"context"

	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/store"
)

// CreateInput contains parameters for the Create operation.
// Everything is optional; an empty input creates a blank draft.
type CreateInput struct {
	Title    string
	Content  string // HTML, sanitized before storing
	Markdown string // converted to HTML; mutually exclusive with Content
}

// CreateOutput contains the result of the Create operation.
type CreateOutput struct {
	ID      string        `json:"id"`
	Summary draft.Summary `json:"summary"`
}

// Create adds a new draft at the head of the collection.
func Create(ctx context.Context, idx *store.Index, input CreateInput) (*CreateOutput, error) {
	html, err := resolveContent(input.Content, input.Markdown)
	if err != nil {
		return nil, err
	}

	f := idx.Create(ctx)
	if input.Title != "" || html != nil {
		f.Title = input.Title
		if html != nil {
			f.Content = *html
		}
		f, err = idx.Save(ctx, f)
		if err != nil {
			return nil, err
		}
	}

	return &CreateOutput{ID: f.ID, Summary: f.ToSummary()}, nil
}
