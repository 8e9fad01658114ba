package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/store"
)

// InsertInput contains parameters for the Insert operation: assistant
// output (a quote, summary or theme) appended to a draft.
type InsertInput struct {
	ID       string
	HTML     string
	Markdown string // converted to HTML; mutually exclusive with HTML
}

// InsertOutput contains the result of the Insert operation.
type InsertOutput struct {
	draft.Summary
	Inserted string `json:"inserted"`
}

// Insert sanitizes the fragment and appends it to the draft's content.
func Insert(ctx context.Context, idx *store.Index, input InsertInput) (*InsertOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	html, err := resolveContent(input.HTML, input.Markdown)
	if err != nil {
		return nil, err
	}
	if html == nil || *html == "" {
		return nil, errors.NewInvalidRequest("html or markdown is required")
	}

	f, err := idx.InsertHTML(ctx, id, *html)
	if err != nil {
		return nil, err
	}
	return &InsertOutput{Summary: f.ToSummary(), Inserted: *html}, nil
}
