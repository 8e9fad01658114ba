package ops

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/source"
	"github.com/hpungsan/quire/internal/store"
)

// AddSourceInput contains parameters for the AddSource operation.
type AddSourceInput struct {
	ID      string // draft id
	Type    string // link, text or pdf
	Title   string // optional; derived when empty
	URL     string // link only
	Content string // text and pdf only
}

// SourceOutput is returned by the source operations.
type SourceOutput struct {
	DraftID     string          `json:"draft_id"`
	Source      *source.Source  `json:"source,omitempty"`
	Sources     []source.Source `json:"sources"`
	SourceCount int             `json:"source_count"`
}

// AddSource builds a source of the requested type and appends it to the draft.
func AddSource(ctx context.Context, idx *store.Index, input AddSourceInput) (*SourceOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	s, err := BuildSource(input.Type, input.Title, input.URL, input.Content)
	if err != nil {
		return nil, err
	}

	f, err := idx.AddSource(ctx, id, s)
	if err != nil {
		return nil, err
	}
	return &SourceOutput{DraftID: f.ID, Source: &s, Sources: f.Sources, SourceCount: f.SourceCount}, nil
}

// BuildSource validates the fields for kind and creates a source with a
// fresh id.
func BuildSource(kind, title, rawURL, text string) (source.Source, error) {
	k, err := source.ParseKind(kind)
	if err != nil {
		return source.Source{}, err
	}
	switch k {
	case source.KindLink:
		if text != "" {
			return source.Source{}, errors.NewInvalidRequest("link sources take url, not content")
		}
		return source.NewLink(rawURL, title)
	case source.KindText:
		if rawURL != "" {
			return source.Source{}, errors.NewInvalidRequest("text sources take content, not url")
		}
		return source.NewText(text, title)
	case source.KindPDF:
		if rawURL != "" {
			return source.Source{}, errors.NewInvalidRequest("pdf sources take content, not url")
		}
		return source.NewPDF(text, title)
	default:
		return source.Source{}, errors.NewInvalidRequest(fmt.Sprintf("unknown source type %q", kind))
	}
}

// RemoveSourceInput contains parameters for the RemoveSource operation.
type RemoveSourceInput struct {
	ID       string // draft id
	SourceID string
}

// RemoveSource detaches a source from the draft. Unknown source ids leave
// the list unchanged.
func RemoveSource(ctx context.Context, idx *store.Index, input RemoveSourceInput) (*SourceOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if strings.TrimSpace(input.SourceID) == "" {
		return nil, errors.NewInvalidRequest("source_id is required")
	}

	f, err := idx.RemoveSource(ctx, id, input.SourceID)
	if err != nil {
		return nil, err
	}
	return &SourceOutput{DraftID: f.ID, Sources: f.Sources, SourceCount: f.SourceCount}, nil
}
