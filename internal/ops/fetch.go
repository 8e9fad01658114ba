package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/store"
)

// FetchInput contains parameters for the Fetch operation.
type FetchInput struct {
	ID             string
	IncludeContent *bool // default: true (nil means default)
}

// FetchOutput contains the result of the Fetch operation.
type FetchOutput struct {
	draft.Full        // embedded (copy)
	DisplayTitle string `json:"display_title"`
}

// Fetch reads a draft fresh from storage.
func Fetch(ctx context.Context, idx *store.Index, input FetchInput) (*FetchOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}

	f, err := idx.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	output := &FetchOutput{
		Full:         f,
		DisplayTitle: f.ToSummary().DisplayTitle(),
	}
	if input.IncludeContent != nil && !*input.IncludeContent {
		output.Content = ""
	}
	return output, nil
}
