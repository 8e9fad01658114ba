package ops

import (
	"context"
	"strings"

	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/store"
)

// DeleteInput contains parameters for the Delete operation.
type DeleteInput struct {
	ID string
}

// DeleteOutput contains the result of the Delete operation.
type DeleteOutput struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// Delete permanently removes a draft. Deleting an unknown id is not an
// error; Deleted reports whether anything was removed.
func Delete(ctx context.Context, idx *store.Index, input DeleteInput) (*DeleteOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	return &DeleteOutput{
		Deleted: idx.Delete(ctx, id),
		ID:      id,
	}, nil
}
