package ops

import (
	"context"

	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/store"
)

// ListInput contains parameters for the List operation.
type ListInput struct {
	Limit  int // default: 20, max: 100
	Offset int // default: 0
}

// ListOutput contains the result of the List operation.
type ListOutput struct {
	Items      []draft.Summary `json:"items"`
	Pagination Pagination      `json:"pagination"`
	Sort       string          `json:"sort"`
}

// List returns draft summaries, most recently updated first.
func List(ctx context.Context, idx *store.Index, input ListInput) (*ListOutput, error) {
	limit := clampLimit(input.Limit, DefaultListLimit, MaxListLimit)
	offset := max(input.Offset, 0)

	all := idx.Summaries(ctx)
	total := len(all)

	start := min(offset, total)
	end := min(start+limit, total)
	items := make([]draft.Summary, end-start)
	copy(items, all[start:end])

	return &ListOutput{
		Items: items,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: end < total,
			Total:   total,
		},
		Sort: "updated_at_desc",
	}, nil
}
