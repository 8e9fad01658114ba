package ops

import (
	"context"
	"fmt"
	"io"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/store"
)

// MaxImportBytes bounds the size of an imported Markdown file.
const MaxImportBytes = 4 << 20

// ImportInput contains parameters for the Import operation.
type ImportInput struct {
	Path string // required; .md file in an allowed directory
}

// ImportOutput contains the result of the Import operation.
type ImportOutput struct {
	draft.Summary
	Path string `json:"path"`
}

// Import reads a Markdown file (for example, an earlier export) into a new
// draft. The file's own id is ignored so an import never overwrites.
func Import(ctx context.Context, idx *store.Index, cfg *config.Config, input ImportInput) (*ImportOutput, error) {
	if err := ValidatePath(input.Path, PathCheckRead, cfg); err != nil {
		return nil, err
	}

	file, err := openFileNoFollowRead(input.Path)
	if err != nil {
		if errors.Is(err, errors.ErrFileNotFound) || errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to open import file: %w", err))
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to read import file: %w", err))
	}
	if len(data) > MaxImportBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("import file exceeds %d bytes", MaxImportBytes))
	}

	doc, err := parseDocument(data)
	if err != nil {
		return nil, err
	}
	candidate := draft.Full{ID: "import", Title: doc.Title, Content: doc.HTML, Sources: doc.Sources}
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	candidate.ID = idx.Create(ctx).ID
	saved, err := idx.Save(ctx, candidate)
	if err != nil {
		return nil, err
	}
	return &ImportOutput{Summary: saved.ToSummary(), Path: input.Path}, nil
}
