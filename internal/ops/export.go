package ops

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hpungsan/quire/internal/config"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/store"
)

// ExportInput contains parameters for the Export operation.
type ExportInput struct {
	ID   string
	Path string // optional, default: ~/.quire/exports/<title>-<timestamp>.md
}

// ExportOutput contains the result of the Export operation.
type ExportOutput struct {
	ID         string `json:"id"`
	Path       string `json:"path"`
	Bytes      int    `json:"bytes"`
	ExportedAt int64  `json:"exported_at"`
}

// Export writes a draft as a Markdown file with front matter.
func Export(ctx context.Context, idx *store.Index, cfg *config.Config, input ExportInput) (*ExportOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	f, err := idx.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	exportPath := input.Path
	if exportPath == "" {
		dir, err := DefaultExportsDir()
		if err != nil {
			return nil, err
		}
		name := SanitizeForFilename(f.ToSummary().DisplayTitle())
		exportPath = filepath.Join(dir, fmt.Sprintf("%s-%s.md", name, now.Format("2006-01-02T150405")))
	}

	// Default paths are validated too; the title is user input.
	if err := ValidatePath(exportPath, PathCheckWrite, cfg); err != nil {
		return nil, err
	}

	data, err := renderDocument(f)
	if err != nil {
		return nil, err
	}
	if err := writeFileAtomic(exportPath, data); err != nil {
		return nil, err
	}

	return &ExportOutput{
		ID:         f.ID,
		Path:       exportPath,
		Bytes:      len(data),
		ExportedAt: now.Unix(),
	}, nil
}

// writeFileAtomic writes data to a temp file beside path and renames it
// into place, leaving any existing file intact on failure.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export directory: %w", err))
	}

	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	file, err := openFileNoFollow(tempPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return errors.NewInternal(fmt.Errorf("failed to create export file: %w", err))
	}

	success := false
	defer func() {
		if file != nil {
			file.Close()
		}
		if !success {
			os.Remove(tempPath)
		}
	}()

	if _, err := file.Write(data); err != nil {
		return errors.NewInternal(err)
	}
	if err := file.Sync(); err != nil {
		return errors.NewInternal(err)
	}
	// Close before rename (required on Windows).
	if err := file.Close(); err != nil {
		return errors.NewInternal(fmt.Errorf("failed to close export file: %w", err))
	}
	file = nil

	if info, err := os.Lstat(path); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return errors.NewInvalidRequest("export path is a symlink")
	}

	// On Windows os.Rename fails when the destination exists; the existing
	// file is kept rather than risking a delete-then-rename.
	if err := os.Rename(tempPath, path); err != nil {
		if runtime.GOOS == "windows" {
			if _, statErr := os.Stat(path); statErr == nil {
				return errors.NewInvalidRequest("export destination already exists; choose a new path or delete the existing file")
			}
		}
		return errors.NewInternal(fmt.Errorf("failed to finalize export: %w", err))
	}

	success = true
	return nil
}
