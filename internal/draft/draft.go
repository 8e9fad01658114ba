// Package draft defines the draft aggregate and its derived metadata.
package draft

import (
	"fmt"
	"time"

	"github.com/hpungsan/quire/internal/content"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/source"
)

// Draft is the single active draft: no identity beyond "the current one".
type Draft struct {
	Title   string          `json:"title"`
	Content string          `json:"content"`
	Sources []source.Source `json:"sources"`
}

// Meta holds values derived from a draft's content and sources.
// Meta is never set by callers; use DeriveMeta.
type Meta struct {
	WordCount   int    `json:"wordCount"`
	SourceCount int    `json:"sourceCount"`
	Excerpt     string `json:"excerpt"`
}

// DeriveMeta computes Meta from content and sources.
func DeriveMeta(html string, sources []source.Source) Meta {
	return Meta{
		WordCount:   content.CountWords(html),
		SourceCount: len(sources),
		Excerpt:     content.Excerpt(html, content.DefaultExcerptLen),
	}
}

// Clone returns a copy whose source list can be modified independently.
func (d Draft) Clone() Draft {
	d.Sources = source.Clone(d.Sources)
	return d
}

// Meta derives the draft's metadata.
func (d Draft) Meta() Meta {
	return DeriveMeta(d.Content, d.Sources)
}

// Validate checks every source and id uniqueness.
func (d Draft) Validate() error {
	return validateSources(d.Sources)
}

// Full is one entry of the multi-draft collection.
// JSON keys match the persisted layout.
type Full struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Sources     []source.Source `json:"sources"`
	UpdatedAt   int64           `json:"updatedAt"` // ms since epoch
	WordCount   int             `json:"wordCount"`
	SourceCount int             `json:"sourceCount"`
	Excerpt     string          `json:"excerpt"`
}

// Empty returns a zeroed record for a newly created draft.
func Empty(id string, now time.Time) Full {
	return Full{
		ID:        id,
		Sources:   []source.Source{},
		UpdatedAt: now.UnixMilli(),
	}
}

// Restamp returns a copy with UpdatedAt set to now and every derived field
// recomputed from Content and Sources. Values already present in the derived
// fields are discarded.
func (f Full) Restamp(now time.Time) Full {
	f.Sources = source.Clone(f.Sources)
	meta := DeriveMeta(f.Content, f.Sources)
	f.UpdatedAt = now.UnixMilli()
	f.WordCount = meta.WordCount
	f.SourceCount = meta.SourceCount
	f.Excerpt = meta.Excerpt
	return f
}

// Clone returns a copy whose source list can be modified independently.
func (f Full) Clone() Full {
	f.Sources = source.Clone(f.Sources)
	return f
}

// Draft returns the editable part of the record.
func (f Full) Draft() Draft {
	return Draft{Title: f.Title, Content: f.Content, Sources: source.Clone(f.Sources)}
}

// WithDraft returns a copy carrying d's title, content and sources.
// Derived fields are left for Restamp.
func (f Full) WithDraft(d Draft) Full {
	f.Title = d.Title
	f.Content = d.Content
	f.Sources = source.Clone(d.Sources)
	return f
}

// Updated returns UpdatedAt as a time.
func (f Full) Updated() time.Time {
	return time.UnixMilli(f.UpdatedAt)
}

// Validate checks the id, every source, and source id uniqueness.
func (f Full) Validate() error {
	if f.ID == "" {
		return errors.NewInvalidRequest("draft id is required")
	}
	return validateSources(f.Sources)
}

func validateSources(sources []source.Source) error {
	seen := make(map[string]bool, len(sources))
	for _, s := range sources {
		if err := s.Validate(); err != nil {
			return err
		}
		if seen[s.ID] {
			return errors.NewConflict(fmt.Sprintf("duplicate source id %q", s.ID), map[string]any{"source_id": s.ID})
		}
		seen[s.ID] = true
	}
	return nil
}
