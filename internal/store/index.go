package store

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/hpungsan/quire/internal/content"
	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/ident"
	"github.com/hpungsan/quire/internal/source"
	"github.com/hpungsan/quire/internal/storage"
)

// IndexOptions configures an Index. Zero values pick defaults.
type IndexOptions struct {
	Key    string
	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger
}

// Index manages the multi-draft collection, persisted as one JSON array
// kept sorted by UpdatedAt descending. Every change is written at once.
type Index struct {
	backend storage.Backend
	key     string
	now     func() time.Time
	newID   func() string
	logger  *slog.Logger

	mu     sync.Mutex
	loaded bool
	dirty  bool // last write failed; memory holds changes storage lacks
	drafts []draft.Full
}

// NewIndex returns an Index over backend. The collection is read lazily
// on first use, or explicitly with Load.
func NewIndex(backend storage.Backend, opts IndexOptions) *Index {
	if opts.Key == "" {
		opts.Key = storage.DefaultKeys.Drafts
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = ident.New
	}
	return &Index{
		backend: backend,
		key:     opts.Key,
		now:     opts.Now,
		newID:   opts.NewID,
		logger:  loggerOr(opts.Logger),
	}
}

// Load (re)reads the collection from storage and returns its size.
// Read failures leave an empty collection.
func (x *Index) Load(ctx context.Context) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.drafts, _ = x.readAll(ctx)
	x.loaded = true
	x.dirty = false
	return len(x.drafts)
}

func (x *Index) ensureLoadedLocked(ctx context.Context) {
	if !x.loaded {
		x.drafts, _ = x.readAll(ctx)
		x.loaded = true
	}
}

// refreshLocked re-reads the collection before a mutation so changes made
// by other processes sharing the backend are not overwritten. A failed
// read, or a previous write that never reached storage, keeps memory.
func (x *Index) refreshLocked(ctx context.Context) {
	if x.loaded && x.dirty {
		return
	}
	drafts, ok := x.readAll(ctx)
	if ok || !x.loaded {
		x.drafts = drafts
	}
	x.loaded = true
}

// readAll decodes the persisted collection. Records that fail validation
// are dropped individually; anything worse yields an empty collection.
// ok is false when the backend itself could not be read.
func (x *Index) readAll(ctx context.Context) (drafts []draft.Full, ok bool) {
	raw, found, err := x.backend.Get(ctx, x.key)
	if err != nil {
		x.logger.Warn("read draft collection failed", "key", x.key, "error", err)
		return []draft.Full{}, false
	}
	if !found {
		return []draft.Full{}, true
	}

	var records []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		x.logger.Warn("discarding unreadable draft collection", "key", x.key, "error", err)
		return []draft.Full{}, true
	}

	drafts = make([]draft.Full, 0, len(records))
	seen := make(map[string]bool, len(records))
	for i, rec := range records {
		var f draft.Full
		if err := json.Unmarshal(rec, &f); err != nil {
			x.logger.Warn("skipping unreadable draft", "key", x.key, "index", i, "error", err)
			continue
		}
		if err := f.Validate(); err != nil {
			x.logger.Warn("skipping invalid draft", "key", x.key, "index", i, "error", err)
			continue
		}
		if seen[f.ID] {
			x.logger.Warn("skipping duplicate draft", "key", x.key, "id", f.ID)
			continue
		}
		seen[f.ID] = true
		if f.Sources == nil {
			f.Sources = []source.Source{}
		}
		drafts = append(drafts, f)
	}
	sortByRecency(drafts)
	return drafts, true
}

// persistLocked writes the whole collection. Failures are logged and the
// in-memory collection stays authoritative.
func (x *Index) persistLocked(ctx context.Context) {
	data, err := json.Marshal(x.drafts)
	if err != nil {
		x.logger.Error("encode draft collection", "error", err)
		return
	}
	if err := x.backend.Set(ctx, x.key, string(data)); err != nil {
		x.logger.Warn("write draft collection failed", "key", x.key, "error", err)
		x.dirty = true
		return
	}
	x.dirty = false
}

// Create prepends a zeroed draft, persists the collection and returns the
// new record. The record is returned even when the write failed.
func (x *Index) Create(ctx context.Context) draft.Full {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.refreshLocked(ctx)

	f := draft.Empty(x.newID(), x.now())
	x.drafts = append([]draft.Full{f}, x.drafts...)
	x.persistLocked(ctx)
	return f.Clone()
}

// Delete removes the draft with id and persists. It reports whether a
// draft was removed; an unknown id is a no-op.
func (x *Index) Delete(ctx context.Context, id string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.refreshLocked(ctx)

	i := x.indexLocked(id)
	if i < 0 {
		return false
	}
	x.drafts = slices.Delete(x.drafts, i, i+1)
	x.persistLocked(ctx)
	return true
}

// Save restamps f (UpdatedAt and every derived field), replaces the draft
// with the same id or inserts it, re-sorts by recency and persists.
// It returns the stored record.
func (x *Index) Save(ctx context.Context, f draft.Full) (draft.Full, error) {
	if err := f.Validate(); err != nil {
		return draft.Full{}, err
	}

	x.mu.Lock()
	defer x.mu.Unlock()
	x.refreshLocked(ctx)
	return x.saveLocked(ctx, f), nil
}

func (x *Index) saveLocked(ctx context.Context, f draft.Full) draft.Full {
	stored := f.Restamp(x.now())
	if i := x.indexLocked(stored.ID); i >= 0 {
		x.drafts[i] = stored
	} else {
		x.drafts = append(x.drafts, stored)
	}
	sortByRecency(x.drafts)
	x.persistLocked(ctx)
	return stored.Clone()
}

// Get reads the collection fresh from storage, bypassing the in-memory
// copy, and returns the draft with id.
func (x *Index) Get(ctx context.Context, id string) (draft.Full, error) {
	drafts, _ := x.readAll(ctx)
	for _, f := range drafts {
		if f.ID == id {
			return f, nil
		}
	}
	return draft.Full{}, errors.NewNotFound(id)
}

// List returns the collection, most recently updated first.
func (x *Index) List(ctx context.Context) []draft.Full {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.ensureLoadedLocked(ctx)

	out := make([]draft.Full, len(x.drafts))
	for i, f := range x.drafts {
		out[i] = f.Clone()
	}
	return out
}

// Summaries returns the listing projection of List.
func (x *Index) Summaries(ctx context.Context) []draft.Summary {
	drafts := x.List(ctx)
	out := make([]draft.Summary, len(drafts))
	for i, f := range drafts {
		out[i] = f.ToSummary()
	}
	return out
}

// Update re-reads the collection, applies fn to the editable part of the
// draft with id and saves the result, all under one lock.
func (x *Index) Update(ctx context.Context, id string, fn func(*draft.Draft) error) (draft.Full, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.refreshLocked(ctx)

	i := x.indexLocked(id)
	if i < 0 {
		return draft.Full{}, errors.NewNotFound(id)
	}
	f := x.drafts[i].Clone()
	d := f.Draft()
	if err := fn(&d); err != nil {
		return draft.Full{}, err
	}
	next := f.WithDraft(d)
	if err := next.Validate(); err != nil {
		return draft.Full{}, err
	}
	return x.saveLocked(ctx, next), nil
}

// AddSource attaches s to the draft with id. A duplicate source id is a
// CONFLICT.
func (x *Index) AddSource(ctx context.Context, id string, s source.Source) (draft.Full, error) {
	if err := s.Validate(); err != nil {
		return draft.Full{}, err
	}
	return x.Update(ctx, id, func(d *draft.Draft) error {
		if source.Contains(d.Sources, s.ID) {
			return errors.NewConflict(fmt.Sprintf("source %q already attached", s.ID), map[string]any{"source_id": s.ID, "draft_id": id})
		}
		d.Sources = source.Add(d.Sources, s)
		return nil
	})
}

// RemoveSource detaches every source with sourceID from the draft with id.
func (x *Index) RemoveSource(ctx context.Context, id, sourceID string) (draft.Full, error) {
	return x.Update(ctx, id, func(d *draft.Draft) error {
		d.Sources = source.Remove(d.Sources, sourceID)
		return nil
	})
}

// InsertHTML sanitizes html and appends it to the draft's content.
func (x *Index) InsertHTML(ctx context.Context, id, html string) (draft.Full, error) {
	clean := content.Sanitize(html)
	if clean == "" {
		return draft.Full{}, errors.NewInvalidRequest("nothing to insert after sanitizing")
	}
	return x.Update(ctx, id, func(d *draft.Draft) error {
		d.Content += clean
		return nil
	})
}

func (x *Index) indexLocked(id string) int {
	return slices.IndexFunc(x.drafts, func(f draft.Full) bool { return f.ID == id })
}

// sortByRecency orders drafts by UpdatedAt descending. Equal timestamps
// keep their relative order.
func sortByRecency(drafts []draft.Full) {
	slices.SortStableFunc(drafts, func(a, b draft.Full) int {
		return cmp.Compare(b.UpdatedAt, a.UpdatedAt)
	})
}
