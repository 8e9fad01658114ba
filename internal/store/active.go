package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hpungsan/quire/internal/content"
	"github.com/hpungsan/quire/internal/demo"
	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/schedule"
	"github.com/hpungsan/quire/internal/source"
	"github.com/hpungsan/quire/internal/storage"
)

// State is the lifecycle state of an Active store.
type State int

const (
	StateUninitialized State = iota
	StateLoaded
)

func (s State) String() string {
	if s == StateLoaded {
		return "loaded"
	}
	return "uninitialized"
}

// Origin records where the loaded draft came from.
type Origin string

const (
	OriginNone      Origin = ""
	OriginPersisted Origin = "persisted"
	OriginDemo      Origin = "demo"
	OriginEmpty     Origin = "empty"
)

// visitedValue is written under the visited key; only its presence matters.
const visitedValue = "1"

// ActiveOptions configures an Active store. Zero values pick defaults.
type ActiveOptions struct {
	Keys      storage.Keys
	Seed      demo.Seed
	Scheduler schedule.Scheduler
	Debounce  time.Duration
	Logger    *slog.Logger
}

// Active manages the one working draft. Mutations update memory at once
// and schedule a trailing-edge debounced write of the whole draft.
// Storage failures never reach the caller: reads fall back to demo or
// empty state and writes are logged and dropped.
type Active struct {
	backend   storage.Backend
	keys      storage.Keys
	seed      demo.Seed
	logger    *slog.Logger
	debouncer *schedule.Debouncer

	mu     sync.Mutex
	state  State
	origin Origin
	demo   bool
	draft  draft.Draft

	// writeMu serializes writes and removals of the draft key. epoch is
	// bumped by DismissDemo so writes captured before it are discarded.
	writeMu sync.Mutex
	epoch   atomic.Uint64
}

// NewActive returns an uninitialized store; call Load before mutating.
func NewActive(backend storage.Backend, opts ActiveOptions) *Active {
	if opts.Keys == (storage.Keys{}) {
		opts.Keys = storage.DefaultKeys
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	return &Active{
		backend:   backend,
		keys:      opts.Keys,
		seed:      opts.Seed.Clone(),
		logger:    loggerOr(opts.Logger),
		debouncer: schedule.NewDebouncer(opts.Scheduler, opts.Debounce),
		draft:     emptyDraft(),
	}
}

// Load hydrates the store. A persisted draft always wins. Without one, the
// demo seed is shown on a first visit or when demoRequested is set, and
// the visit is recorded; otherwise the draft starts empty. Calls after the
// first return the existing origin without touching storage.
func (a *Active) Load(ctx context.Context, demoRequested bool) Origin {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state == StateLoaded {
		return a.origin
	}

	if d, ok := a.readPersisted(ctx); ok {
		a.draft = d
		a.origin = OriginPersisted
		a.demo = false
	} else if demoRequested || !a.visited(ctx) {
		a.draft = a.seed.Draft.Clone()
		if a.draft.Sources == nil {
			a.draft.Sources = []source.Source{}
		}
		a.origin = OriginDemo
		a.demo = true
		if err := a.backend.Set(ctx, a.keys.Visited, visitedValue); err != nil {
			a.logger.Warn("record visit failed", "key", a.keys.Visited, "error", err)
		}
	} else {
		a.draft = emptyDraft()
		a.origin = OriginEmpty
		a.demo = false
	}

	a.state = StateLoaded
	a.logger.Debug("active draft loaded", "origin", a.origin)
	return a.origin
}

func (a *Active) readPersisted(ctx context.Context) (draft.Draft, bool) {
	raw, ok, err := a.backend.Get(ctx, a.keys.Draft)
	if err != nil {
		a.logger.Warn("read active draft failed", "key", a.keys.Draft, "error", err)
		return draft.Draft{}, false
	}
	if !ok {
		return draft.Draft{}, false
	}

	var d draft.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		a.logger.Warn("discarding unreadable active draft", "key", a.keys.Draft, "error", err)
		return draft.Draft{}, false
	}
	if err := d.Validate(); err != nil {
		a.logger.Warn("discarding invalid active draft", "key", a.keys.Draft, "error", err)
		return draft.Draft{}, false
	}
	if d.Sources == nil {
		d.Sources = []source.Source{}
	}
	return d, true
}

// visited reports whether the marker exists. A failed read counts as a
// first visit.
func (a *Active) visited(ctx context.Context) bool {
	_, ok, err := a.backend.Get(ctx, a.keys.Visited)
	if err != nil {
		a.logger.Warn("read visit marker failed", "key", a.keys.Visited, "error", err)
		return false
	}
	return ok
}

// UpdateTitle replaces the title.
func (a *Active) UpdateTitle(title string) error {
	return a.mutate(func(d *draft.Draft) error {
		d.Title = title
		return nil
	})
}

// UpdateContent replaces the rich-text content.
func (a *Active) UpdateContent(html string) error {
	return a.mutate(func(d *draft.Draft) error {
		d.Content = html
		return nil
	})
}

// AddSource appends s. A source whose id is already present is rejected
// with CONFLICT.
func (a *Active) AddSource(s source.Source) error {
	if err := s.Validate(); err != nil {
		return err
	}
	return a.mutate(func(d *draft.Draft) error {
		if source.Contains(d.Sources, s.ID) {
			return errors.NewConflict(fmt.Sprintf("source %q already attached", s.ID), map[string]any{"source_id": s.ID})
		}
		d.Sources = source.Add(d.Sources, s)
		return nil
	})
}

// RemoveSource drops every source with id. Unknown ids are ignored.
func (a *Active) RemoveSource(id string) error {
	return a.mutate(func(d *draft.Draft) error {
		d.Sources = source.Remove(d.Sources, id)
		return nil
	})
}

// InsertHTML sanitizes externally produced HTML and appends it to the content.
func (a *Active) InsertHTML(html string) error {
	clean := content.Sanitize(html)
	if clean == "" {
		return errors.NewInvalidRequest("nothing to insert after sanitizing")
	}
	return a.mutate(func(d *draft.Draft) error {
		d.Content += clean
		return nil
	})
}

func (a *Active) mutate(fn func(*draft.Draft) error) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != StateLoaded {
		return errors.NewInvalidRequest("active draft is not loaded")
	}
	next := a.draft.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	a.draft = next

	snapshot := next.Clone()
	epoch := a.epoch.Load()
	a.debouncer.Trigger(func() { a.persist(snapshot, epoch) })
	return nil
}

// persist writes d unless a dismissal happened after it was captured.
func (a *Active) persist(d draft.Draft, epoch uint64) {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	if a.epoch.Load() != epoch {
		return
	}
	data, err := json.Marshal(d)
	if err != nil {
		a.logger.Error("encode active draft", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := a.backend.Set(ctx, a.keys.Draft, string(data)); err != nil {
		a.logger.Warn("write active draft failed", "key", a.keys.Draft, "error", err)
	}
}

// DismissDemo turns the seeded demo into a real, empty draft: the pending
// write is dropped, the demo flag cleared, and the persisted draft erased
// immediately.
func (a *Active) DismissDemo(ctx context.Context) error {
	a.mu.Lock()
	if a.state != StateLoaded {
		a.mu.Unlock()
		return errors.NewInvalidRequest("active draft is not loaded")
	}
	a.debouncer.Cancel()
	a.epoch.Add(1)
	a.draft = emptyDraft()
	a.demo = false
	a.origin = OriginEmpty
	a.mu.Unlock()

	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	if err := a.backend.Remove(ctx, a.keys.Draft); err != nil {
		a.logger.Warn("erase active draft failed", "key", a.keys.Draft, "error", err)
	}
	return nil
}

// Flush performs a pending write now. It reports whether one was pending.
func (a *Active) Flush() bool {
	return a.debouncer.Flush()
}

// Pending reports whether a debounced write is waiting.
func (a *Active) Pending() bool {
	return a.debouncer.Pending()
}

// Draft returns a copy of the in-memory draft.
func (a *Active) Draft() draft.Draft {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draft.Clone()
}

// Meta derives metadata from the in-memory draft.
func (a *Active) Meta() draft.Meta {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draft.Meta()
}

// IsDemo reports whether the draft is the demo seed.
func (a *Active) IsDemo() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.demo
}

// State returns the lifecycle state.
func (a *Active) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Origin returns where the current draft came from.
func (a *Active) Origin() Origin {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.origin
}

// Messages returns the demo chat transcript, or nil outside demo mode.
func (a *Active) Messages() []demo.ChatMessage {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.demo || len(a.seed.Messages) == 0 {
		return nil
	}
	return append([]demo.ChatMessage(nil), a.seed.Messages...)
}

func emptyDraft() draft.Draft {
	return draft.Draft{Sources: []source.Source{}}
}
