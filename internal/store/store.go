// Package store owns the persisted representation of drafts. Active keeps
// the single working draft with debounced writes; Index keeps the
// multi-draft collection with immediate writes.
package store

import (
	"log/slog"
	"time"
)

// writeTimeout bounds a background write, which has no caller context.
const writeTimeout = 5 * time.Second

// DefaultDebounce is the quiet period before the active draft is written.
const DefaultDebounce = 500 * time.Millisecond

func loggerOr(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
