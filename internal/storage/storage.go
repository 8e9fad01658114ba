// Package storage persists named string blobs: the active draft, the
// visited marker, and the draft collection each live under one key.
package storage

import (
	"context"
	"fmt"
)

// Backend is a keyed blob store. Values are opaque serialized strings.
// A single logical writer is assumed; the last Set wins.
type Backend interface {
	// Get returns the value under key; ok is false when the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// Keys names the blobs a Quire store uses.
type Keys struct {
	Draft   string // the single active draft
	Visited string // presence-only first-visit marker
	Drafts  string // the multi-draft collection
}

// KeysWithPrefix returns the standard key set under prefix.
func KeysWithPrefix(prefix string) Keys {
	return Keys{
		Draft:   fmt.Sprintf("%s.draft", prefix),
		Visited: fmt.Sprintf("%s.visited", prefix),
		Drafts:  fmt.Sprintf("%s.drafts", prefix),
	}
}

// DefaultKeys is the key set used when no prefix is configured.
var DefaultKeys = KeysWithPrefix("quire")
