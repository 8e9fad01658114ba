package ops

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/source"
	"github.com/hpungsan/quire/internal/store"
)

// ImportFeedInput contains parameters for the ImportFeed operation.
type ImportFeedInput struct {
	ID    string // draft id
	URL   string // RSS, Atom or JSON feed
	Limit int    // default: 10, max: 50
}

// ImportFeedOutput contains the result of the ImportFeed operation.
type ImportFeedOutput struct {
	DraftID     string          `json:"draft_id"`
	Added       []source.Source `json:"added"`
	Skipped     int             `json:"skipped"`
	SourceCount int             `json:"source_count"`
}

// ImportFeed attaches the newest feed items as link sources. Items whose
// URL is already attached are skipped.
func ImportFeed(ctx context.Context, idx *store.Index, input ImportFeedInput) (*ImportFeedOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if strings.TrimSpace(input.URL) == "" {
		return nil, errors.NewInvalidRequest("url is required")
	}
	limit := clampLimit(input.Limit, DefaultFeedLimit, MaxFeedLimit)

	// Fail early on unknown drafts before touching the network.
	if _, err := idx.Get(ctx, id); err != nil {
		return nil, err
	}

	items, err := source.FetchFeed(ctx, input.URL, limit)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("failed to read feed: %v", err))
	}

	output := &ImportFeedOutput{DraftID: id, Added: []source.Source{}}
	f, err := idx.Update(ctx, id, func(d *draft.Draft) error {
		for _, item := range items {
			if hasURL(d.Sources, item.URL) {
				output.Skipped++
				continue
			}
			d.Sources = source.Add(d.Sources, item)
			output.Added = append(output.Added, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	output.SourceCount = f.SourceCount
	return output, nil
}

func hasURL(sources []source.Source, u string) bool {
	for _, s := range sources {
		if s.Kind == source.KindLink && s.URL == u {
			return true
		}
	}
	return false
}

// ClipTimeout bounds a page fetch made with the default client.
const ClipTimeout = 30 * time.Second

var defaultClipClient = &http.Client{Timeout: ClipTimeout}

// ClipInput contains parameters for the Clip operation.
type ClipInput struct {
	ID  string // draft id
	URL string // article page
}

// Clip fetches an article page, extracts its readable text and attaches
// it as a text source.
func Clip(ctx context.Context, client *http.Client, idx *store.Index, input ClipInput) (*SourceOutput, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	if strings.TrimSpace(input.URL) == "" {
		return nil, errors.NewInvalidRequest("url is required")
	}
	if _, err := idx.Get(ctx, id); err != nil {
		return nil, err
	}
	if client == nil {
		client = defaultClipClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid url: %v", err))
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("failed to fetch page: %v", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("failed to fetch page: %s", resp.Status))
	}

	page, err := io.ReadAll(io.LimitReader(resp.Body, MaxImportBytes+1))
	if err != nil {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("failed to fetch page: %v", err))
	}
	if len(page) > MaxImportBytes {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("page exceeds %d bytes", MaxImportBytes))
	}

	s, err := source.Clip(bytes.NewReader(page), input.URL)
	if err != nil {
		if errors.Is(err, errors.ErrInvalidRequest) {
			return nil, err
		}
		return nil, errors.NewInvalidRequest(fmt.Sprintf("failed to clip page: %v", err))
	}
	f, err := idx.AddSource(ctx, id, s)
	if err != nil {
		return nil, err
	}
	return &SourceOutput{DraftID: f.ID, Source: &s, Sources: f.Sources, SourceCount: f.SourceCount}, nil
}
