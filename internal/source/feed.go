package source

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mmcdole/gofeed"
)

// FetchFeed retrieves an RSS/Atom feed and converts up to limit items into link sources.
func FetchFeed(ctx context.Context, feedURL string, limit int) ([]Source, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	return fromFeed(feed, limit), nil
}

// ParseFeed converts up to limit items of an already-fetched feed into link sources.
func ParseFeed(r io.Reader, limit int) ([]Source, error) {
	parser := gofeed.NewParser()
	feed, err := parser.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}
	return fromFeed(feed, limit), nil
}

// fromFeed skips items without a usable link. limit <= 0 means all items.
func fromFeed(feed *gofeed.Feed, limit int) []Source {
	count := len(feed.Items)
	if limit > 0 {
		count = min(count, limit)
	}

	sources := make([]Source, 0, count)
	for _, item := range feed.Items {
		if len(sources) == count {
			break
		}
		if strings.TrimSpace(item.Link) == "" {
			continue
		}
		s, err := NewLink(item.Link, item.Title)
		if err != nil {
			continue
		}
		sources = append(sources, s)
	}
	return sources
}
