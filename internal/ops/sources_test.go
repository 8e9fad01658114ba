package ops

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/source"
)

func TestAddSource_Kinds(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	d, err := Create(ctx, idx, CreateInput{})
	require.NoError(t, err)

	link, err := AddSource(ctx, idx, AddSourceInput{ID: d.ID, Type: "link", URL: "www.example.com/post"})
	require.NoError(t, err)
	assert.Equal(t, "example.com", link.Source.Title)
	assert.Equal(t, "https://www.example.com/post", link.Source.URL)
	assert.Equal(t, 1, link.SourceCount)

	text, err := AddSource(ctx, idx, AddSourceInput{ID: d.ID, Type: "text", Content: "A pasted paragraph."})
	require.NoError(t, err)
	assert.Equal(t, source.KindText, text.Source.Kind)
	assert.Equal(t, "A pasted paragraph.", text.Source.Title)

	pdf, err := AddSource(ctx, idx, AddSourceInput{ID: d.ID, Type: "pdf", Title: "Report", Content: "Extracted"})
	require.NoError(t, err)
	assert.Equal(t, 3, pdf.SourceCount)

	// Order is insertion order.
	require.Len(t, pdf.Sources, 3)
	assert.Equal(t, link.Source.ID, pdf.Sources[0].ID)
	assert.Equal(t, pdf.Source.ID, pdf.Sources[2].ID)
}

func TestAddSource_Invalid(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	d, err := Create(ctx, idx, CreateInput{})
	require.NoError(t, err)

	tests := []struct {
		name  string
		input AddSourceInput
		code  errors.ErrorCode
	}{
		{"no draft id", AddSourceInput{Type: "link", URL: "https://a.com"}, errors.ErrInvalidRequest},
		{"unknown type", AddSourceInput{ID: d.ID, Type: "video"}, errors.ErrInvalidRequest},
		{"link without url", AddSourceInput{ID: d.ID, Type: "link"}, errors.ErrInvalidRequest},
		{"link with content", AddSourceInput{ID: d.ID, Type: "link", URL: "https://a.com", Content: "x"}, errors.ErrInvalidRequest},
		{"text with url", AddSourceInput{ID: d.ID, Type: "text", URL: "https://a.com", Content: "x"}, errors.ErrInvalidRequest},
		{"empty text", AddSourceInput{ID: d.ID, Type: "text"}, errors.ErrInvalidRequest},
		{"ftp url", AddSourceInput{ID: d.ID, Type: "link", URL: "ftp://a.com/file"}, errors.ErrInvalidRequest},
		{"unknown draft", AddSourceInput{ID: "missing", Type: "link", URL: "https://a.com"}, errors.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := AddSource(ctx, idx, tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestRemoveSource(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	d, err := Create(ctx, idx, CreateInput{})
	require.NoError(t, err)

	added, err := AddSource(ctx, idx, AddSourceInput{ID: d.ID, Type: "link", URL: "https://example.com"})
	require.NoError(t, err)

	out, err := RemoveSource(ctx, idx, RemoveSourceInput{ID: d.ID, SourceID: added.Source.ID})
	require.NoError(t, err)
	assert.Empty(t, out.Sources)
	assert.Zero(t, out.SourceCount)

	out, err = RemoveSource(ctx, idx, RemoveSourceInput{ID: d.ID, SourceID: "never-added"})
	require.NoError(t, err)
	assert.Empty(t, out.Sources)

	_, err = RemoveSource(ctx, idx, RemoveSourceInput{ID: d.ID})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestInsert(t *testing.T) {
	ctx := context.Background()
	idx := newTestIndex(t)
	d, err := Create(ctx, idx, CreateInput{Content: "<p>Intro</p>"})
	require.NoError(t, err)

	out, err := Insert(ctx, idx, InsertInput{ID: d.ID, HTML: `<blockquote>Quoted <a href="javascript:alert(1)">line</a></blockquote>`})
	require.NoError(t, err)
	assert.NotContains(t, out.Inserted, "javascript")
	assert.Equal(t, 3, out.WordCount)

	out, err = Insert(ctx, idx, InsertInput{ID: d.ID, Markdown: "**Theme:** trust"})
	require.NoError(t, err)
	assert.Equal(t, "<p><strong>Theme:</strong> trust</p>", out.Inserted)

	full, err := Fetch(ctx, idx, FetchInput{ID: d.ID})
	require.NoError(t, err)
	assert.Contains(t, full.Content, "<p>Intro</p><blockquote>Quoted")
	assert.Contains(t, full.Content, "<strong>Theme:</strong>")

	_, err = Insert(ctx, idx, InsertInput{ID: d.ID, HTML: "<script>gone</script>"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	_, err = Insert(ctx, idx, InsertInput{ID: d.ID})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

const testFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Feed</title>
<item><title>One</title><link>https://example.com/1</link></item>
<item><title>Two</title><link>https://example.com/2</link></item>
<item><title>Three</title><link>https://example.com/3</link></item>
</channel></rss>`

func TestImportFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(testFeed))
	}))
	defer srv.Close()

	ctx := context.Background()
	idx := newTestIndex(t)
	d, err := Create(ctx, idx, CreateInput{})
	require.NoError(t, err)

	out, err := ImportFeed(ctx, idx, ImportFeedInput{ID: d.ID, URL: srv.URL, Limit: 2})
	require.NoError(t, err)
	require.Len(t, out.Added, 2)
	assert.Equal(t, "One", out.Added[0].Title)
	assert.Equal(t, 2, out.SourceCount)

	again, err := ImportFeed(ctx, idx, ImportFeedInput{ID: d.ID, URL: srv.URL})
	require.NoError(t, err)
	assert.Len(t, again.Added, 1, "only the item not yet attached")
	assert.Equal(t, 2, again.Skipped)
	assert.Equal(t, 3, again.SourceCount)

	_, err = ImportFeed(ctx, idx, ImportFeedInput{ID: "missing", URL: srv.URL})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestImportFeed_BadFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer srv.Close()

	ctx := context.Background()
	idx := newTestIndex(t)
	d, err := Create(ctx, idx, CreateInput{})
	require.NoError(t, err)

	_, err = ImportFeed(ctx, idx, ImportFeedInput{ID: d.ID, URL: srv.URL})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

const testArticle = `<!DOCTYPE html><html><head><title>On Curation</title></head><body>
<article><h1>On Curation</h1>
<p>Curating sources is the quiet half of writing a newsletter. Before a single sentence of the
issue exists, an editor has usually read dozens of pieces and kept a handful worth quoting.</p>
<p>The pieces that survive are the ones that change how the editor sees the week. A good
collection of sources makes the eventual draft almost write itself, because the argument is
already visible in what was kept and what was thrown away.</p>
<p>That is why tools for writers increasingly treat sources as first-class material, stored
beside the draft rather than scattered across browser tabs and bookmarks.</p>
</article></body></html>`

func TestClip(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/article", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(testArticle))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	ctx := context.Background()
	idx := newTestIndex(t)
	d, err := Create(ctx, idx, CreateInput{})
	require.NoError(t, err)

	out, err := Clip(ctx, srv.Client(), idx, ClipInput{ID: d.ID, URL: srv.URL + "/article"})
	require.NoError(t, err)
	assert.Equal(t, source.KindText, out.Source.Kind)
	assert.Equal(t, "On Curation", out.Source.Title)
	assert.Contains(t, out.Source.Content, "Curating sources is the quiet half")
	assert.Equal(t, 1, out.SourceCount)

	_, err = Clip(ctx, srv.Client(), idx, ClipInput{ID: d.ID, URL: srv.URL + "/missing"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestClip_OversizedPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte("<html><body><p>"))
		w.Write([]byte(strings.Repeat("word ", MaxImportBytes/5+1)))
		w.Write([]byte("</p></body></html>"))
	}))
	defer srv.Close()

	ctx := context.Background()
	idx := newTestIndex(t)
	d, err := Create(ctx, idx, CreateInput{})
	require.NoError(t, err)

	_, err = Clip(ctx, srv.Client(), idx, ClipInput{ID: d.ID, URL: srv.URL})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	assert.Contains(t, err.Error(), "exceeds")

	got, err := Fetch(ctx, idx, FetchInput{ID: d.ID})
	require.NoError(t, err)
	assert.Zero(t, got.SourceCount)
}

func TestClip_DefaultClientHasTimeout(t *testing.T) {
	assert.Equal(t, ClipTimeout, defaultClipClient.Timeout)
}
