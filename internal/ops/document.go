package ops

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/quire/internal/content"
	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/source"
)

const frontMatterDelim = "---"

// frontMatter is the YAML header of an exported draft.
type frontMatter struct {
	ID        string              `yaml:"id,omitempty"`
	Title     string              `yaml:"title"`
	UpdatedAt string              `yaml:"updated_at,omitempty"` // RFC 3339
	WordCount int                 `yaml:"word_count,omitempty"`
	Sources   []frontMatterSource `yaml:"sources,omitempty"`
}

type frontMatterSource struct {
	ID      string `yaml:"id,omitempty"`
	Type    string `yaml:"type"`
	Title   string `yaml:"title,omitempty"`
	URL     string `yaml:"url,omitempty"`
	Content string `yaml:"content,omitempty"`
}

// renderDocument formats a draft as Markdown with a YAML front-matter
// header carrying the title and sources.
func renderDocument(f draft.Full) ([]byte, error) {
	body, err := content.ToMarkdown(f.Content)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to convert content to markdown: %w", err))
	}

	fm := frontMatter{
		ID:        f.ID,
		Title:     f.Title,
		UpdatedAt: f.Updated().UTC().Format(time.RFC3339),
		WordCount: f.WordCount,
	}
	for _, s := range f.Sources {
		fm.Sources = append(fm.Sources, frontMatterSource{
			ID:      s.ID,
			Type:    string(s.Kind),
			Title:   s.Title,
			URL:     s.URL,
			Content: s.Content,
		})
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim + "\n")
	buf.Write(header)
	buf.WriteString(frontMatterDelim + "\n\n")
	if f.Title != "" {
		fmt.Fprintf(&buf, "# %s\n\n", f.Title)
	}
	if body != "" {
		buf.WriteString(body)
		buf.WriteString("\n")
	}
	return buf.Bytes(), nil
}

// parsedDocument is a Markdown document split into header and body.
type parsedDocument struct {
	Title   string
	Sources []source.Source
	HTML    string
}

// parseDocument reads a Markdown document, with or without front matter.
// Without a front-matter title, the first level-one heading is used. A
// leading heading equal to the title is dropped from the body.
func parseDocument(data []byte) (*parsedDocument, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	var fm frontMatter
	if rest, ok := strings.CutPrefix(text, frontMatterDelim+"\n"); ok {
		header, body, found := strings.Cut(rest, "\n"+frontMatterDelim+"\n")
		if !found {
			return nil, errors.NewInvalidRequest("unterminated front matter")
		}
		if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid front matter: %v", err))
		}
		text = body
	}

	body := strings.TrimLeft(text, "\n")
	title := strings.TrimSpace(fm.Title)
	if first, rest, _ := strings.Cut(body, "\n"); strings.HasPrefix(first, "# ") {
		heading := strings.TrimSpace(strings.TrimPrefix(first, "# "))
		if title == "" {
			title = heading
		}
		if heading == title {
			body = strings.TrimLeft(rest, "\n")
		}
	}

	doc := &parsedDocument{Title: title, Sources: []source.Source{}}
	for _, s := range fm.Sources {
		restored, err := source.Restore(s.ID, s.Type, s.Title, s.URL, s.Content)
		if err != nil {
			return nil, err
		}
		doc.Sources = append(doc.Sources, restored)
	}

	if strings.TrimSpace(body) != "" {
		html, err := content.FromMarkdown(body)
		if err != nil {
			return nil, errors.NewInvalidRequest(fmt.Sprintf("invalid markdown: %v", err))
		}
		doc.HTML = content.Sanitize(html)
	}
	return doc, nil
}
