// Package demo supplies the seed shown to first-time visitors.
package demo

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hpungsan/quire/internal/draft"
	"github.com/hpungsan/quire/internal/errors"
	"github.com/hpungsan/quire/internal/source"
)

//go:embed seed.yaml
var defaultSeed []byte

// ChatMessage is one line of the seeded assistant conversation.
type ChatMessage struct {
	Role    string `json:"role" yaml:"role"`
	Content string `json:"content" yaml:"content"`
}

// Seed is the demo draft plus the chat transcript shown beside it.
type Seed struct {
	Draft    draft.Draft
	Messages []ChatMessage
}

// Clone returns a copy that shares no slices with s.
func (s Seed) Clone() Seed {
	out := Seed{Draft: s.Draft.Clone()}
	if s.Messages != nil {
		out.Messages = append([]ChatMessage(nil), s.Messages...)
	}
	return out
}

// seedFile is the on-disk shape. Source ids are optional and generated
// when missing.
type seedFile struct {
	Title    string        `yaml:"title"`
	Content  string        `yaml:"content"`
	Sources  []seedSource  `yaml:"sources"`
	Messages []ChatMessage `yaml:"messages"`
}

type seedSource struct {
	ID      string `yaml:"id"`
	Type    string `yaml:"type"`
	Title   string `yaml:"title"`
	URL     string `yaml:"url"`
	Content string `yaml:"content"`
}

// Default returns the built-in seed.
func Default() Seed {
	seed, err := Parse(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("demo: built-in seed is invalid: %v", err))
	}
	return seed
}

// Load reads a seed from a YAML or JSON file.
func Load(path string) (Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read demo seed: %w", err)
	}
	seed, err := Parse(data)
	if err != nil {
		return Seed{}, fmt.Errorf("demo seed %s: %w", path, err)
	}
	return seed, nil
}

// Parse decodes seed data. JSON input is accepted since it is valid YAML.
func Parse(data []byte) (Seed, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Seed{}, errors.NewInvalidRequest(fmt.Sprintf("invalid demo seed: %v", err))
	}

	sources := make([]source.Source, 0, len(f.Sources))
	for _, ss := range f.Sources {
		s, err := source.Restore(ss.ID, ss.Type, ss.Title, ss.URL, ss.Content)
		if err != nil {
			return Seed{}, err
		}
		sources = append(sources, s)
	}

	d := draft.Draft{Title: f.Title, Content: f.Content, Sources: sources}
	if err := d.Validate(); err != nil {
		return Seed{}, err
	}
	return Seed{Draft: d, Messages: f.Messages}, nil
}
