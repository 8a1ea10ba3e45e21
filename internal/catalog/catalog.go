// Package catalog loads opportunity catalogs for the matching engine.
package catalog

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/internship-portal/internal/matching"
)

// File is the on-disk YAML layout.
type File struct {
	Opportunities []Entry `yaml:"opportunities"`
}

// Entry is one opportunity plus its consumed-slot counter.
type Entry struct {
	matching.Opportunity `yaml:",inline"`
	Used                 int `yaml:"used"`
}

// Load reads a YAML catalog from path and seeds an engine with it.
func Load(path string) (*matching.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	engine, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return engine, nil
}

// Parse decodes a YAML catalog. Unknown fields are rejected.
func Parse(data []byte) (*matching.Engine, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, err
	}
	if len(file.Opportunities) == 0 {
		return nil, fmt.Errorf("%w: no opportunities", matching.ErrInvalidCatalog)
	}

	opportunities := make([]matching.Opportunity, 0, len(file.Opportunities))
	for _, e := range file.Opportunities {
		opportunities = append(opportunities, e.Opportunity)
	}
	engine, err := matching.NewEngine(opportunities)
	if err != nil {
		return nil, err
	}
	for _, e := range file.Opportunities {
		if e.Used == 0 {
			continue
		}
		if err := engine.SetUsed(e.Opportunity.Title, e.Used); err != nil {
			return nil, err
		}
	}
	return engine, nil
}

// Default returns an engine over the built-in catalog.
func Default() *matching.Engine {
	engine, err := matching.NewEngine(matching.DefaultCatalog())
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in catalog invalid: %v", err))
	}
	return engine
}

// LoadOrDefault loads path, or returns Default when path is empty.
func LoadOrDefault(path string) (*matching.Engine, error) {
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

// Marshal renders the engine's current catalog and counters as YAML.
func Marshal(engine *matching.Engine) ([]byte, error) {
	listings := engine.Catalog()
	file := File{Opportunities: make([]Entry, 0, len(listings))}
	for _, l := range listings {
		file.Opportunities = append(file.Opportunities, Entry{Opportunity: l.Opportunity, Used: l.Used})
	}
	return yaml.Marshal(file)
}
