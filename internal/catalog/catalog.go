// Package catalog holds the built-in template presets and the JSON
// import/export format for user templates.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/thoughtboard/internal/models"
)

var (
	// ErrFormat is returned when a template document cannot be parsed.
	ErrFormat = errors.New("invalid template format")

	// ErrNotArray is returned when a template document's top level is not a JSON array.
	ErrNotArray = fmt.Errorf("%w: not an array", ErrFormat)
)

//go:embed builtin.yaml
var builtinYAML []byte

// Catalog is a read-only set of named templates.
type Catalog struct {
	templates map[string][]models.CategoryBlueprint
}

var builtin = mustParseBuiltin(builtinYAML)

func mustParseBuiltin(data []byte) *Catalog {
	c, err := parseYAML(data)
	if err != nil {
		panic(fmt.Sprintf("catalog: built-in templates: %v", err))
	}
	return c
}

func parseYAML(data []byte) (*Catalog, error) {
	templates := make(map[string][]models.CategoryBlueprint)
	if err := yaml.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("decoding YAML: %w", err)
	}
	for name, bps := range templates {
		templates[name] = models.CloneBlueprints(bps)
	}
	return &Catalog{templates: templates}, nil
}

// Builtin returns the presets shipped with the binary.
func Builtin() *Catalog {
	return builtin
}

// Get returns a copy of the named template.
func (c *Catalog) Get(name string) ([]models.CategoryBlueprint, bool) {
	bps, ok := c.templates[name]
	if !ok {
		return nil, false
	}
	return models.CloneBlueprints(bps), true
}

// Names returns the template names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source says where a resolved template came from.
type Source string

const (
	SourceBuiltin Source = "builtin"
	SourceCustom  Source = "custom"
)

// Entry is one row of a merged template listing.
type Entry struct {
	Name       string `json:"name"`
	Source     Source `json:"source"`
	Categories int    `json:"categories"`
}

// Resolve looks name up among the built-ins first, then among custom.
func (c *Catalog) Resolve(name string, custom map[string][]models.CategoryBlueprint) ([]models.CategoryBlueprint, Source, bool) {
	if bps, ok := c.Get(name); ok {
		return bps, SourceBuiltin, true
	}
	if bps, ok := custom[name]; ok {
		return models.CloneBlueprints(bps), SourceCustom, true
	}
	return nil, "", false
}

// List merges built-in and custom templates, built-ins first, each group sorted.
// A custom template shadowed by a built-in of the same name is still listed.
func (c *Catalog) List(custom map[string][]models.CategoryBlueprint) []Entry {
	entries := make([]Entry, 0, len(c.templates)+len(custom))
	for _, name := range c.Names() {
		entries = append(entries, Entry{Name: name, Source: SourceBuiltin, Categories: len(c.templates[name])})
	}
	names := make([]string, 0, len(custom))
	for name := range custom {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		entries = append(entries, Entry{Name: name, Source: SourceCustom, Categories: len(custom[name])})
	}
	return entries
}

// FromCategories snapshots a memory tree as a template, keeping ids as
// placeholders.
func FromCategories(cats []models.Category) []models.CategoryBlueprint {
	bps := make([]models.CategoryBlueprint, len(cats))
	for i := range cats {
		items := make([]models.KnowledgeBlueprint, len(cats[i].Items))
		for j, k := range cats[i].Items {
			items[j] = models.KnowledgeBlueprint{ID: k.ID, Name: k.Name, Relation: k.Relation}
		}
		bps[i] = models.CategoryBlueprint{ID: cats[i].ID, Name: cats[i].Name, Items: items}
	}
	return bps
}

// ParseBlueprints decodes an imported template file. The top level must be
// a JSON array; entries that are missing "items" get an empty list.
func ParseBlueprints(data []byte) ([]models.CategoryBlueprint, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty document", ErrFormat)
	}
	if !json.Valid(trimmed) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrFormat)
	}
	if trimmed[0] != '[' {
		return nil, ErrNotArray
	}
	var bps []models.CategoryBlueprint
	if err := json.Unmarshal(trimmed, &bps); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFormat, err)
	}
	return models.CloneBlueprints(bps), nil
}

// EncodeBlueprints renders a template as an indented JSON array without ids.
func EncodeBlueprints(bps []models.CategoryBlueprint) ([]byte, error) {
	out := models.CloneBlueprints(bps)
	for i := range out {
		out[i].ID = ""
		for j := range out[i].Items {
			out[i].Items[j].ID = ""
		}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}
	return append(data, '\n'), nil
}

// TemplateNameFromFile derives a template name from an import file path.
func TemplateNameFromFile(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
