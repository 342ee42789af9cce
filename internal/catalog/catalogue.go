// Package catalog loads the bundled recipe catalogue and imports it into an
// empty entity store.
package catalog

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/lieblingsgerichte/rezepte/internal/errors"
	"github.com/lieblingsgerichte/rezepte/internal/validation"
)

//go:embed defaults/recipes.json
var defaultCatalogue []byte

// DefaultSource names the catalogue compiled into the binary.
const DefaultSource = "embedded:defaults/recipes.json"

// Format is the encoding of a catalogue file.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks YAML for .yaml/.yml files and JSON otherwise.
func FormatFromPath(p string) Format {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Catalogue is a decoded and validated list of recipe definitions.
type Catalogue struct {
	Source  string
	Entries []Entry
}

// Len returns the number of entries.
func (c *Catalogue) Len() int {
	return len(c.Entries)
}

// Entry defines one recipe of the catalogue.
type Entry struct {
	Title       string `json:"title" yaml:"title" validate:"max=200"`
	Description string `json:"description" yaml:"description"`
	ImageName   string `json:"imageName,omitempty" yaml:"imageName,omitempty" validate:"omitempty,max=255"`
	Ingredients []Item `json:"ingredients" yaml:"ingredients" validate:"dive"`
	Tags        []Item `json:"tags" yaml:"tags" validate:"dive"`
}

// Item is a named ingredient or tag.
type Item struct {
	Name string `json:"name" yaml:"name" validate:"notblank,max=200"`
}

// IngredientNames returns the trimmed ingredient names in catalogue order.
func (e Entry) IngredientNames() []string {
	return itemNames(e.Ingredients)
}

// TagNames returns the trimmed tag names in catalogue order.
func (e Entry) TagNames() []string {
	return itemNames(e.Tags)
}

func itemNames(items []Item) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, strings.TrimSpace(it.Name))
	}
	return names
}

// rawEntry accepts both "description" and the older "recipeDescription" key.
type rawEntry struct {
	Title             string  `json:"title" yaml:"title"`
	Description       *string `json:"description" yaml:"description"`
	RecipeDescription *string `json:"recipeDescription" yaml:"recipeDescription"`
	ImageName         string  `json:"imageName" yaml:"imageName"`
	Ingredients       []Item  `json:"ingredients" yaml:"ingredients"`
	Tags              []Item  `json:"tags" yaml:"tags"`
}

func (r rawEntry) entry() Entry {
	e := Entry{
		Title:       r.Title,
		ImageName:   r.ImageName,
		Ingredients: r.Ingredients,
		Tags:        r.Tags,
	}
	switch {
	case r.Description != nil:
		e.Description = *r.Description
	case r.RecipeDescription != nil:
		e.Description = *r.RecipeDescription
	}
	return e
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw rawEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*e = raw.entry()
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	var raw rawEntry
	if err := node.Decode(&raw); err != nil {
		return err
	}
	*e = raw.entry()
	return nil
}

// DecodeCatalogue reads a catalogue in the given format and validates every
// entry. Any failure is an ImportDecode error; no partial catalogue is
// returned.
func DecodeCatalogue(r io.Reader, format Format) (*Catalogue, error) {
	var entries []Entry

	switch format {
	case FormatJSON:
		if err := json.NewDecoder(r).Decode(&entries); err != nil {
			return nil, errors.ImportDecode(err, "decode json catalogue")
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
			return nil, errors.ImportDecode(err, "decode yaml catalogue")
		}
	default:
		return nil, errors.ImportDecode(fmt.Errorf("unknown format %q", format), "decode catalogue")
	}

	v := validation.New()
	for i, e := range entries {
		if err := v.Validate(e); err != nil {
			return nil, errors.ImportDecode(err, fmt.Sprintf("catalogue entry %d (%q)", i+1, e.Title))
		}
	}

	if entries == nil {
		entries = []Entry{}
	}
	return &Catalogue{Entries: entries}, nil
}

// LoadCatalogue reads the catalogue file at path from fsys. The format
// follows the file extension.
func LoadCatalogue(fsys afero.Fs, path string) (*Catalogue, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, errors.ImportDecode(err, "open catalogue")
	}
	defer f.Close()

	c, err := DecodeCatalogue(f, FormatFromPath(path))
	if err != nil {
		return nil, err
	}
	c.Source = path
	return c, nil
}

// Default returns the catalogue compiled into the binary.
func Default() (*Catalogue, error) {
	c, err := DecodeCatalogue(bytes.NewReader(defaultCatalogue), FormatJSON)
	if err != nil {
		return nil, err
	}
	c.Source = DefaultSource
	return c, nil
}
