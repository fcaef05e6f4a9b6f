package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownTag is returned when a tag has no catalog entry.
var ErrUnknownTag = errors.New("unknown tag")

// Catalog is a parsed response catalog with O(1) lookup by tag.
type Catalog struct {
	Entries []Entry
	byTag   map[string]int
}

type catalogFile struct {
	Intents []Entry `json:"intents" yaml:"intents"`
}

// Load reads a catalog from a .json, .yaml or .yml file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes catalog data. ext selects the format (".yaml" or ".yml" for
// YAML, anything else for JSON).
func Parse(data []byte, ext string) (*Catalog, error) {
	var f catalogFile
	if isYAML(ext) {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	} else {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	}
	return New(f.Intents)
}

// New indexes entries by tag. Tags must be non-empty and unique.
func New(entries []Entry) (*Catalog, error) {
	c := &Catalog{
		Entries: entries,
		byTag:   make(map[string]int, len(entries)),
	}
	for i := range c.Entries {
		e := &c.Entries[i]
		e.Tag = strings.TrimSpace(e.Tag)
		if e.Tag == "" {
			return nil, fmt.Errorf("entry %d: empty tag", i)
		}
		if _, dup := c.byTag[e.Tag]; dup {
			return nil, fmt.Errorf("entry %d: duplicate tag %q", i, e.Tag)
		}
		if e.Video != nil {
			e.Videos = append(e.Videos, *e.Video)
			e.Video = nil
		}
		c.byTag[e.Tag] = i
	}
	return c, nil
}

// Save writes the catalog to path, choosing the format by extension.
func (c *Catalog) Save(path string) error {
	f := catalogFile{Intents: c.Entries}
	var (
		data []byte
		err  error
	)
	if isYAML(filepath.Ext(path)) {
		data, err = yaml.Marshal(f)
	} else {
		data, err = json.MarshalIndent(f, "", "  ")
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Lookup returns the entry for tag.
func (c *Catalog) Lookup(tag string) (*Entry, bool) {
	i, ok := c.byTag[tag]
	if !ok {
		return nil, false
	}
	return &c.Entries[i], true
}

// Tags returns the catalog's tags in sorted order.
func (c *Catalog) Tags() []string {
	tags := make([]string, 0, len(c.Entries))
	for _, e := range c.Entries {
		tags = append(tags, e.Tag)
	}
	sort.Strings(tags)
	return tags
}

// Validate reports every entry that cannot be trained on or answered with.
func (c *Catalog) Validate() error {
	if len(c.Entries) == 0 {
		return errors.New("catalog has no intents")
	}
	var errs []error
	for _, e := range c.Entries {
		if len(nonBlank(e.Patterns)) == 0 {
			errs = append(errs, fmt.Errorf("intent %q: no patterns", e.Tag))
		}
		if len(nonBlank(e.Responses)) == 0 {
			errs = append(errs, fmt.Errorf("intent %q: no responses", e.Tag))
		}
		for j, m := range e.Videos {
			if strings.TrimSpace(m.URL) == "" {
				errs = append(errs, fmt.Errorf("intent %q: video %d has no url", e.Tag, j))
			}
		}
	}
	return errors.Join(errs...)
}

// Keywords returns the shortcut keywords of every entry, keyed by tag.
func (c *Catalog) Keywords() map[string][]string {
	out := make(map[string][]string)
	for _, e := range c.Entries {
		if len(e.Keywords) > 0 {
			out[e.Tag] = append([]string(nil), e.Keywords...)
		}
	}
	return out
}

func nonBlank(items []string) []string {
	var out []string
	for _, s := range items {
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func isYAML(ext string) bool {
	ext = strings.ToLower(ext)
	return ext == ".yaml" || ext == ".yml"
}
