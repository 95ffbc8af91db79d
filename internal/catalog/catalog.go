// Package catalog lists the categories and filter options the browser offers.
package catalog

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/BurntSushi/toml"
)

//go:embed catalog.toml
var catalogTOML string

// Section is one filter dimension of the filter modal.
type Section struct {
	Key     string   `toml:"key"`
	Title   string   `toml:"title"`
	Options []string `toml:"options"`
	Swatch  bool     `toml:"swatch"`
}

func (s Section) Has(option string) bool {
	for _, o := range s.Options {
		if o == option {
			return true
		}
	}
	return false
}

type Catalog struct {
	Categories []string          `toml:"categories"`
	Filters    []Section         `toml:"filters"`
	Swatches   map[string]string `toml:"swatches"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogTOML)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// Parse decodes and validates a catalog document.
func Parse(data string) (*Catalog, error) {
	var c Catalog
	if _, err := toml.Decode(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Categories) == 0 {
		return fmt.Errorf("catalog has no categories")
	}
	seen := make(map[string]bool)
	for _, s := range c.Filters {
		if s.Key == "" {
			return fmt.Errorf("filter section %q has no key", s.Title)
		}
		if seen[s.Key] {
			return fmt.Errorf("duplicate filter section %q", s.Key)
		}
		seen[s.Key] = true
		if len(s.Options) == 0 {
			return fmt.Errorf("filter section %q has no options", s.Key)
		}
	}
	return nil
}

func (c *Catalog) HasCategory(name string) bool {
	for _, cat := range c.Categories {
		if cat == name {
			return true
		}
	}
	return false
}

func (c *Catalog) Section(key string) (Section, bool) {
	for _, s := range c.Filters {
		if s.Key == key {
			return s, true
		}
	}
	return Section{}, false
}

// Valid reports whether value is a known option of filter key.
func (c *Catalog) Valid(key, value string) bool {
	s, ok := c.Section(key)
	return ok && s.Has(value)
}

// Swatch returns the display color for a color option, or "".
func (c *Catalog) Swatch(option string) string {
	return c.Swatches[option]
}
