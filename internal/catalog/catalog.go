// Package catalog lists the event-planning packages shown as cards.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andreasstove999/ecommerce-system/package-cart-go/internal/cart"
)

//go:embed packages.yaml
var defaultPackages []byte

var ErrNotFound = errors.New("package not found")

// Package keeps the price as the display string; the cart parses it on add.
type Package struct {
	Title       string `yaml:"title" json:"title"`
	Price       string `yaml:"price" json:"price"`
	Image       string `yaml:"image" json:"image"`
	Description string `yaml:"description" json:"description,omitempty"`
}

type Catalog struct {
	packages []Package
	byTitle  map[string]int
}

type file struct {
	Packages []Package `yaml:"packages"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Load(bytes.NewReader(defaultPackages))
}

func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Load decodes a YAML catalog. Titles must be unique and prices parseable.
func Load(r io.Reader) (*Catalog, error) {
	var doc file
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	c := &Catalog{byTitle: make(map[string]int, len(doc.Packages))}
	for i, p := range doc.Packages {
		p.Title = strings.TrimSpace(p.Title)
		if p.Title == "" {
			return nil, fmt.Errorf("package %d: title is required", i)
		}
		if _, dup := c.byTitle[p.Title]; dup {
			return nil, fmt.Errorf("package %d: duplicate title %q", i, p.Title)
		}
		if _, err := cart.ParsePrice(p.Price); err != nil {
			return nil, fmt.Errorf("package %q: %w", p.Title, err)
		}
		c.byTitle[p.Title] = len(c.packages)
		c.packages = append(c.packages, p)
	}
	return c, nil
}

func (c *Catalog) All() []Package {
	return append([]Package{}, c.packages...)
}

func (c *Catalog) Find(title string) (Package, error) {
	i, ok := c.byTitle[title]
	if !ok {
		return Package{}, ErrNotFound
	}
	return c.packages[i], nil
}
