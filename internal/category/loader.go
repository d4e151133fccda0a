package category

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/HerbHall/pricescout/pkg/models"
)

//go:embed categories.yaml
var categoriesRawData []byte

// SpecFilter names which spec path a page's second filter group inspects.
type SpecFilter string

const (
	SpecFilterOS       SpecFilter = "os"
	SpecFilterCategory SpecFilter = "category"
)

// Page describes one category page.
type Page struct {
	Name       string            `yaml:"name"`
	Default    models.Category   `yaml:"default"`
	All        bool              `yaml:"all"`
	Categories []models.Category `yaml:"categories"`
	SpecFilter SpecFilter        `yaml:"spec_filter"`
}

// tableFile is the top-level structure of the embedded YAML.
type tableFile struct {
	Aliases map[string]models.Category `yaml:"aliases"`
	Pages   []Page                     `yaml:"pages"`
}

// Table provides lazy-loaded access to the embedded category tables.
type Table struct {
	once    sync.Once
	aliases map[string]models.Category
	pages   map[string]Page
	err     error
}

// NewTable creates a Table that parses the embedded YAML on first access.
func NewTable() *Table {
	return &Table{}
}

// Lookup maps a raw category string to a known Category.
// Matching is case-insensitive and ignores surrounding whitespace and
// underscores. Returns CategoryUnknown, false when the value is not recognised.
func (t *Table) Lookup(raw string) (models.Category, bool) {
	t.once.Do(t.load)
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "_", "-")
	key = strings.ReplaceAll(key, " ", "-")
	if c, ok := t.aliases[key]; ok {
		return c, true
	}
	return models.CategoryUnknown, false
}

// Page returns the page profile with the given name.
func (t *Table) Page(name string) (Page, error) {
	t.once.Do(t.load)
	if t.err != nil {
		return Page{}, t.err
	}
	p, ok := t.pages[name]
	if !ok {
		return Page{}, fmt.Errorf("category: unknown page %q", name)
	}
	return p, nil
}

// Pages returns the names of all configured pages.
func (t *Table) Pages() []string {
	t.once.Do(t.load)
	names := make([]string, 0, len(t.pages))
	for name := range t.pages {
		names = append(names, name)
	}
	return names
}

// load parses the embedded YAML tables.
func (t *Table) load() {
	var f tableFile
	if err := yaml.Unmarshal(categoriesRawData, &f); err != nil {
		t.err = fmt.Errorf("category: parse yaml: %w", err)
		t.aliases = map[string]models.Category{}
		t.pages = map[string]Page{}
		return
	}
	t.aliases = f.Aliases
	t.pages = make(map[string]Page, len(f.Pages))
	for _, p := range f.Pages {
		t.pages[p.Name] = p
	}
}
