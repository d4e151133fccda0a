package category

import (
	"net/url"
	"strings"

	"github.com/HerbHall/pricescout/pkg/models"
)

// AllValue is the URL parameter value that selects a page's unified mode.
const AllValue = "all"

// Selection is the resolved category scope of a controller.
type Selection struct {
	Page     string
	Category models.Category // CategoryUnknown in unified mode
	All      bool
	Sources  []models.Category
}

// Key returns the persistence key for the selection, scoped by page so two
// pages showing the same category keep separate filter state.
func (s Selection) Key() string {
	if s.All {
		return s.Page + ":" + AllValue
	}
	return s.Page + ":" + string(s.Category)
}

// Resolve picks the category for page from the `category` (or legacy
// `type`) query parameter. Unknown or missing values, and categories that
// are not listed on the page, fall back to the page default.
func (t *Table) Resolve(page Page, query url.Values) Selection {
	raw := query.Get("category")
	if raw == "" {
		raw = query.Get("type")
	}
	return t.ResolveValue(page, raw)
}

// ResolveValue is Resolve for an already extracted parameter value.
func (t *Table) ResolveValue(page Page, raw string) Selection {
	if page.All && strings.EqualFold(strings.TrimSpace(raw), AllValue) {
		sources := make([]models.Category, len(page.Categories))
		copy(sources, page.Categories)
		return Selection{Page: page.Name, Category: models.CategoryUnknown, All: true, Sources: sources}
	}

	c, ok := t.Lookup(raw)
	if !ok || !pageListed(page, c) {
		c = page.Default
	}
	return Selection{Page: page.Name, Category: c, Sources: []models.Category{c}}
}

func pageListed(page Page, c models.Category) bool {
	for i := range page.Categories {
		if page.Categories[i] == c {
			return true
		}
	}
	return false
}
