package filter

import (
	"sort"
	"strings"

	"github.com/HerbHall/pricescout/internal/category"
	"github.com/HerbHall/pricescout/internal/pricing"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Option is one selectable filter value with the number of products
// carrying it.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

// PriceSpan is the lowest and highest known price in a collection.
type PriceSpan struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Facets describes the filter options available for a collection.
type Facets struct {
	Brands     []Option  `json:"brands"`
	OS         []Option  `json:"os"`
	Features   []Option  `json:"features"`
	PriceSpan  PriceSpan `json:"priceSpan"`
	PriceRange []string  `json:"priceRanges"`
}

// Facets computes brand, OS/category and feature options with counts over
// products. Options are ordered by count, then label.
func (e *Engine) Facets(products []models.Product) Facets {
	brands := newCounter()
	specs := newCounter()
	features := newCounter()
	var span PriceSpan

	for i := range products {
		p := &products[i]
		key := e.brands.Canonical(p.Brand)
		label := e.brands.Display(key)
		if label == "" {
			label = p.Brand
		}
		brands.add(key, label)

		if e.specFilter == category.SpecFilterCategory {
			specs.add(string(p.Category), string(p.Category))
		} else if osName, ok := OperatingSystem(p); ok {
			family := osFamily(osName)
			specs.add(strings.ToLower(family), family)
		}

		text := strings.ToLower(p.Name + " " + p.Description)
		for _, tag := range Features {
			if matchFeature(tag, text) {
				features.add(tag, tag)
			}
		}

		if low, ok := pricing.Lowest(p); ok {
			if span.Min == 0 || low < span.Min {
				span.Min = low
			}
			if low > span.Max {
				span.Max = low
			}
		}
	}

	return Facets{
		Brands:     brands.options(),
		OS:         specs.options(),
		Features:   features.options(),
		PriceSpan:  span,
		PriceRange: e.tiers.Ranges(),
	}
}

// osFamily reduces "Android 14 (One UI 6)" to "Android".
func osFamily(osName string) string {
	fields := strings.Fields(osName)
	if len(fields) == 0 {
		return osName
	}
	return strings.TrimRight(fields[0], ",;")
}

type counter struct {
	counts map[string]int
	labels map[string]string
}

func newCounter() *counter {
	return &counter{counts: map[string]int{}, labels: map[string]string{}}
}

func (c *counter) add(value, label string) {
	if value == "" {
		return
	}
	if _, ok := c.labels[value]; !ok {
		c.labels[value] = label
	}
	c.counts[value]++
}

func (c *counter) options() []Option {
	out := make([]Option, 0, len(c.counts))
	for v, n := range c.counts {
		out = append(out, Option{Value: v, Label: c.labels[v], Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}
