package filter

import (
	"strings"

	"github.com/HerbHall/pricescout/internal/category"
	"github.com/HerbHall/pricescout/internal/normalize"
	"github.com/HerbHall/pricescout/internal/pricing"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Engine applies filter states to product collections for one page.
type Engine struct {
	brands     *normalize.BrandTable
	tiers      Tiers
	specFilter category.SpecFilter
}

// NewEngine creates an engine. specFilter selects what the OS group
// matches against: the operating system spec or the product category.
func NewEngine(brands *normalize.BrandTable, tiers Tiers, specFilter category.SpecFilter) *Engine {
	return &Engine{brands: brands, tiers: tiers, specFilter: specFilter}
}

// Tiers returns the price tier boundaries in use.
func (e *Engine) Tiers() Tiers {
	return e.tiers
}

// Apply returns the products passing every active group of state, in input
// order. The input slice is not modified.
func (e *Engine) Apply(products []models.Product, state State) []models.Product {
	out := make([]models.Product, 0, len(products))
	if len(products) == 0 {
		return out
	}

	brands := e.canonicalSet(state.Brands)
	priceRange, hasRange := ParseRange(state.PriceRange)

	for i := range products {
		p := &products[i]
		if len(brands) > 0 && !brands.Has(e.brands.Canonical(p.Brand)) {
			continue
		}
		if len(state.OS) > 0 && !e.matchSpec(p, state.OS) {
			continue
		}
		if hasRange && !e.matchPrice(p, priceRange) {
			continue
		}
		if len(state.Features) > 0 && !matchAnyFeature(p, state.Features) {
			continue
		}
		out = append(out, *p)
	}
	return out
}

func (e *Engine) canonicalSet(s Set) Set {
	out := make(Set, len(s))
	for v := range s {
		out.Add(e.brands.Canonical(v))
	}
	return out
}

// matchPrice tests the lowest offer price, the one sorting and display
// use. Products without a known price never match a range.
func (e *Engine) matchPrice(p *models.Product, r PriceRange) bool {
	low, ok := pricing.Lowest(p)
	if !ok {
		return false
	}
	return e.tiers.Contains(r, low)
}

func (e *Engine) matchSpec(p *models.Product, tokens Set) bool {
	if e.specFilter == category.SpecFilterCategory {
		return matchCategory(p, tokens)
	}
	osName, ok := OperatingSystem(p)
	if !ok {
		return false
	}
	osName = strings.ToLower(osName)
	for tok := range tokens {
		if strings.Contains(osName, tok) {
			return true
		}
	}
	return false
}

// matchCategory matches tokens against the product category, the
// Category/Type specs and, for wired/wireless, the product name.
func matchCategory(p *models.Product, tokens Set) bool {
	fields := []string{string(p.Category)}
	if s, ok := specString(p.Specs, "Category"); ok {
		fields = append(fields, strings.ToLower(s))
	}
	if s, ok := specString(p.Specs, "Type"); ok {
		fields = append(fields, strings.ToLower(s))
	}
	name := strings.ToLower(p.Name)

	for tok := range tokens {
		for _, f := range fields {
			if strings.Contains(f, tok) {
				return true
			}
		}
		switch tok {
		case FeatureWireless:
			if wirelessRe.MatchString(name) {
				return true
			}
		case FeatureWired:
			if wiredRe.MatchString(name) && !wirelessRe.MatchString(name) {
				return true
			}
		}
	}
	return false
}

func matchAnyFeature(p *models.Product, tags Set) bool {
	text := strings.ToLower(p.Name + " " + p.Description)
	for tag := range tags {
		if matchFeature(tag, text) {
			return true
		}
	}
	return false
}

// osPaths are tried in order to find a product's operating system.
var osPaths = [][]string{
	{"Os", "Operating System"},
	{"Os", "OS"},
	{"Software", "Operating System"},
	{"os"},
}

// OperatingSystem returns the product's OS spec string, if any.
func OperatingSystem(p *models.Product) (string, bool) {
	for _, path := range osPaths {
		if s, ok := specString(p.Specs, path...); ok {
			return s, true
		}
	}
	return "", false
}

// specString walks nested spec maps and returns a non-empty string leaf.
func specString(specs map[string]any, path ...string) (string, bool) {
	var cur any = specs
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return "", false
		}
		if cur, ok = m[key]; !ok {
			return "", false
		}
	}
	s, ok := cur.(string)
	s = strings.TrimSpace(s)
	return s, ok && s != ""
}
