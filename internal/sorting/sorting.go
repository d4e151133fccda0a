// Package sorting orders product collections by a user-selected key.
package sorting

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/HerbHall/pricescout/internal/pricing"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Key names a sort order.
type Key string

const (
	KeyRelevance Key = "relevance"
	KeyName      Key = "name"
	KeyPriceLow  Key = "price-low"
	KeyPriceHigh Key = "price-high"
)

// Default is used when no sort has been chosen.
const Default = KeyRelevance

// Keys lists the supported sort keys.
var Keys = []Key{KeyRelevance, KeyName, KeyPriceLow, KeyPriceHigh}

// Known reports whether k is a supported key.
func (k Key) Known() bool {
	for _, known := range Keys {
		if k == known {
			return true
		}
	}
	return false
}

// Sorter orders products with a locale-aware collator.
type Sorter struct {
	mu  sync.Mutex
	col *collate.Collator
}

// New creates a Sorter for the given language tag.
func New(tag language.Tag) *Sorter {
	return &Sorter{col: collate.New(tag, collate.IgnoreCase, collate.Numeric)}
}

// Sort returns a sorted copy of products. The sort is stable and unknown
// keys return the input order.
func (s *Sorter) Sort(products []models.Product, key Key) []models.Product {
	out := make([]models.Product, len(products))
	copy(out, products)

	var less func(a, b *models.Product) bool
	switch key {
	case KeyName:
		less = func(a, b *models.Product) bool { return s.compare(a.Name, b.Name) < 0 }
	case KeyPriceLow:
		less = func(a, b *models.Product) bool { return pricing.LowestPrice(a) < pricing.LowestPrice(b) }
	case KeyPriceHigh:
		less = func(a, b *models.Product) bool { return pricing.LowestPrice(a) > pricing.LowestPrice(b) }
	case KeyRelevance:
		less = func(a, b *models.Product) bool {
			if c := s.compare(a.Brand, b.Brand); c != 0 {
				return c < 0
			}
			return pricing.LowestPrice(a) < pricing.LowestPrice(b)
		}
	default:
		return out
	}

	// Collator buffers are not safe for concurrent use.
	s.mu.Lock()
	defer s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return less(&out[i], &out[j]) })
	return out
}

func (s *Sorter) compare(a, b string) int {
	return s.col.CompareString(strings.TrimSpace(a), strings.TrimSpace(b))
}
