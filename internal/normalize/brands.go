package normalize

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed brands.yaml
var brandRawData []byte

type brandFile struct {
	Brands []struct {
		Name    string   `yaml:"name"`
		Aliases []string `yaml:"aliases"`
	} `yaml:"brands"`
}

// shortAliasLen is the alias length at or below which a name match must
// fall on word boundaries ("lg" must not match inside "bulge").
const shortAliasLen = 3

// BrandTable maps brand aliases to a canonical brand.
type BrandTable struct {
	once    sync.Once
	aliases map[string]string // alias -> canonical key
	display map[string]string // canonical key -> display name
	ordered []string          // aliases, longest first
}

// NewBrandTable creates a new brand alias table.
func NewBrandTable() *BrandTable {
	return &BrandTable{}
}

// Canonical returns the lower-case canonical key for a brand string.
// Known aliases ("APPLE Inc") map to their brand ("apple"); unknown brands
// are returned trimmed and lower-cased.
func (b *BrandTable) Canonical(brand string) string {
	b.once.Do(b.load)

	key := normalizeBrand(brand)
	if key == "" {
		return ""
	}
	if c, ok := b.aliases[key]; ok {
		return c
	}
	return key
}

// Display returns the display name for a canonical key, or "" if unknown.
func (b *BrandTable) Display(canonical string) string {
	b.once.Do(b.load)
	return b.display[canonical]
}

// Infer scans a product name for a known alias and returns the brand's
// display name. The alias occurring earliest in the name wins, the longer
// one on a tie. Returns "" if nothing matches.
func (b *BrandTable) Infer(name string) string {
	b.once.Do(b.load)

	lower := strings.ToLower(name)
	if strings.TrimSpace(lower) == "" {
		return ""
	}
	best, bestAt := "", len(lower)
	for _, alias := range b.ordered {
		at := indexAlias(lower, alias)
		if at < 0 || at >= bestAt {
			continue
		}
		best, bestAt = alias, at
	}
	if best == "" {
		return ""
	}
	return b.display[b.aliases[best]]
}

// load parses the embedded brand data into the lookup tables. The data is
// compiled in, so a decode failure is a build defect.
func (b *BrandTable) load() {
	var f brandFile
	if err := yaml.Unmarshal(brandRawData, &f); err != nil {
		panic(fmt.Sprintf("normalize: embedded brands.yaml: %v", err))
	}

	b.aliases = make(map[string]string, 4*len(f.Brands))
	b.display = make(map[string]string, len(f.Brands))
	for _, brand := range f.Brands {
		key := normalizeBrand(brand.Name)
		if key == "" {
			continue
		}
		b.display[key] = strings.TrimSpace(brand.Name)
		b.aliases[key] = key
		for _, alias := range brand.Aliases {
			if alias = normalizeBrand(alias); alias != "" {
				b.aliases[alias] = key
			}
		}
	}

	b.ordered = make([]string, 0, len(b.aliases))
	for alias := range b.aliases {
		b.ordered = append(b.ordered, alias)
	}
	sort.Slice(b.ordered, func(i, j int) bool {
		if len(b.ordered[i]) != len(b.ordered[j]) {
			return len(b.ordered[i]) > len(b.ordered[j])
		}
		return b.ordered[i] < b.ordered[j]
	})
}

// normalizeBrand lower-cases and collapses whitespace.
func normalizeBrand(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// indexAlias returns the first position of alias in name, or -1. Short
// aliases must be delimited by non-alphanumeric characters.
func indexAlias(name, alias string) int {
	if len(alias) > shortAliasLen {
		return strings.Index(name, alias)
	}
	for start := 0; start < len(name); {
		i := strings.Index(name[start:], alias)
		if i < 0 {
			return -1
		}
		i += start
		end := i + len(alias)
		if (i == 0 || !isAlnum(name[i-1])) && (end == len(name) || !isAlnum(name[end])) {
			return i
		}
		start = i + 1
	}
	return -1
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
