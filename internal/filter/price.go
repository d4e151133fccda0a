package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// Default tier boundaries.
const (
	DefaultLowestTierMax = 3000
	DefaultTopTierMin    = 20000
)

// Tiers holds the boundaries that change how a price range compares.
// A range whose max equals LowestMax excludes its max; a range whose min
// equals TopMin, or that has no max, is open-ended.
type Tiers struct {
	LowestMax float64
	TopMin    float64
}

// DefaultTiers returns the standard storefront boundaries.
func DefaultTiers() Tiers {
	return Tiers{LowestMax: DefaultLowestTierMax, TopMin: DefaultTopTierMin}
}

// Ranges returns the preset price ranges offered for selection.
func (t Tiers) Ranges() []string {
	return []string{
		fmt.Sprintf("0-%s", fmtBound(t.LowestMax)),
		fmt.Sprintf("%s-%s", fmtBound(t.LowestMax), fmtBound(t.TopMin)),
		fmt.Sprintf("%s+", fmtBound(t.TopMin)),
	}
}

func fmtBound(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// PriceRange is a parsed "min-max" selection.
type PriceRange struct {
	Min     float64
	Max     float64
	OpenMax bool
}

// ParseRange parses "min-max", "min-", "min-+" or "min+". It reports false
// for anything else, including min > max.
func ParseRange(s string) (PriceRange, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return PriceRange{}, false
	}
	if strings.HasSuffix(s, "+") && !strings.Contains(s, "-") {
		lo, err := strconv.ParseFloat(strings.TrimSuffix(s, "+"), 64)
		if err != nil || lo < 0 {
			return PriceRange{}, false
		}
		return PriceRange{Min: lo, OpenMax: true}, true
	}

	minStr, maxStr, ok := strings.Cut(s, "-")
	if !ok {
		return PriceRange{}, false
	}
	lo, err := strconv.ParseFloat(minStr, 64)
	if err != nil || lo < 0 {
		return PriceRange{}, false
	}
	if maxStr == "" || maxStr == "+" {
		return PriceRange{Min: lo, OpenMax: true}, true
	}
	hi, err := strconv.ParseFloat(maxStr, 64)
	if err != nil || hi < lo {
		return PriceRange{}, false
	}
	return PriceRange{Min: lo, Max: hi}, true
}

// Contains applies the tier rule to price.
func (t Tiers) Contains(r PriceRange, price float64) bool {
	switch {
	case r.OpenMax || r.Min == t.TopMin:
		return price >= r.Min
	case r.Max == t.LowestMax:
		return price >= r.Min && price < r.Max
	default:
		return price >= r.Min && price <= r.Max
	}
}
