// Package filter implements the compound brand, OS, price and feature
// predicates applied client-side to a category's products.
package filter

import (
	"sort"
	"strings"
)

// Group identifies one independently committed filter group.
type Group string

const (
	GroupBrand   Group = "brand"
	GroupOS      Group = "os"
	GroupPrice   Group = "price"
	GroupFeature Group = "feature"
)

// Groups lists every filter group in pipeline order.
var Groups = []Group{GroupBrand, GroupOS, GroupPrice, GroupFeature}

// ParseGroup converts a user-supplied group name.
func ParseGroup(s string) (Group, bool) {
	g := Group(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Groups {
		if g == known {
			return g, true
		}
	}
	return "", false
}

// Set is a multi-select filter group. Values are stored lower-cased.
type Set map[string]struct{}

// NewSet builds a set from values.
func NewSet(values ...string) Set {
	s := make(Set, len(values))
	for _, v := range values {
		s.Add(v)
	}
	return s
}

func setKey(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

// Add inserts v.
func (s Set) Add(v string) {
	if k := setKey(v); k != "" {
		s[k] = struct{}{}
	}
}

// Has reports whether v is selected.
func (s Set) Has(v string) bool {
	_, ok := s[setKey(v)]
	return ok
}

// Toggle flips v and reports whether it is now selected.
func (s Set) Toggle(v string) bool {
	k := setKey(v)
	if k == "" {
		return false
	}
	if _, ok := s[k]; ok {
		delete(s, k)
		return false
	}
	s[k] = struct{}{}
	return true
}

// Values returns the selected values sorted.
func (s Set) Values() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k := range s {
		out[k] = struct{}{}
	}
	return out
}

// Equal reports whether both sets hold the same values.
func (s Set) Equal(o Set) bool {
	if len(s) != len(o) {
		return false
	}
	for k := range s {
		if _, ok := o[k]; !ok {
			return false
		}
	}
	return true
}

// State is one committed (or staged) filter selection.
type State struct {
	Brands     Set
	OS         Set
	Features   Set
	PriceRange string
}

// NewState returns an empty state.
func NewState() State {
	return State{Brands: Set{}, OS: Set{}, Features: Set{}}
}

// Clone returns a deep copy.
func (s State) Clone() State {
	return State{
		Brands:     s.Brands.Clone(),
		OS:         s.OS.Clone(),
		Features:   s.Features.Clone(),
		PriceRange: s.PriceRange,
	}
}

// Empty reports whether no filter is active.
func (s State) Empty() bool {
	return len(s.Brands) == 0 && len(s.OS) == 0 && len(s.Features) == 0 && s.PriceRange == ""
}

// CopyGroup returns s with group g replaced by from's value.
func (s State) CopyGroup(g Group, from State) State {
	out := s.Clone()
	switch g {
	case GroupBrand:
		out.Brands = from.Brands.Clone()
	case GroupOS:
		out.OS = from.OS.Clone()
	case GroupFeature:
		out.Features = from.Features.Clone()
	case GroupPrice:
		out.PriceRange = from.PriceRange
	}
	return out
}

// Active lists the active selections as group/value pairs, in pipeline order.
func (s State) Active() []Selection {
	var out []Selection
	for _, v := range s.Brands.Values() {
		out = append(out, Selection{Group: GroupBrand, Value: v})
	}
	for _, v := range s.OS.Values() {
		out = append(out, Selection{Group: GroupOS, Value: v})
	}
	if s.PriceRange != "" {
		out = append(out, Selection{Group: GroupPrice, Value: s.PriceRange})
	}
	for _, v := range s.Features.Values() {
		out = append(out, Selection{Group: GroupFeature, Value: v})
	}
	return out
}

// Selection is one active filter value.
type Selection struct {
	Group Group
	Value string
}
