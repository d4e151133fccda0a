package filter

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSet_Toggle(t *testing.T) {
	s := Set{}
	if !s.Toggle("Apple") {
		t.Error("first toggle should select")
	}
	if !s.Has("apple") || !s.Has(" APPLE ") {
		t.Error("set should be case-insensitive")
	}
	if s.Toggle("apple") {
		t.Error("second toggle should deselect")
	}
	if len(s) != 0 {
		t.Errorf("len = %d, want 0", len(s))
	}
	if s.Toggle("  ") {
		t.Error("blank values are never selected")
	}
}

func TestSet_ValuesSorted(t *testing.T) {
	s := NewSet("sony", "Apple", "bose")
	if diff := cmp.Diff([]string{"apple", "bose", "sony"}, s.Values()); diff != "" {
		t.Errorf("Values (-want +got):\n%s", diff)
	}
}

func TestState_CloneIndependent(t *testing.T) {
	a := NewState()
	a.Brands.Add("apple")
	b := a.Clone()
	b.Brands.Add("sony")
	if a.Brands.Has("sony") {
		t.Error("clone shares the brand set")
	}
}

func TestState_CopyGroup(t *testing.T) {
	active := NewState()
	active.Brands.Add("apple")
	staged := active.Clone()
	staged.Brands.Add("sony")
	staged.PriceRange = "0-3000"

	got := active.CopyGroup(GroupBrand, staged)
	if !got.Brands.Equal(NewSet("apple", "sony")) {
		t.Errorf("brands = %v", got.Brands.Values())
	}
	if got.PriceRange != "" {
		t.Errorf("price group should be untouched, got %q", got.PriceRange)
	}
	if active.Brands.Has("sony") {
		t.Error("CopyGroup modified the receiver")
	}
}

func TestState_Active(t *testing.T) {
	s := NewState()
	if !s.Empty() {
		t.Error("new state should be empty")
	}
	s.Features.Add("5g")
	s.Brands.Add("sony")
	s.PriceRange = "0-3000"
	want := []Selection{
		{Group: GroupBrand, Value: "sony"},
		{Group: GroupPrice, Value: "0-3000"},
		{Group: GroupFeature, Value: "5g"},
	}
	if diff := cmp.Diff(want, s.Active()); diff != "" {
		t.Errorf("Active (-want +got):\n%s", diff)
	}
}

func TestParseGroup(t *testing.T) {
	if g, ok := ParseGroup(" Brand "); !ok || g != GroupBrand {
		t.Errorf("ParseGroup(Brand) = %q, %v", g, ok)
	}
	if _, ok := ParseGroup("colour"); ok {
		t.Error("unknown group accepted")
	}
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		in   string
		want PriceRange
		ok   bool
	}{
		{"0-3000", PriceRange{Min: 0, Max: 3000}, true},
		{" 3000 - 6000 ", PriceRange{Min: 3000, Max: 6000}, true},
		{"20000+", PriceRange{Min: 20000, OpenMax: true}, true},
		{"20000-", PriceRange{Min: 20000, OpenMax: true}, true},
		{"20000-+", PriceRange{Min: 20000, OpenMax: true}, true},
		{"", PriceRange{}, false},
		{"cheap", PriceRange{}, false},
		{"-5-10", PriceRange{}, false},
		{"10-5", PriceRange{}, false},
		{"a-b", PriceRange{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseRange(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseRange(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestTiers_Ranges(t *testing.T) {
	want := []string{"0-3000", "3000-20000", "20000+"}
	if diff := cmp.Diff(want, DefaultTiers().Ranges()); diff != "" {
		t.Errorf("Ranges (-want +got):\n%s", diff)
	}
}
