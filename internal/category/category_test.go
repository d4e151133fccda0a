package category

import (
	"net/url"
	"testing"

	"github.com/HerbHall/pricescout/pkg/models"
)

func audioPage(t *testing.T, tbl *Table) Page {
	t.Helper()
	p, err := tbl.Page("audio")
	if err != nil {
		t.Fatalf("Page(audio): %v", err)
	}
	return p
}

func TestTable_Lookup(t *testing.T) {
	tbl := NewTable()
	tests := []struct {
		raw    string
		want   models.Category
		wantOK bool
	}{
		{raw: "earbud", want: models.CategoryEarbuds, wantOK: true},
		{raw: "  Earbuds ", want: models.CategoryEarbuds, wantOK: true},
		{raw: "HIFI_SYSTEM", want: models.CategoryHifiSystems, wantOK: true},
		{raw: "portable speaker", want: models.CategoryPortableSpeakers, wantOK: true},
		{raw: "toaster", want: models.CategoryUnknown, wantOK: false},
		{raw: "", want: models.CategoryUnknown, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := tbl.Lookup(tt.raw)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestTable_PageUnknown(t *testing.T) {
	if _, err := NewTable().Page("kitchen"); err == nil {
		t.Fatal("expected error for unknown page")
	}
}

func TestTable_Pages(t *testing.T) {
	if got := len(NewTable().Pages()); got != 4 {
		t.Errorf("Pages() = %d entries, want 4", got)
	}
}

func TestResolve_CategoryParam(t *testing.T) {
	tbl := NewTable()
	sel := tbl.Resolve(audioPage(t, tbl), url.Values{"category": {"earbud"}})
	if sel.Category != models.CategoryEarbuds {
		t.Errorf("Category = %q, want earbuds", sel.Category)
	}
	if sel.All {
		t.Error("expected single-category selection")
	}
	if sel.Key() != "audio:earbuds" {
		t.Errorf("Key() = %q, want audio:earbuds", sel.Key())
	}
}

func TestResolve_LegacyTypeParam(t *testing.T) {
	tbl := NewTable()
	sel := tbl.Resolve(audioPage(t, tbl), url.Values{"type": {"soundbar"}})
	if sel.Category != models.CategorySoundbars {
		t.Errorf("Category = %q, want soundbars", sel.Category)
	}
}

func TestResolve_UnknownFallsBackToDefault(t *testing.T) {
	tbl := NewTable()
	sel := tbl.Resolve(audioPage(t, tbl), url.Values{"category": {"toaster"}})
	if sel.Category != models.CategoryEarbuds {
		t.Errorf("Category = %q, want page default earbuds", sel.Category)
	}
}

func TestResolve_OffPageCategoryFallsBack(t *testing.T) {
	tbl := NewTable()
	phones, err := tbl.Page("smartphones")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	sel := tbl.Resolve(phones, url.Values{"category": {"headphones"}})
	if sel.Category != models.CategorySmartphones {
		t.Errorf("Category = %q, want smartphones", sel.Category)
	}
}

func TestResolve_AllMode(t *testing.T) {
	tbl := NewTable()
	page := audioPage(t, tbl)
	sel := tbl.Resolve(page, url.Values{"category": {"ALL"}})
	if !sel.All {
		t.Fatal("expected unified mode")
	}
	if len(sel.Sources) != len(page.Categories) {
		t.Errorf("Sources = %d, want %d", len(sel.Sources), len(page.Categories))
	}
	if sel.Key() != "audio:all" {
		t.Errorf("Key() = %q, want audio:all", sel.Key())
	}
}

func TestResolve_AllIgnoredWithoutUnifiedMode(t *testing.T) {
	tbl := NewTable()
	tablets, err := tbl.Page("tablets")
	if err != nil {
		t.Fatalf("Page: %v", err)
	}
	sel := tbl.Resolve(tablets, url.Values{"category": {"all"}})
	if sel.All || sel.Category != models.CategoryTablets {
		t.Errorf("got %+v, want tablets single-category selection", sel)
	}
}
