package sorting

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/language"

	"github.com/HerbHall/pricescout/pkg/models"
)

func product(id, name, brand string, prices ...float64) models.Product {
	p := models.Product{ID: id, Name: name, Brand: brand}
	for _, price := range prices {
		p.Offers = append(p.Offers, models.Offer{Retailer: "r", Price: price})
	}
	return p
}

func ids(products []models.Product) []string {
	out := make([]string, len(products))
	for i := range products {
		out[i] = products[i].ID
	}
	return out
}

func TestSort_PriceLowZeroFirst(t *testing.T) {
	products := []models.Product{
		product("p1", "One", "A", 100, 150),
		product("p2", "Two", "B", 200),
		product("p3", "Three", "C"),
	}
	got := ids(New(language.English).Sort(products, KeyPriceLow))
	if diff := cmp.Diff([]string{"p3", "p1", "p2"}, got); diff != "" {
		t.Errorf("price-low (-want +got):\n%s", diff)
	}
}

func TestSort_Keys(t *testing.T) {
	products := []models.Product{
		product("a", "galaxy s24", "Samsung", 900),
		product("b", "Apple iPhone 15", "apple", 1200),
		product("c", "Édition Pixel", "Google", 700),
		product("d", "Apple iPhone 9", "Apple", 300),
	}
	tests := []struct {
		key  Key
		want []string
	}{
		{KeyName, []string{"d", "b", "c", "a"}},
		{KeyPriceLow, []string{"d", "c", "a", "b"}},
		{KeyPriceHigh, []string{"b", "a", "c", "d"}},
		{KeyRelevance, []string{"d", "b", "c", "a"}},
		{Key("bogus"), []string{"a", "b", "c", "d"}},
	}
	s := New(language.English)
	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ids(s.Sort(products, tt.key))); diff != "" {
				t.Errorf("(-want +got):\n%s", diff)
			}
		})
	}
}

func TestSort_StableOnSortedInput(t *testing.T) {
	products := []models.Product{
		product("1", "Alpha", "Apple", 100),
		product("2", "Beta", "Apple", 100),
		product("3", "Gamma", "Sony", 100),
		product("4", "Delta", "Sony", 250),
	}
	s := New(language.English)
	for _, key := range Keys {
		sorted := s.Sort(products, key)
		again := s.Sort(sorted, key)
		if diff := cmp.Diff(ids(sorted), ids(again)); diff != "" {
			t.Errorf("%s: resorting changed order (-first +second):\n%s", key, diff)
		}
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	products := []models.Product{product("b", "B", "B", 2), product("a", "A", "A", 1)}
	New(language.English).Sort(products, KeyName)
	if products[0].ID != "b" {
		t.Error("input slice was reordered")
	}
}

func TestKey_Known(t *testing.T) {
	if !KeyPriceHigh.Known() || Key("newest").Known() {
		t.Error("Known misreports keys")
	}
}
