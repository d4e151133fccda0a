package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/HerbHall/pricescout/pkg/models"
)

var fixtureSeq atomic.Int64

// NewProduct returns a Product with sensible defaults, suitable for test
// fixtures. Each call gets a distinct ID.
func NewProduct(opts ...func(*models.Product)) models.Product {
	n := fixtureSeq.Add(1)
	p := models.Product{
		ID:       fmt.Sprintf("test-%04d", n),
		Name:     fmt.Sprintf("Test Phone %d", n),
		Brand:    "Samsung",
		Category: models.CategorySmartphones,
		Image:    models.CategorySmartphones.Placeholder(),
		Specs:    map[string]any{},
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p
}

// WithID sets the product ID.
func WithID(id string) func(*models.Product) {
	return func(p *models.Product) { p.ID = id }
}

// WithName sets the product name.
func WithName(name string) func(*models.Product) {
	return func(p *models.Product) { p.Name = name }
}

// WithBrand sets the product brand.
func WithBrand(brand string) func(*models.Product) {
	return func(p *models.Product) { p.Brand = brand }
}

// WithCategory sets the product category.
func WithCategory(c models.Category) func(*models.Product) {
	return func(p *models.Product) { p.Category = c }
}

// WithOffers adds one offer per price, from retailers "shop-1", "shop-2",
// and so on. Price and OriginalPrice follow the lowest valid offer.
func WithOffers(prices ...float64) func(*models.Product) {
	return func(p *models.Product) {
		for i, price := range prices {
			p.Offers = append(p.Offers, models.Offer{
				Retailer: fmt.Sprintf("shop-%d", i+1),
				Price:    price,
				URL:      fmt.Sprintf("https://shop-%d.example/%s", i+1, p.ID),
			})
			if price > 0 && (p.Price == 0 || price < p.Price) {
				p.Price = price
			}
		}
		p.OriginalPrice = p.Price
	}
}

// WithOS sets the operating system spec.
func WithOS(os string) func(*models.Product) {
	return func(p *models.Product) {
		p.Specs["Os"] = map[string]any{"Operating System": os}
	}
}

// WithDescription sets the product description.
func WithDescription(d string) func(*models.Product) {
	return func(p *models.Product) { p.Description = d }
}

// RawProduct returns an API record as the catalog service would send it.
func RawProduct(id, name, brand string, prices ...float64) map[string]any {
	offers := make([]any, len(prices))
	for i, price := range prices {
		offers[i] = map[string]any{
			"retailer": fmt.Sprintf("shop-%d", i+1),
			"price":    price,
			"url":      fmt.Sprintf("https://shop-%d.example/%s", i+1, id),
		}
	}
	return map[string]any{
		"product_id": id,
		"model":      name,
		"brand":      brand,
		"offers":     offers,
		"image":      "https://cdn.example/" + id + ".png",
	}
}
