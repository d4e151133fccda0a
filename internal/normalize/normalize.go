// Package normalize converts raw, shape-varying catalog API records into
// canonical models.Product values. Normalization never fails: missing or
// malformed fields degrade to documented defaults.
package normalize

import (
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/HerbHall/pricescout/internal/category"
	"github.com/HerbHall/pricescout/internal/payload"
	"github.com/HerbHall/pricescout/pkg/models"
)

const (
	// UnknownName is used when a record carries no model, name or title.
	UnknownName = "Unknown Product"
	// UnknownBrand is used when no brand is given or inferable.
	UnknownBrand = "Unknown"
	// idTokenLen is the length of generated fallback ids.
	idTokenLen = 9
)

// Normalizer maps raw records onto models.Product.
type Normalizer struct {
	brands     *BrandTable
	categories *category.Table
	newID      func() string
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithIDFunc replaces the random fallback id generator, e.g. with a
// deterministic sequence in tests.
func WithIDFunc(fn func() string) Option {
	return func(n *Normalizer) { n.newID = fn }
}

// New creates a Normalizer using the given alias tables.
func New(brands *BrandTable, categories *category.Table, opts ...Option) *Normalizer {
	n := &Normalizer{
		brands:     brands,
		categories: categories,
		newID:      randomToken,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Brands returns the brand table used by the normalizer.
func (n *Normalizer) Brands() *BrandTable {
	return n.brands
}

// Normalize converts one raw record. hint is used when the record does not
// name a recognised category.
func (n *Normalizer) Normalize(rec payload.Record, hint models.Category) models.Product {
	if rec == nil {
		rec = payload.Record{}
	}

	p := models.Product{
		ID:          firstString(rec, "product_id", "id"),
		Name:        firstString(rec, "model", "name", "title"),
		Brand:       firstString(rec, "brand", "manufacturer"),
		Description: firstString(rec, "description", "summary", "short_description"),
		Category:    n.category(rec, hint),
		Specs:       specs(rec),
	}
	if p.ID == "" {
		p.ID = n.newID()
	}
	if p.Name == "" {
		p.Name = UnknownName
	}
	if p.Brand == "" {
		p.Brand = n.brands.Infer(p.Name)
	}
	if p.Brand == "" {
		p.Brand = UnknownBrand
	}

	rawOffers := asList(rec["offers"])
	p.Offers = offers(rawOffers)
	if len(rawOffers) > 0 {
		p.Price, p.OriginalPrice = offerPrices(p.Offers)
	} else {
		p.Price, _ = firstFloat(rec, "price")
		p.OriginalPrice, _ = firstFloat(rec, "originalPrice", "original_price")
	}
	if p.OriginalPrice == 0 {
		p.OriginalPrice = p.Price
	}

	p.Image = image(rec)
	if p.Image == "" {
		p.Image = p.Category.Placeholder()
	}
	return p
}

// NormalizeAll converts every record and drops records whose id repeats an
// earlier one, keeping ids unique within the collection.
func (n *Normalizer) NormalizeAll(recs []payload.Record, hint models.Category) []models.Product {
	out := make([]models.Product, 0, len(recs))
	for _, rec := range recs {
		out = append(out, n.Normalize(rec, hint))
	}
	return Dedupe(out)
}

// Dedupe returns products with duplicate ids removed, first occurrence wins.
func Dedupe(products []models.Product) []models.Product {
	seen := make(map[string]struct{}, len(products))
	out := make([]models.Product, 0, len(products))
	for i := range products {
		if _, dup := seen[products[i].ID]; dup {
			continue
		}
		seen[products[i].ID] = struct{}{}
		out = append(out, products[i])
	}
	return out
}

func (n *Normalizer) category(rec payload.Record, hint models.Category) models.Category {
	if raw := firstString(rec, "category", "type"); raw != "" {
		if c, ok := n.categories.Lookup(raw); ok {
			return c
		}
	}
	if hint == "" {
		return models.CategoryUnknown
	}
	return hint
}

// offers keeps every object-shaped offer; invalid prices are retained for
// display but excluded from aggregation by offerPrices.
func offers(raw []any) []models.Offer {
	out := make([]models.Offer, 0, len(raw))
	for _, el := range raw {
		m := asMap(el)
		if m == nil {
			continue
		}
		o := models.Offer{
			Retailer: retailerName(m),
			URL:      firstString(m, "url", "link", "product_url"),
			SaleEnds: firstString(m, "saleEnds", "sale_ends"),
			LogoURL:  firstString(m, "logoUrl", "logo_url", "logo"),
		}
		o.Price, _ = firstFloat(m, "price", "amount", "salePrice")
		o.OriginalPrice, _ = firstFloat(m, "originalPrice", "original_price", "wasPrice")
		out = append(out, o)
	}
	return out
}

func retailerName(m map[string]any) string {
	if r := asMap(m["retailer"]); r != nil {
		return firstString(r, "name", "title")
	}
	return firstString(m, "retailer", "store", "retailer_name", "seller")
}

// offerPrices returns the minimum valid price and the maximum valid
// original price. Both are 0 when no offer has a positive price.
func offerPrices(offers []models.Offer) (price, original float64) {
	for i := range offers {
		o := offers[i]
		if o.Price <= 0 {
			continue
		}
		if price == 0 || o.Price < price {
			price = o.Price
		}
		if o.OriginalPrice > original {
			original = o.OriginalPrice
		}
	}
	return price, original
}

func image(rec payload.Record) string {
	candidates := []string{
		asString(rec["image"]),
		asString(rec["image_url"]),
		asString(rec["imageUrl"]),
	}
	if imgs := asList(rec["images"]); len(imgs) > 0 {
		if m := asMap(imgs[0]); m != nil {
			candidates = append(candidates, firstString(m, "url", "src"))
		} else {
			candidates = append(candidates, asString(imgs[0]))
		}
	}
	candidates = append(candidates, asString(rec["thumbnail"]))

	for _, c := range candidates {
		if resolvable(c) {
			return c
		}
	}
	return ""
}

func resolvable(u string) bool {
	lower := strings.ToLower(u)
	return strings.HasPrefix(lower, "https://") ||
		strings.HasPrefix(lower, "http://") ||
		strings.HasPrefix(u, "/")
}

// specs returns the record's spec tree. A top-level "os" string is carried
// into the tree under "os" so spec filters can find it.
func specs(rec payload.Record) map[string]any {
	tree := asMap(rec["specs"])
	if tree == nil {
		tree = asMap(rec["specifications"])
	}
	if tree == nil {
		tree = map[string]any{}
	}
	if osName := asString(rec["os"]); osName != "" {
		if _, ok := tree["os"]; !ok {
			tree = maps.Clone(tree)
			tree["os"] = osName
		}
	}
	return tree
}

func randomToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:idTokenLen]
}
