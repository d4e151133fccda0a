package models

// Category is one of the fixed product categories served by the catalog API.
type Category string

const (
	CategorySmartphones       Category = "smartphones"
	CategoryTablets           Category = "tablets"
	CategoryEarbuds           Category = "earbuds"
	CategorySoundbars         Category = "soundbars"
	CategoryPortableSpeakers  Category = "portable-speakers"
	CategoryBluetoothSpeakers Category = "bluetooth-speakers"
	CategoryHeadphones        Category = "headphones"
	CategoryHifiSystems       Category = "hifi-systems"
	CategoryGaming            Category = "gaming"
	CategoryUnknown           Category = "unknown"
)

// AudioCategories lists the categories shown on the audio page.
var AudioCategories = []Category{
	CategoryEarbuds,
	CategorySoundbars,
	CategoryPortableSpeakers,
	CategoryBluetoothSpeakers,
	CategoryHeadphones,
	CategoryHifiSystems,
}

// Offer is a single retailer's listing for a product.
type Offer struct {
	Retailer      string  `json:"retailer"`
	Price         float64 `json:"price"`
	OriginalPrice float64 `json:"originalPrice,omitempty"`
	URL           string  `json:"url"`
	SaleEnds      string  `json:"saleEnds,omitempty"`
	LogoURL       string  `json:"logoUrl,omitempty"`
}

// Product is the canonical product shape produced by the normalizer.
// Price is the lowest valid offer price and 0 when none is known.
type Product struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Brand         string         `json:"brand"`
	Category      Category       `json:"category"`
	Price         float64        `json:"price"`
	OriginalPrice float64        `json:"originalPrice"`
	Image         string         `json:"image"`
	Description   string         `json:"description,omitempty"`
	Offers        []Offer        `json:"offers"`
	Specs         map[string]any `json:"specs,omitempty"`
}
