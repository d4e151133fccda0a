package models

import "time"

// PriceAlert is a server-owned request to be notified when a product drops
// to TargetPrice.
type PriceAlert struct {
	ID           string    `json:"id,omitempty"`
	ProductID    string    `json:"productId"`
	ProductName  string    `json:"productName"`
	Category     Category  `json:"category"`
	TargetPrice  float64   `json:"targetPrice"`
	CurrentPrice float64   `json:"currentPrice"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// WishlistItem is a server-owned wishlist entry. Product carries enough
// identity to re-render a card without refetching the catalog.
type WishlistItem struct {
	ProductID string    `json:"productId"`
	Product   Product   `json:"productData"`
	AddedAt   time.Time `json:"addedAt,omitempty"`
}
