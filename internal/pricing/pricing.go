// Package pricing derives display prices from a product's retailer offers.
package pricing

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/HerbHall/pricescout/pkg/models"
)

// NotAvailable is shown in place of a price when no offer has one.
const NotAvailable = "Price not available"

// Valid reports whether an offer price participates in aggregation.
func Valid(price float64) bool {
	return price > 0 && !math.IsInf(price, 0) && !math.IsNaN(price)
}

// LowestPrice returns the lowest valid offer price, or 0 when no offer has a
// positive finite price. 0 sorts before every real price.
func LowestPrice(p *models.Product) float64 {
	low, _ := Lowest(p)
	return low
}

// Lowest returns the lowest valid offer price and whether one exists.
func Lowest(p *models.Product) (float64, bool) {
	var (
		low   float64
		found bool
	)
	for i := range p.Offers {
		price := p.Offers[i].Price
		if !Valid(price) {
			continue
		}
		if !found || price < low {
			low, found = price, true
		}
	}
	return low, found
}

// HighestPrice returns the highest valid offer price, or 0.
func HighestPrice(p *models.Product) float64 {
	var high float64
	for i := range p.Offers {
		if price := p.Offers[i].Price; Valid(price) && price > high {
			high = price
		}
	}
	return high
}

// RetailerCount returns the number of distinct retailers with a valid price.
func RetailerCount(p *models.Product) int {
	seen := make(map[string]struct{}, len(p.Offers))
	for i := range p.Offers {
		if !Valid(p.Offers[i].Price) {
			continue
		}
		seen[strings.ToLower(strings.TrimSpace(p.Offers[i].Retailer))] = struct{}{}
	}
	return len(seen)
}

// Savings returns OriginalPrice minus the lowest price when positive.
func Savings(p *models.Product) float64 {
	low, ok := Lowest(p)
	if !ok || p.OriginalPrice <= low {
		return 0
	}
	return p.OriginalPrice - low
}

// SavingsPercent returns Savings as a whole percentage of OriginalPrice.
func SavingsPercent(p *models.Product) int {
	s := Savings(p)
	if s == 0 {
		return 0
	}
	return int(math.Round(s / p.OriginalPrice * 100))
}

var printer = message.NewPrinter(language.English)

// FormatPrice renders a price with the currency symbol and thousands
// separators. Non-positive prices render as NotAvailable.
func FormatPrice(symbol string, price float64) string {
	if !Valid(price) {
		return NotAvailable
	}
	if price == math.Trunc(price) {
		return symbol + printer.Sprintf("%d", int64(price))
	}
	return symbol + printer.Sprintf("%.2f", price)
}

// ParseAmount parses a user-entered amount such as "R1,299.50".
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeftFunc(s, func(r rune) bool { return (r < '0' || r > '9') && r != '.' })
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !Valid(f) {
		return 0, false
	}
	return f, true
}
