// Package export writes a product listing as CSV or XLSX.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/HerbHall/pricescout/internal/pricing"
	"github.com/HerbHall/pricescout/pkg/models"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat converts a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("export: unknown format %q", s)
}

// FormatFromPath picks the format from a file extension, defaulting to CSV.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Write encodes products in format f.
func Write(w io.Writer, f Format, products []models.Product) error {
	switch f {
	case FormatCSV:
		return WriteCSV(w, products)
	case FormatXLSX:
		return WriteXLSX(w, products)
	}
	return fmt.Errorf("export: unknown format %q", f)
}

// columns returns the column headers shared by every format.
func columns() []string {
	return []string{
		"id", "name", "brand", "category", "lowest_price", "highest_price",
		"original_price", "savings", "retailers", "best_retailer", "best_url",
	}
}

// row is one exported product. Prices are 0 when unknown.
type row struct {
	ID           string
	Name         string
	Brand        string
	Category     string
	Lowest       float64
	Highest      float64
	Original     float64
	Savings      float64
	Retailers    int
	BestRetailer string
	BestURL      string
}

func toRow(p *models.Product) row {
	r := row{
		ID:        p.ID,
		Name:      p.Name,
		Brand:     p.Brand,
		Category:  string(p.Category),
		Lowest:    pricing.LowestPrice(p),
		Highest:   pricing.HighestPrice(p),
		Original:  p.OriginalPrice,
		Savings:   pricing.Savings(p),
		Retailers: pricing.RetailerCount(p),
	}
	if best, ok := bestOffer(p.Offers); ok {
		r.BestRetailer = best.Retailer
		r.BestURL = best.URL
	}
	return r
}

// bestOffer is the cheapest offer with a valid price.
func bestOffer(offers []models.Offer) (models.Offer, bool) {
	var (
		best  models.Offer
		found bool
	)
	for _, o := range offers {
		if !pricing.Valid(o.Price) {
			continue
		}
		if !found || o.Price < best.Price {
			best, found = o, true
		}
	}
	return best, found
}

// values renders r in columns order.
func (r row) values() []string {
	return []string{
		r.ID,
		r.Name,
		r.Brand,
		r.Category,
		amount(r.Lowest),
		amount(r.Highest),
		amount(r.Original),
		amount(r.Savings),
		strconv.Itoa(r.Retailers),
		r.BestRetailer,
		r.BestURL,
	}
}

// amount formats a price, leaving unknown prices blank.
func amount(v float64) string {
	if v <= 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
