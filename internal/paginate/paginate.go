// Package paginate splits a product collection into fixed-size pages.
package paginate

import "github.com/HerbHall/pricescout/pkg/models"

// DefaultPageSize is used when a non-positive page size is requested.
const DefaultPageSize = 12

// Page is one page of a collection. Page numbers are 1-based.
type Page struct {
	Items      []models.Product `json:"items"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Total      int              `json:"total"`
}

// TotalPages returns ceil(total/pageSize), never less than 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// InRange reports whether page is a valid page number for total items.
func InRange(page, total, pageSize int) bool {
	return page >= 1 && page <= TotalPages(total, pageSize)
}

// Paginate returns the requested page. Out-of-range pages yield no items.
// Items share the backing array of products.
func Paginate(products []models.Product, page, pageSize int) Page {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	out := Page{
		Items:      []models.Product{},
		Page:       page,
		TotalPages: TotalPages(len(products), pageSize),
		Total:      len(products),
	}
	if !InRange(page, len(products), pageSize) {
		return out
	}
	start := (page - 1) * pageSize
	end := min(start+pageSize, len(products))
	out.Items = products[start:end:end]
	return out
}
