package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/HerbHall/pricescout/pkg/models"
)

// WriteCSV writes a header row followed by one row per product.
func WriteCSV(w io.Writer, products []models.Product) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns()); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}
	for i := range products {
		if err := cw.Write(toRow(&products[i]).values()); err != nil {
			return fmt.Errorf("export: write csv row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}
