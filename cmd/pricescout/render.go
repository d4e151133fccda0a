package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/HerbHall/pricescout/internal/controller"
	"github.com/HerbHall/pricescout/internal/filter"
	"github.com/HerbHall/pricescout/internal/metrics"
	"github.com/HerbHall/pricescout/internal/pricing"
	"github.com/HerbHall/pricescout/pkg/models"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

var rightAligned = []table.ColumnConfig{
	{Name: "Price", Align: text.AlignRight},
	{Name: "Was", Align: text.AlignRight},
	{Name: "Retailers", Align: text.AlignRight},
}

func renderView(w io.Writer, v controller.View, currency string) {
	if v.Status == controller.StatusError {
		fmt.Fprintf(w, "Could not load %s: %v\n", v.Selection.Key(), v.Err)
		fmt.Fprintln(w, "Run the command again to retry.")
		return
	}

	t := newTable(w)
	t.SetTitle(fmt.Sprintf("%s  (page %d of %d, %d of %d products)",
		v.Selection.Key(), v.Page, v.TotalPages, v.Matches, v.Loaded))
	t.AppendHeader(table.Row{"ID", "Name", "Brand", "Price", "Was", "Retailers", "Saved"})
	t.SetColumnConfigs(rightAligned)
	for _, it := range v.Items {
		name := it.Name
		if it.InWishlist {
			name = "* " + name
		}
		t.AppendRow(table.Row{
			it.ID,
			name,
			it.Brand,
			pricing.FormatPrice(currency, pricing.LowestPrice(&it.Product)),
			wasPrice(currency, &it.Product),
			pricing.RetailerCount(&it.Product),
			it.InWishlist,
		})
	}
	if len(v.Items) == 0 {
		t.AppendRow(table.Row{"", "No products match the current filters."})
	}
	t.Render()

	if len(v.Active) > 0 {
		parts := make([]string, len(v.Active))
		for i, s := range v.Active {
			parts[i] = string(s.Group) + "=" + s.Value
		}
		fmt.Fprintf(w, "Filters: %s\n", strings.Join(parts, ", "))
	}
	fmt.Fprintf(w, "Sort: %s\n", v.Sort)
	renderFacets(w, v.Facets)
	if len(v.FailedSources) > 0 {
		names := make([]string, len(v.FailedSources))
		for i, c := range v.FailedSources {
			names[i] = string(c)
		}
		fmt.Fprintf(w, "Unavailable: %s\n", strings.Join(names, ", "))
	}
}

func wasPrice(currency string, p *models.Product) string {
	if pricing.Savings(p) == 0 {
		return ""
	}
	return fmt.Sprintf("%s (-%d%%)", pricing.FormatPrice(currency, p.OriginalPrice), pricing.SavingsPercent(p))
}

func renderFacets(w io.Writer, f filter.Facets) {
	line := func(label string, opts []filter.Option) {
		if len(opts) == 0 {
			return
		}
		parts := make([]string, len(opts))
		for i, o := range opts {
			parts[i] = fmt.Sprintf("%s (%d)", o.Label, o.Count)
		}
		fmt.Fprintf(w, "%s: %s\n", label, strings.Join(parts, ", "))
	}
	line("Brands", f.Brands)
	line("OS", f.OS)
	line("Features", f.Features)
}

func renderProduct(w io.Writer, p models.Product, currency string) {
	fmt.Fprintf(w, "%s  %s\n", p.Brand, p.Name)
	fmt.Fprintf(w, "ID: %s  Category: %s\n", p.ID, p.Category)
	fmt.Fprintf(w, "Lowest: %s", pricing.FormatPrice(currency, pricing.LowestPrice(&p)))
	if s := pricing.Savings(&p); s > 0 {
		fmt.Fprintf(w, "  (save %s)", pricing.FormatPrice(currency, s))
	}
	fmt.Fprintln(w)
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}

	offers := make([]models.Offer, len(p.Offers))
	copy(offers, p.Offers)
	sort.SliceStable(offers, func(i, j int) bool { return offers[i].Price < offers[j].Price })

	t := newTable(w)
	t.AppendHeader(table.Row{"Retailer", "Price", "Was", "Sale ends", "URL"})
	t.SetColumnConfigs(rightAligned)
	for _, o := range offers {
		was := ""
		if o.OriginalPrice > o.Price {
			was = pricing.FormatPrice(currency, o.OriginalPrice)
		}
		t.AppendRow(table.Row{o.Retailer, pricing.FormatPrice(currency, o.Price), was, o.SaleEnds, o.URL})
	}
	t.Render()
}

func renderMetrics(w io.Writer, m *metrics.Metrics) error {
	samples, err := m.Snapshot()
	if err != nil {
		return err
	}
	t := newTable(w)
	t.SetTitle("metrics")
	t.AppendHeader(table.Row{"Name", "Labels", "Value"})
	for _, s := range samples {
		keys := make([]string, 0, len(s.Labels))
		for k := range s.Labels {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		labels := make([]string, len(keys))
		for i, k := range keys {
			labels[i] = k + "=" + s.Labels[k]
		}
		t.AppendRow(table.Row{s.Name, strings.Join(labels, " "), s.Value})
	}
	t.Render()
	return nil
}
