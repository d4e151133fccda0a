package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/HerbHall/pricescout/internal/controller"
	"github.com/HerbHall/pricescout/internal/filter"
	"github.com/HerbHall/pricescout/internal/sorting"
)

type browseOptions struct {
	category string
	brands   []string
	os       []string
	features []string
	price    string
	sort     string
	page     int
	reset    bool
}

func newBrowseCmd() *cobra.Command {
	var opts browseOptions
	cmd := &cobra.Command{
		Use:   "browse <page>",
		Short: "Show one page of a category with the saved or given filters.",
		Long: `Show one page of a category. Pages are smartphones, tablets, audio and gaming.
Filters given as flags replace the saved selection for their group and are
saved for the next run.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, args[0], opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.category, "category", "", "category within the page, or \"all\" for every category")
	f.StringSliceVar(&opts.brands, "brand", nil, "brands to show")
	f.StringSliceVar(&opts.os, "os", nil, "operating systems (or types on audio and gaming pages)")
	f.StringSliceVar(&opts.features, "feature", nil, "feature tags, e.g. wireless,noise-cancelling")
	f.StringVar(&opts.price, "price", "", "price range, e.g. 0-3000 or 20000+")
	f.StringVar(&opts.sort, "sort", "", "sort order: relevance, name, price-low, price-high")
	f.IntVar(&opts.page, "page", 0, "page number")
	f.BoolVar(&opts.reset, "reset", false, "clear saved filters first")
	return cmd
}

func runBrowse(cmd *cobra.Command, pageName string, opts browseOptions) error {
	a := appFrom(cmd)
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	sel, err := a.selection(pageName, opts.category)
	if err != nil {
		return err
	}
	c, err := a.controller(sel)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Load(ctx); err != nil {
		renderView(out, c.View(), a.settings.API.Currency)
		return err
	}
	if opts.reset {
		c.Reset(ctx)
	}

	var groups []filter.Group
	flags := cmd.Flags()
	for _, g := range []struct {
		flag   string
		group  filter.Group
		values []string
	}{
		{"brand", filter.GroupBrand, opts.brands},
		{"os", filter.GroupOS, opts.os},
		{"feature", filter.GroupFeature, opts.features},
	} {
		if flags.Changed(g.flag) {
			stageExactly(c, g.group, g.values)
			groups = append(groups, g.group)
		}
	}
	if flags.Changed("price") {
		if c.Staged().PriceRange != opts.price {
			c.SelectPriceRange(opts.price)
		}
		groups = append(groups, filter.GroupPrice)
	}
	if len(groups) > 0 {
		c.Apply(ctx, groups...)
	}

	if opts.sort != "" {
		if err := c.SetSort(ctx, sorting.Key(opts.sort)); err != nil {
			return err
		}
	}
	if opts.page > 0 && !c.GoToPage(ctx, opts.page) {
		fmt.Fprintf(cmd.ErrOrStderr(), "page %d is out of range; staying on page %d\n", opts.page, c.View().Page)
	}

	renderView(out, c.View(), a.settings.API.Currency)
	return nil
}

// stageExactly toggles staged values of g until they equal values.
func stageExactly(c *controller.Controller, g filter.Group, values []string) {
	want := filter.NewSet(values...)
	staged := c.Staged()
	var have filter.Set
	switch g {
	case filter.GroupBrand:
		have = staged.Brands
	case filter.GroupOS:
		have = staged.OS
	case filter.GroupFeature:
		have = staged.Features
	default:
		return
	}
	for v := range have {
		if !want.Has(v) {
			c.Toggle(g, v)
		}
	}
	for v := range want {
		if !have.Has(v) {
			c.Toggle(g, v)
		}
	}
}
