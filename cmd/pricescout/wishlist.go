package main

import (
	"errors"
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/HerbHall/pricescout/internal/pricing"
)

var errSignedOut = errors.New("sign in first: pass --token or set PRICESCOUT_AUTH_TOKEN")

func requireSession(a *app) error {
	if _, ok := a.session.Current(); !ok {
		return errSignedOut
	}
	return nil
}

func newWishlistCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wishlist",
		Short: "Manage the wishlist.",
	}

	var categoryName string
	add := &cobra.Command{
		Use:   "add <id>",
		Short: "Add a product to the wishlist.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := requireSession(a); err != nil {
				return err
			}
			cat, err := a.categoryFlag(categoryName)
			if err != nil {
				return err
			}
			p, err := a.product(cmd.Context(), args[0], cat)
			if err != nil {
				return err
			}
			if _, err := a.wishlist.Add(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to your wishlist.\n", p.Name)
			return nil
		},
	}
	add.Flags().StringVar(&categoryName, "category", "smartphones", "category the product belongs to")

	remove := &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a product from the wishlist.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := requireSession(a); err != nil {
				return err
			}
			if err := a.wishlist.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %s from your wishlist.\n", args[0])
			return nil
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List the wishlist.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if err := requireSession(a); err != nil {
				return err
			}
			items, err := a.wishlist.List(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Name", "Brand", "Price", "Added"})
			t.SetColumnConfigs(rightAligned)
			for _, it := range items {
				added := ""
				if !it.AddedAt.IsZero() {
					added = it.AddedAt.Format("2006-01-02")
				}
				t.AppendRow(table.Row{
					it.ProductID,
					it.Product.Name,
					it.Product.Brand,
					pricing.FormatPrice(a.settings.API.Currency, pricing.LowestPrice(&it.Product)),
					added,
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.AddCommand(add, remove, list)
	return cmd
}
