package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/HerbHall/pricescout/internal/pricing"
)

func newAlertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alert",
		Short: "Manage price alerts.",
	}

	var categoryName, target string
	create := &cobra.Command{
		Use:   "create <id>",
		Short: "Get notified when a product drops to a target price.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := requireSession(a); err != nil {
				return err
			}
			var amount float64
			if target != "" {
				v, ok := pricing.ParseAmount(target)
				if !ok {
					return fmt.Errorf("invalid target price %q", target)
				}
				amount = v
			}
			cat, err := a.categoryFlag(categoryName)
			if err != nil {
				return err
			}
			p, err := a.product(cmd.Context(), args[0], cat)
			if err != nil {
				return err
			}
			alert, err := a.alerts.Create(cmd.Context(), p, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Alert set for %s at %s (now %s).\n",
				alert.ProductName,
				pricing.FormatPrice(a.settings.API.Currency, alert.TargetPrice),
				pricing.FormatPrice(a.settings.API.Currency, alert.CurrentPrice))
			return nil
		},
	}
	create.Flags().StringVar(&categoryName, "category", "smartphones", "category the product belongs to")
	create.Flags().StringVar(&target, "target", "", "target price; defaults to the current lowest price")

	list := &cobra.Command{
		Use:   "list",
		Short: "List price alerts.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if err := requireSession(a); err != nil {
				return err
			}
			alerts, err := a.alerts.List(cmd.Context())
			if err != nil {
				return err
			}
			cur := a.settings.API.Currency
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Product", "Category", "Target", "Current"})
			for _, al := range alerts {
				t.AppendRow(table.Row{
					al.ID,
					al.ProductName,
					al.Category,
					pricing.FormatPrice(cur, al.TargetPrice),
					pricing.FormatPrice(cur, al.CurrentPrice),
				})
			}
			t.Render()
			return nil
		},
	}

	cmd.AddCommand(create, list)
	return cmd
}
