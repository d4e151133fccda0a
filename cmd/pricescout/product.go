package main

import (
	"github.com/spf13/cobra"
)

func newProductCmd() *cobra.Command {
	var categoryName string
	cmd := &cobra.Command{
		Use:   "product <id>",
		Short: "Show one product and every retailer offer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			cat, err := a.categoryFlag(categoryName)
			if err != nil {
				return err
			}
			p, err := a.product(cmd.Context(), args[0], cat)
			if err != nil {
				return err
			}
			renderProduct(cmd.OutOrStdout(), p, a.settings.API.Currency)
			return nil
		},
	}
	cmd.Flags().StringVar(&categoryName, "category", "smartphones", "category the product belongs to")
	return cmd
}
