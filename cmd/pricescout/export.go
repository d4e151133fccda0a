package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/HerbHall/pricescout/internal/export"
)

func newExportCmd() *cobra.Command {
	var categoryName, output, format string
	cmd := &cobra.Command{
		Use:   "export <page>",
		Short: "Export every product matching the saved filters as CSV or XLSX.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			f := export.FormatFromPath(output)
			if format != "" {
				var err error
				if f, err = export.ParseFormat(format); err != nil {
					return err
				}
			}

			sel, err := a.selection(args[0], categoryName)
			if err != nil {
				return err
			}
			c, err := a.controller(sel)
			if err != nil {
				return err
			}
			defer c.Close()
			if err := c.Load(ctx); err != nil {
				return err
			}
			products := c.Results()

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				file, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create %s: %w", output, err)
				}
				defer file.Close()
				w = file
			}
			if err := export.Write(w, f, products); err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d products to %s\n", len(products), output)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&categoryName, "category", "", "category within the page, or \"all\"")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file, or - for stdout")
	cmd.Flags().StringVar(&format, "format", "", "csv or xlsx; defaults to the output file extension")
	return cmd
}
