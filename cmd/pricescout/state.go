package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/HerbHall/pricescout/internal/backup"
	"github.com/HerbHall/pricescout/internal/services"
	"github.com/HerbHall/pricescout/internal/version"
)

func newStateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect, clear, back up and restore saved filter views.",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list [page]",
		Short: "List saved views, optionally for one page.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			opts := services.ListOptions{Limit: limit}
			if len(args) == 1 {
				opts.Prefix = args[0] + ":"
			}
			res, err := a.states.List(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if len(res.Items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No saved views.")
				return nil
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader([]any{"View", "Updated"})
			for _, e := range res.Items {
				t.AppendRow([]any{e.Key, e.UpdatedAt.Local().Format("2006-01-02 15:04")})
			}
			t.AppendFooter([]any{"Total", res.Total})
			t.Render()
			return nil
		},
	}
	list.Flags().IntVar(&limit, "limit", 50, "maximum number of views to list")

	clearCmd := &cobra.Command{
		Use:   "clear <view>",
		Short: "Forget the saved filters of a view such as smartphones:all.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if err := a.states.Clear(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s.\n", args[0])
			return nil
		},
	}

	var output string
	backupCmd := &cobra.Command{
		Use:   "backup",
		Short: "Write the saved view database and config to a tar.gz archive.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			if a.db == nil {
				return fmt.Errorf("backup needs the sqlite state backend, not %s", a.settings.State.Backend)
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			m, err := backup.Archive(cmd.Context(), a.db, a.configFile, version.Short(), w)
			if err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%s).\n", output, strings.Join(m.Files, ", "))
			}
			return nil
		},
	}
	backupCmd.Flags().StringVarP(&output, "output", "o", "pricescout-backup.tar.gz", "archive path, or - for stdout")

	var (
		dir   string
		force bool
	)
	restore := &cobra.Command{
		Use:         "restore <archive>",
		Short:       "Extract a backup archive into a directory.",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"standalone": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			m, err := backup.Restore(cmd.Context(), f, dir, force)
			if errors.Is(err, backup.ErrExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %s into %s", strings.Join(m.Files, ", "), dir)
			if m.Version != "" {
				fmt.Fprintf(cmd.OutOrStdout(), " (written by %s)", m.Version)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
	restore.Flags().StringVar(&dir, "dir", ".", "directory to restore into")
	restore.Flags().BoolVar(&force, "force", false, "overwrite existing files")

	cmd.AddCommand(list, clearCmd, backupCmd, restore)
	return cmd
}
