package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HerbHall/pricescout/internal/config"
)

type appKey struct{}

// appFrom returns the app built by the root pre-run hook.
func appFrom(cmd *cobra.Command) *app {
	return cmd.Context().Value(appKey{}).(*app)
}

// newRootCmd builds the command tree. The returned function releases
// whatever the executed command opened.
func newRootCmd() (*cobra.Command, func()) {
	var (
		configPath  string
		showMetrics bool
		a           *app
	)

	root := &cobra.Command{
		Use:           "pricescout",
		Short:         "pricescout compares product prices across retailers.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if standalone(cmd) {
				return nil
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			for key, flag := range map[string]string{
				"api.base_url":  "api",
				"log.level":     "log-level",
				"log.format":    "log-format",
				"state.backend": "state",
				"auth.token":    "token",
			} {
				if err := cfg.Viper().BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
					return fmt.Errorf("bind --%s: %w", flag, err)
				}
			}
			a, err = newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a != nil && showMetrics {
				return renderMetrics(cmd.OutOrStdout(), a.metrics)
			}
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to a configuration file")
	pf.String("api", "", "catalog API base URL")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("log-format", "", "log format (console, json)")
	pf.String("state", "", "filter state backend (sqlite, redis, memory)")
	pf.String("token", "", "session token for wishlist and alerts")
	pf.BoolVar(&showMetrics, "metrics", false, "print request metrics after the command")

	root.AddCommand(
		newBrowseCmd(),
		newProductCmd(),
		newWishlistCmd(),
		newAlertCmd(),
		newExportCmd(),
		newStateCmd(),
		newVersionCmd(),
	)
	cleanup := func() {
		if a != nil {
			a.close()
			a = nil
		}
	}
	return root, cleanup
}

// standalone reports whether cmd runs without configuration, as the
// version, help and completion commands do.
func standalone(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations["standalone"] == "true" || c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return false
}

// execute runs the CLI and returns the process exit code.
func execute(ctx context.Context) int {
	root, cleanup := newRootCmd()
	defer cleanup()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
