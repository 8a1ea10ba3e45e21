package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/internship-portal/internal/application"
)

func watchCmd(a *app) *cobra.Command {
	var (
		page     string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Monitor the local session while viewing a page",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			if interval <= 0 {
				interval = a.cfg.MonitorInterval
			}
			out := cmd.OutOrStdout()
			monitor := application.NewMonitor(
				a.sessionManager(store, nil),
				application.StaticPage(page),
				printNavigator(out),
				interval,
				a.logger,
			)

			fmt.Fprintf(out, "Watching %s every %s\n", page, interval)
			if _, err := monitor.Check(ctx); err != nil {
				return err
			}
			return monitor.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&page, "page", "/profile.html", "Page being viewed")
	cmd.Flags().DurationVar(&interval, "interval", 0, "Check interval (defaults to PORTAL_MONITOR_INTERVAL)")
	return cmd
}

func printNavigator(w io.Writer) application.Navigator {
	return application.NavigatorFunc(func(_ context.Context, url string) error {
		_, err := fmt.Fprintf(w, "Session ended, redirecting to %s\n", url)
		return err
	})
}
