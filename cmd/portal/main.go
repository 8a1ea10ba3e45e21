// Package main provides the portal binary: the HTTP API plus local session and
// matching commands.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/example/internship-portal/internal/clock"
	"github.com/example/internship-portal/internal/config"
	"github.com/example/internship-portal/internal/logging"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "portal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{
		stdin:        os.Stdin,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
		readPassword: term.ReadPassword,
		isTerminal:   term.IsTerminal,
		clock:        clock.Real(),
	}
	if err := rootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app carries process-level dependencies shared by the subcommands.
type app struct {
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
	readPassword func(fd int) ([]byte, error)
	isTerminal   func(fd int) bool
	clock        clock.Clock

	cfg    config.Config
	logger *slog.Logger
}

func rootCmd(a *app) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Internship portal sessions and opportunity matching",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("log-level") {
				level, err := logging.ParseLevel(logLevel)
				if err != nil {
					return err
				}
				cfg.LogLevel = level
			}
			a.cfg = cfg

			format := logging.FormatText
			if cmd.Name() == "serve" {
				format = logging.FormatJSON
			}
			a.logger = logging.NewLogger(a.stderr, format, cfg.LogLevel)
			slog.SetDefault(a.logger)
			return nil
		},
	}

	cmd.SetIn(a.stdin)
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		serveCmd(a),
		loginCmd(a),
		logoutCmd(a),
		whoamiCmd(a),
		extendCmd(a),
		matchCmd(a),
		watchCmd(a),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (build: %s)\n", appName, Version, BuildTime)
			},
		},
	)
	return cmd
}
