package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/example/internship-portal/internal/application"
)

func loginCmd(a *app) *cobra.Command {
	var (
		name     string
		email    string
		password string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store a local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if password == "" {
				pw, err := a.promptPassword(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = pw
			}

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			result, err := a.sessionManager(store, nil).SignIn(ctx, application.FormInput{
				Name:     name,
				Email:    email,
				Password: password,
			}, remember)
			if err != nil {
				var verr *application.ValidationError
				if errors.As(err, &verr) {
					printFieldErrors(cmd.ErrOrStderr(), verr.FieldErrors)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Logged in as %s <%s>\n", result.Session.User.Name, result.Session.User.Email)
			fmt.Fprintf(out, "Session %s expires %s\n", result.Session.SessionID, humanize.RelTime(result.Session.ExpiryTime, a.clock.Now(), "ago", "from now"))
			fmt.Fprintf(out, "Continue to %s\n", result.Redirect)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (prompted when omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Keep the session for the remember-me lifetime")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			if err := a.sessionManager(store, nil).Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func whoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			info, err := a.sessionManager(store, nil).SessionInfo(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if info == nil {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}
			now := a.clock.Now()
			fmt.Fprintf(out, "%s <%s>\n", info.User.Name, info.User.Email)
			fmt.Fprintf(out, "Session:   %s\n", info.SessionID)
			fmt.Fprintf(out, "Remember:  %t\n", info.RememberMe)
			fmt.Fprintf(out, "Expires:   %s (%s left)\n", humanize.RelTime(now.Add(info.Remaining), now, "ago", "from now"), info.Remaining.Round(time.Second))
			return nil
		},
	}
}

func extendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "extend",
		Short: "Restart the expiry window of the local session",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer a.closeStore(store)

			extended, err := a.sessionManager(store, nil).ExtendSession(cmd.Context())
			if err != nil {
				return err
			}
			if !extended {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Session extended.")
			return nil
		},
	}
}

// promptPassword reads a password without echo from a terminal, or one line
// from a pipe.
func (a *app) promptPassword(w io.Writer) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && a.isTerminal(int(f.Fd())) {
		fmt.Fprint(w, "Password: ")
		pw, err := a.readPassword(int(f.Fd()))
		fmt.Fprintln(w)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func printFieldErrors(w io.Writer, fields map[string]string) {
	for _, field := range []string{"name", "email", "password"} {
		if msg, ok := fields[field]; ok {
			fmt.Fprintf(w, "  %s: %s\n", field, msg)
		}
	}
}
