package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dtroode/authsession/internal/client"
	"github.com/dtroode/authsession/internal/client/config"
)

var errNotLoggedIn = errors.New("not logged in")

type globalFlags struct {
	server  string
	state   string
	timeout time.Duration
}

func rootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "authctl",
		Short: "Auth session client",
		Long: `authctl signs in against the auth server and keeps the session
between runs. The refresh token is stored in a local SQLite file, the
access token only lives for the duration of one command.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&flags.server, "server", "", "Auth server URL (overrides AUTHCTL_SERVER_URL)")
	cmd.PersistentFlags().StringVar(&flags.state, "state", "", "State database path (overrides AUTHCTL_STATE_DSN)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 0, "Per-request timeout (overrides AUTHCTL_REQUEST_TIMEOUT)")

	cmd.AddCommand(
		registerCmd(flags),
		loginCmd(flags),
		logoutCmd(flags),
		meCmd(flags),
		refreshCmd(flags),
		statusCmd(flags),
	)

	return cmd
}

// withApp builds the app for one command and closes it afterwards.
func withApp(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.NewConfig()
	if err != nil {
		return err
	}
	if flags.server != "" {
		cfg.ServerURL = flags.server
	}
	if flags.state != "" {
		cfg.StateDSN = flags.state
	}
	if flags.timeout > 0 {
		cfg.RequestTimeout = flags.timeout
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func registerCmd(flags *globalFlags) *cobra.Command {
	var email, displayName string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				email, password, err := credentials(cmd, email)
				if err != nil {
					return err
				}
				user, err := a.session.Register(ctx, email, password, displayName)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", user.Email, user.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&displayName, "display-name", "", "Display name")
	return cmd
}

func loginCmd(flags *globalFlags) *cobra.Command {
	var email string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				email, password, err := credentials(cmd, email)
				if err != nil {
					return err
				}
				user, err := a.session.Login(ctx, email, password)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", user.Email)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Account email")
	return cmd
}

func logoutCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				if err := a.session.Logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
				return nil
			})
		},
	}
}

func meCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				a.session.Bootstrap(ctx)
				user, err := a.session.Me(ctx)
				if client.IsUnauthorized(err) {
					return errNotLoggedIn
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "id:    %s\n", user.ID)
				fmt.Fprintf(out, "email: %s\n", user.Email)
				if user.DisplayName != "" {
					fmt.Fprintf(out, "name:  %s\n", user.DisplayName)
				}
				return nil
			})
		},
	}
}

func refreshCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Rotate the stored refresh token",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				token, err := a.coordinator.RefreshAccessToken(ctx)
				if client.IsUnauthorized(err) {
					return errNotLoggedIn
				}
				if err != nil {
					return err
				}
				if token == "" {
					return errNotLoggedIn
				}

				exp, err := a.handle.ExpiresAt(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Session refreshed, valid until %s\n", exp.Local().Format(time.RFC1123))
				return nil
			})
		},
	}
}

func statusCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a session is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, flags, func(ctx context.Context, a *app) error {
				exp, err := a.handle.ExpiresAt(ctx)
				if err != nil {
					return err
				}
				token, err := a.handle.GetValidRefreshToken(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if token == "" {
					fmt.Fprintln(out, "Not logged in")
					return nil
				}
				fmt.Fprintf(out, "Logged in, session valid until %s\n", exp.Local().Format(time.RFC1123))
				return nil
			})
		},
	}
}

// credentials returns email, prompting when empty, and a prompted password.
func credentials(cmd *cobra.Command, email string) (string, string, error) {
	r := bufio.NewReader(cmd.InOrStdin())
	w := cmd.ErrOrStderr()

	if email == "" {
		var err error
		email, err = promptLine(r, w, "Email")
		if err != nil {
			return "", "", fmt.Errorf("failed to read email: %w", err)
		}
	}
	password, err := promptPassword(r, w)
	if err != nil {
		return "", "", fmt.Errorf("failed to read password: %w", err)
	}
	return email, password, nil
}
