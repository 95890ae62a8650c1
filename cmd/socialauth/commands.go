package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbukum/socialauth/auth"
	"github.com/kbukum/socialauth/keystore"
	"github.com/kbukum/socialauth/provider"
	"github.com/kbukum/socialauth/version"
)

type rootFlags struct {
	configFile string
	envFile    string
	uxMode     string
	debug      bool
	json       bool
	showKey    bool
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "socialauth",
		Short:         "Log in with a social provider and reconstruct the account key",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&f.configFile, "config", "", "config file (default: ./config.yml or the user config dir)")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", "", ".env file to load")
	root.PersistentFlags().StringVar(&f.uxMode, "ux-mode", "", "popup|redirect, overrides auth.ux_mode")
	root.PersistentFlags().BoolVar(&f.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&f.json, "json", false, "print JSON")
	root.PersistentFlags().BoolVar(&f.showKey, "show-key", false, "print the private key unmasked")

	root.AddCommand(
		newLoginCmd(f),
		newOTPCmd(f),
		newWhoamiCmd(f),
		newLogoutCmd(f),
		newPubkeyCmd(f),
		newLoginsCmd(f),
		newVersionCmd(f),
	)
	return root
}

// withProvider loads config, starts the app and runs fn with the provider.
func withProvider(cmd *cobra.Command, f *rootFlags, fn func(ctx context.Context, a *app, p *auth.Provider, out *printer) error) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	out := &printer{w: cmd.OutOrStdout(), json: f.json, showKey: f.showKey}
	return a.runTask(cmd.Context(), func(ctx context.Context, p *auth.Provider) error {
		return fn(ctx, a, p, out)
	})
}

func newLoginCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:       "login <provider>",
		Short:     "Log in with a social provider",
		Args:      cobra.ExactArgs(1),
		ValidArgs: loginTypeNames(),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := provider.ParseLoginType(args[0])
			if err != nil {
				return err
			}
			return withProvider(cmd, f, func(ctx context.Context, a *app, p *auth.Provider, out *printer) error {
				s, err := p.LoginWithSocial(ctx, t)
				if err != nil {
					return err
				}
				if s == nil {
					if s, err = awaitRedirect(ctx, cmd, a, p); err != nil {
						return err
					}
				}
				return out.session(s)
			})
		},
	}
}

func newOTPCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "otp <email>",
		Short: "Log in with a one-time link sent by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProvider(cmd, f, func(ctx context.Context, a *app, p *auth.Provider, out *printer) error {
				s, err := p.LoginWithOTP(ctx, args[0])
				if err != nil {
					return err
				}
				if s == nil {
					if s, err = awaitRedirect(ctx, cmd, a, p); err != nil {
						return err
					}
				}
				return out.session(s)
			})
		},
	}
}

// awaitRedirect waits for the browser to come back to the loopback page
// and completes the redirect-mode login.
func awaitRedirect(ctx context.Context, cmd *cobra.Command, a *app, p *auth.Provider) (*auth.StoredSession, error) {
	fmt.Fprintln(cmd.ErrOrStderr(), "Waiting for the provider to redirect back...")
	if _, err := a.server.Page().Wait(ctx); err != nil {
		return nil, err
	}
	if err := p.CheckRedirectMode(ctx); err != nil {
		return nil, err
	}
	return p.GetUserInfo()
}

func newWhoamiCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(cmd, f, func(_ context.Context, _ *app, p *auth.Provider, out *printer) error {
				s, err := p.GetUserInfo()
				if err != nil {
					return err
				}
				return out.session(s)
			})
		},
	}
}

func newLogoutCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(cmd, f, func(ctx context.Context, _ *app, p *auth.Provider, out *printer) error {
				if err := p.Logout(ctx); err != nil {
					return err
				}
				return out.line("logged out")
			})
		},
	}
}

func newPubkeyCmd(f *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "pubkey <id> <provider>",
		Short: "Show the public key of a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := provider.ParseLoginType(args[1])
			if err != nil {
				return err
			}
			kf, err := keystore.ParseFormat(format)
			if err != nil {
				return err
			}
			return withProvider(cmd, f, func(ctx context.Context, _ *app, p *auth.Provider, out *printer) error {
				key, err := p.GetPublicKey(ctx, args[0], t, kf)
				if err != nil {
					return err
				}
				if out.json {
					return out.value(key)
				}
				return out.line(key.String())
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", string(keystore.FormatPoint), "point|compressed|uncompressed")
	return cmd
}

func newLoginsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "logins",
		Short: "List the available login types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withProvider(cmd, f, func(ctx context.Context, _ *app, p *auth.Provider, out *printer) error {
				logins, err := p.GetAvailableLogins(ctx)
				if err != nil {
					return err
				}
				names := make([]string, len(logins))
				for i, t := range logins {
					names[i] = string(t)
				}
				return out.lines(names)
			})
		},
	}
}

func newVersionCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := &printer{w: cmd.OutOrStdout(), json: f.json}
			info := version.Get()
			if out.json {
				return out.value(info)
			}
			return out.line(info.String())
		},
	}
}

func loginTypeNames() []string {
	types := provider.LoginTypes()
	names := make([]string, 0, len(types))
	for _, t := range types {
		if t != provider.Passwordless {
			names = append(names, string(t))
		}
	}
	return names
}
