// Command greenshop is a terminal client for the green store API.
package main

import (
	"context"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/flicky/green-store/internal/client"
)

type app struct {
	apiURL    string
	tokenPath string
	session   *client.Session
	out       io.Writer
}

func main() {
	_ = godotenv.Load()

	a := &app{out: os.Stdout}
	root := a.rootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		client.Toast(os.Stderr, err, "")
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "greenshop",
		Short:         "Shop eco-friendly products and track your impact",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context())
		},
	}

	defaultURL := os.Getenv("GREENSHOP_API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&a.apiURL, "api", defaultURL, "API base URL")
	root.PersistentFlags().StringVar(&a.tokenPath, "token-file", "", "where the login token is kept (default: user config dir)")

	root.AddCommand(
		a.loginCmd(),
		a.registerCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.productsCmd(),
		a.cartCmd(),
		a.checkoutCmd(),
		a.ordersCmd(),
		a.cancelCmd(),
		a.dashboardCmd(),
		a.leaderboardCmd(),
		a.impactCmd(),
		a.prefsCmd(),
		a.adminCmd(),
	)
	return root
}

// open builds the session and rehydrates it from the stored token.
func (a *app) open(ctx context.Context) error {
	path := a.tokenPath
	if path == "" {
		p, err := client.DefaultTokenPath()
		if err != nil {
			return err
		}
		path = p
	}
	a.session = client.NewSession(client.New(a.apiURL, nil), client.FileTokenStore{Path: path})
	return a.session.Restore(ctx)
}

func (a *app) api() *client.Client { return a.session.Client }

func (a *app) ok(format string, args ...any) {
	client.Toast(a.out, nil, format, args...)
}
