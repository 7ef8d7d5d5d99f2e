package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/flicky/green-store/internal/client"
	"github.com/flicky/green-store/internal/dto"
	"github.com/flicky/green-store/internal/model"
)

var errNotSignedIn = errors.New("not signed in; run `greenshop login` first")

// requireUser and requireAdmin are PreRunE guards. They run after the root's
// PersistentPreRunE has restored the session.
func (a *app) requireUser(*cobra.Command, []string) error {
	if !a.session.SignedIn() {
		return errNotSignedIn
	}
	return nil
}

func (a *app) requireAdmin(cmd *cobra.Command, args []string) error {
	if err := a.requireUser(cmd, args); err != nil {
		return err
	}
	if !a.session.IsAdmin() {
		return errors.New("admin access required")
	}
	return nil
}

func (a *app) loginCmd() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and remember the session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			a.ok("Signed in as %s", a.session.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func (a *app) registerCmd() *cobra.Command {
	var req dto.RegisterRequest
	var admin bool
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and sign in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if admin {
				req.Role = model.RoleAdmin
			}
			if err := a.session.Register(cmd.Context(), req); err != nil {
				return err
			}
			a.ok("Welcome, %s", a.session.User.Name)
			return nil
		},
	}
	cmd.Flags().StringVarP(&req.Name, "name", "n", "", "display name")
	cmd.Flags().StringVarP(&req.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&req.Password, "password", "p", "", "password (at least 8 characters)")
	cmd.Flags().BoolVar(&admin, "admin", false, "request an admin account")
	for _, f := range []string{"name", "email", "password"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(*cobra.Command, []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.ok("Signed out")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		Short:   "Show the signed-in account",
		PreRunE: a.requireUser,
		RunE: func(*cobra.Command, []string) error {
			return client.RenderUser(a.out, a.session.User)
		},
	}
}
