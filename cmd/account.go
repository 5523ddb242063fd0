package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tickethub-cli/auth"
	"tickethub-cli/model"
	"tickethub-cli/service"
)

func newLoginCmd(env *environment) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to your TicketHub account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error
			if email == "" {
				if email, err = p.text("Email", "", required("Email")); err != nil {
					return err
				}
			}
			if password == "" {
				if password, err = p.secret("Password"); err != nil {
					return err
				}
			}

			session, err := env.auth.Login(cmd.Context(), email, password)
			if err != nil {
				if service.IsUnauthorized(err) {
					return errors.New("invalid email or password")
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", displayName(session.User), session.Role)
			return nil
		},
	}
	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&password, "password", "p", "", "account password (prompted when empty)")
	return cmd
}

func newRegisterCmd(env *environment) *cobra.Command {
	var account model.RegisterRequest
	var role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a TicketHub account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			var err error
			if account.FullName == "" {
				if account.FullName, err = p.text("Full name", "", required("Full name")); err != nil {
					return err
				}
			}
			if account.Email == "" {
				if account.Email, err = p.text("Email", "", required("Email")); err != nil {
					return err
				}
			}
			if account.Password == "" {
				if account.Password, err = p.secret("Password"); err != nil {
					return err
				}
			}
			if role != "" {
				account.Role = model.ParseRole(role)
				if account.Role == "" {
					return fmt.Errorf("unknown role %q, use USER or ADMIN", role)
				}
			}

			session, err := env.auth.Register(cmd.Context(), account)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Welcome, %s! You are logged in (%s).\n", displayName(session.User), session.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&account.FullName, "name", "", "full name")
	cmd.Flags().StringVarP(&account.Email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&account.Password, "password", "p", "", "password (prompted when empty)")
	cmd.Flags().StringVar(&account.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&role, "role", "", "USER or ADMIN")
	return cmd
}

func newLogoutCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved login",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.auth.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

func newWhoamiCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := env.auth.Session()
			if err := session.Valid(env.now()); err != nil {
				if errors.Is(err, auth.ErrNotLoggedIn) {
					fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
					return nil
				}
				return err
			}
			user, err := env.client.GetUserDetails(cmd.Context(), session.Token)
			if err != nil {
				// The saved session is still shown when the profile cannot be fetched.
				env.log.Warn("failed to fetch user details", zap.Error(err))
				user = session.User
			}
			renderProfile(cmd.OutOrStdout(), session, user)
			return nil
		},
	}
}

func displayName(user model.User) string {
	if name := strings.TrimSpace(user.FullName); name != "" {
		return name
	}
	return user.Email
}

func renderProfile(out io.Writer, session auth.Session, user model.User) {
	t := newTable(out)
	rows := []table.Row{
		{"Name", displayName(user)},
		{"Email", user.Email},
		{"Role", session.Role},
	}
	if user.Phone != "" {
		rows = append(rows, table.Row{"Phone", user.Phone})
	}
	if user.JoinDate != "" {
		rows = append(rows, table.Row{"Member since", user.JoinDate})
	}
	if exp, ok := session.ExpiresAt(); ok {
		rows = append(rows, table.Row{"Session expires", exp.Local().Format("2006-01-02 15:04")})
	}
	t.AppendRows(rows)
	t.Render()
}
