// Package cmd wires the tickethub command line: the interactive storefront
// by default plus scriptable subcommands for every step of a booking.
package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tickethub-cli/config"
	"tickethub-cli/tui"
)

const appName = "tickethub"

// Build identifies the binary.
type Build struct {
	Version string
	Commit  string
}

func (b Build) String() string {
	version := b.Version
	if version == "" {
		version = "dev"
	}
	if b.Commit != "" && b.Commit != "none" {
		return fmt.Sprintf("%s %s (%s)", appName, version, b.Commit)
	}
	return fmt.Sprintf("%s %s", appName, version)
}

// NewRootCmd builds the command tree. Every invocation gets its own viper
// instance so tests can run commands side by side.
func NewRootCmd(build Build) *cobra.Command {
	env := newEnvironment(config.New())

	root := &cobra.Command{
		Use:           appName,
		Short:         "TicketHub storefront in the terminal",
		Long:          `Browse events, pick seats and book tickets for movies, concerts and sports from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return env.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			env.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStorefront(env)
		},
	}

	flags := root.PersistentFlags()
	flags.String("base-url", config.DefaultBaseURL, "backend base URL")
	flags.Duration("timeout", config.DefaultHTTPTimeout, "HTTP request timeout")
	flags.Bool("debug", false, "verbose logging, also echoed to stderr by subcommands")
	flags.String("log-dir", "", "directory for the rotated log file")
	env.bind(config.KeyBaseURL, flags.Lookup("base-url"))
	env.bind(config.KeyHTTPTimeout, flags.Lookup("timeout"))
	env.bind(config.KeyDebug, flags.Lookup("debug"))
	env.bind(config.KeyLogPath, flags.Lookup("log-dir"))

	root.AddCommand(
		newEventsCmd(env),
		newSeatsCmd(env),
		newCheckoutCmd(env),
		newLoginCmd(env),
		newRegisterCmd(env),
		newLogoutCmd(env),
		newWhoamiCmd(env),
		newBookingsCmd(env),
		newAdminCmd(env),
		newSandboxCmd(env),
		newVersionCmd(build),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(build Build) int {
	root := NewRootCmd(build)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return 1
	}
	return 0
}

func newVersionCmd(build Build) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tickethub",
		// No backend or logger is needed to print a version.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), build.String())
		},
	}
}

func runStorefront(env *environment) error {
	model := tui.New(tui.Deps{
		Catalog:      env.catalog,
		Seats:        env.seats,
		Auth:         env.auth,
		Account:      env.client,
		Checkout:     env.checkout,
		Selection:    env.selection,
		Drafts:       env.drafts,
		Log:          env.log,
		MerchantName: env.cfg.App.MerchantName,
		Now:          env.now,
	})
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
