package cmd

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"tickethub-cli/config"
	"tickethub-cli/sandbox"
)

func newSandboxCmd(env *environment) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sandbox",
		Short: "Run an in-memory TicketHub backend",
		Long: `Serve the storefront API from memory with seeded events and two demo
accounts. Point the client at it with --base-url or TICKETHUB_BASE_URL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := sandbox.New(sandbox.Options{
				Secret:           env.cfg.Sandbox.Secret,
				SeatsUnavailable: env.cfg.Sandbox.SeatsUnavailable,
			}, env.log)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			return srv.Serve(ctx, env.cfg.Sandbox.Addr, func(addr net.Addr) {
				fmt.Fprintf(out, "TicketHub sandbox listening on http://%s\n", addr)
				fmt.Fprintf(out, "  admin: %s / %s\n", sandbox.DemoAdminEmail, sandbox.DemoAdminPassword)
				fmt.Fprintf(out, "  user:  %s / %s\n", sandbox.DemoUserEmail, sandbox.DemoUserPassword)
				if env.cfg.Sandbox.SeatsUnavailable {
					fmt.Fprintln(out, "  seat layouts disabled, clients will use generated layouts")
				}
				fmt.Fprintln(out, "Press ctrl+c to stop.")
			})
		},
	}

	flags := cmd.Flags()
	flags.String("addr", config.DefaultSandboxAddr, "listen address")
	flags.String("secret", "", "token signing secret (random when empty)")
	flags.Bool("seats-unavailable", false, "answer 503 on seat layout requests")
	env.bind(config.KeySandboxAddr, flags.Lookup("addr"))
	env.bind(config.KeySandboxSecret, flags.Lookup("secret"))
	env.bind(config.KeySandboxNoSeats, flags.Lookup("seats-unavailable"))
	return cmd
}
