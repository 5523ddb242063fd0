package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tickethub-cli/auth"
	"tickethub-cli/catalog"
	"tickethub-cli/model"
)

func newBookingsCmd(env *environment) *cobra.Command {
	return &cobra.Command{
		Use:   "bookings",
		Short: "Show your profile and bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			session := env.auth.Session()
			if err := auth.RequireRole(session, env.now()); err != nil {
				return err
			}
			ctx := cmd.Context()

			user, err := env.client.GetUserDetails(ctx, session.Token)
			if err != nil {
				env.log.Warn("failed to fetch user details", zap.Error(err))
				user = session.User
			}
			userID := user.Id
			if userID == "" {
				userID = session.User.Id
			}
			bookings, err := env.client.ListUserBookings(ctx, session.Token, userID)
			if err != nil {
				return fmt.Errorf("load bookings: %w", err)
			}

			out := cmd.OutOrStdout()
			renderProfile(out, session, user)
			titles := eventTitles(env.catalog.List(ctx))
			upcoming, past := splitBookings(bookings)

			fmt.Fprintf(out, "\nUpcoming bookings (%d)\n", len(upcoming))
			renderBookings(out, upcoming, titles)
			fmt.Fprintf(out, "\nPast bookings (%d)\n", len(past))
			renderBookings(out, past, titles)
			return nil
		},
	}
}

// splitBookings puts confirmed bookings under upcoming and everything else
// under past.
func splitBookings(bookings []model.Booking) (upcoming, past []model.Booking) {
	for _, booking := range bookings {
		if booking.Status == model.BookingConfirmed {
			upcoming = append(upcoming, booking)
		} else {
			past = append(past, booking)
		}
	}
	return upcoming, past
}

func eventTitles(listing catalog.Listing) map[string]string {
	titles := make(map[string]string, len(listing.Events))
	for _, event := range listing.Events {
		titles[event.Id] = event.Title
	}
	return titles
}

func renderBookings(out io.Writer, bookings []model.Booking, titles map[string]string) {
	if len(bookings) == 0 {
		fmt.Fprintln(out, "None.")
		return
	}
	t := newTable(out)
	t.AppendHeader(table.Row{"Booking", "Event", "Seats", "Total", "Booked", "Status", "Payment"})
	for _, booking := range bookings {
		title := titles[booking.EventId]
		if title == "" {
			title = "Event " + booking.EventId
		}
		t.AppendRow(table.Row{
			booking.Id,
			title,
			strings.Join(booking.SeatIds, ", "),
			formatAmount(booking.TotalAmount),
			booking.BookingDate,
			booking.Status,
			booking.PaymentMethod,
		})
	}
	t.Render()
}

func newAdminCmd(env *environment) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administration views (ADMIN accounts only)",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := env.setup(cmd); err != nil {
				return err
			}
			return auth.RequireRole(env.auth.Session(), env.now(), model.RoleAdmin)
		},
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List every account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := env.client.ListAdminUsers(cmd.Context(), env.auth.Session().Token)
			if err != nil {
				return fmt.Errorf("load users: %w", err)
			}
			t := newTable(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"ID", "Name", "Email", "Role", "Status", "Joined", "Bookings", "Spent"})
			for _, user := range list {
				t.AppendRow(table.Row{user.Id, user.FullName, user.Email, user.Role, user.Status, user.JoinDate, user.TotalBookings, formatAmount(user.TotalSpent)})
			}
			t.AppendFooter(table.Row{"", fmt.Sprintf("%d users", len(list))})
			t.Render()
			return nil
		},
	}

	events := &cobra.Command{
		Use:   "events",
		Short: "List every event, published or not",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			payloads, err := env.client.ListAdminEvents(cmd.Context(), env.auth.Session().Token)
			if err != nil {
				return fmt.Errorf("load events: %w", err)
			}
			renderEvents(cmd.OutOrStdout(), catalog.NormalizeAll(payloads, env.cfg.Catalog.PosterPlaceholder))
			return nil
		},
	}

	admin.AddCommand(users, events)
	return admin
}
