package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"tickethub-cli/checkout"
	"tickethub-cli/model"
)

func newCheckoutCmd(env *environment) *cobra.Command {
	var formPath string
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Pay for the seats in the session draft",
		Long: `Collect payer, payment and billing details and submit the order for the seats
picked with "tickethub seats <event-id> --select ...". Details are prompted for
unless --form points to a JSON file with the same fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			draft, err := env.drafts.Load()
			if err != nil {
				return fmt.Errorf("read session draft: %w", err)
			}
			if draft.SelectedEvent == nil || len(draft.SelectedSeats) == 0 {
				return errors.New(`no seats selected, pick some with "tickethub seats <event-id> --select A1"`)
			}

			event, layout, dropped, err := env.openEvent(cmd.Context(), draft.SelectedEvent.Id)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, id := range dropped {
				fmt.Fprintf(cmd.ErrOrStderr(), "Seat %s is no longer available and was removed from your selection.\n", id)
			}
			if err := env.saveDraft(event); err != nil {
				return err
			}
			order := env.checkout.Draft(event)
			if order.Empty() {
				return checkout.ErrNoSeatsSelected
			}

			fmt.Fprintf(out, "%s • %s %s • %s\n", event.Title, event.Date, event.Time, event.Venue)
			if layout.Generated() {
				fmt.Fprintln(out, "Seat availability is estimated: the backend did not provide a seat layout.")
			}
			renderOrder(out, order)
			fmt.Fprintln(out)

			session := env.auth.Session()
			if err := session.Valid(env.now()); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), checkout.MsgLoginRequired+`. Run "tickethub login" first.`)
			}

			var form checkout.Form
			if formPath != "" {
				form, err = readForm(formPath)
			} else {
				form, err = promptForm(newPrompter(cmd), session.User)
			}
			if err != nil {
				return err
			}

			confirmation, err := env.checkout.Submit(cmd.Context(), session, event, form)
			if err != nil {
				var validationErr *checkout.ValidationError
				if errors.As(err, &validationErr) {
					return fmt.Errorf("please fix the payment details:\n%s", checkout.FormatValidationErrors(validationErr.Fields))
				}
				if errors.Is(err, checkout.ErrNotAuthenticated) {
					return errors.New(checkout.MsgLoginRequired)
				}
				if errors.Is(err, checkout.ErrPaymentFailed) {
					return errors.New(checkout.MsgPaymentFailed)
				}
				return err
			}
			renderConfirmation(out, env.cfg.App.MerchantName, confirmation)
			env.checkout.Reset()
			return nil
		},
	}
	cmd.Flags().StringVar(&formPath, "form", "", "read checkout details from a JSON file")
	return cmd
}

func readForm(path string) (checkout.Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return checkout.Form{}, fmt.Errorf("read form: %w", err)
	}
	var form checkout.Form
	if err := json.Unmarshal(data, &form); err != nil {
		return checkout.Form{}, fmt.Errorf("parse form %s: %w", path, err)
	}
	return form, nil
}

func promptForm(p prompter, user model.User) (checkout.Form, error) {
	var form checkout.Form
	var err error
	ask := func(dst *string, label, defaultValue string) {
		if err != nil {
			return
		}
		*dst, err = p.text(label, defaultValue, required(label))
	}

	ask(&form.FirstName, "First name", "")
	ask(&form.LastName, "Last name", "")
	ask(&form.Email, "Email", user.Email)
	ask(&form.Phone, "Phone", user.Phone)
	if err != nil {
		return form, err
	}

	methods := make([]string, 0, len(model.PaymentMethods))
	for _, method := range model.PaymentMethods {
		methods = append(methods, string(method))
	}
	method, err := p.choose("Payment method", methods)
	if err != nil {
		return form, err
	}
	form.Method = model.PaymentMethod(method)

	switch form.Method {
	case model.PaymentCard:
		ask(&form.Card.Number, "Card number", "")
		ask(&form.Card.Name, "Name on card", "")
		ask(&form.Card.Expiry, "Expiry (MM/YY)", "")
		ask(&form.Card.CVV, "CVV", "")
		form.Card.Number = checkout.FormatCardNumber(form.Card.Number)
		form.Card.Expiry = checkout.FormatExpiry(form.Card.Expiry)
		form.Card.CVV = checkout.FormatCVV(form.Card.CVV)
	case model.PaymentUPI:
		ask(&form.UPI.Id, "UPI ID", "")
	case model.PaymentWallet:
		if err == nil {
			form.Wallet.Provider, err = p.choose("Wallet", checkout.WalletProviders)
		}
	}

	ask(&form.Address, "Address", "")
	ask(&form.City, "City", "")
	ask(&form.State, "State", "")
	ask(&form.ZipCode, "ZIP code", "")
	return form, err
}

func renderConfirmation(out io.Writer, merchant string, c checkout.Confirmation) {
	fmt.Fprintf(out, "Booking confirmed with %s!\n\n", merchant)
	t := newTable(out)
	t.AppendRows([]table.Row{
		{"Booking ID", c.BookingId},
		{"Event", c.Event.Title},
		{"When", c.Event.Date + " " + c.Event.Time},
		{"Venue", c.Event.Venue},
		{"Seats", fmt.Sprint(c.SeatIDs())},
		{"Payment", c.Method},
		{"Subtotal", formatAmount(c.Quote.Subtotal)},
		{"Convenience fee", formatAmount(c.Quote.ConvenienceFee)},
		{"Total", formatAmount(c.Quote.Total)},
	})
	t.Render()
	if c.Provisional {
		fmt.Fprintln(out, "The backend did not return a booking id; keep this local reference for support.")
	}
}
