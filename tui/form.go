package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"tickethub-cli/checkout"
	"tickethub-cli/model"
	"tickethub-cli/pricing"
)

type formField struct {
	key    string
	label  string
	format func(string) string
	input  textinput.Model
}

// checkoutForm keeps one input per form field; only the fields of the chosen
// payment method are shown and focused.
type checkoutForm struct {
	fields  []formField
	method  model.PaymentMethod
	focus   int
	errors  map[string]string
	message string
}

var (
	payerKeys   = []string{"firstName", "lastName", "email", "phone"}
	addressKeys = []string{"address", "city", "state", "zipCode"}
	methodKeys  = map[model.PaymentMethod][]string{
		model.PaymentCard:   {"cardNumber", "cardName", "expiryDate", "cvv"},
		model.PaymentUPI:    {"upiId"},
		model.PaymentWallet: {"walletProvider"},
	}
)

func newCheckoutForm(user model.User) checkoutForm {
	field := func(key, label, placeholder string, limit int, format func(string) string) formField {
		in := textinput.New()
		in.Placeholder = placeholder
		in.Prompt = ""
		if limit > 0 {
			in.CharLimit = limit
		}
		return formField{key: key, label: label, format: format, input: in}
	}
	f := checkoutForm{
		method: model.PaymentCard,
		fields: []formField{
			field("firstName", "First name", "Jane", 64, nil),
			field("lastName", "Last name", "Doe", 64, nil),
			field("email", "Email", "jane@example.com", 128, nil),
			field("phone", "Phone", "5551234567", 32, nil),
			field("cardNumber", "Card number", "4111 1111 1111 1111", 23, checkout.FormatCardNumber),
			field("cardName", "Name on card", "JANE DOE", 64, nil),
			field("expiryDate", "Expiry", "MM/YY", 5, checkout.FormatExpiry),
			field("cvv", "CVV", "123", 4, checkout.FormatCVV),
			field("upiId", "UPI id", "name@bank", 64, nil),
			field("walletProvider", "Wallet", strings.Join(checkout.WalletProviders, ", "), 16, nil),
			field("address", "Address", "1 Main St", 128, nil),
			field("city", "City", "Springfield", 64, nil),
			field("state", "State", "IL", 64, nil),
			field("zipCode", "ZIP code", "62701", 16, nil),
		},
	}
	f.prefill(user)
	return f
}

// prefill copies profile data into empty payer fields.
func (f *checkoutForm) prefill(user model.User) {
	first, last, _ := strings.Cut(strings.TrimSpace(user.FullName), " ")
	defaults := map[string]string{
		"firstName": first,
		"lastName":  strings.TrimSpace(last),
		"email":     user.Email,
		"phone":     user.Phone,
	}
	for key, value := range defaults {
		i := f.index(key)
		if i < 0 || value == "" || f.fields[i].input.Value() != "" {
			continue
		}
		f.fields[i].input.SetValue(value)
	}
}

func (f checkoutForm) index(key string) int {
	for i, field := range f.fields {
		if field.key == key {
			return i
		}
	}
	return -1
}

func (f checkoutForm) value(key string) string {
	if i := f.index(key); i >= 0 {
		return f.fields[i].input.Value()
	}
	return ""
}

func (f *checkoutForm) setValue(key, value string) {
	if i := f.index(key); i >= 0 {
		f.fields[i].input.SetValue(value)
	}
}

func (f checkoutForm) visibleKeys() []string {
	keys := append([]string{}, payerKeys...)
	keys = append(keys, methodKeys[f.method]...)
	return append(keys, addressKeys...)
}

func (f checkoutForm) focusedKey() string {
	keys := f.visibleKeys()
	if f.focus < 0 || f.focus >= len(keys) {
		return ""
	}
	return keys[f.focus]
}

func (f *checkoutForm) focusCurrent() tea.Cmd {
	keys := f.visibleKeys()
	f.focus = clamp(f.focus, 0, len(keys)-1)
	current := keys[f.focus]
	for i := range f.fields {
		if f.fields[i].key == current {
			f.fields[i].input.Focus()
		} else {
			f.fields[i].input.Blur()
		}
	}
	return textinput.Blink
}

func (f *checkoutForm) blurAll() {
	for i := range f.fields {
		f.fields[i].input.Blur()
	}
}

func (f *checkoutForm) move(delta int) tea.Cmd {
	n := len(f.visibleKeys())
	f.focus = (f.focus + delta + n) % n
	return f.focusCurrent()
}

// focusKey moves focus to a visible field.
func (f *checkoutForm) focusKey(key string) tea.Cmd {
	for i, k := range f.visibleKeys() {
		if k == key {
			f.focus = i
			break
		}
	}
	return f.focusCurrent()
}

func (f *checkoutForm) nextMethod() tea.Cmd {
	for i, method := range model.PaymentMethods {
		if method == f.method {
			f.method = model.PaymentMethods[(i+1)%len(model.PaymentMethods)]
			break
		}
	}
	f.focus = min(f.focus, len(payerKeys))
	return f.focusCurrent()
}

func (f *checkoutForm) nextWallet() {
	current := strings.ToLower(strings.TrimSpace(f.value("walletProvider")))
	next := checkout.WalletProviders[0]
	for i, provider := range checkout.WalletProviders {
		if provider == current {
			next = checkout.WalletProviders[(i+1)%len(checkout.WalletProviders)]
			break
		}
	}
	f.setValue("walletProvider", next)
}

func (f *checkoutForm) updateFocused(msg tea.Msg) tea.Cmd {
	key := f.focusedKey()
	i := f.index(key)
	if i < 0 {
		return nil
	}
	before := f.fields[i].input.Value()
	var cmd tea.Cmd
	f.fields[i].input, cmd = f.fields[i].input.Update(msg)
	if after := f.fields[i].input.Value(); after != before {
		if format := f.fields[i].format; format != nil {
			f.fields[i].input.SetValue(format(after))
			f.fields[i].input.CursorEnd()
		}
		delete(f.errors, key)
	}
	return cmd
}

func (f checkoutForm) toForm() checkout.Form {
	return checkout.Form{
		FirstName: f.value("firstName"),
		LastName:  f.value("lastName"),
		Email:     f.value("email"),
		Phone:     f.value("phone"),
		Method:    f.method,
		Card: checkout.CardDetails{
			Number: f.value("cardNumber"),
			Name:   f.value("cardName"),
			Expiry: f.value("expiryDate"),
			CVV:    f.value("cvv"),
		},
		UPI:     checkout.UPIDetails{Id: f.value("upiId")},
		Wallet:  checkout.WalletDetails{Provider: f.value("walletProvider")},
		Address: f.value("address"),
		City:    f.value("city"),
		State:   f.value("state"),
		ZipCode: f.value("zipCode"),
	}
}

func (f checkoutForm) view() string {
	var b strings.Builder
	methods := make([]string, 0, len(model.PaymentMethods))
	for _, method := range model.PaymentMethods {
		label := string(method)
		if method == f.method {
			label = okStyle.Render("(" + label + ")")
		}
		methods = append(methods, label)
	}
	b.WriteString("Payment method: " + strings.Join(methods, " ") + "\n\n")

	focused := f.focusedKey()
	for _, key := range f.visibleKeys() {
		field := f.fields[f.index(key)]
		cursor := "  "
		if key == focused {
			cursor = "> "
		}
		b.WriteString(fmt.Sprintf("%s%-13s %s", cursor, field.label, field.input.View()))
		if msg, ok := f.errors[key]; ok {
			b.WriteString("  " + errorStyle.Render(msg))
		}
		b.WriteString("\n")
	}
	if f.method == model.PaymentWallet {
		b.WriteString(hint("  ctrl+w cycles wallets") + "\n")
	}
	if f.message != "" {
		b.WriteString("\n" + errorStyle.Render(f.message) + "\n")
	}
	return b.String()
}

func (m appModel) checkoutView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Checkout"))
	b.WriteString("\n")
	b.WriteString(renderOrderSummary(pricing.NewDraft(m.event, m.deps.Selection.Seats())))
	b.WriteString("\n\n")
	if !m.session().LoggedIn() {
		b.WriteString(warnStyle.Render("You are not logged in. Press ctrl+l to log in before paying."))
		b.WriteString("\n\n")
	}
	b.WriteString(m.form.view())
	return b.String()
}

func (m appModel) confirmationView() string {
	c := m.confirmation
	if c == nil {
		return "No booking to show."
	}
	var b strings.Builder
	b.WriteString(okStyle.Render(fmt.Sprintf("Booking confirmed with %s!", m.deps.MerchantName)))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("Booking: %s\n", c.BookingId))
	if c.Provisional {
		b.WriteString(hint("This is a provisional reference; the backend did not return a booking id.") + "\n")
	}
	b.WriteString(fmt.Sprintf("Event:   %s\n", c.Event.Title))
	b.WriteString(fmt.Sprintf("When:    %s %s\n", c.Event.Date, c.Event.Time))
	b.WriteString(fmt.Sprintf("Venue:   %s\n", c.Event.Venue))
	b.WriteString(fmt.Sprintf("Seats:   %s\n", strings.Join(c.SeatIDs(), ", ")))
	b.WriteString(fmt.Sprintf("Paid:    %s by %s\n", formatAmount(c.Quote.Total), c.Method))
	return b.String()
}

// updateInputs routes keys for the checkout and login forms, where printable
// keys belong to the focused input.
func (m appModel) updateInputs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		return m.goBack()
	}
	if m.state == stateLogin {
		return m.updateLogin(msg)
	}

	switch msg.String() {
	case "tab", "down":
		cmd := m.form.move(1)
		return m, cmd
	case "shift+tab", "up":
		cmd := m.form.move(-1)
		return m, cmd
	case "ctrl+p":
		cmd := m.form.nextMethod()
		return m, cmd
	case "ctrl+w":
		if m.form.method == model.PaymentWallet {
			m.form.nextWallet()
			delete(m.form.errors, "walletProvider")
		}
		return m, nil
	case "ctrl+l":
		if m.deps.Auth == nil || m.session().LoggedIn() {
			return m, nil
		}
		m.form.blurAll()
		m.loginReturn = stateCheckout
		m.state = stateLogin
		cmd := m.login.focus()
		return m, cmd
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.form.focus >= len(m.form.visibleKeys())-1 {
			return m.submit()
		}
		cmd := m.form.move(1)
		return m, cmd
	}
	cmd := m.form.updateFocused(msg)
	return m, cmd
}

func (m appModel) submit() (tea.Model, tea.Cmd) {
	m.form.message = ""
	m.form.errors = nil
	m.form.blurAll()
	m.state = stateSubmitting

	co := m.deps.Checkout
	session := m.session()
	event := m.event
	form := m.form.toForm()
	return m, tea.Batch(func() tea.Msg {
		confirmation, err := co.Submit(context.Background(), session, event, form)
		return checkoutResultMsg{confirmation: confirmation, err: err}
	}, m.spinner.Tick)
}

func (m appModel) handleCheckoutResult(msg checkoutResultMsg) (tea.Model, tea.Cmd) {
	if m.state != stateSubmitting {
		return m, nil
	}
	if msg.err == nil {
		confirmation := msg.confirmation
		m.confirmation = &confirmation
		m.notice = ""
		m.state = stateConfirmation
		return m, nil
	}

	var validationErr *checkout.ValidationError
	switch {
	case errors.Is(msg.err, checkout.ErrAbandoned):
		return m, nil
	case errors.As(msg.err, &validationErr):
		m.state = stateCheckout
		m.form.errors = validationErr.Fields
		m.form.message = "Please fix the highlighted fields."
		for _, key := range m.form.visibleKeys() {
			if _, ok := validationErr.Fields[key]; ok {
				cmd := m.form.focusKey(key)
				return m, cmd
			}
		}
		cmd := m.form.focusCurrent()
		return m, cmd
	case errors.Is(msg.err, checkout.ErrNotAuthenticated):
		m.state = stateCheckout
		m.form.message = checkout.MsgLoginRequired + ". Press ctrl+l to log in."
		cmd := m.form.focusCurrent()
		return m, cmd
	case errors.Is(msg.err, checkout.ErrNoSeatsSelected):
		m.state = stateSeatMap
		m.notice = "Please select at least one seat"
		return m, nil
	case errors.Is(msg.err, checkout.ErrSubmissionInFlight):
		m.state = stateCheckout
		m.form.message = "Your previous booking request is still being processed. Please wait."
		cmd := m.form.focusCurrent()
		return m, cmd
	case errors.Is(msg.err, checkout.ErrPaymentFailed):
		m.state = stateCheckout
		m.form.message = checkout.MsgPaymentFailed
		cmd := m.form.focusCurrent()
		return m, cmd
	default:
		m.state = stateCheckout
		m.form.message = msg.err.Error()
		cmd := m.form.focusCurrent()
		return m, cmd
	}
}
