package checkout

import (
	"errors"
	"testing"

	"tickethub-cli/model"
)

func validForm() Form {
	return Form{
		FirstName: "Asha",
		LastName:  "Rao",
		Email:     "asha@example.com",
		Phone:     "+91 98765 43210",
		Method:    model.PaymentCard,
		Card: CardDetails{
			Number: "4111 1111 1111 1111",
			Name:   "Asha Rao",
			Expiry: "08/29",
			CVV:    "123",
		},
		Address: "12 MG Road",
		City:    "Bengaluru",
		State:   "KA",
		ZipCode: "560001",
	}
}

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	return validationErr.Fields
}

func TestValidate_ValidForms(t *testing.T) {
	card := validForm()
	if err := Validate(card); err != nil {
		t.Fatalf("expected valid card form, got %v", err)
	}

	upi := validForm()
	upi.Method = model.PaymentUPI
	upi.Card = CardDetails{}
	upi.UPI.Id = "asha.rao@okbank"
	if err := Validate(upi); err != nil {
		t.Fatalf("expected valid upi form, got %v", err)
	}

	wallet := validForm()
	wallet.Method = model.PaymentWallet
	wallet.Card = CardDetails{}
	wallet.Wallet.Provider = "PhonePe"
	if err := Validate(wallet); err != nil {
		t.Fatalf("expected valid wallet form, got %v", err)
	}
}

func TestValidate_EmptyFormReportsEveryField(t *testing.T) {
	form := Form{Method: model.PaymentCard}
	fields := fieldErrors(t, Validate(form))

	want := map[string]string{
		"firstName":  "First name is required",
		"lastName":   "Last name is required",
		"email":      "Email is required",
		"phone":      "Phone number is required",
		"cardNumber": "Card number is required",
		"cardName":   "Cardholder name is required",
		"expiryDate": "Expiry date is required",
		"cvv":        "CVV is required",
		"address":    "Address is required",
		"city":       "City is required",
		"state":      "State is required",
		"zipCode":    "ZIP code is required",
	}
	if len(fields) != len(want) {
		t.Fatalf("expected %d field errors, got %d: %v", len(want), len(fields), fields)
	}
	for field, msg := range want {
		if fields[field] != msg {
			t.Fatalf("field %s: expected %q, got %q", field, msg, fields[field])
		}
	}
}

func TestValidate_FieldRules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Form)
		field  string
		msg    string
	}{
		{name: "whitespace name", mutate: func(f *Form) { f.FirstName = "   " }, field: "firstName", msg: "First name is required"},
		{name: "bad email", mutate: func(f *Form) { f.Email = "asha@example" }, field: "email", msg: "Invalid email format"},
		{name: "short card", mutate: func(f *Form) { f.Card.Number = "4111 1111 111" }, field: "cardNumber", msg: "Card number must be at least 13 digits"},
		{name: "card letters", mutate: func(f *Form) { f.Card.Number = "4111 1111 1111 abcd" }, field: "cardNumber", msg: "Card number must be at least 13 digits"},
		{name: "month 13", mutate: func(f *Form) { f.Card.Expiry = "13/29" }, field: "expiryDate", msg: "Invalid expiry date format (MM/YY)"},
		{name: "month 00", mutate: func(f *Form) { f.Card.Expiry = "00/29" }, field: "expiryDate", msg: "Invalid expiry date format (MM/YY)"},
		{name: "no slash", mutate: func(f *Form) { f.Card.Expiry = "0829" }, field: "expiryDate", msg: "Invalid expiry date format (MM/YY)"},
		{name: "short cvv", mutate: func(f *Form) { f.Card.CVV = "12" }, field: "cvv", msg: "CVV must be 3 or 4 digits"},
		{name: "long cvv", mutate: func(f *Form) { f.Card.CVV = "12345" }, field: "cvv", msg: "CVV must be 3 or 4 digits"},
		{name: "bad upi", mutate: func(f *Form) { f.Method = model.PaymentUPI; f.UPI.Id = "asha" }, field: "upiId", msg: "Invalid UPI ID format"},
		{name: "missing upi", mutate: func(f *Form) { f.Method = model.PaymentUPI }, field: "upiId", msg: "UPI ID is required"},
		{name: "unknown wallet", mutate: func(f *Form) { f.Method = model.PaymentWallet; f.Wallet.Provider = "paypal" }, field: "walletProvider", msg: "Please select a wallet provider"},
		{name: "missing wallet", mutate: func(f *Form) { f.Method = model.PaymentWallet }, field: "walletProvider", msg: "Please select a wallet provider"},
		{name: "missing zip", mutate: func(f *Form) { f.ZipCode = "" }, field: "zipCode", msg: "ZIP code is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.mutate(&form)
			fields := fieldErrors(t, Validate(form))
			if fields[tt.field] != tt.msg {
				t.Fatalf("expected %s=%q, got %v", tt.field, tt.msg, fields)
			}
			if len(fields) != 1 {
				t.Fatalf("expected a single field error, got %v", fields)
			}
		})
	}
}

func TestValidate_OnlyChosenMethodIsChecked(t *testing.T) {
	form := validForm()
	form.Method = model.PaymentUPI
	form.UPI.Id = "asha@upi"
	form.Card = CardDetails{Number: "12"}
	if err := Validate(form); err != nil {
		t.Fatalf("expected card details to be ignored for upi, got %v", err)
	}
}

func TestPaymentDetails_NeverCarriesFullCard(t *testing.T) {
	form := validForm().Normalized()
	details := form.PaymentDetails()
	if details.CardLast4 != "1111" || details.CardHolder != "Asha Rao" {
		t.Fatalf("unexpected details: %+v", details)
	}
	if details.UpiId != "" || details.WalletProvider != "" {
		t.Fatalf("unexpected extra details: %+v", details)
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := FormatCardNumber("4111111111111111999"); got != "4111 1111 1111 1111" {
		t.Fatalf("unexpected card format: %q", got)
	}
	if got := FormatCardNumber("41a1 1"); got != "4111" {
		t.Fatalf("unexpected card format: %q", got)
	}
	if got := FormatExpiry("0829"); got != "08/29" {
		t.Fatalf("unexpected expiry: %q", got)
	}
	if got := FormatExpiry("1"); got != "1" {
		t.Fatalf("unexpected expiry: %q", got)
	}
	if got := FormatCVV("12a345"); got != "1234" {
		t.Fatalf("unexpected cvv: %q", got)
	}
}

func TestFormatValidationErrors_Stable(t *testing.T) {
	got := FormatValidationErrors(map[string]string{"zipCode": "z", "city": "c"})
	if got != "city: c; zipCode: z" {
		t.Fatalf("unexpected format: %q", got)
	}
}
