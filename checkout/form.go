package checkout

import (
	"regexp"
	"strings"

	"tickethub-cli/model"
)

// WalletProviders are the wallets accepted at checkout.
var WalletProviders = []string{"paytm", "phonepe", "gpay", "amazonpay"}

// Form is the payer, payment and billing input collected at checkout.
// Only the details of the chosen Method are validated and sent.
type Form struct {
	FirstName string              `json:"firstName" validate:"required"`
	LastName  string              `json:"lastName" validate:"required"`
	Email     string              `json:"email" validate:"required,email"`
	Phone     string              `json:"phone" validate:"required"`
	Method    model.PaymentMethod `json:"paymentMethod" validate:"required,oneof=card upi wallet"`

	Card   CardDetails   `json:"card" validate:"-"`
	UPI    UPIDetails    `json:"upi" validate:"-"`
	Wallet WalletDetails `json:"wallet" validate:"-"`

	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	ZipCode string `json:"zipCode" validate:"required"`
}

type CardDetails struct {
	Number string `json:"cardNumber" validate:"required,cardnumber"`
	Name   string `json:"cardName" validate:"required"`
	Expiry string `json:"expiryDate" validate:"required,expiry"`
	CVV    string `json:"cvv" validate:"required,cvv"`
}

type UPIDetails struct {
	Id string `json:"upiId" validate:"required,upi"`
}

type WalletDetails struct {
	Provider string `json:"walletProvider" validate:"required,oneof=paytm phonepe gpay amazonpay"`
}

// Normalized returns a copy with surrounding whitespace trimmed, the card
// number reduced to digits and the method lowercased.
func (f Form) Normalized() Form {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Method = model.PaymentMethod(strings.ToLower(strings.TrimSpace(string(f.Method))))
	f.Card.Number = strings.Join(strings.Fields(f.Card.Number), "")
	f.Card.Name = strings.TrimSpace(f.Card.Name)
	f.Card.Expiry = strings.TrimSpace(f.Card.Expiry)
	f.Card.CVV = strings.TrimSpace(f.Card.CVV)
	f.UPI.Id = strings.TrimSpace(f.UPI.Id)
	f.Wallet.Provider = strings.ToLower(strings.TrimSpace(f.Wallet.Provider))
	f.Address = strings.TrimSpace(f.Address)
	f.City = strings.TrimSpace(f.City)
	f.State = strings.TrimSpace(f.State)
	f.ZipCode = strings.TrimSpace(f.ZipCode)
	return f
}

// Payer returns the contact block of the order payload.
func (f Form) Payer() model.Payer {
	return model.Payer{FirstName: f.FirstName, LastName: f.LastName, Email: f.Email, Phone: f.Phone}
}

func (f Form) BillingAddress() model.BillingAddress {
	return model.BillingAddress{Address: f.Address, City: f.City, State: f.State, ZipCode: f.ZipCode}
}

// PaymentDetails returns what the order payload may carry about the
// instrument: the card's last four digits and holder, the UPI id, or the
// wallet provider. Full card numbers and CVVs are never included.
func (f Form) PaymentDetails() model.PaymentDetails {
	switch f.Method {
	case model.PaymentCard:
		number := digitsOnly(f.Card.Number)
		if len(number) > 4 {
			number = number[len(number)-4:]
		}
		return model.PaymentDetails{CardLast4: number, CardHolder: f.Card.Name}
	case model.PaymentUPI:
		return model.PaymentDetails{UpiId: f.UPI.Id}
	case model.PaymentWallet:
		return model.PaymentDetails{WalletProvider: f.Wallet.Provider}
	}
	return model.PaymentDetails{}
}

var nonDigits = regexp.MustCompile(`[^0-9]`)

func digitsOnly(value string) string {
	return nonDigits.ReplaceAllString(value, "")
}

// FormatCardNumber groups the digits of a card number in blocks of four,
// keeping at most sixteen digits.
func FormatCardNumber(value string) string {
	digits := digitsOnly(value)
	if len(digits) > 16 {
		digits = digits[:16]
	}
	var parts []string
	for i := 0; i < len(digits); i += 4 {
		end := min(i+4, len(digits))
		parts = append(parts, digits[i:end])
	}
	return strings.Join(parts, " ")
}

// FormatExpiry turns "MMYY" input into "MM/YY".
func FormatExpiry(value string) string {
	digits := digitsOnly(value)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) >= 2 {
		return digits[:2] + "/" + digits[2:]
	}
	return digits
}

// FormatCVV keeps at most four digits.
func FormatCVV(value string) string {
	digits := digitsOnly(value)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	return digits
}
