package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"tickethub-cli/model"
)

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid checkout form"
	}
	return "invalid checkout form: " + FormatValidationErrors(e.Fields)
}

// FormatValidationErrors renders field errors in a stable order.
func FormatValidationErrors(fields map[string]string) string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	msgs := make([]string, 0, len(names))
	for _, name := range names {
		msgs = append(msgs, fmt.Sprintf("%s: %s", name, fields[name]))
	}
	return strings.Join(msgs, "; ")
}

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/[0-9]{2}$`)
	upiPattern    = regexp.MustCompile(`^[\w.-]+@[\w.-]+$`)
	cvvPattern    = regexp.MustCompile(`^[0-9]{3,4}$`)
	cardPattern   = regexp.MustCompile(`^[0-9]{13,}$`)
	emailPattern  = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return field.Name
		}
		return name
	})
	mustRegister(v, "cardnumber", func(fl validator.FieldLevel) bool {
		return cardPattern.MatchString(strings.Join(strings.Fields(fl.Field().String()), ""))
	})
	mustRegister(v, "expiry", func(fl validator.FieldLevel) bool {
		return expiryPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "cvv", func(fl validator.FieldLevel) bool {
		return cvvPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "upi", func(fl validator.FieldLevel) bool {
		return upiPattern.MatchString(fl.Field().String())
	})
	// local@domain.tld, looser than RFC 5322.
	mustRegister(v, "email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// Validate checks the form after normalization and returns a
// *ValidationError listing every invalid field, or nil.
func Validate(form Form) error {
	form = form.Normalized()
	fields := map[string]string{}

	collect(fields, validate.Struct(form))
	switch form.Method {
	case model.PaymentCard:
		collect(fields, validate.Struct(form.Card))
	case model.PaymentUPI:
		collect(fields, validate.Struct(form.UPI))
	case model.PaymentWallet:
		collect(fields, validate.Struct(form.Wallet))
	}

	if len(fields) == 0 {
		return nil
	}
	return &ValidationError{Fields: fields}
}

func collect(fields map[string]string, err error) {
	if err == nil {
		return
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		fields["form"] = err.Error()
		return
	}
	for _, fieldErr := range validationErrors {
		if _, exists := fields[fieldErr.Field()]; exists {
			continue
		}
		fields[fieldErr.Field()] = getErrorMessage(fieldErr)
	}
}

var requiredMessages = map[string]string{
	"firstName":      "First name is required",
	"lastName":       "Last name is required",
	"email":          "Email is required",
	"phone":          "Phone number is required",
	"paymentMethod":  "Please select a payment method",
	"cardNumber":     "Card number is required",
	"cardName":       "Cardholder name is required",
	"expiryDate":     "Expiry date is required",
	"cvv":            "CVV is required",
	"upiId":          "UPI ID is required",
	"walletProvider": "Please select a wallet provider",
	"address":        "Address is required",
	"city":           "City is required",
	"state":          "State is required",
	"zipCode":        "ZIP code is required",
}

// getErrorMessage converts validator errors to the messages shown next to fields.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		if msg, ok := requiredMessages[err.Field()]; ok {
			return msg
		}
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "cardnumber":
		return "Card number must be at least 13 digits"
	case "expiry":
		return "Invalid expiry date format (MM/YY)"
	case "cvv":
		return "CVV must be 3 or 4 digits"
	case "upi":
		return "Invalid UPI ID format"
	case "oneof":
		if err.Field() == "walletProvider" {
			return "Please select a wallet provider"
		}
		options := strings.ReplaceAll(err.Param(), " ", ", ")
		return fmt.Sprintf("Must be one of: %s", options)
	default:
		return fmt.Sprintf("Invalid %s field", err.Field())
	}
}
