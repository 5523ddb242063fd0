package model

import "strings"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentWallet PaymentMethod = "wallet"
)

// PaymentMethods lists the accepted methods in form order.
var PaymentMethods = []PaymentMethod{PaymentCard, PaymentUPI, PaymentWallet}

// Booking is a booking record as shown on the user dashboard.
type Booking struct {
	Id            string        `json:"id"`
	EventId       string        `json:"eventId"`
	UserId        string        `json:"userId"`
	SeatIds       []string      `json:"seats"`
	TotalAmount   float64       `json:"totalAmount"`
	BookingDate   string        `json:"bookingDate"`
	Status        BookingStatus `json:"status"`
	PaymentMethod string        `json:"paymentMethod"`
}

// BookingPayload is a booking as the backend lists it.
type BookingPayload struct {
	Id            FlexibleID `json:"id"`
	UserId        FlexibleID `json:"userId"`
	EventId       FlexibleID `json:"eventId"`
	Seats         []string   `json:"seats"`
	TotalAmount   float64    `json:"totalAmount"`
	Status        string     `json:"status"`
	CreatedAt     string     `json:"createdAt"`
	PaymentMethod string     `json:"paymentMethod"`
}

// ToBooking maps a listed booking into the dashboard shape.
func (p BookingPayload) ToBooking() Booking {
	status := BookingStatus(strings.ToLower(strings.TrimSpace(p.Status)))
	if status == "" {
		status = BookingConfirmed
	}
	method := p.PaymentMethod
	if method == "" {
		method = string(PaymentCard)
	}
	seats := p.Seats
	if seats == nil {
		seats = []string{}
	}
	return Booking{
		Id:            p.Id.String(),
		EventId:       p.EventId.String(),
		UserId:        p.UserId.String(),
		SeatIds:       seats,
		TotalAmount:   p.TotalAmount,
		BookingDate:   p.CreatedAt,
		Status:        status,
		PaymentMethod: method,
	}
}

type Payer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

type BillingAddress struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// PaymentDetails carries only what the backend needs to reference the
// payment instrument. Full card numbers and CVVs never leave the client.
type PaymentDetails struct {
	CardLast4      string `json:"cardNumber,omitempty"`
	CardHolder     string `json:"cardHolder,omitempty"`
	UpiId          string `json:"upiId,omitempty"`
	WalletProvider string `json:"walletProvider,omitempty"`
}

// BookingRequest is the order-creation payload.
type BookingRequest struct {
	EventId        string         `json:"eventId"`
	UserId         string         `json:"userId,omitempty"`
	Seats          []string       `json:"seats"`
	Subtotal       float64        `json:"subtotal"`
	ConvenienceFee float64        `json:"convenienceFee"`
	TotalAmount    float64        `json:"totalAmount"`
	PaymentMethod  PaymentMethod  `json:"paymentMethod"`
	PaymentDetails PaymentDetails `json:"paymentDetails"`
	Payer          Payer          `json:"payer"`
	BillingAddress BillingAddress `json:"billingAddress"`
}

// BookingConfirmation is the order-creation response.
type BookingConfirmation struct {
	BookingId string     `json:"bookingId"`
	Id        FlexibleID `json:"id"`
	Status    string     `json:"status"`
	Message   string     `json:"message"`
}

// Reference returns the server-issued booking id, whichever key carried it.
func (c BookingConfirmation) Reference() string {
	if c.BookingId != "" {
		return c.BookingId
	}
	return c.Id.String()
}
