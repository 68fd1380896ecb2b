package checkout

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// ProcessingDelay is the simulated payment processing time.
const ProcessingDelay = 2 * time.Second

// Step is a checkout stage.
type Step int

const (
	StepDetails Step = iota
	StepPayment
	StepProcessing
	StepConfirmed
)

func (s Step) String() string {
	switch s {
	case StepDetails:
		return "Details"
	case StepPayment:
		return "Payment"
	case StepProcessing:
		return "Processing"
	case StepConfirmed:
		return "Confirmation"
	}
	return "Unknown"
}

// Field names a form input.
type Field int

const (
	FieldFirstName Field = iota
	FieldLastName
	FieldEmail
	FieldPhone
	FieldCardName
	FieldCardNumber
	FieldCardExpiry
	FieldCardCVC
)

// DetailsFields and PaymentFields are the inputs of each form step.
var (
	DetailsFields = []Field{FieldFirstName, FieldLastName, FieldEmail, FieldPhone}
	PaymentFields = []Field{FieldCardName, FieldCardNumber, FieldCardExpiry, FieldCardCVC}
)

func (f Field) String() string {
	switch f {
	case FieldFirstName:
		return "First name"
	case FieldLastName:
		return "Last name"
	case FieldEmail:
		return "Email"
	case FieldPhone:
		return "Phone"
	case FieldCardName:
		return "Name on card"
	case FieldCardNumber:
		return "Card number"
	case FieldCardExpiry:
		return "Expiry"
	case FieldCardCVC:
		return "CVC"
	}
	return "Field"
}

// Placeholder returns the hint shown in an empty input.
func (f Field) Placeholder() string {
	switch f {
	case FieldEmail:
		return "you@example.com"
	case FieldPhone:
		return "+91 98765 43210"
	case FieldCardNumber:
		return "1234 5678 9012 3456"
	case FieldCardExpiry:
		return "MM/YY"
	case FieldCardCVC:
		return "123"
	}
	return ""
}

// ErrInvalidField wraps every form validation failure.
var ErrInvalidField = errors.New("invalid field")

// Form holds the values entered during checkout.
type Form map[Field]string

// Validate checks the given fields. Every field is required; email, card
// number, expiry and CVC also get a format check.
func (f Form) Validate(fields []Field) error {
	for _, field := range fields {
		v := strings.TrimSpace(f[field])
		if v == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidField, field)
		}
		switch field {
		case FieldEmail:
			if _, err := mail.ParseAddress(v); err != nil {
				return fmt.Errorf("%w: %s is not a valid address", ErrInvalidField, field)
			}
		case FieldCardNumber:
			if n := len(digits(v)); n < 12 || n > 19 {
				return fmt.Errorf("%w: %s must have 12 to 19 digits", ErrInvalidField, field)
			}
		case FieldCardExpiry:
			if !validExpiry(v) {
				return fmt.Errorf("%w: %s must be MM/YY", ErrInvalidField, field)
			}
		case FieldCardCVC:
			if d := digits(v); len(d) != len(v) || len(d) < 3 || len(d) > 4 {
				return fmt.Errorf("%w: %s must be 3 or 4 digits", ErrInvalidField, field)
			}
		}
	}
	return nil
}

// FormatCardNumber groups the digits of v in blocks of four. Input without
// digits is returned unchanged.
func FormatCardNumber(v string) string {
	d := digits(v)
	if len(d) > 16 {
		d = d[:16]
	}
	if d == "" {
		return v
	}
	var parts []string
	for i := 0; i < len(d); i += 4 {
		end := i + 4
		if end > len(d) {
			end = len(d)
		}
		parts = append(parts, d[i:end])
	}
	return strings.Join(parts, " ")
}

// MaskCard returns the card number with all but the last four digits hidden.
func MaskCard(v string) string {
	d := digits(v)
	if len(d) <= 4 {
		return d
	}
	return "•••• " + d[len(d)-4:]
}

func digits(v string) string {
	var b strings.Builder
	for _, r := range v {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func validExpiry(v string) bool {
	if len(v) != 5 || v[2] != '/' {
		return false
	}
	mm, yy := v[:2], v[3:]
	if len(digits(mm)) != 2 || len(digits(yy)) != 2 {
		return false
	}
	return mm >= "01" && mm <= "12"
}

// Booking is a confirmed (simulated) order.
type Booking struct {
	ID          uuid.UUID
	Reference   string
	VenueName   string
	Customer    string
	Email       string
	CardLast4   string
	Breakdown   Breakdown
	ConfirmedAt time.Time
}

// Confirm turns a validated form and a price breakdown into a booking. No
// payment is taken.
func Confirm(venueName string, form Form, b Breakdown, now time.Time) Booking {
	id := uuid.New()
	card := digits(form[FieldCardNumber])
	if len(card) > 4 {
		card = card[len(card)-4:]
	}
	return Booking{
		ID:          id,
		Reference:   Reference(id),
		VenueName:   venueName,
		Customer:    strings.TrimSpace(form[FieldFirstName] + " " + form[FieldLastName]),
		Email:       strings.TrimSpace(form[FieldEmail]),
		CardLast4:   card,
		Breakdown:   b,
		ConfirmedAt: now,
	}
}

// Reference derives the short confirmation code shown to the customer.
func Reference(id uuid.UUID) string {
	return strings.ToUpper(strings.ReplaceAll(id.String(), "-", "")[:8])
}
