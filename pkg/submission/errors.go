package submission

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-orderform/pkg/client"
	"github.com/goliatone/go-orderform/pkg/deadline"
)

var (
	ErrTierRequired          = errors.New("submission: pricing tier is required")
	ErrPaymentMethodRequired = errors.New("submission: payment method is required")
	ErrDeadlineRequired      = errors.New("submission: deadline is required")
	ErrInProgress            = errors.New("submission: an order is already being submitted")
)

const (
	MessageSuccess = "Order created successfully!"
	MessagePartial = "Order created successfully, but some files failed to upload. You can upload them later from your dashboard."
	MessageFailed  = "Failed to create order. Please try again."
)

// MissingFieldError names the first required field left empty.
type MissingFieldError struct {
	Name  string
	Label string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("submission: required field %q is empty", e.Name)
}

// ValidationError wraps a failed client-side check so callers can tell it
// apart from API failures.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }

func (e *ValidationError) Unwrap() error { return e.Err }

// Message returns the customer-facing text for err. API errors keep the
// server's own message; anything unrecognised becomes the generic failure.
func Message(err error) string {
	var missing *MissingFieldError
	var tooSoon *deadline.TooSoonError
	var apiErr *client.APIError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTierRequired):
		return "Please select an academic level"
	case errors.Is(err, ErrPaymentMethodRequired):
		return "Please select a payment method"
	case errors.Is(err, ErrDeadlineRequired), errors.Is(err, deadline.ErrIncomplete):
		return "Please select a deadline"
	case errors.As(err, &missing):
		return "Please fill in " + missing.Label
	case errors.As(err, &tooSoon):
		return "Please choose a deadline at least " + deadline.FormatLead(tooSoon.Lead) + " from now"
	case errors.Is(err, deadline.ErrTooSoon):
		return "Please choose a deadline at least " + deadline.FormatLead(deadline.DefaultLeadTime) + " from now"
	case errors.Is(err, deadline.ErrBeforeMinimumDay),
		errors.Is(err, deadline.ErrInvalidDate),
		errors.Is(err, deadline.ErrInvalidTime),
		errors.Is(err, deadline.ErrUnknownTimezone):
		return "Please choose a valid deadline"
	case errors.Is(err, ErrInProgress):
		return "Your order is already being submitted."
	case errors.As(err, &apiErr) && apiErr.Message != "":
		return apiErr.Message
	default:
		return MessageFailed
	}
}
