package booking

import (
	"errors"
	"fmt"
)

var (
	ErrSeatUnavailable        = errors.New("seat is already booked")
	ErrSelectionLimitExceeded = fmt.Errorf("a maximum of %d seats can be selected", MaxSeats)
	ErrEmptySelection         = errors.New("at least one seat must be selected")
	ErrPaymentMethodRequired  = errors.New("a payment method must be chosen")
	ErrInvalidPaymentMethod   = errors.New("payment method must be one of: wallet, card")
	ErrInvalidTransition      = errors.New("operation is not allowed in the current booking state")
)

// BookingSubmissionError carries the message of a rejected booking exactly as
// the booking API returned it.
type BookingSubmissionError struct {
	Message string
	Err     error
}

func (e *BookingSubmissionError) Error() string {
	return e.Message
}

func (e *BookingSubmissionError) Unwrap() error {
	return e.Err
}
