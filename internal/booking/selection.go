// Package booking holds the buyer-side seat selection state machine.
package booking

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/metinatakli/event-ticketing/internal/seatlayout"
	"github.com/shopspring/decimal"
)

const MaxSeats = 10

type State int

const (
	StateIdle State = iota
	StateSelecting
	StateConfirming
	StateSubmitted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateConfirming:
		return "confirming"
	case StateSubmitted:
		return "submitted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

type PaymentMethod string

const (
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCard   PaymentMethod = "card"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodWallet || m == PaymentMethodCard
}

type Request struct {
	EventID       int             `json:"eventId"`
	SelectedSeats []int           `json:"selectedSeats"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
}

type Result struct {
	BookingID   int    `json:"bookingId,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Submitter hands a confirmed selection to the booking API: a wallet
// deduction or an external checkout redirect.
type Submitter interface {
	SubmitBooking(ctx context.Context, req Request) (*Result, error)
}

// Selection tracks the seats a buyer picked for one event. It is not safe
// for concurrent use.
type Selection struct {
	eventID int
	layout  *seatlayout.Layout
	state   State
	seats   []int
	method  PaymentMethod
	total   decimal.Decimal
	result  *Result
}

func NewSelection(eventID int, layout *seatlayout.Layout) *Selection {
	return &Selection{
		eventID: eventID,
		layout:  layout,
		state:   StateIdle,
		total:   decimal.Zero,
	}
}

func (s *Selection) State() State {
	return s.state
}

// Seats returns the selected seat numbers in the order they were picked.
func (s *Selection) Seats() []int {
	return slices.Clone(s.seats)
}

func (s *Selection) PaymentMethod() PaymentMethod {
	return s.method
}

func (s *Selection) Total() decimal.Decimal {
	return s.total
}

func (s *Selection) Result() *Result {
	return s.result
}

// ToggleSeat adds the seat to the selection or removes it when already
// selected. Rejected toggles leave the selection untouched.
func (s *Selection) ToggleSeat(number int) error {
	if s.state != StateIdle && s.state != StateSelecting {
		return ErrInvalidTransition
	}

	seat, err := s.layout.Seat(number)
	if err != nil {
		return err
	}

	if seat.IsBooked {
		return fmt.Errorf("%w: %d", ErrSeatUnavailable, number)
	}

	if i := slices.Index(s.seats, number); i >= 0 {
		s.seats = slices.Delete(s.seats, i, i+1)
		s.state = StateSelecting
		return nil
	}

	if len(s.seats) >= MaxSeats {
		return ErrSelectionLimitExceeded
	}

	s.seats = append(s.seats, number)
	s.state = StateSelecting

	return nil
}

func (s *Selection) ChoosePaymentMethod(m PaymentMethod) error {
	if s.state != StateIdle && s.state != StateSelecting {
		return ErrInvalidTransition
	}

	if !m.Valid() {
		return ErrInvalidPaymentMethod
	}

	s.method = m

	return nil
}

// Confirm freezes the selection and prices it.
func (s *Selection) Confirm() (decimal.Decimal, error) {
	if s.state != StateSelecting {
		return decimal.Zero, ErrInvalidTransition
	}

	if len(s.seats) == 0 {
		return decimal.Zero, ErrEmptySelection
	}

	if s.method == "" {
		return decimal.Zero, ErrPaymentMethodRequired
	}

	total, err := s.layout.ComputeTotal(s.seats)
	if err != nil {
		return decimal.Zero, err
	}

	s.total = total
	s.state = StateConfirming

	return total, nil
}

// Back returns a confirming selection to editing.
func (s *Selection) Back() error {
	if s.state != StateConfirming {
		return ErrInvalidTransition
	}

	s.state = StateSelecting

	return nil
}

// Submit sends the confirmed selection through sub. A rejected submission
// puts the selection back into editing and reports the server message as is.
func (s *Selection) Submit(ctx context.Context, sub Submitter) (*Result, error) {
	if s.state != StateConfirming {
		return nil, ErrInvalidTransition
	}

	req := Request{
		EventID:       s.eventID,
		SelectedSeats: s.Seats(),
		TotalAmount:   s.total,
		PaymentMethod: s.method,
	}

	result, err := sub.SubmitBooking(ctx, req)
	if err != nil {
		s.state = StateSelecting

		var submissionErr *BookingSubmissionError
		if errors.As(err, &submissionErr) {
			return nil, submissionErr
		}

		return nil, &BookingSubmissionError{Message: err.Error(), Err: err}
	}

	s.result = result
	s.state = StateSubmitted

	return result, nil
}
