package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentMethodWallet PaymentMethod = "wallet"
	PaymentMethodCard   PaymentMethod = "card"
)

type Booking struct {
	ID                int
	UserID            int
	EventID           int
	PaymentID         int
	PaymentMethod     PaymentMethod
	CheckoutSessionID string
	TotalAmount       decimal.Decimal
	Seats             []BookingSeat
	CreatedAt         time.Time
}

type BookingSeat struct {
	BookingID  int
	EventID    int
	SeatNumber int
	Zone       string
	Price      decimal.Decimal
}

type BookingSummary struct {
	BookingID     int
	EventID       int
	EventName     string
	StartsAt      time.Time
	SeatNumbers   []int
	TotalAmount   decimal.Decimal
	PaymentMethod PaymentMethod
	CreatedAt     time.Time
}

type BookingRepository interface {
	// CreateWithWallet debits the user's wallet and stores the booking in one
	// transaction.
	CreateWithWallet(ctx context.Context, booking *Booking) error
	// CreateFromCheckout completes the pending payment of a card checkout and
	// stores the booking.
	CreateFromCheckout(ctx context.Context, booking *Booking) error
	GetBookedSeats(ctx context.Context, eventID int) ([]int, error)
	GetSummariesByUserId(ctx context.Context, userID int, pagination Pagination) ([]BookingSummary, *Metadata, error)
}
