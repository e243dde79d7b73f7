package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
	"github.com/shopspring/decimal"
)

type Cart struct {
	Id         string `json:"-"`
	EventID    int
	EventName  string
	StartsAt   time.Time
	TotalPrice decimal.Decimal
	Seats      []CartSeat
}

type CartSeat struct {
	SeatNumber int
	Zone       string
	Section    string
	Row        int
	Column     int
	Price      decimal.Decimal
}

// NewCart prices seatNumbers against layout. The seats must exist in the
// layout.
func NewCart(event *Event, layout *seatlayout.Layout, seatNumbers []int) (Cart, error) {
	seats := make([]CartSeat, 0, len(seatNumbers))

	for _, n := range seatNumbers {
		seat, err := layout.Seat(n)
		if err != nil {
			return Cart{}, err
		}

		seats = append(seats, CartSeat{
			SeatNumber: seat.Number,
			Zone:       string(seat.Zone),
			Section:    string(seat.Section),
			Row:        seat.Row,
			Column:     seat.Column,
			Price:      seat.Price,
		})
	}

	total, err := layout.ComputeTotal(seatNumbers)
	if err != nil {
		return Cart{}, err
	}

	return Cart{
		Id:         uuid.New().String(),
		EventID:    event.ID,
		EventName:  event.Name,
		StartsAt:   event.StartsAt,
		TotalPrice: total,
		Seats:      seats,
	}, nil
}

func (c Cart) SeatNumbers() []int {
	numbers := make([]int, len(c.Seats))
	for i, s := range c.Seats {
		numbers[i] = s.SeatNumber
	}
	return numbers
}

// BookingSeats converts the cart into the rows stored for a booking.
func (c Cart) BookingSeats() []BookingSeat {
	seats := make([]BookingSeat, len(c.Seats))
	for i, s := range c.Seats {
		seats[i] = BookingSeat{
			EventID:    c.EventID,
			SeatNumber: s.SeatNumber,
			Zone:       s.Zone,
			Price:      s.Price,
		}
	}
	return seats
}
