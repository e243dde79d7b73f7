package domain

import (
	"testing"
	"time"

	"github.com/metinatakli/event-ticketing/internal/seatlayout"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart(t *testing.T) {
	normal, premium := decimal.NewFromInt(100), decimal.NewFromInt(200)
	cfg := seatlayout.Config{
		LayoutType: seatlayout.WithBalcony,
		TotalSeats: 80,
		PriceConfig: seatlayout.PriceConfig{
			BalconyPrices: &seatlayout.BalconyPrices{Normal: normal, Premium: premium},
		},
	}

	layout, err := seatlayout.Build(cfg, nil)
	require.NoError(t, err)

	event := &Event{ID: 3, Name: "Opening night", StartsAt: time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC), Layout: cfg}

	cart, err := NewCart(event, layout, []int{1, 80})
	require.NoError(t, err)

	assert.NotEmpty(t, cart.Id)
	assert.Equal(t, 3, cart.EventID)
	assert.Equal(t, []int{1, 80}, cart.SeatNumbers())
	assert.True(t, decimal.NewFromInt(300).Equal(cart.TotalPrice))
	assert.Equal(t, "premium", cart.Seats[0].Zone)
	assert.Equal(t, "balcony", cart.Seats[0].Section)
	assert.Equal(t, "normal", cart.Seats[1].Zone)

	rows := cart.BookingSeats()
	require.Len(t, rows, 2)
	assert.Equal(t, 80, rows[1].SeatNumber)
	assert.Equal(t, 3, rows[1].EventID)
	assert.True(t, normal.Equal(rows[1].Price))
}

func TestNewCartRejectsUnknownSeat(t *testing.T) {
	price := decimal.NewFromInt(10)
	cfg := seatlayout.Config{LayoutType: seatlayout.Normal, TotalSeats: 8, PriceConfig: seatlayout.PriceConfig{NormalPrice: &price}}

	layout, err := seatlayout.Build(cfg, nil)
	require.NoError(t, err)

	_, err = NewCart(&Event{ID: 1}, layout, []int{9})
	assert.ErrorIs(t, err, seatlayout.ErrSeatNotFound)
}

func TestNewMetadata(t *testing.T) {
	m := NewMetadata(21, 2, 10)

	assert.Equal(t, &Metadata{CurrentPage: 2, FirstPage: 1, LastPage: 3, PageSize: 10, TotalRecords: 21}, m)
}
