package domain

import (
	"context"
	"time"

	"github.com/metinatakli/event-ticketing/internal/seatlayout"
)

type Event struct {
	ID        int
	CreatorID int
	Name      string
	Venue     string
	StartsAt  time.Time
	Layout    seatlayout.Config
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetById(ctx context.Context, id int) (*Event, error)
	// UpdateLayout stores event.Layout. It fails with ErrEventHasBookings once
	// any seat of the event is booked or a card checkout is pending, and
	// with ErrEditConflict when the version moved.
	UpdateLayout(ctx context.Context, event *Event) error
}
