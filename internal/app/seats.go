package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
	"github.com/redis/go-redis/v9"
)

// Cleans up expired seat locks of an event and returns the seats still locked
// by anyone other than ARGV[2].
var filterValidLockSeats = redis.NewScript(`
	local setKey = KEYS[1]
	local eventId = ARGV[1]
	local owner = ARGV[2]
	local cursor = "0"
	local batchSize = 100
	local expiredSeats = {}
	local validSeats = {}

	repeat
		local result = redis.call("SSCAN", setKey, cursor, "COUNT", batchSize)
		cursor = result[1]
		local seatNumbers = result[2]

		for _, seatNumber in ipairs(seatNumbers) do
			local holder = redis.call("GET", "seat_lock:" .. eventId .. ":" .. seatNumber)
			if not holder then
				table.insert(expiredSeats, seatNumber)
			elseif holder ~= owner then
				table.insert(validSeats, tonumber(seatNumber))
			end
		end
	until cursor == "0"

	if #expiredSeats > 0 then
		redis.call("SREM", setKey, unpack(expiredSeats))
	end

	return validSeats
`)

func (app *Application) GetSeatMap(w http.ResponseWriter, r *http.Request, eventId int) {
	if eventId < 1 {
		app.badRequestResponse(w, r, fmt.Errorf("event ID must be greater than zero"))
		return
	}

	event, err := app.eventRepo.GetById(r.Context(), eventId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	layout, err := app.buildEventLayout(r.Context(), event, app.cartOwner(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	bookedSeats := layout.BookedSeats()
	if bookedSeats == nil {
		bookedSeats = []int{}
	}

	resp := api.SeatMapResponse{
		EventId:     event.ID,
		EventName:   event.Name,
		StartsAt:    event.StartsAt,
		Config:      toApiLayoutConfig(event.Layout),
		BookedSeats: bookedSeats,
		Layout:      toLayoutResponse(layout),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// buildEventLayout renders the layout of event with every seat owner cannot
// take marked as booked.
func (app *Application) buildEventLayout(
	ctx context.Context,
	event *domain.Event,
	owner string) (*seatlayout.Layout, error) {

	unavailable, err := app.unavailableSeats(ctx, event.ID, owner)
	if err != nil {
		return nil, err
	}

	layout, err := seatlayout.Build(event.Layout, unavailable)
	if err != nil {
		return nil, fmt.Errorf("stored layout of event %d is invalid: %w", event.ID, err)
	}

	return layout, nil
}

// unavailableSeats merges the seats booked in the database with the seats
// currently locked by other owners.
func (app *Application) unavailableSeats(ctx context.Context, eventID int, owner string) ([]int, error) {
	cmd := filterValidLockSeats.Run(ctx, app.redis, []string{seatSetKey(eventID)}, eventID, owner)
	lockedSeats, err := cmd.Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to run filterValidLockSeats script: %w", err)
	}

	bookedSeats, err := app.bookingRepo.GetBookedSeats(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to get booked seats from DB: %w", err)
	}

	unavailable := slices.Clone(bookedSeats)
	for _, n := range lockedSeats {
		unavailable = append(unavailable, int(n))
	}

	slices.Sort(unavailable)

	return slices.Compact(unavailable), nil
}
