package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/booking"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
	"github.com/redis/go-redis/v9"
)

const (
	seatLockTTL     = 10 * time.Minute
	cartTTL         = 10 * time.Minute
	checkoutLockTTL = 30 * time.Minute
	loginGraceTTL   = 3 * time.Minute
)

var lockSeatsScript = redis.NewScript(`
	-- KEYS = seat lock keys (seat_lock:<eventId>:<seat>)
	-- ARGV = [owner, ttl]

	for i=1, #KEYS do
		local holder = redis.call("GET", KEYS[i])
		if holder and holder ~= ARGV[1] then
			return {err = "seat already locked"}
		end
	end

	for i=1, #KEYS do
		redis.call("SET", KEYS[i], ARGV[1], "EX", ARGV[2])
	end

	return "OK"
`)

var releaseSeatsScript = redis.NewScript(`
	-- KEYS[1] = seat_locks:<eventId>, KEYS[2..] = seat lock keys
	-- ARGV[1] = owner, ARGV[i] = seat number locked by KEYS[i]

	local released = 0

	for i=2, #KEYS do
		if redis.call("GET", KEYS[i]) == ARGV[1] then
			redis.call("DEL", KEYS[i])
			redis.call("SREM", KEYS[1], ARGV[i])
			released = released + 1
		end
	end

	return released
`)

func (app *Application) CreateCart(w http.ResponseWriter, r *http.Request, eventId int) {
	logger := app.contextGetLogger(r)

	if eventId < 1 {
		app.badRequestResponse(w, r, fmt.Errorf("event ID must be greater than zero"))
		return
	}

	var input api.CreateCartRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	owner := app.cartOwner(r)

	cartId, err := app.redis.Get(r.Context(), cartOwnerKey(owner)).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Error("failed to check for existing cart in redis", "error", err)
		app.serverErrorResponse(w, r, err)
		return
	}

	if cartId != "" {
		logger.Warn("cart creation attempt rejected: a cart already exists for this owner")
		app.badRequestResponse(w, r, fmt.Errorf("cannot create new cart if a cart already exists"))
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

	layout, err := app.buildEventLayout(r.Context(), event, owner)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	selection := booking.NewSelection(event.ID, layout)

	for _, n := range input.SeatNumbers {
		err = selection.ToggleSeat(n)
		if err != nil {
			app.selectionErrorResponse(w, r, err)
			return
		}
	}

	seats := selection.Seats()

	err = app.tryLockSeats(r.Context(), event.ID, seats, owner, seatLockTTL)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSeatAlreadyReserved):
			logger.Warn("cart creation conflict due to race condition: user selected an already locked seat")
			app.editConflictResponseWithErr(w, r, fmt.Errorf("some of the selected seats are already reserved"))
		default:
			app.serverErrorResponse(w, r, fmt.Errorf("seats couldn't be acquired: %w", err))
		}

		return
	}

	cart, err := app.createCart(r.Context(), owner, event, layout, seats)
	if err != nil {
		logger.Error("cart creation process failed", "error", err)
		app.serverErrorResponse(w, r, fmt.Errorf("cart couldn't be created: %w", err))
		return
	}

	logger.Info("cart created", "event_id", event.ID, "cart_id", cart.Id, "seats", seats)

	resp := api.CartResponse{
		Cart: toApiCart(cart),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// selectionErrorResponse maps a rejected seat toggle to its HTTP status.
func (app *Application) selectionErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, booking.ErrSeatUnavailable):
		app.editConflictResponseWithErr(w, r, fmt.Errorf("some of the selected seats are already reserved"))
	case errors.Is(err, booking.ErrSelectionLimitExceeded):
		app.unprocessableResponse(w, r, err)
	case errors.Is(err, seatlayout.ErrSeatNotFound):
		app.notFoundResponseWithErr(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func toApiCart(cart *domain.Cart) api.Cart {
	seats := make([]api.CartSeat, len(cart.Seats))

	for i, v := range cart.Seats {
		seats[i] = api.CartSeat{
			SeatNumber: v.SeatNumber,
			Zone:       v.Zone,
			Section:    v.Section,
			Row:        v.Row,
			Column:     v.Column,
			Price:      v.Price,
		}
	}

	return api.Cart{
		CartId:     cart.Id,
		EventId:    cart.EventID,
		EventName:  cart.EventName,
		StartsAt:   cart.StartsAt,
		Seats:      seats,
		TotalPrice: cart.TotalPrice,
		HoldTime:   int(cartTTL.Seconds()),
	}
}

func (app *Application) tryLockSeats(
	ctx context.Context,
	eventID int,
	seats []int,
	owner string,
	ttl time.Duration) error {

	keys := make([]string, len(seats))
	for i, n := range seats {
		keys[i] = seatLockKey(eventID, n)
	}

	err := lockSeatsScript.Run(ctx, app.redis, keys, owner, int(ttl.Seconds())).Err()
	if err != nil {
		if redis.HasErrorPrefix(err, "seat already locked") {
			return domain.ErrSeatAlreadyReserved
		}

		return err
	}

	members := make([]any, len(seats))
	for i, n := range seats {
		members[i] = n
	}

	return app.redis.SAdd(ctx, seatSetKey(eventID), members...).Err()
}

// releaseSeatLocks drops the locks owner holds on seats. Locks held by
// anyone else are left alone.
func (app *Application) releaseSeatLocks(ctx context.Context, eventID int, seats []int, owner string) {
	if len(seats) == 0 {
		return
	}

	keys := make([]string, 0, len(seats)+1)
	args := make([]any, 0, len(seats)+1)

	keys = append(keys, seatSetKey(eventID))
	args = append(args, owner)

	for _, n := range seats {
		keys = append(keys, seatLockKey(eventID, n))
		args = append(args, n)
	}

	err := releaseSeatsScript.Run(ctx, app.redis, keys, args...).Err()
	if err != nil {
		app.logger.Error("failed to release seat locks", "event_id", eventID, "owner", owner, "error", err)
	}
}

func (app *Application) createCart(
	ctx context.Context,
	owner string,
	event *domain.Event,
	layout *seatlayout.Layout,
	seats []int) (*domain.Cart, error) {

	cart, err := domain.NewCart(event, layout, seats)
	if err != nil {
		app.releaseSeatLocks(ctx, event.ID, seats, owner)
		return nil, err
	}

	cartBytes, err := json.Marshal(cart)
	if err != nil {
		app.releaseSeatLocks(ctx, event.ID, seats, owner)
		return nil, err
	}

	cartPipe := app.redis.TxPipeline()
	cartPipe.Set(ctx, cartOwnerKey(owner), cart.Id, cartTTL)
	cartPipe.Set(ctx, cartDataKey(cart.Id), cartBytes, cartTTL)

	_, err = cartPipe.Exec(ctx)
	if err != nil {
		app.releaseSeatLocks(ctx, event.ID, seats, owner)
		return nil, err
	}

	return &cart, nil
}

// loadCart returns the cart bound to owner or domain.ErrCartNotFound. A
// pointer to a cart that already expired is cleaned up on the way.
func (app *Application) loadCart(ctx context.Context, owner string) (*domain.Cart, error) {
	cartId, err := app.redis.Get(ctx, cartOwnerKey(owner)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrCartNotFound
		}

		return nil, err
	}

	cartBytes, err := app.redis.Get(ctx, cartDataKey(cartId)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			app.logger.Warn("dangling cart owner key found and cleaned up", "dangling_cart_id", cartId)
			app.redis.Del(ctx, cartOwnerKey(owner))
			return nil, domain.ErrCartNotFound
		}

		return nil, err
	}

	var cart domain.Cart

	err = json.Unmarshal(cartBytes, &cart)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal cart %s: %w", cartId, err)
	}

	cart.Id = cartId

	return &cart, nil
}

// clearCart releases the seat locks of cart and forgets it.
func (app *Application) clearCart(ctx context.Context, owner string, cart *domain.Cart) error {
	app.releaseSeatLocks(ctx, cart.EventID, cart.SeatNumbers(), owner)

	pipe := app.redis.TxPipeline()
	pipe.Del(ctx, cartDataKey(cart.Id))
	pipe.Del(ctx, cartOwnerKey(owner))

	_, err := pipe.Exec(ctx)

	return err
}

func cartOwnerKey(owner string) string {
	return fmt.Sprintf("cart:%s", owner)
}

func cartDataKey(cartID string) string {
	return fmt.Sprintf("cart_data:%s", cartID)
}

func seatLockKey(eventID, seatNumber int) string {
	return fmt.Sprintf("seat_lock:%d:%d", eventID, seatNumber)
}

func seatSetKey(eventID int) string {
	return fmt.Sprintf("seat_locks:%d", eventID)
}

func (app *Application) DeleteCart(w http.ResponseWriter, r *http.Request, eventId int) {
	logger := app.contextGetLogger(r)

	if eventId < 1 {
		app.badRequestResponse(w, r, fmt.Errorf("event ID must be greater than zero"))
		return
	}

	owner := app.cartOwner(r)

	cart, err := app.loadCart(r.Context(), owner)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCartNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if cart.EventID != eventId {
		logger.Warn(
			"cart deletion attempt with mismatched event ID in URL",
			"cart_event_id", cart.EventID,
			"url_event_id", eventId,
		)
		app.notFoundResponse(w, r)
		return
	}

	err = app.clearCart(r.Context(), owner, cart)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// migrateCart hands the cart and seat locks of a guest session to the user
// that just logged in. When the user already holds a cart the guest cart is
// released instead.
func (app *Application) migrateCart(ctx context.Context, from, to string) error {
	cart, err := app.loadCart(ctx, from)
	if err != nil {
		if errors.Is(err, domain.ErrCartNotFound) {
			return nil
		}

		return fmt.Errorf("failed to load cart of %s: %w", from, err)
	}

	exists, err := app.redis.Exists(ctx, cartOwnerKey(to)).Result()
	if err != nil {
		return fmt.Errorf("failed to check cart of %s: %w", to, err)
	}

	if exists > 0 {
		return app.clearCart(ctx, from, cart)
	}

	ttl, err := app.redis.TTL(ctx, cartDataKey(cart.Id)).Result()
	if err != nil {
		return fmt.Errorf("failed to get TTL for cart ID %s: %w", cart.Id, err)
	}

	if ttl <= 0 {
		// Key either doesn't exist (-2) or is persistent (-1)
		return nil
	}

	newTTL := ttl + loginGraceTTL
	lockKeys := make([]string, len(cart.Seats))

	for i, seat := range cart.Seats {
		lockKeys[i] = seatLockKey(cart.EventID, seat.SeatNumber)
	}

	err = app.redis.Watch(ctx, func(tx *redis.Tx) error {
		for _, lockKey := range lockKeys {
			holder, err := tx.Get(ctx, lockKey).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}

			if holder != from {
				return domain.ErrSeatConflict
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, lockKey := range lockKeys {
				pipe.Set(ctx, lockKey, to, newTTL)
			}

			return nil
		})

		return err
	}, lockKeys...)

	if err != nil {
		return fmt.Errorf("failed to migrate seat locks from %s to %s: %w", from, to, err)
	}

	pipe := app.redis.TxPipeline()
	pipe.Expire(ctx, cartDataKey(cart.Id), newTTL)
	pipe.Set(ctx, cartOwnerKey(to), cart.Id, newTTL)
	pipe.Del(ctx, cartOwnerKey(from))

	_, err = pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to execute Redis pipeline for cart migration: %w", err)
	}

	return nil
}
