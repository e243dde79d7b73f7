package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/booking"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
)

func (app *Application) Checkout(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.BookingRequest

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

	event, err := app.eventRepo.GetById(r.Context(), input.EventId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	user, err := app.userRepo.GetById(r.Context(), app.contextGetUserId(r))
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	owner := userOwner(user.ID)

	layout, err := app.buildEventLayout(r.Context(), event, owner)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	selection := booking.NewSelection(event.ID, layout)

	for _, n := range input.SelectedSeats {
		err = selection.ToggleSeat(n)
		if err != nil {
			app.selectionErrorResponse(w, r, err)
			return
		}
	}

	err = selection.ChoosePaymentMethod(booking.PaymentMethod(input.PaymentMethod))
	if err != nil {
		app.unprocessableResponse(w, r, err)
		return
	}

	total, err := selection.Confirm()
	if err != nil {
		app.unprocessableResponse(w, r, err)
		return
	}

	if !total.Equal(input.TotalAmount) {
		logger.Warn("checkout rejected: submitted total differs from current prices",
			"submitted", input.TotalAmount, "computed", total)
		app.editConflictResponseWithErr(w, r, domain.ErrPriceChanged)
		return
	}

	submitter := &checkoutSubmitter{
		app:    app,
		logger: logger,
		owner:  owner,
		user:   user,
		event:  event,
		layout: layout,
	}

	result, err := selection.Submit(r.Context(), submitter)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientBalance):
			app.paymentRequiredResponse(w, r, err)
		case errors.Is(err, domain.ErrSeatAlreadyReserved):
			app.editConflictResponseWithErr(w, r, fmt.Errorf("some of the selected seats are already reserved"))
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	status := http.StatusOK
	if result.BookingID != 0 {
		status = http.StatusCreated
	}

	resp := api.BookingResponse{
		BookingId:   result.BookingID,
		RedirectUrl: result.RedirectURL,
	}

	err = app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// checkoutSubmitter settles a confirmed selection on the server: the wallet
// is debited right away, a card payment is handed to the payment provider.
type checkoutSubmitter struct {
	app    *Application
	logger *slog.Logger
	owner  string
	user   *domain.User
	event  *domain.Event
	layout *seatlayout.Layout
}

func (s *checkoutSubmitter) SubmitBooking(ctx context.Context, req booking.Request) (*booking.Result, error) {
	cart, err := domain.NewCart(s.event, s.layout, req.SelectedSeats)
	if err != nil {
		return nil, err
	}

	switch req.PaymentMethod {
	case booking.PaymentMethodWallet:
		return s.payWithWallet(ctx, cart)
	case booking.PaymentMethodCard:
		return s.payWithCard(ctx, cart)
	default:
		return nil, booking.ErrInvalidPaymentMethod
	}
}

func (s *checkoutSubmitter) payWithWallet(ctx context.Context, cart domain.Cart) (*booking.Result, error) {
	app := s.app
	seats := cart.SeatNumbers()

	err := app.tryLockSeats(ctx, cart.EventID, seats, s.owner, seatLockTTL)
	if err != nil {
		return nil, err
	}

	b := domain.Booking{
		UserID:      s.user.ID,
		EventID:     cart.EventID,
		TotalAmount: cart.TotalPrice,
		Seats:       cart.BookingSeats(),
	}

	err = app.bookingRepo.CreateWithWallet(ctx, &b)
	if err != nil {
		app.releaseSeatLocks(ctx, cart.EventID, seats, s.owner)
		return nil, err
	}

	s.logger.Info("booking paid from wallet", "booking_id", b.ID, "event_id", b.EventID, "amount", b.TotalAmount)

	app.finishCheckout(ctx, s.owner, cart.EventID, seats)
	app.sendBookingConfirmation(s.logger, s.user, s.event, &b)

	return &booking.Result{BookingID: b.ID}, nil
}

func (s *checkoutSubmitter) payWithCard(ctx context.Context, cart domain.Cart) (*booking.Result, error) {
	app := s.app
	seats := cart.SeatNumbers()

	err := app.tryLockSeats(ctx, cart.EventID, seats, s.owner, checkoutLockTTL)
	if err != nil {
		return nil, err
	}

	checkoutSession, err := app.paymentProvider.CreateCheckoutSession(s.owner, s.user, cart)
	if err != nil {
		app.releaseSeatLocks(ctx, cart.EventID, seats, s.owner)
		return nil, fmt.Errorf("checkout session couldn't be created: %w", err)
	}

	p := domain.Payment{
		UserID:            s.user.ID,
		EventID:           cart.EventID,
		Method:            domain.PaymentMethodCard,
		CheckoutSessionId: &checkoutSession.ID,
		Amount:            cart.TotalPrice,
		Currency:          "USD",
		Status:            domain.PaymentStatusPending,
	}

	err = app.paymentRepo.Create(ctx, &p)
	if err != nil {
		app.releaseSeatLocks(ctx, cart.EventID, seats, s.owner)
		return nil, err
	}

	s.logger.Info("checkout session created", "checkout_session_id", checkoutSession.ID, "event_id", cart.EventID)

	return &booking.Result{RedirectURL: checkoutSession.URL}, nil
}

// finishCheckout drops the locks of booked seats and the cart that held them.
func (app *Application) finishCheckout(ctx context.Context, owner string, eventID int, seats []int) {
	app.releaseSeatLocks(ctx, eventID, seats, owner)

	cart, err := app.loadCart(ctx, owner)
	if err != nil {
		if !errors.Is(err, domain.ErrCartNotFound) {
			app.logger.Error("failed to load cart after checkout", "owner", owner, "error", err)
		}

		return
	}

	if cart.EventID != eventID {
		return
	}

	err = app.clearCart(ctx, owner, cart)
	if err != nil {
		app.logger.Error("failed to clear cart after checkout", "owner", owner, "error", err)
	}
}

func (app *Application) sendBookingConfirmation(
	logger *slog.Logger,
	user *domain.User,
	event *domain.Event,
	b *domain.Booking) {

	seats := make([]int, len(b.Seats))
	for i, s := range b.Seats {
		seats[i] = s.SeatNumber
	}

	data := map[string]any{
		"name":          user.Name,
		"bookingID":     b.ID,
		"eventName":     event.Name,
		"startsAt":      event.StartsAt.Format("Jan 2, 2006 15:04"),
		"seats":         seats,
		"totalAmount":   b.TotalAmount.StringFixed(2),
		"paymentMethod": string(b.PaymentMethod),
	}

	go func() {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic occurred during sending booking confirmation", "panic", err)
			}
		}()

		err := app.mailer.Send(user.Email, "booking_confirmation.tmpl", data)
		if err != nil {
			logger.Error("failed to send booking confirmation email", "booking_id", b.ID, "error", err)
		} else {
			logger.Info("booking confirmation email sent", "booking_id", b.ID)
		}
	}()
}
