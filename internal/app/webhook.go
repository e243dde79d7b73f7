package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/payment"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

const maxWebhookBytes = 65536

func (app *Application) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBytes)

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("failed to read webhook body: %w", err))
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		r.Header.Get("Stripe-Signature"),
		app.config.Stripe.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.Warn("webhook signature verification failed", "error", err)
		app.badRequestResponse(w, r, fmt.Errorf("invalid webhook signature"))
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		err = app.handleCheckoutCompleted(r.Context(), event)
	case stripe.EventTypeCheckoutSessionExpired:
		err = app.handleCheckoutExpired(r.Context(), event)
	default:
		logger.Info("unhandled webhook event type", "type", event.Type)
	}

	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// checkoutMetadata is what CreateCheckoutSession stores on the session.
type checkoutMetadata struct {
	sessionID string
	owner     string
	userID    int
	eventID   int
	seats     []int
}

func parseCheckoutSession(event stripe.Event) (*checkoutMetadata, error) {
	var cs stripe.CheckoutSession

	err := json.Unmarshal(event.Data.Raw, &cs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse checkout session: %w", err)
	}

	userID, err := strconv.Atoi(cs.Metadata[payment.MetadataUserID])
	if err != nil {
		return nil, fmt.Errorf("invalid %s metadata: %w", payment.MetadataUserID, err)
	}

	eventID, err := strconv.Atoi(cs.Metadata[payment.MetadataEventID])
	if err != nil {
		return nil, fmt.Errorf("invalid %s metadata: %w", payment.MetadataEventID, err)
	}

	seats, err := payment.ParseSeats(cs.Metadata[payment.MetadataSeats])
	if err != nil {
		return nil, err
	}

	return &checkoutMetadata{
		sessionID: cs.ID,
		owner:     cs.Metadata[payment.MetadataOwner],
		userID:    userID,
		eventID:   eventID,
		seats:     seats,
	}, nil
}

func (app *Application) handleCheckoutCompleted(ctx context.Context, stripeEvent stripe.Event) error {
	meta, err := parseCheckoutSession(stripeEvent)
	if err != nil {
		return err
	}

	logger := app.logger.With("checkout_session_id", meta.sessionID, "event_id", meta.eventID)

	event, err := app.eventRepo.GetById(ctx, meta.eventID)
	if err != nil {
		return fmt.Errorf("failed to load event %d: %w", meta.eventID, err)
	}

	layout, err := seatlayout.Build(event.Layout, nil)
	if err != nil {
		return err
	}

	cart, err := domain.NewCart(event, layout, meta.seats)
	if err != nil {
		if errors.Is(err, seatlayout.ErrSeatNotFound) {
			logger.Error("paid seats no longer exist in the event layout, refund required", "seats", meta.seats)
			app.releaseSeatLocks(ctx, meta.eventID, meta.seats, meta.owner)
			return app.paymentRepo.UpdateStatus(ctx, meta.sessionID, domain.PaymentStatusCanceled, "refund required: seats no longer exist")
		}

		return err
	}

	b := domain.Booking{
		UserID:            meta.userID,
		EventID:           meta.eventID,
		CheckoutSessionID: meta.sessionID,
		Seats:             cart.BookingSeats(),
	}

	err = app.bookingRepo.CreateFromCheckout(ctx, &b)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Info("checkout session already processed")
			return nil
		case errors.Is(err, domain.ErrSeatAlreadyReserved):
			logger.Error("paid seats were booked by someone else, refund required", "seats", meta.seats)
			app.releaseSeatLocks(ctx, meta.eventID, meta.seats, meta.owner)
			return app.paymentRepo.UpdateStatus(ctx, meta.sessionID, domain.PaymentStatusCanceled, "refund required: seats already booked")
		default:
			return err
		}
	}

	logger.Info("booking paid by card", "booking_id", b.ID, "amount", b.TotalAmount)

	app.finishCheckout(ctx, meta.owner, meta.eventID, meta.seats)

	user, err := app.userRepo.GetById(ctx, meta.userID)
	if err != nil {
		logger.Error("failed to load user for booking confirmation", "error", err)
		return nil
	}

	app.sendBookingConfirmation(logger, user, event, &b)

	return nil
}

func (app *Application) handleCheckoutExpired(ctx context.Context, stripeEvent stripe.Event) error {
	meta, err := parseCheckoutSession(stripeEvent)
	if err != nil {
		return err
	}

	err = app.paymentRepo.UpdateStatus(ctx, meta.sessionID, domain.PaymentStatusCanceled, "checkout session expired")
	if err != nil {
		return err
	}

	app.releaseSeatLocks(ctx, meta.eventID, meta.seats, meta.owner)

	app.logger.Info("checkout session expired", "checkout_session_id", meta.sessionID, "event_id", meta.eventID)

	return nil
}
