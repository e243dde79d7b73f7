package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/metinatakli/event-ticketing/internal/domain"
)

type sessionKey string

const (
	SessionKeyUserId = sessionKey("userID")
	SessionKeyRole   = sessionKey("role")
	SessionKeyGuest  = sessionKey("guest")
)

func (s sessionKey) String() string {
	return string(s)
}

type contextKey string

const (
	identityContextKey = contextKey("identity")
	loggerContextKey   = contextKey("logger")
)

// identity is the caller resolved from either the session cookie or a bearer
// access token.
type identity struct {
	UserID int
	Role   domain.Role
}

func (app *Application) contextSetIdentity(r *http.Request, id *identity) *http.Request {
	ctx := context.WithValue(r.Context(), identityContextKey, id)
	return r.WithContext(ctx)
}

// contextGetIdentity returns nil for anonymous callers.
func (app *Application) contextGetIdentity(r *http.Request) *identity {
	id, _ := r.Context().Value(identityContextKey).(*identity)
	return id
}

func (app *Application) contextGetUserId(r *http.Request) int {
	id := app.contextGetIdentity(r)
	if id == nil {
		panic("missing user id from context")
	}

	return id.UserID
}

func (app *Application) contextGetLogger(r *http.Request) *slog.Logger {
	logger, ok := r.Context().Value(loggerContextKey).(*slog.Logger)
	if !ok {
		logger = app.logger
	}

	if id := app.contextGetIdentity(r); id != nil {
		logger = logger.With("user_id", id.UserID)
	}

	return logger
}

// cartOwner identifies who holds seat locks and the cart: the user when one is
// known, otherwise the guest session.
func (app *Application) cartOwner(r *http.Request) string {
	if id := app.contextGetIdentity(r); id != nil {
		return userOwner(id.UserID)
	}

	return sessionOwner(app.sessionManager.Token(r.Context()))
}

func userOwner(userID int) string {
	return fmt.Sprintf("user:%d", userID)
}

func sessionOwner(token string) string {
	return "session:" + token
}
