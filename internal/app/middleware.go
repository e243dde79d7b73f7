package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

func (app *Application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")

				app.serverErrorResponse(w, r, fmt.Errorf("%s", err))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (app *Application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := app.logger.With(
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"uri", r.URL.RequestURI(),
		)

		ctx := context.WithValue(r.Context(), loggerContextKey, logger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *Application) ensureGuestUserSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionId := app.sessionManager.Token(r.Context())

		if sessionId == "" {
			app.sessionManager.Put(r.Context(), SessionKeyGuest.String(), true)

			_, _, err := app.sessionManager.Commit(r.Context())
			if err != nil {
				app.serverErrorResponse(w, r, err)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

// loadSession makes session data readable without taking over the response
// writer, for routes that hijack the connection.
func (app *Application) loadSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string

		cookie, err := r.Cookie(app.sessionManager.Cookie.Name)
		if err == nil {
			token = cookie.Value
		}

		ctx, err := app.sessionManager.Load(r.Context(), token)
		if err != nil {
			app.serverErrorResponse(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authenticate resolves the caller once per request. A bearer token takes
// precedence over the session and must be valid when present.
func (app *Application) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Add("Vary", "Authorization")

		authorizationHeader := r.Header.Get("Authorization")

		if authorizationHeader != "" {
			scheme, token, ok := strings.Cut(authorizationHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
				app.invalidAuthenticationTokenResponse(w, r)
				return
			}

			claims, err := app.parseAccessToken(token)
			if err != nil {
				app.contextGetLogger(r).Warn("rejected bearer token", "error", err)
				app.invalidAuthenticationTokenResponse(w, r)
				return
			}

			userId, err := strconv.Atoi(claims.Subject)
			if err != nil {
				app.invalidAuthenticationTokenResponse(w, r)
				return
			}

			r = app.contextSetIdentity(r, &identity{UserID: userId, Role: claims.Role})
			next.ServeHTTP(w, r)
			return
		}

		userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
		if userId != 0 {
			role := domain.Role(app.sessionManager.GetString(r.Context(), SessionKeyRole.String()))
			r = app.contextSetIdentity(r, &identity{UserID: userId, Role: role})
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if app.contextGetIdentity(r) == nil {
			app.unauthorizedAccessResponse(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (app *Application) requireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.requireAuthentication(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := app.contextGetIdentity(r)
			if id.Role != role {
				app.contextGetLogger(r).Warn("role check failed", "required", role, "actual", id.Role)
				app.forbiddenResponse(w, r, errors.New(forbiddenMessage(role)))
				return
			}

			next.ServeHTTP(w, r)
		}))
	}
}

func forbiddenMessage(role domain.Role) string {
	return fmt.Sprintf("This resource is only available to %s accounts", role)
}
