package app

import (
	"errors"
	"net/http"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

func (app *Application) Login(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
	if userId != 0 {
		resp := api.AlreadyLoggedInResponse{
			Message: "You are already logged in",
		}

		err := app.writeJSON(w, http.StatusOK, resp, nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	var input api.LoginRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	user, ok := app.checkCredentials(w, r, input)
	if !ok {
		return
	}

	guestOwner := sessionOwner(app.sessionManager.Token(r.Context()))

	// To help prevent session fixation attacks we should renew the session token after any privilege level change.
	// https://github.com/OWASP/CheatSheetSeries/blob/master/cheatsheets/Session_Management_Cheat_Sheet.md#renew-the-session-id-after-any-privilege-level-change
	err = app.sessionManager.RenewToken(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.migrateCart(r.Context(), guestOwner, userOwner(user.ID))
	if err != nil {
		logger.Error("failed to migrate guest cart", "error", err, "user_id", user.ID)
	}

	app.sessionManager.Put(r.Context(), SessionKeyUserId.String(), user.ID)
	app.sessionManager.Put(r.Context(), SessionKeyRole.String(), string(user.Role))

	w.WriteHeader(http.StatusNoContent)
}

// checkCredentials writes the failure response itself when it returns false.
func (app *Application) checkCredentials(w http.ResponseWriter, r *http.Request, input api.LoginRequest) (*domain.User, bool) {
	logger := app.contextGetLogger(r)

	err := app.validator.Struct(input)
	if err != nil {
		logger.Warn("login validation failed")
		app.invalidCredentialsResponse(w, r)
		return nil, false
	}

	user, err := app.userRepo.GetByEmail(r.Context(), input.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("login attempt for non-existent user")
			app.invalidCredentialsResponse(w, r)
		default:
			logger.Error("failed to get user by email during login", "error", err)
			app.serverErrorResponse(w, r, err)
		}

		return nil, false
	}

	match, err := user.Password.Matches(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return nil, false
	}

	if !match {
		logger.Warn("login failed due to incorrect password")
		app.invalidCredentialsResponse(w, r)
		return nil, false
	}

	return user, true
}

func (app *Application) Logout(w http.ResponseWriter, r *http.Request) {
	userId := app.sessionManager.GetInt(r.Context(), SessionKeyUserId.String())
	if userId == 0 {
		app.notFoundResponse(w, r)
		return
	}

	err := app.sessionManager.Destroy(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
