package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

func (app *Application) RegisterUser(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.RegisterRequest

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

	user := domain.User{
		Name:  input.Name,
		Email: input.Email,
		Role:  domain.Role(input.Role),
	}

	err = user.Password.Set(input.Password)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.userRepo.Create(r.Context(), &user, app.config.Wallet.InitialBalance)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUserAlreadyExists):
			logger.Warn("registration attempt for existing email")
			// do not return the info of existence of email to avoid user enumeration attacks
			app.badRequestResponse(w, r, fmt.Errorf("invalid input data"))
		default:
			logger.Error("failed to create user", "error", err)
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	logger.Info("user registered", "user_id", user.ID, "role", user.Role)

	err = app.writeJSON(w, http.StatusCreated, toUserResponse(&user), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	user, err := app.userRepo.GetById(r.Context(), userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.contextGetLogger(r).Error("authenticated user not found in DB")
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toUserResponse(user), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toUserResponse(user *domain.User) api.UserResponse {
	return api.UserResponse{
		Id:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          api.Role(user.Role),
		WalletBalance: user.Wallet.Balance,
		CreatedAt:     user.CreatedAt,
	}
}
