package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

type accessClaims struct {
	Role domain.Role `json:"role"`
	jwt.RegisteredClaims
}

func (app *Application) newAccessToken(user *domain.User, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(app.config.JWT.AccessTokenTTL)

	claims := accessClaims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.Itoa(user.ID),
			Issuer:    serviceName,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(app.config.JWT.Secret))
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func (app *Application) parseAccessToken(token string) (*accessClaims, error) {
	var claims accessClaims

	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(t *jwt.Token) (any, error) {
			return []byte(app.config.JWT.Secret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(serviceName),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	return &claims, nil
}

func (app *Application) IssueTokens(w http.ResponseWriter, r *http.Request) {
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

	refresh, err := domain.GenerateToken(int64(user.ID), app.config.JWT.RefreshTokenTTL, domain.RefreshScope)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.tokenRepo.Create(r.Context(), refresh)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	app.writeTokenPair(w, r, user, refresh, http.StatusCreated)
}

func (app *Application) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.RefreshTokenRequest

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

	oldHash := domain.HashToken(input.RefreshToken)

	user, err := app.userRepo.GetByToken(r.Context(), oldHash, domain.RefreshScope)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			logger.Warn("refresh attempt with unknown or expired token")
			app.invalidAuthenticationTokenResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	next, err := domain.GenerateToken(int64(user.ID), app.config.JWT.RefreshTokenTTL, domain.RefreshScope)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.tokenRepo.Rotate(r.Context(), oldHash, next)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			// a concurrent refresh already consumed the token
			logger.Warn("refresh token reused", "user_id", user.ID)
			app.invalidAuthenticationTokenResponse(w, r)
		default:
			app.serverErrorResponse(w, r, fmt.Errorf("failed to rotate refresh token: %w", err))
		}

		return
	}

	app.writeTokenPair(w, r, user, next, http.StatusOK)
}

func (app *Application) writeTokenPair(w http.ResponseWriter, r *http.Request, user *domain.User, refresh *domain.Token, status int) {
	access, accessExpiresAt, err := app.newAccessToken(user, time.Now())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.TokenResponse{
		TokenType:             "Bearer",
		AccessToken:           access,
		AccessTokenExpiresAt:  accessExpiresAt,
		RefreshToken:          refresh.Plaintext,
		RefreshTokenExpiresAt: refresh.Expiry,
	}

	err = app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
