package app

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/mailer"
	"github.com/metinatakli/event-ticketing/internal/mocks"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
	"github.com/metinatakli/event-ticketing/internal/validator"
	"github.com/shopspring/decimal"
)

const (
	ErrNotFound       = "The requested resource not found"
	ErrInternalServer = "The server encountered a problem and could not process your request"
	ErrEditConflict   = "Unable to update the record due to an edit conflict, please try again"
	ErrInvalidCreds   = "Invalid authentication credentials"
	ErrInvalidToken   = "Invalid or missing authentication token"
	ErrUnauthorized   = "You must be authenticated to access this resource"
	ErrSeatsReserved  = "some of the selected seats are already reserved"

	testJWTSecret = "test-secret-that-is-long-enough-for-hs256"
)

func newTestApplication(opts ...func(*Application)) *Application {
	app := &Application{
		config: Config{
			Env: "test",
			JWT: JWTConfig{
				Secret:          testJWTSecret,
				AccessTokenTTL:  15 * time.Minute,
				RefreshTokenTTL: 24 * time.Hour,
			},
			Wallet: WalletConfig{InitialBalance: decimal.NewFromInt(1000)},
		},
		validator:      validator.NewValidator(),
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		userRepo:       &mocks.MockUserRepo{},
		tokenRepo:      &mocks.MockTokenRepo{},
		mailer:         mailer.NewMockMailer(),
		sessionManager: scs.New(),
	}

	for _, opt := range opts {
		opt(app)
	}

	return app
}

// setupTestSession stores a logged in user in the session the way Login does.
func setupTestSession(t *testing.T, app *Application, r *http.Request, userId int, role domain.Role) *http.Request {
	ctx, err := app.sessionManager.Load(r.Context(), "session")
	if err != nil {
		t.Errorf("Failed to load session: %v", err)
	}

	app.sessionManager.Put(ctx, SessionKeyUserId.String(), userId)
	app.sessionManager.Put(ctx, SessionKeyRole.String(), string(role))

	return r.WithContext(ctx)
}

// withIdentity sets the caller the way authenticate does.
func withIdentity(app *Application, r *http.Request, userId int, role domain.Role) *http.Request {
	return app.contextSetIdentity(r, &identity{UserID: userId, Role: role})
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}

	r := httptest.NewRequest(method, url, bytes.NewReader(jsonData))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	t.Helper()

	if w.Code != tt.wantStatus {
		t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
	}

	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		// engine errors come back as a plain message
		if tt.wantErrMessage != "" && !errorSet[tt.wantErrMessage] && validationResp.Message != tt.wantErrMessage {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func ptr[T any](v T) *T {
	return &v
}

func testEvent(creatorId int) *domain.Event {
	price := decimal.NewFromInt(100)

	return &domain.Event{
		ID:        1,
		CreatorID: creatorId,
		Name:      "Opening night",
		Venue:     "Main hall",
		StartsAt:  time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC),
		Layout: seatlayout.Config{
			LayoutType:  seatlayout.Normal,
			TotalSeats:  16,
			PriceConfig: seatlayout.PriceConfig{NormalPrice: &price},
		},
		CreatedAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Version:   1,
	}
}
