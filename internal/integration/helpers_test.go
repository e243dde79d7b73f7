package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/repository"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var keysToIgnore = map[string]struct{}{
	"timestamp": {},
	"requestId": {},
	"createdAt": {},
}

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []*http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(c)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	cleanMap(actual)

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indetermistic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		_, ok := keysToIgnore[k]
		return ok
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

func cleanMap(m map[string]any) {
	for k := range m {
		if _, ok := keysToIgnore[k]; ok {
			delete(m, k)
			continue
		}
		if nested, ok := m[k].(map[string]any); ok {
			cleanMap(nested)
		}
	}
}

func truncateAll(t testing.TB, app *TestApp) {
	t.Helper()

	ctx := context.Background()

	_, err := app.DB.Exec(ctx, `
		TRUNCATE booking_seats, bookings, payments, events, tokens, wallets, users RESTART IDENTITY CASCADE
	`)
	require.NoError(t, err)

	require.NoError(t, app.Redis.FlushAll(ctx).Err())
}

func insertUser(t testing.TB, app *TestApp, name, email string, role domain.Role, balance decimal.Decimal) *domain.User {
	t.Helper()

	user := domain.User{
		Name:  name,
		Email: email,
		Role:  role,
	}
	require.NoError(t, user.Password.Set(TestUserPassword))

	err := repository.NewPostgresUserRepository(app.DB).Create(context.Background(), &user, balance)
	require.NoError(t, err)

	return &user
}

func insertEvent(t testing.TB, app *TestApp, creatorID int) *domain.Event {
	t.Helper()

	price := TestSeatPrice

	event := domain.Event{
		CreatorID: creatorID,
		Name:      TestEventName,
		Venue:     TestEventVenue,
		StartsAt:  TestEventStartsAt,
		Layout: seatlayout.Config{
			LayoutType:  seatlayout.Normal,
			TotalSeats:  TestEventSeats,
			PriceConfig: seatlayout.PriceConfig{NormalPrice: &price},
		},
	}

	err := repository.NewPostgresEventRepository(app.DB).Create(context.Background(), &event)
	require.NoError(t, err)

	return &event
}

func walletBalance(t testing.TB, app *TestApp, userID int) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal

	err := app.DB.QueryRow(context.Background(), `SELECT balance FROM wallets WHERE user_id = $1`, userID).Scan(&balance)
	require.NoError(t, err)

	return balance
}

func countRows(t testing.TB, app *TestApp, table string) int {
	t.Helper()

	var n int

	err := app.DB.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n)
	require.NoError(t, err)

	return n
}

// browser is a cookie-keeping client, one per simulated visitor.
type browser struct {
	t       testing.TB
	baseURL string
	client  *http.Client
}

func newBrowser(t testing.TB, baseURL string) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &browser{
		t:       t,
		baseURL: baseURL,
		client:  &http.Client{Jar: jar},
	}
}

// do sends body as JSON and decodes a JSON answer into out when out is set.
func (b *browser) do(method, path string, body any, out any) int {
	b.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(b.t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, b.baseURL+path, reader)
	require.NoError(b.t, err)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer res.Body.Close()

	if out != nil && res.StatusCode < 300 {
		require.NoError(b.t, json.NewDecoder(res.Body).Decode(out))
	}

	return res.StatusCode
}
