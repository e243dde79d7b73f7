package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/metinatakli/event-ticketing/api"
	"golang.org/x/sync/singleflight"
)

// AuthTransport attaches the bearer access token to outgoing requests and
// keeps it fresh. An expired token is refreshed before sending, a 401 answer
// triggers one refresh and one retry. Concurrent refreshes share a single
// call to the refresh endpoint.
type AuthTransport struct {
	// Base sends the requests. http.DefaultTransport when nil.
	Base http.RoundTripper

	// RefreshURL is the absolute URL of the token refresh endpoint.
	RefreshURL string

	// OnLogout is called after the tokens were dropped.
	OnLogout func()

	mu           sync.Mutex
	accessToken  string
	refreshToken string

	group singleflight.Group
	now   func() time.Time
}

func NewAuthTransport(base http.RoundTripper, refreshURL string) *AuthTransport {
	return &AuthTransport{
		Base:       base,
		RefreshURL: refreshURL,
		now:        time.Now,
	}
}

func (t *AuthTransport) SetTokens(accessToken, refreshToken string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.accessToken = accessToken
	t.refreshToken = refreshToken
}

func (t *AuthTransport) Tokens() (accessToken, refreshToken string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.accessToken, t.refreshToken
}

// Logout drops the tokens and notifies OnLogout.
func (t *AuthTransport) Logout() {
	t.SetTokens("", "")

	if t.OnLogout != nil {
		t.OnLogout()
	}
}

func (t *AuthTransport) base() http.RoundTripper {
	if t.Base == nil {
		return http.DefaultTransport
	}

	return t.Base
}

func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	accessToken, _ := t.Tokens()

	if accessToken == "" {
		return t.base().RoundTrip(req)
	}

	if t.expired(accessToken) {
		var err error

		accessToken, err = t.refresh(req.Context(), accessToken)
		if err != nil {
			return nil, err
		}
	}

	resp, err := t.send(req, accessToken, false)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		if req.Body != nil && req.Body != http.NoBody && req.GetBody == nil {
			return resp, nil
		}

		discard(resp)

		accessToken, err = t.refresh(req.Context(), accessToken)
		if err != nil {
			return nil, err
		}

		resp, err = t.send(req, accessToken, true)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusUnauthorized {
			discard(resp)
			t.Logout()
			return nil, ErrSessionExpired
		}
	}

	if resp.StatusCode == http.StatusForbidden {
		discard(resp)
		t.Logout()
		return nil, ErrForbidden
	}

	return resp, nil
}

func (t *AuthTransport) send(req *http.Request, accessToken string, retry bool) (*http.Response, error) {
	out := req.Clone(req.Context())

	if retry && req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
	}

	out.Header.Set("Authorization", "Bearer "+accessToken)

	return t.base().RoundTrip(out)
}

// expired reports whether the exp claim of token has passed. The signature
// is not checked, the server does that.
func (t *AuthTransport) expired(token string) bool {
	var claims jwt.RegisteredClaims

	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil || claims.ExpiresAt == nil {
		return false
	}

	return !claims.ExpiresAt.After(t.now())
}

// refresh trades the refresh token for a new token pair. stale is the access
// token the caller saw; when another caller already replaced it, the new one
// is returned without another round trip.
func (t *AuthTransport) refresh(ctx context.Context, stale string) (string, error) {
	v, err, _ := t.group.Do("refresh", func() (any, error) {
		accessToken, refreshToken := t.Tokens()

		if accessToken != "" && accessToken != stale {
			return accessToken, nil
		}

		if refreshToken == "" {
			t.Logout()
			return "", ErrSessionExpired
		}

		tokens, err := t.requestRefresh(ctx, refreshToken)
		if err != nil {
			t.Logout()
			return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
		}

		t.SetTokens(tokens.AccessToken, tokens.RefreshToken)

		return tokens.AccessToken, nil
	})
	if err != nil {
		return "", err
	}

	return v.(string), nil
}

func (t *AuthTransport) requestRefresh(ctx context.Context, refreshToken string) (*api.TokenResponse, error) {
	body, err := json.Marshal(api.RefreshTokenRequest{RefreshToken: refreshToken})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.RefreshURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, decodeError(resp)
	}

	var tokens api.TokenResponse

	err = json.NewDecoder(resp.Body).Decode(&tokens)
	if err != nil {
		return nil, fmt.Errorf("failed to decode refreshed tokens: %w", err)
	}

	return &tokens, nil
}

func discard(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
