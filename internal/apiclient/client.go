// Package apiclient is a typed client of the ticketing API. It keeps the
// caller logged in through AuthTransport.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/booking"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
)

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL string
	auth    *AuthTransport
	http    *http.Client
}

type Option func(*Client)

// WithTransport sends requests through rt instead of http.DefaultTransport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.auth.Base = rt
	}
}

func WithLogoutHandler(fn func()) Option {
	return func(c *Client) {
		c.auth.OnLogout = fn
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(baseURL, "/")

	auth := NewAuthTransport(nil, baseURL+"/auth/refresh")

	c := &Client{
		baseURL: baseURL,
		auth:    auth,
		http: &http.Client{
			Transport: auth,
			Timeout:   defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) Auth() *AuthTransport {
	return c.auth
}

// IssueTokens logs in with email and password and stores the token pair.
func (c *Client) IssueTokens(ctx context.Context, email, password string) (*api.TokenResponse, error) {
	var tokens api.TokenResponse

	err := c.do(ctx, http.MethodPost, "/auth/tokens", api.LoginRequest{Email: email, Password: password}, &tokens)
	if err != nil {
		return nil, err
	}

	c.auth.SetTokens(tokens.AccessToken, tokens.RefreshToken)

	return &tokens, nil
}

func (c *Client) SeatMap(ctx context.Context, eventID int) (*api.SeatMapResponse, error) {
	var seatMap api.SeatMapResponse

	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/events/%d/seat-map", eventID), nil, &seatMap)
	if err != nil {
		return nil, err
	}

	return &seatMap, nil
}

// Layout fetches the seat map of an event and rebuilds it locally, ready to
// back a booking.Selection.
func (c *Client) Layout(ctx context.Context, eventID int) (*seatlayout.Layout, error) {
	seatMap, err := c.SeatMap(ctx, eventID)
	if err != nil {
		return nil, err
	}

	return seatlayout.Build(layoutConfig(seatMap.Config), seatMap.BookedSeats)
}

func (c *Client) PreviewLayout(ctx context.Context, cfg api.LayoutConfig) (*api.LayoutResponse, error) {
	var layout api.LayoutResponse

	err := c.do(ctx, http.MethodPost, "/layouts/preview", cfg, &layout)
	if err != nil {
		return nil, err
	}

	return &layout, nil
}

// SubmitBooking sends a confirmed selection to the checkout endpoint. A
// rejection is returned as a booking.BookingSubmissionError holding the
// server message unchanged.
func (c *Client) SubmitBooking(ctx context.Context, req booking.Request) (*booking.Result, error) {
	input := api.BookingRequest{
		EventId:       req.EventID,
		SelectedSeats: req.SelectedSeats,
		TotalAmount:   req.TotalAmount,
		PaymentMethod: api.PaymentMethod(req.PaymentMethod),
	}

	var resp api.BookingResponse

	err := c.do(ctx, http.MethodPost, "/checkout", input, &resp)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return nil, &booking.BookingSubmissionError{Message: apiErr.Message, Err: apiErr}
		}

		return nil, &booking.BookingSubmissionError{Message: err.Error(), Err: err}
	}

	return &booking.Result{
		BookingID:   resp.BookingId,
		RedirectURL: resp.RedirectUrl,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader

	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}

	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}

	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var body api.ValidationErrorResponse

	err := json.NewDecoder(resp.Body).Decode(&body)
	if err == nil {
		apiErr.Message = body.Message
		apiErr.RequestID = body.RequestId
		apiErr.ValidationErrors = body.ValidationErrors
	}

	return apiErr
}

func layoutConfig(in api.LayoutConfig) seatlayout.Config {
	cfg := seatlayout.Config{
		LayoutType: seatlayout.LayoutType(in.LayoutType),
		TotalSeats: in.TotalSeats,
		ZoneSplit:  seatlayout.ZoneSplitStrategy(in.ZoneSplitStrategy),
	}

	cfg.NormalPrice = in.NormalPrice

	if in.BalconyPrices != nil {
		cfg.BalconyPrices = &seatlayout.BalconyPrices{
			Normal:  in.BalconyPrices.Normal,
			Premium: in.BalconyPrices.Premium,
		}
	}

	if in.ReclanarPrices != nil {
		cfg.ReclanarPrices = &seatlayout.ReclanarPrices{
			Reclanar:     in.ReclanarPrices.Reclanar,
			ReclanarPlus: in.ReclanarPrices.ReclanarPlus,
		}
	}

	return cfg
}

var _ booking.Submitter = (*Client)(nil)
