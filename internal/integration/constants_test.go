package integration_test

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TestUserName     = "Ada Lovelace"
	TestUserEmail    = "ada@example.com"
	TestUserPassword = "Test123!@#"

	TestCreatorName  = "Grace Hopper"
	TestCreatorEmail = "grace@example.com"

	TestEventName  = "Opening night"
	TestEventVenue = "Main hall"
	TestEventSeats = 16

	TestWebhookSecret = "whsec_integration_secret"
	TestJWTSecret     = "integration-secret-that-is-long-enough"
)

var (
	TestInitialBalance = decimal.NewFromInt(1000)
	TestSeatPrice      = decimal.NewFromInt(50)
	TestEventStartsAt  = time.Date(2027, 1, 15, 19, 30, 0, 0, time.UTC)
)

const (
	defaultEventually = 2 * time.Second
	tick              = 20 * time.Millisecond
)
