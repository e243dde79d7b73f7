package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/event-ticketing/internal/app"
	"github.com/metinatakli/event-ticketing/internal/chat"
	"github.com/metinatakli/event-ticketing/internal/mailer"
	"github.com/metinatakli/event-ticketing/internal/payment"
	"github.com/metinatakli/event-ticketing/internal/repository"
	appvalidator "github.com/metinatakli/event-ticketing/internal/validator"
	"github.com/redis/go-redis/v9"
)

type TestApp struct {
	App      *app.Application
	DB       *pgxpool.Pool
	Redis    *redis.Client
	Mailer   *mailer.MockMailer
	Payments *payment.MockPaymentProvider
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	mailer := mailer.NewMockMailer()

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)
	hub := chat.NewHub(chat.NewLocalBroker(), logger)

	paymentProvider := payment.NewMockPaymentProvider()

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		mailer,
		sessionManager,
		hub,
		repository.NewPostgresUserRepository(db),
		repository.NewPostgresTokenRepository(db),
		repository.NewPostgresEventRepository(db),
		repository.NewPostgresBookingRepository(db),
		repository.NewPostgresPaymentRepository(db),
		paymentProvider,
	)

	return &TestApp{
		App:      application,
		DB:       db,
		Redis:    redisClient,
		Mailer:   mailer,
		Payments: paymentProvider,
	}, nil
}
