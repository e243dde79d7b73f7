package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/chat"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/mailer"
	"github.com/metinatakli/event-ticketing/internal/payment"
	"github.com/metinatakli/event-ticketing/internal/repository"
	appvalidator "github.com/metinatakli/event-ticketing/internal/validator"
	"github.com/metinatakli/event-ticketing/internal/vcs"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/stripe/stripe-go/v82"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const serviceName = "event-ticketing-api"

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	mailer         mailer.Mailer
	sessionManager *scs.SessionManager
	hub            *chat.Hub

	userRepo    domain.UserRepository
	tokenRepo   domain.TokenRepository
	eventRepo   domain.EventRepository
	bookingRepo domain.BookingRepository
	paymentRepo domain.PaymentRepository

	paymentProvider domain.PaymentProvider
}

func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	mailer mailer.Mailer,
	sessionManager *scs.SessionManager,
	hub *chat.Hub,
	userRepo domain.UserRepository,
	tokenRepo domain.TokenRepository,
	eventRepo domain.EventRepository,
	bookingRepo domain.BookingRepository,
	paymentRepo domain.PaymentRepository,
	paymentProvider domain.PaymentProvider) *Application {

	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       validator,
		mailer:          mailer,
		sessionManager:  sessionManager,
		hub:             hub,
		userRepo:        userRepo,
		tokenRepo:       tokenRepo,
		eventRepo:       eventRepo,
		bookingRepo:     bookingRepo,
		paymentRepo:     paymentRepo,
		paymentProvider: paymentProvider,
	}
}

func Run(args []string) error {
	cfg, displayVersion, err := ParseConfig(args)
	if err != nil {
		return err
	}

	if displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		return nil
	}

	stripe.Key = cfg.Stripe.SecretKey

	textHandler := slog.NewTextHandler(os.Stdout, nil)
	logger := slog.New(textHandler)

	shutdownTelemetry, err := InitTelemetry(cfg, logger)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(context.Background())

	if cfg.OtelCollectorUrl != "" {
		logger = slog.New(NewMultiHandler(textHandler, otelslog.NewHandler(serviceName)))
	}

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	broker, err := newChatBroker(cfg, logger)
	if err != nil {
		return err
	}
	defer broker.Close()

	hub := chat.NewHub(broker, logger)

	app := NewApp(
		cfg,
		logger,
		db,
		redisClient,
		appvalidator.NewValidator(),
		mailer.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.Sender),
		NewSessionManager(redisClient),
		hub,
		repository.NewPostgresUserRepository(db),
		repository.NewPostgresTokenRepository(db),
		repository.NewPostgresEventRepository(db),
		repository.NewPostgresBookingRepository(db),
		repository.NewPostgresPaymentRepository(db),
		payment.NewStripePaymentProvider(cfg.Stripe.FailureUrl, cfg.Stripe.SuccessUrl),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	return app.serve()
}

func newChatBroker(cfg Config, logger *slog.Logger) (chat.Broker, error) {
	if cfg.NatsURL == "" {
		logger.Info("NATS URL not set, chat rooms are local to this instance")
		return chat.NewLocalBroker(), nil
	}

	return chat.NewNATSBroker(cfg.NatsURL, logger)
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	err := errors.Join(redisotel.InstrumentTracing(rdb), redisotel.InstrumentMetrics(rdb))
	if err != nil {
		rdb.Close()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = rdb.Ping(ctx).Err()
	if err != nil {
		rdb.Close()
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) serve() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env, "version", version)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.logRequest)
	r.Use(app.recoverPanic)

	siw := &api.ServerInterfaceWrapper{
		Handler:          app,
		ErrorHandlerFunc: app.paramErrorHandler,
	}

	// the websocket upgrade hijacks the connection, so the session is only read here
	r.Group(func(r chi.Router) {
		r.Use(app.loadSession)
		r.Use(app.authenticate)
		r.Use(app.requireAuthentication)

		r.Get("/chat/rooms/{roomId}/ws", siw.JoinChatRoom)
	})

	r.Group(func(r chi.Router) {
		r.Use(app.sessionManager.LoadAndSave)
		r.Use(app.ensureGuestUserSession)
		r.Use(app.authenticate)

		r.Get("/health", siw.GetHealth)
		r.Get("/openapi.json", siw.GetOpenAPIDocument)

		r.Post("/users", siw.RegisterUser)
		r.Post("/auth/login", siw.Login)
		r.Post("/auth/tokens", siw.IssueTokens)
		r.Post("/auth/refresh", siw.RefreshTokens)

		r.Post("/layouts/preview", siw.PreviewLayout)
		r.Get("/events/{eventId}/seat-map", siw.GetSeatMap)

		r.Post("/events/{eventId}/cart", siw.CreateCart)
		r.Delete("/events/{eventId}/cart", siw.DeleteCart)

		r.Post("/webhook", siw.StripeWebhook)

		r.Group(func(r chi.Router) {
			r.Use(app.requireAuthentication)

			r.Post("/auth/logout", siw.Logout)
			r.Get("/users/me", siw.GetCurrentUser)
			r.Get("/users/me/bookings", siw.GetUserBookings)
		})

		r.Group(func(r chi.Router) {
			r.Use(app.requireRole(domain.RoleCreator))

			r.Post("/events", siw.CreateEvent)
			r.Put("/events/{eventId}/layout", siw.SetEventLayout)
		})

		r.Group(func(r chi.Router) {
			r.Use(app.requireRole(domain.RoleUser))

			r.Post("/checkout", siw.Checkout)
		})
	})

	return r
}
