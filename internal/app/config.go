package app

import (
	"errors"
	"flag"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Port             int
	Env              string
	OtelCollectorUrl string
	NatsURL          string
	DB               DBConfig
	Redis            RedisConfig
	SMTP             SMTPConfig
	Stripe           StripeConfig
	JWT              JWTConfig
	Wallet           WalletConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	SuccessUrl    string
	FailureUrl    string
}

type JWTConfig struct {
	Secret          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type WalletConfig struct {
	InitialBalance decimal.Decimal
}

// ParseConfig reads flags from args. Every flag defaults to an environment
// variable, and a .env file in the working directory is loaded first when
// present.
func ParseConfig(args []string) (cfg Config, displayVersion bool, err error) {
	err = godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, false, err
	}

	fls := flag.NewFlagSet("api", flag.ContinueOnError)

	fls.IntVar(&cfg.Port, "port", envInt("PORT", 3000), "server port")
	fls.StringVar(&cfg.Env, "env", envString("ENV", "dev"), "Environment (dev|staging|prod)")
	fls.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", envString("OTEL_COLLECTOR_URL", ""), "OpenTelemetry collector gRPC endpoint")
	fls.StringVar(&cfg.NatsURL, "nats-url", envString("NATS_URL", ""), "NATS URL for relaying chat between instances")

	fls.StringVar(&cfg.DB.DSN, "db-dsn", envString("DB_DSN", ""), "PostgreSQL DSN")
	fls.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", envInt("DB_MAX_OPEN_CONNS", 25), "PostgreSQL max open connections")
	fls.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", envDuration("DB_MAX_IDLE_TIME", 15*time.Minute), "PostgreSQL max idle time for connections")

	fls.StringVar(&cfg.Redis.URL, "redis-url", envString("REDIS_URL", ""), "Redis URL")
	fls.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", envInt("REDIS_MAX_OPEN_CONNS", 25), "Redis max open connections")
	fls.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", envInt("REDIS_MAX_IDLE_CONNS", 10), "Redis max idle connections")
	fls.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", envDuration("REDIS_MAX_IDLE_TIME", 2*time.Minute), "Redis max idle time for connections")

	fls.StringVar(&cfg.SMTP.Host, "smtp-host", envString("SMTP_HOST", "sandbox.smtp.mailtrap.io"), "SMTP host")
	fls.IntVar(&cfg.SMTP.Port, "smtp-port", envInt("SMTP_PORT", 2525), "SMTP port")
	fls.StringVar(&cfg.SMTP.Username, "smtp-username", envString("SMTP_USERNAME", ""), "SMTP username")
	fls.StringVar(&cfg.SMTP.Password, "smtp-password", envString("SMTP_PASSWORD", ""), "SMTP password")
	fls.StringVar(&cfg.SMTP.Sender, "smtp-sender", envString("SMTP_SENDER", "Tickets <no-reply@tickets.example.com>"), "SMTP sender")

	fls.StringVar(&cfg.Stripe.SecretKey, "stripe-key", envString("STRIPE_KEY", ""), "Stripe secret key")
	fls.StringVar(&cfg.Stripe.WebhookSecret, "stripe-webhook-secret", envString("STRIPE_WEBHOOK_SECRET", ""), "Stripe webhook secret")
	fls.StringVar(&cfg.Stripe.SuccessUrl, "stripe-success-url", envString("STRIPE_SUCCESS_URL", "https://example.com/success.html"), "Stripe payment success page")
	fls.StringVar(&cfg.Stripe.FailureUrl, "stripe-failure-url", envString("STRIPE_FAILURE_URL", "https://example.com/failure.html"), "Stripe payment failure page")

	fls.StringVar(&cfg.JWT.Secret, "jwt-secret", envString("JWT_SECRET", ""), "HMAC secret for signing access tokens")
	fls.DurationVar(&cfg.JWT.AccessTokenTTL, "jwt-access-ttl", envDuration("JWT_ACCESS_TTL", 15*time.Minute), "Access token lifetime")
	fls.DurationVar(&cfg.JWT.RefreshTokenTTL, "jwt-refresh-ttl", envDuration("JWT_REFRESH_TTL", 7*24*time.Hour), "Refresh token lifetime")

	cfg.Wallet.InitialBalance = decimal.NewFromInt(1000)
	if v := os.Getenv("WALLET_INITIAL_BALANCE"); v != "" {
		cfg.Wallet.InitialBalance, err = decimal.NewFromString(v)
		if err != nil {
			return cfg, false, err
		}
	}

	fls.Func("wallet-initial-balance", "Wallet balance credited on registration", func(s string) error {
		balance, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}

		if balance.IsNegative() {
			return errors.New("must not be negative")
		}

		cfg.Wallet.InitialBalance = balance
		return nil
	})

	fls.BoolVar(&displayVersion, "version", false, "Display version and exit")

	err = fls.Parse(args)
	if err != nil {
		return cfg, false, err
	}

	if !displayVersion && cfg.JWT.Secret == "" {
		return cfg, false, errors.New("a JWT secret is required (-jwt-secret or JWT_SECRET)")
	}

	return cfg, displayVersion, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func envInt(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return n
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}

	return d
}
