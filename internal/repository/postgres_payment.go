package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

type PostgresPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPostgresPaymentRepository(db *pgxpool.Pool) *PostgresPaymentRepository {
	return &PostgresPaymentRepository{
		db: db,
	}
}

func (p *PostgresPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			user_id,
			event_id,
			method,
			stripe_checkout_session_id,
			amount,
			currency,
			status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := p.db.QueryRow(
		ctx,
		query,
		payment.UserID,
		payment.EventID,
		payment.Method,
		payment.CheckoutSessionId,
		payment.Amount,
		payment.Currency,
		payment.Status,
	).Scan(&payment.ID, &payment.CreatedAt)

	return err
}

// UpdateStatus only moves payments that are still pending.
func (p *PostgresPaymentRepository) UpdateStatus(
	ctx context.Context,
	checkoutSessionID string,
	status domain.PaymentStatus,
	errMsg string) error {

	query := `UPDATE payments
		SET status = $1, error_message = NULLIF($2, ''), updated_at = NOW()
		WHERE stripe_checkout_session_id = $3 AND status = 'pending'
	`

	_, err := p.db.Exec(ctx, query, status, errMsg, checkoutSessionID)
	return err
}
