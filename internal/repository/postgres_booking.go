package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

func (p *PostgresBookingRepository) CreateWithWallet(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := lockEventForBooking(ctx, tx, booking.EventID)
		if err != nil {
			return err
		}

		query := `
			UPDATE wallets
			SET balance = balance - $1, updated_at = NOW()
			WHERE user_id = $2 AND balance >= $1
		`

		tag, err := tx.Exec(ctx, query, booking.TotalAmount, booking.UserID)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrInsufficientBalance
		}

		query = `
			INSERT INTO payments (user_id, event_id, method, amount, currency, status, payment_date)
			VALUES ($1, $2, 'wallet', $3, 'USD', 'completed', NOW())
			RETURNING id
		`

		err = tx.QueryRow(ctx, query, booking.UserID, booking.EventID, booking.TotalAmount).Scan(&booking.PaymentID)
		if err != nil {
			return err
		}

		booking.PaymentMethod = domain.PaymentMethodWallet

		return insertBooking(ctx, tx, booking)
	})
}

func (p *PostgresBookingRepository) CreateFromCheckout(ctx context.Context, booking *domain.Booking) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		err := lockEventForBooking(ctx, tx, booking.EventID)
		if err != nil {
			return err
		}

		// only a pending payment can be completed, so replayed webhooks find nothing
		query := `
			UPDATE payments
			SET status = 'completed', payment_date = NOW(), updated_at = NOW()
			WHERE stripe_checkout_session_id = $1 AND status = 'pending'
			RETURNING id, amount
		`

		err = tx.QueryRow(ctx, query, booking.CheckoutSessionID).Scan(&booking.PaymentID, &booking.TotalAmount)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		booking.PaymentMethod = domain.PaymentMethodCard

		return insertBooking(ctx, tx, booking)
	})
}

func lockEventForBooking(ctx context.Context, tx pgx.Tx, eventID int) error {
	var id int

	err := tx.QueryRow(ctx, `SELECT id FROM events WHERE id = $1 FOR SHARE`, eventID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRecordNotFound
		}

		return err
	}

	return nil
}

func insertBooking(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (user_id, event_id, payment_id, total_amount)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := tx.QueryRow(
		ctx,
		query,
		booking.UserID,
		booking.EventID,
		booking.PaymentID,
		booking.TotalAmount).Scan(&booking.ID, &booking.CreatedAt)
	if err != nil {
		return err
	}

	rows := make([][]any, 0, len(booking.Seats))
	for i := range booking.Seats {
		seat := &booking.Seats[i]
		seat.BookingID = booking.ID
		seat.EventID = booking.EventID

		rows = append(rows, []any{
			seat.BookingID,
			seat.EventID,
			seat.SeatNumber,
			seat.Zone,
			seat.Price,
		})
	}

	_, err = tx.CopyFrom(
		ctx,
		pgx.Identifier{"booking_seats"},
		[]string{"booking_id", "event_id", "seat_number", "zone", "price"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrSeatAlreadyReserved
		}

		return err
	}

	return nil
}

func (p *PostgresBookingRepository) GetBookedSeats(ctx context.Context, eventID int) ([]int, error) {
	query := `
		SELECT seat_number
		FROM booking_seats
		WHERE event_id = $1
		ORDER BY seat_number
	`

	rows, err := p.db.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}

	seats, err := pgx.CollectRows(rows, pgx.RowTo[int])
	if err != nil {
		return nil, err
	}

	return seats, nil
}

func (p *PostgresBookingRepository) GetSummariesByUserId(
	ctx context.Context,
	userId int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			b.id,
			b.event_id,
			e.name,
			e.starts_at,
			array_agg(bs.seat_number ORDER BY bs.seat_number),
			b.total_amount,
			p.method,
			b.created_at
		FROM bookings b
		JOIN events e ON b.event_id = e.id
		JOIN payments p ON b.payment_id = p.id
		JOIN booking_seats bs ON bs.booking_id = b.id
		WHERE b.user_id = $1
		GROUP BY b.id, e.id, p.id
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userId, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.BookingSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var booking domain.BookingSummary

		err := rows.Scan(
			&totalRecords,
			&booking.BookingID,
			&booking.EventID,
			&booking.EventName,
			&booking.StartsAt,
			&booking.SeatNumbers,
			&booking.TotalAmount,
			&booking.PaymentMethod,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return bookings, metadata, nil
}
