package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

type PostgresEventRepository struct {
	db *pgxpool.Pool
}

func NewPostgresEventRepository(db *pgxpool.Pool) *PostgresEventRepository {
	return &PostgresEventRepository{
		db: db,
	}
}

func (p *PostgresEventRepository) Create(ctx context.Context, event *domain.Event) error {
	query := `
		INSERT INTO events (creator_id, name, venue, starts_at, layout)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at, version
	`

	return p.db.QueryRow(
		ctx,
		query,
		event.CreatorID,
		event.Name,
		event.Venue,
		event.StartsAt,
		event.Layout,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt, &event.Version)
}

func (p *PostgresEventRepository) GetById(ctx context.Context, id int) (*domain.Event, error) {
	query := `
		SELECT id, creator_id, name, venue, starts_at, layout, created_at, updated_at, version
		FROM events
		WHERE id = $1
	`

	var event domain.Event

	err := p.db.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.CreatorID,
		&event.Name,
		&event.Venue,
		&event.StartsAt,
		&event.Layout,
		&event.CreatedAt,
		&event.UpdatedAt,
		&event.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	return &event, nil
}

func (p *PostgresEventRepository) UpdateLayout(ctx context.Context, event *domain.Event) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		// the row lock serializes layout changes with booking inserts
		var version int

		err := tx.QueryRow(ctx, `SELECT version FROM events WHERE id = $1 FOR UPDATE`, event.ID).Scan(&version)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return domain.ErrRecordNotFound
			}

			return err
		}

		if version != event.Version {
			return domain.ErrEditConflict
		}

		var hasBookings bool

		// pending card checkouts still expect the seats of the current layout
		query := `
			SELECT EXISTS (SELECT 1 FROM booking_seats WHERE event_id = $1)
				OR EXISTS (SELECT 1 FROM payments WHERE event_id = $1 AND status = 'pending')
		`

		err = tx.QueryRow(ctx, query, event.ID).Scan(&hasBookings)
		if err != nil {
			return err
		}

		if hasBookings {
			return domain.ErrEventHasBookings
		}

		query = `
			UPDATE events
			SET layout = $1, updated_at = NOW(), version = version + 1
			WHERE id = $2
			RETURNING updated_at, version
		`

		return tx.QueryRow(ctx, query, event.Layout, event.ID).Scan(&event.UpdatedAt, &event.Version)
	})
}
