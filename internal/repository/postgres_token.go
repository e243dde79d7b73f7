package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

type PostgresTokenRepository struct {
	db *pgxpool.Pool
}

func NewPostgresTokenRepository(db *pgxpool.Pool) *PostgresTokenRepository {
	return &PostgresTokenRepository{
		db: db,
	}
}

const insertToken = `INSERT INTO tokens (hash, user_id, expiry, scope)
	VALUES($1, $2, $3, $4)`

func (p *PostgresTokenRepository) Create(ctx context.Context, token *domain.Token) error {
	_, err := p.db.Exec(ctx, insertToken, token.Hash, token.UserId, token.Expiry, token.Scope)
	if err != nil {
		return err
	}

	return nil
}

func (p *PostgresTokenRepository) Rotate(ctx context.Context, oldHash []byte, next *domain.Token) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `DELETE FROM tokens
			WHERE hash = $1 AND scope = $2 AND user_id = $3`

		tag, err := tx.Exec(ctx, query, oldHash, next.Scope, next.UserId)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrRecordNotFound
		}

		_, err = tx.Exec(ctx, insertToken, next.Hash, next.UserId, next.Expiry, next.Scope)

		return err
	})
}

func (p *PostgresTokenRepository) DeleteAllForUser(ctx context.Context, tokenScope string, userID int) error {
	query := `DELETE FROM tokens
		WHERE scope = $1 AND user_id = $2`

	_, err := p.db.Exec(ctx, query, tokenScope, userID)

	return err
}
