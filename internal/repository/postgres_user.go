package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/shopspring/decimal"
)

const selectUser = `
	SELECT
		u.id,
		u.name,
		u.email,
		u.password_hash,
		u.role,
		u.created_at,
		u.updated_at,
		u.version,
		w.balance,
		w.updated_at
	FROM users u
	JOIN wallets w ON w.user_id = u.id
`

type PostgresUserRepository struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepository(db *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{
		db: db,
	}
}

func (p *PostgresUserRepository) Create(ctx context.Context, user *domain.User, initialBalance decimal.Decimal) error {
	return runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `INSERT INTO users (name, email, password_hash, role)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at, version`

		err := tx.QueryRow(ctx,
			query,
			user.Name,
			user.Email,
			user.Password.Hash,
			user.Role).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt, &user.Version)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrUserAlreadyExists
			}

			return err
		}

		query = `INSERT INTO wallets (user_id, balance)
			VALUES ($1, $2)
			RETURNING balance, updated_at`

		user.Wallet.UserID = user.ID

		return tx.QueryRow(ctx, query, user.ID, initialBalance).Scan(&user.Wallet.Balance, &user.Wallet.UpdatedAt)
	})
}

func (p *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return p.getOne(ctx, selectUser+`WHERE u.email = $1`, email)
}

func (p *PostgresUserRepository) GetById(ctx context.Context, id int) (*domain.User, error) {
	return p.getOne(ctx, selectUser+`WHERE u.id = $1`, id)
}

func (p *PostgresUserRepository) GetByToken(ctx context.Context, tokenHash []byte, tokenScope string) (*domain.User, error) {
	query := selectUser + `
		JOIN tokens t ON t.user_id = u.id
		WHERE t.hash = $1 AND t.scope = $2 AND t.expiry > NOW()`

	return p.getOne(ctx, query, tokenHash, tokenScope)
}

func (p *PostgresUserRepository) getOne(ctx context.Context, query string, args ...any) (*domain.User, error) {
	var user domain.User

	err := p.db.QueryRow(ctx, query, args...).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password.Hash,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
		&user.Wallet.Balance,
		&user.Wallet.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	user.Wallet.UserID = user.ID

	return &user, nil
}
