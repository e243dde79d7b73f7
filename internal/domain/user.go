package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleCreator Role = "creator"
	RoleUser    Role = "user"
)

type User struct {
	ID        int
	Name      string
	Email     string
	Password  password
	Role      Role
	Wallet    Wallet
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int
}

type Wallet struct {
	UserID    int
	Balance   decimal.Decimal
	UpdatedAt time.Time
}

type password struct {
	plaintext *string
	Hash      []byte
}

func (p *password) Set(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return err
	}

	p.plaintext = &plaintext
	p.Hash = hash

	return nil
}

func (p *password) Matches(plaintext string) (bool, error) {
	err := bcrypt.CompareHashAndPassword(p.Hash, []byte(plaintext))
	if err != nil {
		switch {
		case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
			return false, nil
		default:
			return false, err
		}
	}

	return true, nil
}

type UserRepository interface {
	// Create inserts the user together with a wallet holding initialBalance.
	Create(ctx context.Context, user *User, initialBalance decimal.Decimal) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetById(ctx context.Context, id int) (*User, error)
	GetByToken(ctx context.Context, tokenHash []byte, tokenScope string) (*User, error)
}
