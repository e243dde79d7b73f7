package mocks

import (
	"context"

	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/shopspring/decimal"
)

type MockUserRepo struct {
	domain.UserRepository
	CreateFunc     func(ctx context.Context, user *domain.User, initialBalance decimal.Decimal) error
	GetByTokenFunc func(ctx context.Context, hash []byte, scope string) (*domain.User, error)
	GetByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	GetByIdFunc    func(ctx context.Context, id int) (*domain.User, error)
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User, initialBalance decimal.Decimal) error {
	return m.CreateFunc(ctx, user, initialBalance)
}

func (m *MockUserRepo) GetByToken(ctx context.Context, hash []byte, scope string) (*domain.User, error) {
	return m.GetByTokenFunc(ctx, hash, scope)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *MockUserRepo) GetById(ctx context.Context, id int) (*domain.User, error) {
	return m.GetByIdFunc(ctx, id)
}
