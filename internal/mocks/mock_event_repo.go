package mocks

import (
	"context"

	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockEventRepo struct {
	mock.Mock
	domain.EventRepository
}

func (m *MockEventRepo) Create(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventRepo) GetById(ctx context.Context, id int) (*domain.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Event), args.Error(1)
}

func (m *MockEventRepo) UpdateLayout(ctx context.Context, event *domain.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
