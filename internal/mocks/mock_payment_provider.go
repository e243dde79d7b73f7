package mocks

import (
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/stretchr/testify/mock"
	"github.com/stripe/stripe-go/v82"
)

type MockPaymentProvider struct {
	mock.Mock
	domain.PaymentProvider
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	owner string,
	user *domain.User,
	cart domain.Cart) (*stripe.CheckoutSession, error) {

	args := m.Called(owner, user, cart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stripe.CheckoutSession), args.Error(1)
}
