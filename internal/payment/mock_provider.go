package payment

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/stripe/stripe-go/v82"
)

// MockPaymentProvider hands out fake checkout sessions carrying the same
// metadata as real ones, so webhook payloads can be built from them.
type MockPaymentProvider struct {
	// Err, when set, is returned instead of a session.
	Err error

	mu       sync.Mutex
	sessions []*stripe.CheckoutSession
}

func NewMockPaymentProvider() *MockPaymentProvider {
	return &MockPaymentProvider{}
}

func (m *MockPaymentProvider) CreateCheckoutSession(
	owner string,
	user *domain.User,
	cart domain.Cart) (*stripe.CheckoutSession, error) {

	if m.Err != nil {
		return nil, m.Err
	}

	id := "cs_test_" + uuid.NewString()

	cs := &stripe.CheckoutSession{
		ID:  id,
		URL: fmt.Sprintf("https://checkout.stripe.test/pay/%s", id),
		Metadata: map[string]string{
			MetadataCartID:  cart.Id,
			MetadataOwner:   owner,
			MetadataUserID:  strconv.Itoa(user.ID),
			MetadataEventID: strconv.Itoa(cart.EventID),
			MetadataSeats:   FormatSeats(cart.SeatNumbers()),
		},
	}

	m.mu.Lock()
	m.sessions = append(m.sessions, cs)
	m.mu.Unlock()

	return cs, nil
}

// LastSession returns the most recently created session, or nil.
func (m *MockPaymentProvider) LastSession() *stripe.CheckoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) == 0 {
		return nil
	}

	return m.sessions[len(m.sessions)-1]
}
