package payment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// Keys of the checkout session metadata read back by the webhook.
const (
	MetadataUserID  = "user_id"
	MetadataEventID = "event_id"
	MetadataSeats   = "seats"
	MetadataOwner   = "owner"
	MetadataCartID  = "cart_id"
)

type StripePaymentProvider struct {
	failureUrl string
	successUrl string
}

func NewStripePaymentProvider(failureUrl, successUrl string) *StripePaymentProvider {
	return &StripePaymentProvider{
		failureUrl: failureUrl,
		successUrl: successUrl,
	}
}

func (s *StripePaymentProvider) CreateCheckoutSession(
	owner string,
	user *domain.User,
	cart domain.Cart) (*stripe.CheckoutSession, error) {

	var lineItems []*stripe.CheckoutSessionLineItemParams

	for _, seat := range cart.Seats {
		priceCents := seat.Price.Mul(decimal.NewFromInt(100)).IntPart()

		lineItem := &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyUSD)),
				UnitAmount: stripe.Int64(priceCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("%s - Seat %d", cart.EventName, seat.SeatNumber)),
					Description: stripe.String(fmt.Sprintf(
						"Starts: %s • Section: %s • Row %d • Zone: %s",
						cart.StartsAt.Format("Jan 2, 2006 15:04"),
						seat.Section,
						seat.Row,
						seat.Zone,
					)),
				},
			},
			Quantity: stripe.Int64(1),
		}

		lineItems = append(lineItems, lineItem)
	}

	params := &stripe.CheckoutSessionParams{
		LineItems:  lineItems,
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(s.successUrl),
		CancelURL:  stripe.String(s.failureUrl),
		Metadata: map[string]string{
			MetadataCartID:  cart.Id,
			MetadataOwner:   owner,
			MetadataUserID:  strconv.Itoa(user.ID),
			MetadataEventID: strconv.Itoa(cart.EventID),
			MetadataSeats:   FormatSeats(cart.SeatNumbers()),
		},
		CustomerEmail:     &user.Email,
		ClientReferenceID: stripe.String(strconv.Itoa(user.ID)),
	}

	return session.New(params)
}

func FormatSeats(seats []int) string {
	parts := make([]string, len(seats))
	for i, n := range seats {
		parts[i] = strconv.Itoa(n)
	}

	return strings.Join(parts, ",")
}

func ParseSeats(s string) ([]int, error) {
	if s == "" {
		return nil, fmt.Errorf("no seats in checkout metadata")
	}

	parts := strings.Split(s, ",")
	seats := make([]int, len(parts))

	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid seat number %q in checkout metadata: %w", p, err)
		}

		seats[i] = n
	}

	return seats, nil
}
