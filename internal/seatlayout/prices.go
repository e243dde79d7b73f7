package seatlayout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type BalconyPrices struct {
	Normal  decimal.Decimal `json:"normal"`
	Premium decimal.Decimal `json:"premium"`
}

type ReclanarPrices struct {
	Reclanar     decimal.Decimal `json:"reclanar"`
	ReclanarPlus decimal.Decimal `json:"reclanarPlus"`
}

// PriceConfig holds the price variant matching a layout type: NormalPrice for
// normal and centeredScreen, BalconyPrices for withBalcony and ReclanarPrices
// for reclanar.
type PriceConfig struct {
	NormalPrice    *decimal.Decimal `json:"normalPrice,omitempty"`
	BalconyPrices  *BalconyPrices   `json:"balconyPrices,omitempty"`
	ReclanarPrices *ReclanarPrices  `json:"reclanarPrices,omitempty"`
}

// Resolve returns the unit price of zone under a layout of type t.
func (p PriceConfig) Resolve(t LayoutType, zone Zone) (decimal.Decimal, error) {
	switch t {
	case Normal, CenteredScreen:
		if p.NormalPrice == nil {
			return decimal.Zero, &ConfigError{Field: "normalPrice", Reason: "is required"}
		}

		if zone == ZoneNormal {
			return *p.NormalPrice, nil
		}

	case WithBalcony:
		if p.BalconyPrices == nil {
			return decimal.Zero, &ConfigError{Field: "balconyPrices", Reason: "is required"}
		}

		switch zone {
		case ZoneNormal:
			return p.BalconyPrices.Normal, nil
		case ZonePremium:
			return p.BalconyPrices.Premium, nil
		}

	case Reclanar:
		if p.ReclanarPrices == nil {
			return decimal.Zero, &ConfigError{Field: "reclanarPrices", Reason: "is required"}
		}

		switch zone {
		case ZoneReclanar:
			return p.ReclanarPrices.Reclanar, nil
		case ZoneReclanarPlus:
			return p.ReclanarPrices.ReclanarPlus, nil
		}

	default:
		return decimal.Zero, &ConfigError{Field: "layoutType", Reason: fmt.Sprintf("%q is not a known layout type", t)}
	}

	return decimal.Zero, &ConfigError{
		Field:  "zone",
		Reason: fmt.Sprintf("%q has no price under a %s layout", zone, t),
	}
}

func (p PriceConfig) validateFor(t LayoutType) error {
	var prices map[string]decimal.Decimal

	switch t {
	case Normal, CenteredScreen:
		if p.NormalPrice == nil {
			return &ConfigError{Field: "normalPrice", Reason: "is required"}
		}
		prices = map[string]decimal.Decimal{"normalPrice": *p.NormalPrice}

	case WithBalcony:
		if p.BalconyPrices == nil {
			return &ConfigError{Field: "balconyPrices", Reason: "is required"}
		}
		prices = map[string]decimal.Decimal{
			"balconyPrices.normal":  p.BalconyPrices.Normal,
			"balconyPrices.premium": p.BalconyPrices.Premium,
		}

	case Reclanar:
		if p.ReclanarPrices == nil {
			return &ConfigError{Field: "reclanarPrices", Reason: "is required"}
		}
		prices = map[string]decimal.Decimal{
			"reclanarPrices.reclanar":     p.ReclanarPrices.Reclanar,
			"reclanarPrices.reclanarPlus": p.ReclanarPrices.ReclanarPlus,
		}
	}

	for field, price := range prices {
		if price.IsNegative() {
			return &ConfigError{Field: field, Reason: "must not be negative"}
		}
	}

	return nil
}
