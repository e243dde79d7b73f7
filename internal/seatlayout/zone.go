package seatlayout

import (
	"fmt"
	"math"
)

// Classify returns the pricing zone of seat number n under cfg.
func Classify(cfg Config, n int) (Zone, error) {
	err := cfg.Validate()
	if err != nil {
		return "", err
	}

	if n < 1 || n > cfg.TotalSeats {
		return "", fmt.Errorf("%w: %d", ErrSeatNotFound, n)
	}

	return classify(cfg.LayoutType, cfg.TotalSeats, cfg.zoneSplit(), n), nil
}

func classify(t LayoutType, total int, split ZoneSplitStrategy, n int) Zone {
	switch t {
	case WithBalcony:
		if n <= premiumSeatCount(total, split) {
			return ZonePremium
		}
		return ZoneNormal

	case Reclanar:
		if n > total-ReclanarPlusRows*RowWidth {
			return ZoneReclanarPlus
		}
		return ZoneReclanar

	default:
		return ZoneNormal
	}
}

func premiumSeatCount(total int, split ZoneSplitStrategy) int {
	if split == SplitByCount {
		return int(math.Floor(float64(total) * premiumSeatShare))
	}

	return balconySeatCount(total)
}
