// Package seatlayout turns a venue configuration into numbered, zoned and
// priced seats. Everything here is pure: the same configuration always yields
// the same layout and nothing is cached between calls.
package seatlayout

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type LayoutType string

const (
	Normal         LayoutType = "normal"
	WithBalcony    LayoutType = "withBalcony"
	Reclanar       LayoutType = "reclanar"
	CenteredScreen LayoutType = "centeredScreen"
)

func (t LayoutType) Valid() bool {
	switch t {
	case Normal, WithBalcony, Reclanar, CenteredScreen:
		return true
	default:
		return false
	}
}

type Zone string

const (
	ZoneNormal       Zone = "normal"
	ZonePremium      Zone = "premium"
	ZoneReclanar     Zone = "reclanar"
	ZoneReclanarPlus Zone = "reclanarPlus"
)

// ZoneSplitStrategy decides where the premium block of a balcony layout ends.
// SplitByRow follows the rendered balcony rows, SplitByCount keeps the legacy
// flat 30% cutoff by seat number.
type ZoneSplitStrategy string

const (
	SplitByRow   ZoneSplitStrategy = "byRow"
	SplitByCount ZoneSplitStrategy = "byCount"
)

type Section string

const (
	SectionMain    Section = "main"
	SectionBalcony Section = "balcony"
	SectionNormal  Section = "normal"
	SectionTop     Section = "top"
	SectionLeft    Section = "left"
	SectionRight   Section = "right"
	SectionBottom  Section = "bottom"
)

// Geometry constants. Persisted layouts depend on these values, do not change them.
const (
	RowWidth         = 8
	SetSize          = 2
	SetsPerRow       = RowWidth / SetSize
	ReclanarPlusRows = 2

	normalRowShare   = 0.7
	premiumSeatShare = 0.3
)

type Config struct {
	LayoutType LayoutType `json:"layoutType"`
	TotalSeats int        `json:"totalSeats"`
	PriceConfig
	ZoneSplit ZoneSplitStrategy `json:"zoneSplitStrategy,omitempty"`
}

func (c Config) Validate() error {
	if !c.LayoutType.Valid() {
		return &ConfigError{Field: "layoutType", Reason: fmt.Sprintf("%q is not a known layout type", c.LayoutType)}
	}

	if c.TotalSeats <= 0 {
		return &ConfigError{Field: "totalSeats", Reason: "must be greater than zero"}
	}

	switch c.ZoneSplit {
	case "", SplitByRow, SplitByCount:
	default:
		return &ConfigError{Field: "zoneSplitStrategy", Reason: fmt.Sprintf("%q is not a known strategy", c.ZoneSplit)}
	}

	err := c.PriceConfig.validateFor(c.LayoutType)
	if err != nil {
		return err
	}

	if c.LayoutType == CenteredScreen {
		_, err = centeredSide(c.TotalSeats)
		if err != nil {
			return err
		}
	}

	return nil
}

func (c Config) zoneSplit() ZoneSplitStrategy {
	if c.ZoneSplit == "" {
		return SplitByRow
	}

	return c.ZoneSplit
}

type Seat struct {
	Number   int             `json:"seatNumber"`
	Zone     Zone            `json:"zone"`
	Section  Section         `json:"section"`
	Row      int             `json:"row"`
	Column   int             `json:"column"`
	Set      int             `json:"set,omitempty"`
	IsBooked bool            `json:"isBooked"`
	Price    decimal.Decimal `json:"price"`
}

type Row struct {
	Section Section `json:"section"`
	Number  int     `json:"row"`
	Seats   []int   `json:"seats"`
}

type Layout struct {
	Type       LayoutType        `json:"layoutType"`
	TotalSeats int               `json:"totalSeats"`
	ZoneSplit  ZoneSplitStrategy `json:"zoneSplitStrategy"`
	Seats      []Seat            `json:"seats"`
	Rows       []Row             `json:"rows"`
}

// Build validates cfg and produces the full seat grid. Seat numbers listed in
// booked are marked as booked; numbers outside the layout are ignored.
func Build(cfg Config, booked []int) (*Layout, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	seats, rows, err := enumerate(cfg.LayoutType, cfg.TotalSeats)
	if err != nil {
		return nil, err
	}

	bookedSet := make(map[int]bool, len(booked))
	for _, n := range booked {
		bookedSet[n] = true
	}

	split := cfg.zoneSplit()

	for i := range seats {
		seat := &seats[i]

		seat.Zone = classify(cfg.LayoutType, cfg.TotalSeats, split, seat.Number)

		seat.Price, err = cfg.Resolve(cfg.LayoutType, seat.Zone)
		if err != nil {
			return nil, err
		}

		seat.IsBooked = bookedSet[seat.Number]
	}

	return &Layout{
		Type:       cfg.LayoutType,
		TotalSeats: cfg.TotalSeats,
		ZoneSplit:  split,
		Seats:      seats,
		Rows:       rows,
	}, nil
}

// Seat returns the seat with the given number.
func (l *Layout) Seat(number int) (Seat, error) {
	if number < 1 || number > len(l.Seats) {
		return Seat{}, fmt.Errorf("%w: %d", ErrSeatNotFound, number)
	}

	return l.Seats[number-1], nil
}

// ComputeTotal sums the unit prices of the selected seats. Repeated seat
// numbers are counted once.
func (l *Layout) ComputeTotal(selected []int) (decimal.Decimal, error) {
	total := decimal.Zero
	seen := make(map[int]bool, len(selected))

	for _, n := range selected {
		if seen[n] {
			continue
		}
		seen[n] = true

		seat, err := l.Seat(n)
		if err != nil {
			return decimal.Zero, err
		}

		total = total.Add(seat.Price)
	}

	return total, nil
}

func (l *Layout) ZoneCounts() map[Zone]int {
	counts := make(map[Zone]int)

	for _, seat := range l.Seats {
		counts[seat.Zone]++
	}

	return counts
}

func (l *Layout) BookedSeats() []int {
	var booked []int

	for _, seat := range l.Seats {
		if seat.IsBooked {
			booked = append(booked, seat.Number)
		}
	}

	return booked
}
