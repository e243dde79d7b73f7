package seatlayout

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func normalConfig(total int, p int64) Config {
	return Config{
		LayoutType:  Normal,
		TotalSeats:  total,
		PriceConfig: PriceConfig{NormalPrice: price(p)},
	}
}

func balconyConfig(total int, normal, premium int64) Config {
	return Config{
		LayoutType: WithBalcony,
		TotalSeats: total,
		PriceConfig: PriceConfig{BalconyPrices: &BalconyPrices{
			Normal:  decimal.NewFromInt(normal),
			Premium: decimal.NewFromInt(premium),
		}},
	}
}

func reclanarConfig(total int, reclanar, plus int64) Config {
	return Config{
		LayoutType: Reclanar,
		TotalSeats: total,
		PriceConfig: PriceConfig{ReclanarPrices: &ReclanarPrices{
			Reclanar:     decimal.NewFromInt(reclanar),
			ReclanarPlus: decimal.NewFromInt(plus),
		}},
	}
}

func centeredConfig(total int, p int64) Config {
	return Config{
		LayoutType:  CenteredScreen,
		TotalSeats:  total,
		PriceConfig: PriceConfig{NormalPrice: price(p)},
	}
}

func TestBuildEnumeratesEverySeatOnce(t *testing.T) {
	configs := []Config{
		normalConfig(1, 10),
		normalConfig(20, 10),
		normalConfig(97, 10),
		balconyConfig(1, 10, 20),
		balconyConfig(17, 10, 20),
		balconyConfig(80, 10, 20),
		balconyConfig(123, 10, 20),
		reclanarConfig(3, 10, 20),
		reclanarConfig(32, 10, 20),
		reclanarConfig(45, 10, 20),
		centeredConfig(4, 10),
		centeredConfig(36, 10),
		centeredConfig(64, 10),
	}

	for _, cfg := range configs {
		t.Run(fmt.Sprintf("%s/%d", cfg.LayoutType, cfg.TotalSeats), func(t *testing.T) {
			layout, err := Build(cfg, nil)
			require.NoError(t, err)
			require.Len(t, layout.Seats, cfg.TotalSeats)

			for i, seat := range layout.Seats {
				assert.Equal(t, i+1, seat.Number)
			}

			inRows := 0
			for _, row := range layout.Rows {
				inRows += len(row.Seats)
			}
			assert.Equal(t, cfg.TotalSeats, inRows)
		})
	}
}

func TestBuildKeepsRowsAtMostEightWide(t *testing.T) {
	for _, cfg := range []Config{normalConfig(61, 5), balconyConfig(61, 5, 8), balconyConfig(200, 5, 8)} {
		layout, err := Build(cfg, nil)
		require.NoError(t, err)

		for _, row := range layout.Rows {
			assert.LessOrEqual(t, len(row.Seats), RowWidth, "%s row %d", row.Section, row.Number)
		}
	}
}

func TestBuildNormalScenario(t *testing.T) {
	layout, err := Build(normalConfig(20, 150), nil)
	require.NoError(t, err)

	want := []Row{
		{Section: SectionMain, Number: 1, Seats: []int{1, 2, 3, 4, 5, 6, 7, 8}},
		{Section: SectionMain, Number: 2, Seats: []int{9, 10, 11, 12, 13, 14, 15, 16}},
		{Section: SectionMain, Number: 3, Seats: []int{17, 18, 19, 20}},
	}

	if diff := cmp.Diff(want, layout.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, map[Zone]int{ZoneNormal: 20}, layout.ZoneCounts())

	total, err := layout.ComputeTotal([]int{1, 2, 3})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(450)), "total = %s", total)
}

func TestBuildBalconyBlockComesFirst(t *testing.T) {
	// 56 seats -> 7 rows, round(4.8999...) = 5 normal rows, 2 balcony rows
	layout, err := Build(balconyConfig(56, 100, 200), nil)
	require.NoError(t, err)

	sections := make(map[Section]int)
	for _, row := range layout.Rows {
		sections[row.Section]++
	}
	assert.Equal(t, map[Section]int{SectionBalcony: 2, SectionNormal: 5}, sections)

	first, err := layout.Seat(1)
	require.NoError(t, err)
	assert.Equal(t, SectionBalcony, first.Section)
	assert.Equal(t, ZonePremium, first.Zone)

	seat17, err := layout.Seat(17)
	require.NoError(t, err)
	assert.Equal(t, SectionNormal, seat17.Section)
	assert.Equal(t, 1, seat17.Row)
	assert.Equal(t, ZoneNormal, seat17.Zone)
}

func TestBuildBalconyTotalsMatchClassifier(t *testing.T) {
	for _, split := range []ZoneSplitStrategy{SplitByRow, SplitByCount} {
		t.Run(string(split), func(t *testing.T) {
			cfg := balconyConfig(80, 100, 200)
			cfg.ZoneSplit = split

			layout, err := Build(cfg, nil)
			require.NoError(t, err)

			all := make([]int, 0, cfg.TotalSeats)
			for _, seat := range layout.Seats {
				all = append(all, seat.Number)
			}

			total, err := layout.ComputeTotal(all)
			require.NoError(t, err)

			premium, normal := 0, 0
			for n := 1; n <= cfg.TotalSeats; n++ {
				zone, err := Classify(cfg, n)
				require.NoError(t, err)

				switch zone {
				case ZonePremium:
					premium++
				case ZoneNormal:
					normal++
				default:
					t.Fatalf("unexpected zone %q for seat %d", zone, n)
				}
			}

			want := decimal.NewFromInt(int64(premium*200 + normal*100))
			assert.True(t, total.Equal(want), "total = %s, want %s", total, want)
			assert.True(t, total.Equal(decimal.NewFromInt(10400)), "total = %s", total)
		})
	}
}

func TestZoneSplitStrategiesDiverge(t *testing.T) {
	// 50 seats -> 7 rows, 5 normal, 2 balcony rows (16 seats) vs floor(15.0) = 15 seats by count.
	byRow := balconyConfig(50, 100, 200)
	byCount := balconyConfig(50, 100, 200)
	byCount.ZoneSplit = SplitByCount

	zone, err := Classify(byRow, 16)
	require.NoError(t, err)
	assert.Equal(t, ZonePremium, zone)

	zone, err = Classify(byCount, 16)
	require.NoError(t, err)
	assert.Equal(t, ZoneNormal, zone)
}

func TestReclanarZones(t *testing.T) {
	layout, err := Build(reclanarConfig(32, 300, 450), nil)
	require.NoError(t, err)

	for _, seat := range layout.Seats {
		if seat.Number <= 16 {
			assert.Equal(t, ZoneReclanar, seat.Zone, "seat %d", seat.Number)
			assert.True(t, seat.Price.Equal(decimal.NewFromInt(300)))
		} else {
			assert.Equal(t, ZoneReclanarPlus, seat.Zone, "seat %d", seat.Number)
			assert.True(t, seat.Price.Equal(decimal.NewFromInt(450)))
		}
	}
}

func TestReclanarSets(t *testing.T) {
	layout, err := Build(reclanarConfig(11, 1, 2), nil)
	require.NoError(t, err)

	sets := make([]int, 0, len(layout.Seats))
	for _, seat := range layout.Seats {
		sets = append(sets, seat.Set)
	}

	assert.Equal(t, []int{1, 1, 2, 2, 3, 3, 4, 4, 1, 1, 2}, sets)
}

func TestCenteredScreenValidation(t *testing.T) {
	tests := []struct {
		total    int
		wantSide int
		wantErr  bool
	}{
		{total: 64, wantSide: 4},
		{total: 36, wantSide: 3},
		{total: 4, wantSide: 1},
		{total: 50, wantErr: true},
		{total: 48, wantErr: true},
		{total: 8, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.total), func(t *testing.T) {
			layout, err := Build(centeredConfig(tt.total, 25), nil)

			if tt.wantErr {
				var layoutErr *LayoutValidationError
				require.ErrorAs(t, err, &layoutErr)
				assert.Equal(t, tt.total, layoutErr.TotalSeats)
				assert.Nil(t, layout)
				return
			}

			require.NoError(t, err)
			require.Len(t, layout.Rows, 4*tt.wantSide)

			for _, row := range layout.Rows {
				assert.Len(t, row.Seats, tt.wantSide)
			}
		})
	}
}

func TestCenteredScreenBlockOrder(t *testing.T) {
	layout, err := Build(centeredConfig(16, 10), nil)
	require.NoError(t, err)

	want := []Row{
		{Section: SectionTop, Number: 1, Seats: []int{1, 2}},
		{Section: SectionTop, Number: 2, Seats: []int{3, 4}},
		{Section: SectionLeft, Number: 1, Seats: []int{5, 6}},
		{Section: SectionLeft, Number: 2, Seats: []int{7, 8}},
		{Section: SectionRight, Number: 1, Seats: []int{9, 10}},
		{Section: SectionRight, Number: 2, Seats: []int{11, 12}},
		{Section: SectionBottom, Number: 1, Seats: []int{13, 14}},
		{Section: SectionBottom, Number: 2, Seats: []int{15, 16}},
	}

	if diff := cmp.Diff(want, layout.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name      string
		cfg       Config
		wantField string
	}{
		{name: "zero seats", cfg: normalConfig(0, 10), wantField: "totalSeats"},
		{name: "negative seats", cfg: normalConfig(-4, 10), wantField: "totalSeats"},
		{name: "unknown layout", cfg: Config{LayoutType: "stadium", TotalSeats: 10}, wantField: "layoutType"},
		{name: "missing normal price", cfg: Config{LayoutType: Normal, TotalSeats: 10}, wantField: "normalPrice"},
		{
			name:      "balcony prices on reclanar",
			cfg:       Config{LayoutType: Reclanar, TotalSeats: 10, PriceConfig: balconyConfig(10, 1, 2).PriceConfig},
			wantField: "reclanarPrices",
		},
		{name: "negative price", cfg: normalConfig(10, -1), wantField: "normalPrice"},
		{
			name:      "unknown split strategy",
			cfg:       Config{LayoutType: Normal, TotalSeats: 10, PriceConfig: PriceConfig{NormalPrice: price(1)}, ZoneSplit: "diagonal"},
			wantField: "zoneSplitStrategy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.cfg, nil)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.wantField, cfgErr.Field)
		})
	}
}

func TestResolveRejectsForeignZone(t *testing.T) {
	pc := PriceConfig{NormalPrice: price(10)}

	_, err := pc.Resolve(Normal, ZoneReclanarPlus)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "zone", cfgErr.Field)
}

func TestBuildMarksBookedSeats(t *testing.T) {
	layout, err := Build(normalConfig(10, 5), []int{2, 7, 99, -1})
	require.NoError(t, err)

	assert.Equal(t, []int{2, 7}, layout.BookedSeats())
}

func TestBuildIsDeterministic(t *testing.T) {
	cfg := balconyConfig(77, 40, 90)

	first, err := Build(cfg, []int{3})
	require.NoError(t, err)

	second, err := Build(cfg, []int{3})
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("layouts differ (-first +second):\n%s", diff)
	}
}

func TestComputeTotalRejectsUnknownSeat(t *testing.T) {
	layout, err := Build(normalConfig(10, 5), nil)
	require.NoError(t, err)

	_, err = layout.ComputeTotal([]int{1, 11})
	assert.True(t, errors.Is(err, ErrSeatNotFound))

	total, err := layout.ComputeTotal([]int{1, 1, 2})
	require.NoError(t, err)
	assert.True(t, total.Equal(decimal.NewFromInt(10)))
}
