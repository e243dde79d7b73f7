package seatlayout

import (
	"fmt"
	"math"
)

var centeredSections = []Section{SectionTop, SectionLeft, SectionRight, SectionBottom}

// enumerate assigns seat numbers 1..total to positions of the layout's
// template. Seats come back ordered by number.
func enumerate(t LayoutType, total int) ([]Seat, []Row, error) {
	if total <= 0 {
		return nil, nil, &ConfigError{Field: "totalSeats", Reason: "must be greater than zero"}
	}

	seats := make([]Seat, 0, total)
	var rows []Row

	switch t {
	case Normal:
		seats, rows = fillRows(seats, rows, SectionMain, 1, total, RowWidth)

	case WithBalcony:
		premium := balconySeatCount(total)
		seats, rows = fillRows(seats, rows, SectionBalcony, 1, premium, RowWidth)
		seats, rows = fillRows(seats, rows, SectionNormal, premium+1, total-premium, RowWidth)

	case Reclanar:
		seats, rows = fillRows(seats, rows, SectionMain, 1, total, RowWidth)
		for i := range seats {
			seats[i].Set = (seats[i].Column-1)/SetSize + 1
		}

	case CenteredScreen:
		side, err := centeredSide(total)
		if err != nil {
			return nil, nil, err
		}

		next := 1
		for _, section := range centeredSections {
			seats, rows = fillRows(seats, rows, section, next, side*side, side)
			next += side * side
		}

	default:
		return nil, nil, &ConfigError{Field: "layoutType", Reason: fmt.Sprintf("%q is not a known layout type", t)}
	}

	return seats, rows, nil
}

// fillRows lays count seats starting at number first into row-major rows of
// the given width. The last row is left short instead of padded.
func fillRows(seats []Seat, rows []Row, section Section, first, count, width int) ([]Seat, []Row) {
	last := first + count - 1
	rowNumber := 0

	for start := first; start <= last; start += width {
		rowNumber++
		row := Row{Section: section, Number: rowNumber}

		for col := 1; col <= width && start+col-1 <= last; col++ {
			number := start + col - 1

			seats = append(seats, Seat{
				Number:  number,
				Section: section,
				Row:     rowNumber,
				Column:  col,
			})
			row.Seats = append(row.Seats, number)
		}

		rows = append(rows, row)
	}

	return seats, rows
}

// balconyRows returns how many of the ceil(total/8) rows belong to the
// balcony. The normal block takes round(rows * 0.7), computed in float64 so
// the result matches layouts created by earlier clients.
func balconyRows(total int) int {
	totalRows := (total + RowWidth - 1) / RowWidth
	normalRows := int(math.Round(float64(totalRows) * normalRowShare))

	return totalRows - normalRows
}

func balconySeatCount(total int) int {
	return min(balconyRows(total)*RowWidth, total)
}

// centeredSide returns the side of each of the four square blocks.
func centeredSide(total int) (int, error) {
	if total <= 0 {
		return 0, &ConfigError{Field: "totalSeats", Reason: "must be greater than zero"}
	}

	if total%4 != 0 {
		return 0, &LayoutValidationError{TotalSeats: total, Reason: "total seats must be divisible by 4"}
	}

	quarter := total / 4
	side := int(math.Sqrt(float64(quarter)))
	for side*side > quarter {
		side--
	}
	for (side+1)*(side+1) <= quarter {
		side++
	}

	if side*side != quarter {
		return 0, &LayoutValidationError{
			TotalSeats: total,
			Reason:     fmt.Sprintf("each quarter holds %d seats, which is not a perfect square", quarter),
		}
	}

	return side, nil
}
