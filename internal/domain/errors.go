package domain

import "errors"

var (
	ErrUserAlreadyExists   = errors.New("user already exists")
	ErrRecordNotFound      = errors.New("record not found")
	ErrEditConflict        = errors.New("edit conflict")
	ErrSeatAlreadyReserved = errors.New("seat(s) are already reserved")
	ErrCartNotFound        = errors.New("cart not found or has expired")
	ErrSeatConflict        = errors.New("a selected seat does not belong to the current session")
	ErrInsufficientBalance = errors.New("insufficient wallet balance")
	ErrEventHasBookings    = errors.New("the layout of an event with bookings or pending payments cannot be changed")
	ErrPriceChanged        = errors.New("the total amount does not match the current seat prices")
)
