// Package api holds the wire contract of the ticketing service. The types
// mirror the schemas in api.yaml.
package api

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleCreator Role = "creator"
	RoleUser    Role = "user"
)

type PaymentMethod string

const (
	Wallet PaymentMethod = "wallet"
	Card   PaymentMethod = "card"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,password"`
	Role     Role   `json:"role" validate:"required,role"`
}

type UserResponse struct {
	Id            int             `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          Role            `json:"role"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlreadyLoggedInResponse struct {
	Message string `json:"message"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenResponse struct {
	TokenType             string    `json:"tokenType"`
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
}

type BalconyPrices struct {
	Normal  decimal.Decimal `json:"normal"`
	Premium decimal.Decimal `json:"premium"`
}

type ReclanarPrices struct {
	Reclanar     decimal.Decimal `json:"reclanar"`
	ReclanarPlus decimal.Decimal `json:"reclanarPlus"`
}

type LayoutConfig struct {
	LayoutType        string           `json:"layoutType" validate:"required,layout_type"`
	TotalSeats        int              `json:"totalSeats" validate:"required,min=1,max=5000"`
	NormalPrice       *decimal.Decimal `json:"normalPrice,omitempty"`
	BalconyPrices     *BalconyPrices   `json:"balconyPrices,omitempty"`
	ReclanarPrices    *ReclanarPrices  `json:"reclanarPrices,omitempty"`
	ZoneSplitStrategy string           `json:"zoneSplitStrategy,omitempty" validate:"omitempty,oneof=byRow byCount"`
}

type Seat struct {
	SeatNumber int             `json:"seatNumber"`
	Zone       string          `json:"zone"`
	Section    string          `json:"section"`
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Set        *int            `json:"set,omitempty"`
	IsBooked   bool            `json:"isBooked"`
	Price      decimal.Decimal `json:"price"`
}

type SeatRow struct {
	Section string `json:"section"`
	Row     int    `json:"row"`
	Seats   []Seat `json:"seats"`
}

type LayoutResponse struct {
	LayoutType        string         `json:"layoutType"`
	TotalSeats        int            `json:"totalSeats"`
	ZoneSplitStrategy string         `json:"zoneSplitStrategy"`
	ZoneCounts        map[string]int `json:"zoneCounts"`
	SeatRows          []SeatRow      `json:"seatRows"`
}

type CreateEventRequest struct {
	Name     string       `json:"name" validate:"required,min=2,max=200"`
	Venue    string       `json:"venue" validate:"required,max=200"`
	StartsAt time.Time    `json:"startsAt" validate:"required"`
	Layout   LayoutConfig `json:"layout" validate:"required"`
}

type EventResponse struct {
	Id        int          `json:"id"`
	CreatorId int          `json:"creatorId"`
	Name      string       `json:"name"`
	Venue     string       `json:"venue"`
	StartsAt  time.Time    `json:"startsAt"`
	Layout    LayoutConfig `json:"layout"`
	CreatedAt time.Time    `json:"createdAt"`
}

type SeatMapResponse struct {
	EventId     int            `json:"eventId"`
	EventName   string         `json:"eventName"`
	StartsAt    time.Time      `json:"startsAt"`
	Config      LayoutConfig   `json:"config"`
	BookedSeats []int          `json:"bookedSeats"`
	Layout      LayoutResponse `json:"layout"`
}

type CreateCartRequest struct {
	SeatNumbers []int `json:"seatNumbers" validate:"required,min=1,unique,dive,min=1"`
}

type CartSeat struct {
	SeatNumber int             `json:"seatNumber"`
	Zone       string          `json:"zone"`
	Section    string          `json:"section"`
	Row        int             `json:"row"`
	Column     int             `json:"column"`
	Price      decimal.Decimal `json:"price"`
}

type Cart struct {
	CartId     string          `json:"cartId"`
	EventId    int             `json:"eventId"`
	EventName  string          `json:"eventName"`
	StartsAt   time.Time       `json:"startsAt"`
	Seats      []CartSeat      `json:"seats"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	HoldTime   int             `json:"holdTime"`
}

type CartResponse struct {
	Cart Cart `json:"cart"`
}

type BookingRequest struct {
	EventId       int             `json:"eventId" validate:"required,min=1"`
	SelectedSeats []int           `json:"selectedSeats" validate:"required,min=1,unique,dive,min=1"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod" validate:"required,payment_method"`
}

type BookingResponse struct {
	BookingId   int    `json:"bookingId,omitempty"`
	RedirectUrl string `json:"redirectUrl,omitempty"`
}

type BookingSummary struct {
	Id            int             `json:"id"`
	EventId       int             `json:"eventId"`
	EventName     string          `json:"eventName"`
	StartsAt      time.Time       `json:"startsAt"`
	SeatNumbers   []int           `json:"seatNumbers"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type UserBookingsResponse struct {
	Bookings []BookingSummary `json:"bookings"`
	Metadata Metadata         `json:"metadata"`
}

type GetUserBookingsParams struct {
	Page     *int `form:"page,omitempty" json:"page,omitempty" validate:"omitempty,min=1,max=10000"`
	PageSize *int `form:"pageSize,omitempty" json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`
}
