package app

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/mocks"
	"github.com/metinatakli/event-ticketing/internal/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

func balconyConfig(total int) api.LayoutConfig {
	return api.LayoutConfig{
		LayoutType: "withBalcony",
		TotalSeats: total,
		BalconyPrices: &api.BalconyPrices{
			Normal:  decimal.NewFromInt(50),
			Premium: decimal.NewFromInt(80),
		},
	}
}

type LayoutTestSuite struct {
	suite.Suite
	app       *Application
	eventRepo *mocks.MockEventRepo
}

func (s *LayoutTestSuite) SetupTest() {
	s.eventRepo = new(mocks.MockEventRepo)

	s.app = newTestApplication(func(a *Application) {
		a.eventRepo = s.eventRepo
	})
}

func TestLayoutSuite(t *testing.T) {
	suite.Run(t, new(LayoutTestSuite))
}

func (s *LayoutTestSuite) TestPreviewLayout() {
	tests := []struct {
		name           string
		input          api.LayoutConfig
		wantStatus     int
		wantErrMessage string
		check          func(api.LayoutResponse)
	}{
		{
			name:       "balcony layout is split into zones",
			input:      balconyConfig(80),
			wantStatus: http.StatusOK,
			check: func(resp api.LayoutResponse) {
				s.Equal(80, resp.TotalSeats)
				s.Equal("byRow", resp.ZoneSplitStrategy)
				s.Equal(80, resp.ZoneCounts["normal"]+resp.ZoneCounts["premium"])
				s.NotZero(resp.ZoneCounts["premium"])

				seats := 0
				for _, row := range resp.SeatRows {
					seats += len(row.Seats)
				}
				s.Equal(80, seats)
			},
		},
		{
			name: "normal layout has one flat price and no sets",
			input: api.LayoutConfig{
				LayoutType:  "normal",
				TotalSeats:  8,
				NormalPrice: ptr(decimal.NewFromInt(25)),
			},
			wantStatus: http.StatusOK,
			check: func(resp api.LayoutResponse) {
				s.Require().Len(resp.SeatRows, 1)
				for _, seat := range resp.SeatRows[0].Seats {
					s.Nil(seat.Set)
					s.True(decimal.NewFromInt(25).Equal(seat.Price))
				}
			},
		},
		{
			name:           "unknown layout type",
			input:          api.LayoutConfig{LayoutType: "stadium", TotalSeats: 10},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: validator.ErrLayoutType,
		},
		{
			name:           "missing prices for the layout type",
			input:          api.LayoutConfig{LayoutType: "reclanar", TotalSeats: 24},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "invalid seat layout config: reclanarPrices is required",
		},
		{
			name: "centered screen with a seat count that cannot be squared",
			input: api.LayoutConfig{
				LayoutType:  "centeredScreen",
				TotalSeats:  10,
				NormalPrice: ptr(decimal.NewFromInt(25)),
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			w, r := executeRequest(s.T(), http.MethodPost, "/layouts/preview", tt.input)
			s.app.PreviewLayout(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.check != nil {
				var resp api.LayoutResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
				tt.check(resp)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *LayoutTestSuite) TestCreateEvent() {
	validInput := api.CreateEventRequest{
		Name:     "Opening night",
		Venue:    "Main hall",
		StartsAt: time.Date(2026, 11, 1, 20, 0, 0, 0, time.UTC),
		Layout:   balconyConfig(80),
	}

	tests := []struct {
		name           string
		input          api.CreateEventRequest
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:  "creates the event for the caller",
			input: validInput,
			setupMocks: func() {
				s.eventRepo.On("Create", mock.Anything, mock.MatchedBy(func(e *domain.Event) bool {
					return e.CreatorID == 2 && e.Layout.TotalSeats == 80
				})).Run(func(args mock.Arguments) {
					args.Get(1).(*domain.Event).ID = 11
				}).Return(nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "missing name",
			input: api.CreateEventRequest{
				Venue:    "Main hall",
				StartsAt: validInput.StartsAt,
				Layout:   balconyConfig(80),
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: validator.ErrRequired,
		},
		{
			name: "negative price",
			input: api.CreateEventRequest{
				Name:     "Opening night",
				Venue:    "Main hall",
				StartsAt: validInput.StartsAt,
				Layout: api.LayoutConfig{
					LayoutType:  "normal",
					TotalSeats:  8,
					NormalPrice: ptr(decimal.NewFromInt(-1)),
				},
			},
			wantStatus:     http.StatusUnprocessableEntity,
			wantErrMessage: "invalid seat layout config: normalPrice must not be negative",
		},
		{
			name:  "database error",
			input: validInput,
			setupMocks: func() {
				s.eventRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("database error"))
			},
			wantStatus:     http.StatusInternalServerError,
			wantErrMessage: ErrInternalServer,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			defer s.eventRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/events", tt.input)
			r = withIdentity(s.app, r, 2, domain.RoleCreator)

			s.app.CreateEvent(w, r)

			if tt.wantStatus == http.StatusCreated {
				var resp api.EventResponse
				s.Require().NoError(json.NewDecoder(w.Body).Decode(&resp))
				s.Equal(11, resp.Id)
				s.Equal(2, resp.CreatorId)
				s.Equal("withBalcony", resp.Layout.LayoutType)
			}

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}

func (s *LayoutTestSuite) TestSetEventLayout() {
	tests := []struct {
		name           string
		eventId        int
		setupMocks     func()
		wantStatus     int
		wantErrMessage string
	}{
		{
			name:           "invalid event id",
			eventId:        0,
			wantStatus:     http.StatusBadRequest,
			wantErrMessage: "event ID must be greater than zero",
		},
		{
			name:    "event not found",
			eventId: 1,
			setupMocks: func() {
				s.eventRepo.On("GetById", mock.Anything, 1).Return(nil, domain.ErrRecordNotFound)
			},
			wantStatus:     http.StatusNotFound,
			wantErrMessage: ErrNotFound,
		},
		{
			name:    "another creator's event",
			eventId: 1,
			setupMocks: func() {
				s.eventRepo.On("GetById", mock.Anything, 1).Return(testEvent(99), nil)
			},
			wantStatus:     http.StatusForbidden,
			wantErrMessage: "You can only change the layout of your own events",
		},
		{
			name:    "event already has bookings",
			eventId: 1,
			setupMocks: func() {
				s.eventRepo.On("GetById", mock.Anything, 1).Return(testEvent(2), nil)
				s.eventRepo.On("UpdateLayout", mock.Anything, mock.Anything).Return(domain.ErrEventHasBookings)
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: domain.ErrEventHasBookings.Error(),
		},
		{
			name:    "concurrent update",
			eventId: 1,
			setupMocks: func() {
				s.eventRepo.On("GetById", mock.Anything, 1).Return(testEvent(2), nil)
				s.eventRepo.On("UpdateLayout", mock.Anything, mock.Anything).Return(domain.ErrEditConflict)
			},
			wantStatus:     http.StatusConflict,
			wantErrMessage: ErrEditConflict,
		},
		{
			name:    "layout replaced",
			eventId: 1,
			setupMocks: func() {
				s.eventRepo.On("GetById", mock.Anything, 1).Return(testEvent(2), nil)
				s.eventRepo.On("UpdateLayout", mock.Anything, mock.MatchedBy(func(e *domain.Event) bool {
					return e.Layout.TotalSeats == 120 && e.Layout.BalconyPrices != nil
				})).Return(nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()
			defer s.eventRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPut, fmt.Sprintf("/events/%d/layout", tt.eventId), balconyConfig(120))
			r = withIdentity(s.app, r, 2, domain.RoleCreator)

			s.app.SetEventLayout(w, r, tt.eventId)

			checkErrorResponse(s.T(), w, struct {
				wantStatus     int
				wantErrMessage string
			}{
				wantStatus:     tt.wantStatus,
				wantErrMessage: tt.wantErrMessage,
			})
		})
	}
}
