package app

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/domain"
	"github.com/metinatakli/event-ticketing/internal/seatlayout"
)

func (app *Application) PreviewLayout(w http.ResponseWriter, r *http.Request) {
	var input api.LayoutConfig

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	layout, err := seatlayout.Build(toLayoutConfig(input), nil)
	if err != nil {
		app.layoutErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toLayoutResponse(layout), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CreateEvent(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateEventRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	cfg := toLayoutConfig(input.Layout)

	err = cfg.Validate()
	if err != nil {
		app.layoutErrorResponse(w, r, err)
		return
	}

	event := domain.Event{
		CreatorID: app.contextGetUserId(r),
		Name:      input.Name,
		Venue:     input.Venue,
		StartsAt:  input.StartsAt,
		Layout:    cfg,
	}

	err = app.eventRepo.Create(r.Context(), &event)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	logger.Info("event created", "event_id", event.ID, "layout_type", cfg.LayoutType, "total_seats", cfg.TotalSeats)

	err = app.writeJSON(w, http.StatusCreated, toEventResponse(&event), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) SetEventLayout(w http.ResponseWriter, r *http.Request, eventId int) {
	logger := app.contextGetLogger(r)

	if eventId < 1 {
		app.badRequestResponse(w, r, fmt.Errorf("event ID must be greater than zero"))
		return
	}

	var input api.LayoutConfig

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	cfg := toLayoutConfig(input)

	err = cfg.Validate()
	if err != nil {
		app.layoutErrorResponse(w, r, err)
		return
	}

	event, err := app.eventRepo.GetById(r.Context(), eventId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	if event.CreatorID != app.contextGetUserId(r) {
		logger.Warn("layout change attempt on another creator's event", "event_id", eventId)
		app.forbiddenResponse(w, r, errors.New("You can only change the layout of your own events"))
		return
	}

	event.Layout = cfg

	err = app.eventRepo.UpdateLayout(r.Context(), event)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r)
		case errors.Is(err, domain.ErrEventHasBookings):
			app.editConflictResponseWithErr(w, r, err)
		case errors.Is(err, domain.ErrEditConflict):
			app.editConflictResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	err = app.writeJSON(w, http.StatusOK, toEventResponse(event), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// layoutErrorResponse renders configuration errors of the layout engine as 422.
func (app *Application) layoutErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var configErr *seatlayout.ConfigError
	var layoutErr *seatlayout.LayoutValidationError

	switch {
	case errors.As(err, &configErr), errors.As(err, &layoutErr):
		app.unprocessableResponse(w, r, err)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func toLayoutConfig(in api.LayoutConfig) seatlayout.Config {
	cfg := seatlayout.Config{
		LayoutType: seatlayout.LayoutType(in.LayoutType),
		TotalSeats: in.TotalSeats,
		ZoneSplit:  seatlayout.ZoneSplitStrategy(in.ZoneSplitStrategy),
	}

	cfg.NormalPrice = in.NormalPrice

	if in.BalconyPrices != nil {
		cfg.BalconyPrices = &seatlayout.BalconyPrices{
			Normal:  in.BalconyPrices.Normal,
			Premium: in.BalconyPrices.Premium,
		}
	}

	if in.ReclanarPrices != nil {
		cfg.ReclanarPrices = &seatlayout.ReclanarPrices{
			Reclanar:     in.ReclanarPrices.Reclanar,
			ReclanarPlus: in.ReclanarPrices.ReclanarPlus,
		}
	}

	return cfg
}

func toApiLayoutConfig(cfg seatlayout.Config) api.LayoutConfig {
	out := api.LayoutConfig{
		LayoutType:        string(cfg.LayoutType),
		TotalSeats:        cfg.TotalSeats,
		NormalPrice:       cfg.NormalPrice,
		ZoneSplitStrategy: string(cfg.ZoneSplit),
	}

	if cfg.BalconyPrices != nil {
		out.BalconyPrices = &api.BalconyPrices{
			Normal:  cfg.BalconyPrices.Normal,
			Premium: cfg.BalconyPrices.Premium,
		}
	}

	if cfg.ReclanarPrices != nil {
		out.ReclanarPrices = &api.ReclanarPrices{
			Reclanar:     cfg.ReclanarPrices.Reclanar,
			ReclanarPlus: cfg.ReclanarPrices.ReclanarPlus,
		}
	}

	return out
}

func toLayoutResponse(layout *seatlayout.Layout) api.LayoutResponse {
	zoneCounts := make(map[string]int)
	for zone, count := range layout.ZoneCounts() {
		zoneCounts[string(zone)] = count
	}

	seatRows := make([]api.SeatRow, len(layout.Rows))

	for i, row := range layout.Rows {
		seatRow := api.SeatRow{
			Section: string(row.Section),
			Row:     row.Number,
			Seats:   make([]api.Seat, 0, len(row.Seats)),
		}

		for _, n := range row.Seats {
			seat := layout.Seats[n-1]

			apiSeat := api.Seat{
				SeatNumber: seat.Number,
				Zone:       string(seat.Zone),
				Section:    string(seat.Section),
				Row:        seat.Row,
				Column:     seat.Column,
				IsBooked:   seat.IsBooked,
				Price:      seat.Price,
			}

			if seat.Set != 0 {
				set := seat.Set
				apiSeat.Set = &set
			}

			seatRow.Seats = append(seatRow.Seats, apiSeat)
		}

		seatRows[i] = seatRow
	}

	return api.LayoutResponse{
		LayoutType:        string(layout.Type),
		TotalSeats:        layout.TotalSeats,
		ZoneSplitStrategy: string(layout.ZoneSplit),
		ZoneCounts:        zoneCounts,
		SeatRows:          seatRows,
	}
}

func toEventResponse(event *domain.Event) api.EventResponse {
	return api.EventResponse{
		Id:        event.ID,
		CreatorId: event.CreatorID,
		Name:      event.Name,
		Venue:     event.Venue,
		StartsAt:  event.StartsAt,
		Layout:    toApiLayoutConfig(event.Layout),
		CreatedAt: event.CreatedAt,
	}
}
