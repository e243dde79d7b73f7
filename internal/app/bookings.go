package app

import (
	"net/http"

	"github.com/metinatakli/event-ticketing/api"
	"github.com/metinatakli/event-ticketing/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

func (app *Application) GetUserBookings(
	w http.ResponseWriter,
	r *http.Request,
	params api.GetUserBookingsParams) {

	err := app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)
	pagination := toPagination(params)

	bookings, metadata, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userId, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.UserBookingsResponse{
		Bookings: toBookingSummaries(bookings),
		Metadata: toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toBookingSummaries(bookings []domain.BookingSummary) []api.BookingSummary {
	summaries := make([]api.BookingSummary, len(bookings))

	for i, v := range bookings {
		summaries[i] = api.BookingSummary{
			Id:            v.BookingID,
			EventId:       v.EventID,
			EventName:     v.EventName,
			StartsAt:      v.StartsAt,
			SeatNumbers:   v.SeatNumbers,
			TotalAmount:   v.TotalAmount,
			PaymentMethod: api.PaymentMethod(v.PaymentMethod),
			CreatedAt:     v.CreatedAt,
		}
	}

	return summaries
}

func toApiMetadata(metadata *domain.Metadata) api.Metadata {
	if metadata == nil {
		return api.Metadata{}
	}

	return api.Metadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}

func toPagination(params api.GetUserBookingsParams) domain.Pagination {
	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if params.Page != nil {
		pagination.Page = *params.Page
	}
	if params.PageSize != nil {
		pagination.PageSize = *params.PageSize
	}

	return pagination
}
