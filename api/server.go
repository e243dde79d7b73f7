package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (GET /health)
	GetHealth(w http.ResponseWriter, r *http.Request)
	// (GET /openapi.json)
	GetOpenAPIDocument(w http.ResponseWriter, r *http.Request)
	// (POST /users)
	RegisterUser(w http.ResponseWriter, r *http.Request)
	// (GET /users/me)
	GetCurrentUser(w http.ResponseWriter, r *http.Request)
	// (GET /users/me/bookings)
	GetUserBookings(w http.ResponseWriter, r *http.Request, params GetUserBookingsParams)
	// (POST /auth/login)
	Login(w http.ResponseWriter, r *http.Request)
	// (POST /auth/logout)
	Logout(w http.ResponseWriter, r *http.Request)
	// (POST /auth/tokens)
	IssueTokens(w http.ResponseWriter, r *http.Request)
	// (POST /auth/refresh)
	RefreshTokens(w http.ResponseWriter, r *http.Request)
	// (POST /layouts/preview)
	PreviewLayout(w http.ResponseWriter, r *http.Request)
	// (POST /events)
	CreateEvent(w http.ResponseWriter, r *http.Request)
	// (PUT /events/{eventId}/layout)
	SetEventLayout(w http.ResponseWriter, r *http.Request, eventId int)
	// (GET /events/{eventId}/seat-map)
	GetSeatMap(w http.ResponseWriter, r *http.Request, eventId int)
	// (POST /events/{eventId}/cart)
	CreateCart(w http.ResponseWriter, r *http.Request, eventId int)
	// (DELETE /events/{eventId}/cart)
	DeleteCart(w http.ResponseWriter, r *http.Request, eventId int)
	// (POST /checkout)
	Checkout(w http.ResponseWriter, r *http.Request)
	// (POST /webhook)
	StripeWebhook(w http.ResponseWriter, r *http.Request)
	// (GET /chat/rooms/{roomId}/ws)
	JoinChatRoom(w http.ResponseWriter, r *http.Request, roomId string)
}

// ServerInterfaceWrapper binds request parameters before calling the
// matching ServerInterface method.
type ServerInterfaceWrapper struct {
	Handler          ServerInterface
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) GetHealth(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetHealth(w, r)
}

func (siw *ServerInterfaceWrapper) GetOpenAPIDocument(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetOpenAPIDocument(w, r)
}

func (siw *ServerInterfaceWrapper) RegisterUser(w http.ResponseWriter, r *http.Request) {
	siw.Handler.RegisterUser(w, r)
}

func (siw *ServerInterfaceWrapper) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	siw.Handler.GetCurrentUser(w, r)
}

func (siw *ServerInterfaceWrapper) GetUserBookings(w http.ResponseWriter, r *http.Request) {
	var err error
	var params GetUserBookingsParams

	err = runtime.BindQueryParameter("form", true, false, "page", r.URL.Query(), &params.Page)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "page", Err: err})
		return
	}

	err = runtime.BindQueryParameter("form", true, false, "pageSize", r.URL.Query(), &params.PageSize)
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "pageSize", Err: err})
		return
	}

	siw.Handler.GetUserBookings(w, r, params)
}

func (siw *ServerInterfaceWrapper) Login(w http.ResponseWriter, r *http.Request) {
	siw.Handler.Login(w, r)
}

func (siw *ServerInterfaceWrapper) Logout(w http.ResponseWriter, r *http.Request) {
	siw.Handler.Logout(w, r)
}

func (siw *ServerInterfaceWrapper) IssueTokens(w http.ResponseWriter, r *http.Request) {
	siw.Handler.IssueTokens(w, r)
}

func (siw *ServerInterfaceWrapper) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	siw.Handler.RefreshTokens(w, r)
}

func (siw *ServerInterfaceWrapper) PreviewLayout(w http.ResponseWriter, r *http.Request) {
	siw.Handler.PreviewLayout(w, r)
}

func (siw *ServerInterfaceWrapper) CreateEvent(w http.ResponseWriter, r *http.Request) {
	siw.Handler.CreateEvent(w, r)
}

func (siw *ServerInterfaceWrapper) SetEventLayout(w http.ResponseWriter, r *http.Request) {
	eventId, ok := siw.bindEventId(w, r)
	if !ok {
		return
	}

	siw.Handler.SetEventLayout(w, r, eventId)
}

func (siw *ServerInterfaceWrapper) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	eventId, ok := siw.bindEventId(w, r)
	if !ok {
		return
	}

	siw.Handler.GetSeatMap(w, r, eventId)
}

func (siw *ServerInterfaceWrapper) CreateCart(w http.ResponseWriter, r *http.Request) {
	eventId, ok := siw.bindEventId(w, r)
	if !ok {
		return
	}

	siw.Handler.CreateCart(w, r, eventId)
}

func (siw *ServerInterfaceWrapper) DeleteCart(w http.ResponseWriter, r *http.Request) {
	eventId, ok := siw.bindEventId(w, r)
	if !ok {
		return
	}

	siw.Handler.DeleteCart(w, r, eventId)
}

func (siw *ServerInterfaceWrapper) Checkout(w http.ResponseWriter, r *http.Request) {
	siw.Handler.Checkout(w, r)
}

func (siw *ServerInterfaceWrapper) StripeWebhook(w http.ResponseWriter, r *http.Request) {
	siw.Handler.StripeWebhook(w, r)
}

func (siw *ServerInterfaceWrapper) JoinChatRoom(w http.ResponseWriter, r *http.Request) {
	var roomId string

	err := runtime.BindStyledParameterWithOptions("simple", "roomId", chi.URLParam(r, "roomId"), &roomId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "roomId", Err: err})
		return
	}

	siw.Handler.JoinChatRoom(w, r, roomId)
}

func (siw *ServerInterfaceWrapper) bindEventId(w http.ResponseWriter, r *http.Request) (int, bool) {
	var eventId int

	err := runtime.BindStyledParameterWithOptions("simple", "eventId", chi.URLParam(r, "eventId"), &eventId,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "eventId", Err: err})
		return 0, false
	}

	return eventId, true
}

type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("Invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error {
	return e.Err
}
