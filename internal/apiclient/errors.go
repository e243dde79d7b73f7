package apiclient

import (
	"errors"
	"fmt"

	"github.com/metinatakli/event-ticketing/api"
)

var (
	ErrSessionExpired = errors.New("session expired, please log in again")
	ErrForbidden      = errors.New("you are not allowed to access this resource")
)

// APIError is a non-2xx answer of the API carrying its error body.
type APIError struct {
	StatusCode       int
	Message          string
	RequestID        string
	ValidationErrors []api.ValidationError
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api request failed with status %d", e.StatusCode)
	}

	return e.Message
}
