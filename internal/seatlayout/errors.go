package seatlayout

import (
	"errors"
	"fmt"
)

var ErrSeatNotFound = errors.New("seat does not exist in this layout")

// ConfigError reports an invalid or self-inconsistent layout configuration.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid seat layout config: %s %s", e.Field, e.Reason)
}

// LayoutValidationError reports a seat count that cannot be arranged as four
// equal square blocks around a centered screen.
type LayoutValidationError struct {
	TotalSeats int
	Reason     string
}

func (e *LayoutValidationError) Error() string {
	return fmt.Sprintf("cannot arrange %d seats around a centered screen: %s", e.TotalSeats, e.Reason)
}
