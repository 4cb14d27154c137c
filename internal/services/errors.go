package services

import (
	"github.com/pkg/errors"

	"torta/internal/validate"
)

// Messages returned to API clients for rejected orders.
const (
	MsgMissingFields   = "Missing required order information"
	MsgInvalidShipping = "Invalid shipping method"
	MsgInvalidOrder    = "Invalid order information"
)

var ErrRelayNotConfigured = errors.New("order relay is not configured")

// ValidationError rejects an order before anything is sent.
type ValidationError struct {
	Message string
	Fields  validate.Errors
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + e.Fields.Error()
}

// TransportError wraps a failed relay call.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "relay order: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }
