package services

import "errors"

var (
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrPermissionDenied   = errors.New("insufficient permissions")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrProductNotFound    = errors.New("product not found or unavailable")
	ErrInvalidOrder       = errors.New("invalid order")
	ErrUserExists         = errors.New("user already exists")
)

// ErrInternal is the message clients see for anything that is not one of the
// errors above. The underlying error is only logged.
var ErrInternal = errors.New("internal server error")

var clientErrors = []error{
	ErrOrderNotFound,
	ErrInvalidStatus,
	ErrPermissionDenied,
	ErrInvalidCredentials,
	ErrSessionNotFound,
	ErrProductNotFound,
	ErrInvalidOrder,
	ErrUserExists,
}

// ClientMessage returns the text that may be shown to an API or websocket
// client for err.
func ClientMessage(err error) string {
	for _, known := range clientErrors {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return ErrInternal.Error()
}
