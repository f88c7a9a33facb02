package push

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest marks a malformed dispatch call (empty recipient list,
// missing title/body). It is the only error class that fails the whole call.
var ErrInvalidRequest = errors.New("invalid request")

// ErrTokenNotFound is returned by TokenStore.Get when a recipient has no
// registered device. This is an expected steady-state condition.
var ErrTokenNotFound = errors.New("token not found")

// Provider error codes. CodeTokenNotRegistered is the permanent-invalidity
// code that triggers token cleanup; the others are recorded but leave the
// token record in place.
const (
	CodeTokenNotRegistered = "registration-token-not-registered"
	CodeInvalidArgument    = "invalid-argument"
	CodeUnavailable        = "unavailable"
	CodeInternal           = "internal"
)

// ProviderError is a typed delivery failure carrying the provider's error
// code.
type ProviderError struct {
	Code string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (%s): %v", e.Code, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// IsTokenNotRegistered reports whether err signals that the device token is
// permanently invalid and should be deleted.
func IsTokenNotRegistered(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeTokenNotRegistered
}
