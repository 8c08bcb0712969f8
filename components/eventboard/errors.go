package eventboard

import (
	"errors"
	"fmt"
	"strings"
)

// PlaceholderEndpoint is the value shipped in sample configs; it is treated as
// "not configured".
const PlaceholderEndpoint = "YOUR_GOOGLE_APPS_SCRIPT_API_URL_HERE"

var (
	errMissingRenderer = errors.New("eventboard: renderer not configured")
	// ErrUnknownCard is returned when activating a card that is not on the board.
	ErrUnknownCard = errors.New("eventboard: unknown card")
)

// ConfigurationError reports a missing or placeholder endpoint.
type ConfigurationError struct {
	Endpoint string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return "eventboard: configuration error: " + e.Reason
}

// TransportError reports a network failure or a non-2xx response.
type TransportError struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("eventboard: http error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("eventboard: request %s: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not a JSON object of counts.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eventboard: decode snapshot: %s: %v", e.Reason, e.Err)
	}
	return "eventboard: decode snapshot: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidateEndpoint fails with a ConfigurationError when the endpoint is empty
// or still set to the placeholder.
func ValidateEndpoint(endpoint string) error {
	trimmed := strings.TrimSpace(endpoint)
	switch {
	case trimmed == "":
		return &ConfigurationError{Endpoint: endpoint, Reason: "API URL not configured"}
	case trimmed == PlaceholderEndpoint:
		return &ConfigurationError{Endpoint: endpoint, Reason: "API URL still set to placeholder"}
	}
	return nil
}

// ErrorKind classifies an error for logs and telemetry.
func ErrorKind(err error) string {
	var (
		cfgErr       *ConfigurationError
		transportErr *TransportError
		decodeErr    *DecodeError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &cfgErr):
		return "configuration"
	case errors.As(err, &transportErr):
		return "transport"
	case errors.As(err, &decodeErr):
		return "decode"
	default:
		return "unknown"
	}
}
