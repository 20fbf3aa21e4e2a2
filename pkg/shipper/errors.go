package shipper

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes used by carrier clients when the carrier does not supply one.
const (
	CodeParseError   = "PARSE_ERROR"
	CodeHTTPError    = "HTTP_ERROR"
	CodeCarrierError = "CARRIER_ERROR"
	CodeNoRates      = "NO_RATES"
)

// ShipperError represents an error from a shipping carrier.
type ShipperError struct {
	Carrier    string
	Code       string
	Messages   []string
	StatusCode int
	Cause      error
}

// Message joins the carrier messages in order.
func (e *ShipperError) Message() string {
	if len(e.Messages) == 0 {
		return "unknown error"
	}
	return strings.Join(e.Messages, ", ")
}

// Error implements the error interface.
func (e *ShipperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message(), e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message())
}

// Unwrap returns the underlying cause.
func (e *ShipperError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ShipperError.
func (e *ShipperError) Is(target error) bool {
	t, ok := target.(*ShipperError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewShipperError creates a new ShipperError. Empty messages are skipped.
func NewShipperError(carrier, code string, messages ...string) *ShipperError {
	kept := make([]string, 0, len(messages))
	for _, m := range messages {
		if m = strings.TrimSpace(m); m != "" {
			kept = append(kept, m)
		}
	}
	return &ShipperError{
		Carrier:  carrier,
		Code:     code,
		Messages: kept,
	}
}

// WithCause adds a cause to the error.
func (e *ShipperError) WithCause(err error) *ShipperError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ShipperError) WithStatusCode(code int) *ShipperError {
	e.StatusCode = code
	return e
}

// Sentinel errors.
var (
	// ErrEmptyAmounts is returned when totalling a rate without amounts.
	ErrEmptyAmounts = errors.New("rate has no amounts")

	// ErrCurrencyMismatch is returned when adding amounts in different currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")

	// ErrInvalidAmount indicates a price string could not be parsed.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrUnknownPackage indicates a carrier response references a package
	// that is not part of the requested shipment.
	ErrUnknownPackage = errors.New("unknown package")

	// ErrUnknownCode indicates a caller supplied service, container, country
	// or category code the carrier integration does not support.
	ErrUnknownCode = errors.New("unknown code")

	// ErrNoPackages indicates a shipment without packages.
	ErrNoPackages = errors.New("shipment has no packages")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")

	// ErrNotSupported indicates the carrier does not offer the operation.
	ErrNotSupported = errors.New("operation not supported by carrier")
)

// ParseFailure wraps a decoding error into a failure result.
func ParseFailure(carrier string, err error, req *Request, resp *Response) *APIFailure {
	return NewAPIFailure(
		NewShipperError(carrier, CodeParseError, "malformed response").WithCause(err).WithStatusCode(statusOf(resp)),
		req, resp,
	)
}

// CarrierFailure wraps carrier reported messages into a failure result.
func CarrierFailure(carrier, code string, messages []string, req *Request, resp *Response) *APIFailure {
	if code == "" {
		code = CodeCarrierError
	}
	return NewAPIFailure(
		NewShipperError(carrier, code, messages...).WithStatusCode(statusOf(resp)),
		req, resp,
	)
}

func statusOf(resp *Response) int {
	if resp == nil {
		return 0
	}
	return resp.Status
}
