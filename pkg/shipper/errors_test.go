package shipper_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
)

func TestShipperError_Error(t *testing.T) {
	err := shipper.NewShipperError("usps", "INVALID_ADDRESS", "Invalid ZIP code")
	assert.Equal(t, "usps error (INVALID_ADDRESS): Invalid ZIP code", err.Error())
}

func TestShipperError_JoinsMessagesInOrder(t *testing.T) {
	err := shipper.NewShipperError("uspsship", "400", "first problem", "", "second problem")
	assert.Equal(t, []string{"first problem", "second problem"}, err.Messages)
	assert.Equal(t, "uspsship error (400): first problem, second problem", err.Error())
}

func TestShipperError_NoMessages(t *testing.T) {
	err := shipper.NewShipperError("tforce", "CARRIER_ERROR")
	assert.Equal(t, "tforce error (CARRIER_ERROR): unknown error", err.Error())
}

func TestShipperError_ErrorWithCause(t *testing.T) {
	cause := errors.New("network timeout")
	err := shipper.NewShipperError("usps", "HTTP_ERROR", "API call failed").WithCause(cause)
	assert.Contains(t, err.Error(), "API call failed")
	assert.Contains(t, err.Error(), "network timeout")
}

func TestShipperError_Unwrap(t *testing.T) {
	cause := errors.New("network timeout")
	err := shipper.NewShipperError("usps", "HTTP_ERROR", "API call failed").WithCause(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestShipperError_Is(t *testing.T) {
	err1 := shipper.NewShipperError("usps", "INVALID_ADDRESS", "Invalid ZIP code")
	err2 := shipper.NewShipperError("canadapost", "INVALID_ADDRESS", "Different message")

	// Same code should match
	assert.True(t, errors.Is(err1, err2))
}

func TestShipperError_IsNot(t *testing.T) {
	err1 := shipper.NewShipperError("usps", "INVALID_ADDRESS", "Invalid ZIP code")
	err2 := shipper.NewShipperError("usps", "DIFFERENT_CODE", "Different error")

	// Different codes should not match
	assert.False(t, errors.Is(err1, err2))
}

func TestShipperError_WithStatusCode(t *testing.T) {
	err := shipper.NewShipperError("usps", "AUTH_ERROR", "Unauthorized").WithStatusCode(401)
	assert.Equal(t, 401, err.StatusCode)
}

func TestParseFailure(t *testing.T) {
	cause := errors.New("unexpected EOF")
	req := &shipper.Request{URL: "https://example.test", Debug: true}
	resp := &shipper.Response{Status: 200, Body: "{"}

	failure := shipper.ParseFailure("uspsship", cause, req, resp)

	assert.ErrorIs(t, failure, cause)
	assert.ErrorIs(t, failure, &shipper.ShipperError{Code: shipper.CodeParseError})
	assert.Contains(t, failure.Error(), "unexpected EOF")
	assert.Same(t, req, failure.OriginalRequest)
	assert.Same(t, resp, failure.OriginalResponse)
}

func TestCarrierFailure_DefaultCode(t *testing.T) {
	failure := shipper.CarrierFailure("tforce", "", []string{"a", "b"}, nil, &shipper.Response{Status: 422})

	var se *shipper.ShipperError
	require.ErrorAs(t, failure, &se)
	assert.Equal(t, shipper.CodeCarrierError, se.Code)
	assert.Equal(t, 422, se.StatusCode)
	assert.Equal(t, "a, b", se.Message())
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrEmptyAmounts", shipper.ErrEmptyAmounts},
		{"ErrCurrencyMismatch", shipper.ErrCurrencyMismatch},
		{"ErrInvalidAmount", shipper.ErrInvalidAmount},
		{"ErrUnknownPackage", shipper.ErrUnknownPackage},
		{"ErrUnknownCode", shipper.ErrUnknownCode},
		{"ErrNoPackages", shipper.ErrNoPackages},
		{"ErrCarrierNotFound", shipper.ErrCarrierNotFound},
		{"ErrNotSupported", shipper.ErrNotSupported},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}
