package httpapi_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/httpapi"
)

func TestClient_Do(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/xml", r.Header.Get("Content-Type"))
		assert.Equal(t, "<a/>", string(body))

		w.Header().Set("X-Request-Id", "abc")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("<Error/>"))
	}))
	defer srv.Close()

	client := httpapi.New(httpapi.Config{Carrier: "usps"})
	resp, err := client.Do(context.Background(), &shipper.Request{
		URL:     srv.URL,
		Body:    "<a/>",
		Headers: map[string]string{"Content-Type": "application/xml"},
	})

	require.NoError(t, err, "non-2xx replies are returned as responses")
	assert.Equal(t, http.StatusBadRequest, resp.Status)
	assert.Equal(t, "<Error/>", resp.Body)
	assert.Equal(t, "abc", resp.Headers["X-Request-Id"])
}

func TestClient_Do_TransportError(t *testing.T) {
	client := httpapi.New(httpapi.Config{Carrier: "usps", Timeout: time.Second})
	_, err := client.Do(context.Background(), &shipper.Request{URL: "http://127.0.0.1:0/unreachable"})

	require.Error(t, err)
	assert.ErrorIs(t, err, &shipper.ShipperError{Code: shipper.CodeHTTPError})
}

func TestMock_QueueAndRecord(t *testing.T) {
	mock := httpapi.NewMock().Respond(200, "first").Respond(500, "second")
	ctx := context.Background()

	resp, err := mock.Do(ctx, &shipper.Request{URL: "one"})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Body)

	resp, err = mock.Do(ctx, &shipper.Request{URL: "two"})
	require.NoError(t, err)
	assert.Equal(t, 500, resp.Status)

	_, err = mock.Do(ctx, &shipper.Request{URL: "three"})
	assert.ErrorIs(t, err, httpapi.ErrNoMockResponse)

	assert.Len(t, mock.Requests(), 3)
	assert.Equal(t, "three", mock.LastRequest().URL)
}

func TestMock_SimulateErrors(t *testing.T) {
	mock := httpapi.NewMock()
	mock.SimulateErrors = true

	_, err := mock.Do(context.Background(), &shipper.Request{})
	assert.Error(t, err)
}

func TestMock_LatencyHonoursContext(t *testing.T) {
	mock := httpapi.NewMock().Respond(200, "")
	mock.SimulateLatency = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Do(ctx, &shipper.Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
