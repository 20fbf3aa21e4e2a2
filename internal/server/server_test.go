package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/internal/server"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/mock"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

const shipmentJSON = `{
	"shipment": {
		"origin": {"postal_code": "02110", "country_code": "US"},
		"destination": {"postal_code": "90210", "country_code": "US"},
		"packages": [
			{"id": "pkg-1", "dimensions": {"length": 10, "width": 8, "height": 4}, "weight": {"value": 2}},
			{"id": "pkg-2", "dimensions": {"length": 12, "width": 10, "height": 6}, "weight": {"value": 3}}
		]
	}%s
}`

func newTestServer(t *testing.T, shippers ...shipper.Shipper) http.Handler {
	t.Helper()

	registry := shipper.NewRegistry()
	for _, s := range shippers {
		registry.Register(s)
	}
	return server.New(server.Config{Port: 8080}, registry, otelzap.New(zap.NewNop())).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestServer_Health(t *testing.T) {
	rec := do(t, newTestServer(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_RequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rec := httptest.NewRecorder()
	newTestServer(t).ServeHTTP(rec, req)

	assert.Equal(t, "req-123", rec.Header().Get("X-Request-ID"))
}

func TestServer_Carriers(t *testing.T) {
	h := newTestServer(t, mock.New("usps"), mock.New("canadapost"))

	rec := do(t, h, http.MethodGet, "/v1/carriers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var carriers []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &carriers))
	require.Len(t, carriers, 2)
	assert.Equal(t, "canadapost", carriers[0]["code"])
	methods, ok := carriers[0]["shipping_methods"].([]any)
	require.True(t, ok)
	assert.Len(t, methods, 2)

	rec = do(t, h, http.MethodGet, "/v1/carriers/usps", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/v1/carriers/fedex", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "carrier_not_found", decodeBody(t, rec)["error"].(map[string]any)["code"])
}

func TestServer_Rates(t *testing.T) {
	failing := mock.New("tforce")
	failing.Err = shipper.NewShipperError("tforce", shipper.CodeParseError, "malformed response")
	h := newTestServer(t, mock.New("usps"), failing)

	rec := do(t, h, http.MethodPost, "/v1/rates", strings.Replace(shipmentJSON, "%s", "", 1))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	rates := body["rates"].([]any)
	require.Len(t, rates, 2)

	standard := rates[0].(map[string]any)
	assert.Equal(t, "usps", standard["carrier"])
	assert.Equal(t, map[string]any{"amount": "25.00", "currency": "USD"}, standard["total"])
	assert.Len(t, standard["amounts"], 2)

	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, map[string]any{"carrier": "tforce", "code": "PARSE_ERROR", "message": "malformed response"}, errs[0])

	metrics := do(t, h, http.MethodGet, "/metrics", "")
	assert.Contains(t, metrics.Body.String(), `carrierkit_requests_total{carrier="usps",operation="rates",status="success"} 1`)
	assert.Contains(t, metrics.Body.String(), `carrierkit_carrier_errors_total{carrier="tforce",code="PARSE_ERROR"} 1`)
	assert.Contains(t, metrics.Body.String(), `carrierkit_rates_returned_total{carrier="usps"} 2`)
}

func TestServer_Rates_SelectedCarriers(t *testing.T) {
	h := newTestServer(t, mock.New("usps"), mock.New("canadapost"))

	rec := do(t, h, http.MethodPost, "/v1/rates", strings.Replace(shipmentJSON, "%s", `, "carriers": ["canadapost", "fedex"]`, 1))
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	for _, r := range body["rates"].([]any) {
		assert.Equal(t, "canadapost", r.(map[string]any)["carrier"])
	}
	errs := body["errors"].([]any)
	require.Len(t, errs, 1)
	assert.Equal(t, "carrier_not_found", errs[0].(map[string]any)["code"])
	assert.Equal(t, "fedex", errs[0].(map[string]any)["carrier"])
}

func TestServer_Rates_AllCarriersFail(t *testing.T) {
	failing := mock.New("usps")
	failing.Err = shipper.NewShipperError("usps", "80040B19", "Invalid zip code")
	h := newTestServer(t, failing)

	rec := do(t, h, http.MethodPost, "/v1/rates", strings.Replace(shipmentJSON, "%s", "", 1))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestServer_Rates_BadRequests(t *testing.T) {
	h := newTestServer(t, mock.New("usps"))

	rec := do(t, h, http.MethodPost, "/v1/rates", `{"shipment":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", decodeBody(t, rec)["error"].(map[string]any)["code"])

	rec = do(t, h, http.MethodPost, "/v1/rates", `{"carriers": ["usps"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_request", decodeBody(t, rec)["error"].(map[string]any)["code"])

	rec = do(t, h, http.MethodGet, "/v1/rates", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_Timings(t *testing.T) {
	usps := mock.New("usps")
	usps.Now = func() time.Time { return time.Date(2024, 5, 6, 9, 0, 0, 0, time.UTC) }
	h := newTestServer(t, usps)

	rec := do(t, h, http.MethodPost, "/v1/timings", strings.Replace(shipmentJSON, "%s", "", 1))
	require.Equal(t, http.StatusOK, rec.Code)

	timings := decodeBody(t, rec)["timings"].([]any)
	require.Len(t, timings, 2)
	express := timings[1].(map[string]any)
	assert.Equal(t, "EXPRESS", express["shipping_method"].(map[string]any)["service_code"])
	assert.Equal(t, 48.0, express["transit_hours"])
}
