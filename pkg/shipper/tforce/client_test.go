package tforce_test

import (
	"context"
	"net/url"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/httpapi"
	"github.com/tournevent/carrierkit/pkg/shipper/tforce"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var pickup = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func newTestClient(doer httpapi.Doer, debug bool) *tforce.Client {
	return tforce.NewWithDoer(
		tforce.Config{
			ClientID:     "client",
			ClientSecret: "secret",
			TokenURL:     "https://login.example.com/oauth2/v2.0/token",
			Scope:        "https://tforce.example.com/.default",
			Debug:        debug,
		},
		doer,
		otelzap.New(zap.NewNop()),
		nil,
	)
}

func freightShipment() *shipper.Shipment {
	date := pickup
	return &shipper.Shipment{
		Origin:      shipper.Address{City: "Dallas", ProvinceCode: "TX", PostalCode: "75201", CountryCode: "US"},
		Destination: shipper.Address{City: "Atlanta", ProvinceCode: "GA", PostalCode: "30303", CountryCode: "US", IsResidential: true},
		Structures: []shipper.Structure{
			{
				ID:         "pallet-1",
				Dimensions: shipper.Dimensions{Length: 48, Width: 40, Height: 30},
				Packages: []shipper.Package{
					{
						ID:          "p1",
						Description: "Machine parts",
						Dimensions:  shipper.Dimensions{Length: 20.4, Width: 16, Height: 12.2},
						Weight:      shipper.Weight{Value: 150.257, Unit: shipper.WeightLB},
						Items:       []shipper.Item{{ID: "i1", Description: "Gearbox"}},
					},
					{
						ID:         "p2",
						Dimensions: shipper.Dimensions{Length: 10, Width: 10, Height: 10, Unit: shipper.DimensionCM},
						Weight:     shipper.Weight{Value: 100, Unit: shipper.WeightLB},
					},
				},
			},
			{
				ID:         "skid-1",
				Dimensions: shipper.Dimensions{Length: 45, Width: 40.2, Height: 50},
				Weight:     shipper.Weight{Value: 440, Unit: shipper.WeightLB},
			},
		},
		ShipDate: &date,
	}
}

func TestClient_FindRates_Success(t *testing.T) {
	mock := httpapi.NewMock().
		Respond(200, fixture(t, "token.json")).
		Respond(200, fixture(t, "rate_response.json"))
	client := newTestClient(mock, false)

	result, err := client.FindRates(context.Background(), freightShipment())
	require.NoError(t, err)
	require.Len(t, result.Data, 2)

	ltl := result.Data[0]
	assert.Equal(t, "TForce Freight LTL", ltl.ShippingMethod.Name)
	total, err := ltl.TotalAmount()
	require.NoError(t, err)
	assert.Equal(t, int64(97045), total.Subunits)
	assert.False(t, ltl.Guaranteed)
	assert.Equal(t, []string{"Transit time is an estimate"}, ltl.Warnings)
	assert.Equal(t, 3, ltl.Data[tforce.DataDaysInTransit])
	assert.Equal(t, 600.0, ltl.Data[tforce.DataBillableWeight])
	assert.Equal(t, "Q123456", ltl.Data[tforce.DataQuoteNumber])
	require.NotNil(t, ltl.PickupDate)
	assert.Equal(t, pickup, *ltl.PickupDate)

	breakdown, ok := ltl.Data[tforce.DataCostBreakdown].([]tforce.Charge)
	require.True(t, ok)
	require.Len(t, breakdown, 3)
	assert.Equal(t, "DSCNT", breakdown[1].Code)
	assert.Equal(t, int64(-78000), breakdown[1].Amount.Subunits)

	guaranteed := result.Data[1]
	assert.True(t, guaranteed.Guaranteed)
	assert.Equal(t, int64(115020), guaranteed.Amounts[shipper.TotalAmountKey].Subunits)

	requests := mock.Requests()
	require.Len(t, requests, 2)

	form, err := url.ParseQuery(requests[0].Body)
	require.NoError(t, err)
	assert.Equal(t, "client_credentials", form.Get("grant_type"))
	assert.Equal(t, "https://tforce.example.com/.default", form.Get("scope"))

	assert.Equal(t, "https://api.tforcefreight.com/rating/getRate?api-version=v1", requests[1].URL)
	assert.Equal(t, "Bearer abc", requests[1].Headers["Authorization"])
}

func TestClient_FindRates_StatusNotOK(t *testing.T) {
	mock := httpapi.NewMock().
		Respond(200, fixture(t, "token.json")).
		Respond(200, fixture(t, "rate_error.json"))
	client := newTestClient(mock, true)

	_, err := client.FindRates(context.Background(), freightShipment())

	var failure *shipper.APIFailure
	require.ErrorAs(t, err, &failure)
	var se *shipper.ShipperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "ERROR", se.Code)
	assert.Equal(t, "Pickup date cannot be in the past", se.Message())
	assert.NotNil(t, failure.OriginalRequest)
}

func TestClient_FindRates_GatewayError(t *testing.T) {
	mock := httpapi.NewMock().
		Respond(200, fixture(t, "token.json")).
		Respond(401, `{"statusCode": 401, "message": "Access denied due to invalid subscription key."}`)
	client := newTestClient(mock, false)

	_, err := client.FindRates(context.Background(), freightShipment())

	var se *shipper.ShipperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, shipper.CodeHTTPError, se.Code)
	assert.Equal(t, 401, se.StatusCode)
	assert.Contains(t, se.Message(), "Access denied")
}

func TestClient_FindRates_MalformedBody(t *testing.T) {
	mock := httpapi.NewMock().
		Respond(200, fixture(t, "token.json")).
		Respond(200, `{"summary": `)
	client := newTestClient(mock, false)

	_, err := client.FindRates(context.Background(), freightShipment())
	assert.ErrorIs(t, err, &shipper.ShipperError{Code: shipper.CodeParseError})
}

func TestClient_FindRates_ParcelShipment(t *testing.T) {
	mock := httpapi.NewMock()
	client := newTestClient(mock, false)

	shipment := freightShipment()
	shipment.Packages = shipment.Structures[0].Packages
	shipment.Structures = nil

	_, err := client.FindRates(context.Background(), shipment)
	assert.ErrorIs(t, err, shipper.ErrNoPackages)
	assert.Empty(t, mock.Requests())
}

func TestClient_Rates_NilOptions(t *testing.T) {
	mock := httpapi.NewMock().
		Respond(200, fixture(t, "token.json")).
		Respond(200, fixture(t, "rate_response.json"))
	client := newTestClient(mock, false)

	result, err := client.Rates(context.Background(), freightShipment(), nil)
	require.NoError(t, err)
	assert.Len(t, result.Data, 2)
	assert.Contains(t, mock.LastRequest().Body, `"pickupDate":"2024-05-06"`, "pickup defaults to the ship date")
}
