package canadapost_test

import (
	"context"
	"encoding/base64"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/canadapost"
	"github.com/tournevent/carrierkit/pkg/shipper/httpapi"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var mailingDate = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

// byWeight answers each mailing scenario with the fixture registered for its
// parcel weight.
func byWeight(t *testing.T, fixtures map[string]string) *httpapi.Mock {
	t.Helper()
	bodies := make(map[string]string, len(fixtures))
	for weight, name := range fixtures {
		bodies["<weight>"+weight+"</weight>"] = fixture(t, name)
	}
	mock := httpapi.NewMock()
	mock.OnDo = func(_ context.Context, req *shipper.Request) (*shipper.Response, error) {
		for key, body := range bodies {
			if strings.Contains(req.Body, key) {
				status := 200
				if strings.Contains(body, "<messages") {
					status = 400
				}
				return &shipper.Response{Status: status, Body: body}, nil
			}
		}
		return nil, httpapi.ErrNoMockResponse
	}
	return mock
}

func newTestClient(doer httpapi.Doer, cfg canadapost.Config) *canadapost.Client {
	cfg.APIKey = "key"
	cfg.APISecret = "secret"
	return canadapost.NewWithDoer(cfg, doer, otelzap.New(zap.NewNop()), nil)
}

func testShipment() *shipper.Shipment {
	date := mailingDate
	return &shipper.Shipment{
		Origin:      shipper.Address{City: "Toronto", ProvinceCode: "ON", PostalCode: "m5v 1a1", CountryCode: "CA"},
		Destination: shipper.Address{City: "Vancouver", ProvinceCode: "BC", PostalCode: "V6B 2W2", CountryCode: "CA"},
		Packages: []shipper.Package{
			{
				ID:         "pkg-1",
				Dimensions: shipper.Dimensions{Length: 30, Width: 20, Height: 10.16, Unit: shipper.DimensionCM},
				Weight:     shipper.Weight{Value: 2, Unit: shipper.WeightKG},
			},
			{
				ID:         "pkg-2",
				Dimensions: shipper.Dimensions{Length: 12, Width: 10, Height: 8},
				Weight:     shipper.Weight{Value: 5.5, Unit: shipper.WeightLB},
			},
		},
		ShipDate: &date,
	}
}

func TestClient_FindRates_MergesPackages(t *testing.T) {
	mock := byWeight(t, map[string]string{
		"2":     "price_quotes_pkg1.xml",
		"2.495": "price_quotes_pkg2.xml",
	})
	client := newTestClient(mock, canadapost.Config{})

	result, err := client.FindRates(context.Background(), testShipment())
	require.NoError(t, err)
	require.Len(t, result.Data, 3, "Priority was only quoted for one package")
	assert.Nil(t, result.OriginalRequest)

	expedited := result.Data[0]
	assert.Equal(t, "Expedited Parcel", expedited.ShippingMethod.Name)
	assert.Equal(t, int64(1302), expedited.Amounts["pkg-1"].Subunits)
	assert.Equal(t, int64(1525), expedited.Amounts["pkg-2"].Subunits)
	total, err := expedited.TotalAmount()
	require.NoError(t, err)
	assert.Equal(t, "28.27 CAD", total.String())
	assert.True(t, expedited.Guaranteed)
	assert.Equal(t, 2, expedited.Data[canadapost.DataTransitDays])
	assert.Equal(t, int64(1071), expedited.Data[canadapost.DataBase].(shipper.Money).Subunits)
	assert.Equal(t, int64(59), expedited.Data[canadapost.DataTaxes].(shipper.Money).Subunits)

	adjustments, ok := expedited.Data[canadapost.DataAdjustments].([]canadapost.Adjustment)
	require.True(t, ok)
	require.Len(t, adjustments, 1)
	assert.Equal(t, "FUELSC", adjustments[0].Code)
	assert.Equal(t, int64(172), adjustments[0].Cost.Subunits)

	require.NotNil(t, expedited.PickupDate)
	assert.Equal(t, mailingDate, *expedited.PickupDate)
	require.NotNil(t, expedited.DeliveryDate)
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), *expedited.DeliveryDate)

	assert.Equal(t, canadapost.ServiceXpresspost, result.Data[1].ShippingMethod.ServiceCode)

	regular := result.Data[2]
	assert.False(t, regular.Guaranteed)
	require.NotNil(t, regular.DeliveryDate)
	assert.Equal(t, time.Date(2024, 5, 13, 0, 0, 0, 0, time.UTC), *regular.DeliveryDate, "latest package delivery wins")

	requests := mock.Requests()
	require.Len(t, requests, 2)
	for _, req := range requests {
		assert.Equal(t, "https://soa-gw.canadapost.ca/rs/ship/price", req.URL)
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("key:secret")), req.Headers["Authorization"])
		assert.Equal(t, "application/vnd.cpc.ship.rate-v4+xml", req.Headers["Accept"])
		assert.Equal(t, "en-CA", req.Headers["Accept-language"])
		assert.Contains(t, req.Body, "<quote-type>counter</quote-type>")
		assert.Contains(t, req.Body, "<origin-postal-code>M5V1A1</origin-postal-code>")
	}
}

func TestClient_FindRates_CommercialWithAccount(t *testing.T) {
	mock := byWeight(t, map[string]string{
		"2":     "price_quotes_pkg1.xml",
		"2.495": "price_quotes_pkg2.xml",
	})
	client := newTestClient(mock, canadapost.Config{AccountID: "0001234567", ContractID: "42708517", Language: "fr-CA", Debug: true})

	result, err := client.FindRates(context.Background(), testShipment())
	require.NoError(t, err)
	require.NotNil(t, result.OriginalRequest)
	assert.Equal(t, "fr-CA", result.OriginalRequest.Headers["Accept-language"])
	assert.Contains(t, result.OriginalRequest.Body, "<customer-number>0001234567</customer-number><contract-id>42708517</contract-id><quote-type>commercial</quote-type>")
}

func TestClient_Rates_SingleService(t *testing.T) {
	mock := byWeight(t, map[string]string{
		"2":     "price_quotes_pkg1.xml",
		"2.495": "price_quotes_pkg2.xml",
	})
	client := newTestClient(mock, canadapost.Config{})

	xpresspost, ok := canadapost.ShippingMethods.ByCode(canadapost.ServiceXpresspost)
	require.True(t, ok)
	opts := canadapost.NewRatesOptionsWithDefaults(func() *canadapost.PackageOptions {
		o := canadapost.DefaultPackageOptions()
		o.ShippingMethod = &xpresspost
		return o
	})

	result, err := client.Rates(context.Background(), testShipment(), opts)
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	total, err := result.Data[0].TotalAmount()
	require.NoError(t, err)
	assert.Equal(t, int64(4325), total.Subunits)

	for _, req := range mock.Requests() {
		assert.Contains(t, req.Body, "<services><service-code>DOM.XP</service-code></services>")
	}
}

func TestClient_FindRates_Messages(t *testing.T) {
	mock := byWeight(t, map[string]string{
		"2":     "messages.xml",
		"2.495": "price_quotes_pkg2.xml",
	})
	client := newTestClient(mock, canadapost.Config{Debug: true})

	_, err := client.FindRates(context.Background(), testShipment())
	require.Error(t, err)

	var failure *shipper.APIFailure
	require.ErrorAs(t, err, &failure)
	require.NotNil(t, failure.OriginalResponse)
	assert.Equal(t, 400, failure.OriginalResponse.Status)

	var se *shipper.ShipperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "9111", se.Code)
	assert.Equal(t, "The destination postal code is invalid., The parcel weight exceeds the maximum for this service.", se.Message())
}

func TestClient_FindRates_MalformedBody(t *testing.T) {
	mock := httpapi.NewMock().Respond(200, "<price-quotes><price-quote>")
	client := newTestClient(mock, canadapost.Config{})

	shipment := testShipment()
	shipment.Packages = shipment.Packages[:1]

	_, err := client.FindRates(context.Background(), shipment)
	assert.ErrorIs(t, err, &shipper.ShipperError{Code: shipper.CodeParseError})
}

func TestClient_FindRates_NoPackages(t *testing.T) {
	mock := httpapi.NewMock()
	client := newTestClient(mock, canadapost.Config{})

	shipment := testShipment()
	shipment.Packages = nil

	_, err := client.FindRates(context.Background(), shipment)
	assert.ErrorIs(t, err, shipper.ErrNoPackages)
	assert.Empty(t, mock.Requests())
}

func TestClient_FindTimings(t *testing.T) {
	mock := httpapi.NewMock().Respond(200, fixture(t, "price_quotes_pkg1.xml"))
	client := newTestClient(mock, canadapost.Config{})

	shipment := testShipment()
	shipment.ShipDate = nil
	client.SetClock(func() time.Time { return mailingDate })

	result, err := client.FindTimings(context.Background(), shipment)
	require.NoError(t, err)
	require.Len(t, result.Data, 4)
	require.Len(t, mock.Requests(), 1, "only the first package is quoted")
	assert.Contains(t, mock.LastRequest().Body, "<expected-mailing-date>2024-05-06</expected-mailing-date>")

	priority := result.Data[2]
	assert.Equal(t, canadapost.ServicePriority, priority.ShippingMethod.ServiceCode)
	assert.True(t, priority.Guaranteed)
	assert.Equal(t, 24*time.Hour, priority.TimeInTransit())
	assert.Equal(t, true, priority.Data[canadapost.DataAMDelivery])
	assert.Equal(t, 1, priority.Data[canadapost.DataTransitDays])

	assert.False(t, result.Data[3].Guaranteed)
}

func TestClient_Carrier(t *testing.T) {
	client := newTestClient(httpapi.NewMock(), canadapost.Config{})

	carrier := client.Carrier()
	assert.Equal(t, "canadapost", carrier.Code)
	assert.Equal(t, canadapost.ShippingMethods.Len(), len(carrier.ShippingMethods))
	for _, m := range carrier.ShippingMethods {
		assert.True(t, m.ShipsFrom("CA"))
		assert.False(t, m.ShipsFrom("US"))
	}
}

func TestClient_Rates_NilOptions(t *testing.T) {
	mock := byWeight(t, map[string]string{
		"2":     "price_quotes_pkg1.xml",
		"2.495": "price_quotes_pkg2.xml",
	})
	client := newTestClient(mock, canadapost.Config{AccountID: "0001234567"})

	result, err := client.Rates(context.Background(), testShipment(), nil)
	require.NoError(t, err)
	assert.Len(t, result.Data, 3)
	assert.Contains(t, mock.LastRequest().Body, "<customer-number>0001234567</customer-number>")
}
