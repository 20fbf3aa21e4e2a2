package uspsintl_test

import (
	"context"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/httpapi"
	"github.com/tournevent/carrierkit/pkg/shipper/uspsintl"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(doer httpapi.Doer, debug bool) *uspsintl.Client {
	return uspsintl.NewWithDoer(
		uspsintl.Config{UserID: "test-user", Debug: debug},
		doer,
		otelzap.New(zap.NewNop()),
		nil,
	)
}

func fixture(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile("testdata/" + name)
	require.NoError(t, err)
	return string(data)
}

func testShipment() *shipper.Shipment {
	return &shipper.Shipment{
		Origin:      shipper.Address{PostalCode: "02110", CountryCode: "US"},
		Destination: shipper.Address{PostalCode: "K1A 0B1", CountryCode: "CA"},
		Packages: []shipper.Package{
			{
				ID:         "pkg-1",
				Dimensions: shipper.Dimensions{Length: 12, Width: 8, Height: 4, Unit: shipper.DimensionIN},
				Weight:     shipper.Weight{Value: 1.5, Unit: shipper.WeightLB},
			},
			{
				ID:         "pkg-2",
				Dimensions: shipper.Dimensions{Length: 10, Width: 6, Height: 2, Unit: shipper.DimensionIN},
				Weight:     shipper.Weight{Value: 12, Unit: shipper.WeightOZ},
			},
		},
	}
}

func total(t *testing.T, r shipper.Rate) int64 {
	t.Helper()
	m, err := r.TotalAmount()
	require.NoError(t, err)
	return m.Subunits
}

func TestClient_FindRates_Success(t *testing.T) {
	mock := httpapi.NewMock().Respond(200, fixture(t, "intl_rate_v2_response.xml"))
	client := newTestClient(mock, false)

	result, err := client.FindRates(context.Background(), testShipment())
	require.NoError(t, err)
	require.Len(t, result.Data, 3, "global express has no price for any package")

	express, priority, firstClass := result.Data[0], result.Data[1], result.Data[2]

	assert.Equal(t, uspsintl.ServicePriorityExpressIntl, express.ShippingMethod.ServiceCode)
	assert.Equal(t, int64(13935), total(t, express))
	assert.Equal(t, "Priority Mail Express International", express.Data[uspsintl.DataFullMailService])
	assert.Equal(t, "3 - 5 business days", express.Data[uspsintl.DataSvcCommitments])
	assert.Equal(t, "Guaranteed", express.Data[uspsintl.DataGuaranteeAvailability])
	assert.Equal(t, "66", express.Data[uspsintl.DataMaxWeight])
	assert.Equal(t, uspsintl.PriceRetail, express.Data[uspsintl.DataPriceType])

	assert.Equal(t, uspsintl.ServicePriorityIntl, priority.ShippingMethod.ServiceCode)
	assert.Equal(t, int64(9735), total(t, priority), "the flat rate variant does not replace the base service")
	assert.Equal(t, "2", priority.RemoteServiceID)

	assert.Equal(t, uspsintl.ServiceFirstClassPackage, firstClass.ShippingMethod.ServiceCode)
	assert.Equal(t, int64(1525), firstClass.Amounts["pkg-1"].Subunits)
	assert.Equal(t, int64(1480), firstClass.Amounts["pkg-2"].Subunits)
	assert.Equal(t, uspsintl.PriceCommercial, firstClass.Data[uspsintl.DataPriceType])

	assert.Nil(t, result.OriginalRequest)
	assert.Nil(t, result.OriginalResponse)
}

func TestClient_RateEstimates_CommercialPricing(t *testing.T) {
	mock := httpapi.NewMock().Respond(200, fixture(t, "intl_rate_v2_response.xml"))
	client := newTestClient(mock, true)

	pkg1 := uspsintl.NewPackageOptions("pkg-1")
	pkg1.CommercialPricing = true
	pkg2 := uspsintl.NewPackageOptions("pkg-2")
	pkg2.CommercialPricing = true

	result, err := client.RateEstimates(context.Background(), testShipment(), uspsintl.NewRateEstimateOptions(pkg1, pkg2))
	require.NoError(t, err)
	require.Len(t, result.Data, 3)

	assert.Equal(t, int64(7450), result.Data[0].Amounts["pkg-1"].Subunits)
	assert.Equal(t, int64(6040), result.Data[0].Amounts["pkg-2"].Subunits)
	assert.Equal(t, int64(9415), total(t, result.Data[1]))

	assert.NotNil(t, result.OriginalRequest)
	assert.NotNil(t, result.OriginalResponse)

	u, err := url.Parse(mock.LastRequest().URL)
	require.NoError(t, err)
	assert.Contains(t, u.Query().Get("XML"), `<CommercialFlag>Y</CommercialFlag>`)
}

func TestClient_RateEstimates_ShippingMethodFilter(t *testing.T) {
	client := newTestClient(httpapi.NewMock().Respond(200, fixture(t, "intl_rate_v2_response.xml")), false)

	method, ok := uspsintl.ShippingMethods.ByCode(uspsintl.ServicePriorityIntl)
	require.True(t, ok)
	defaults := func() *uspsintl.PackageOptions {
		o := uspsintl.DefaultPackageOptions()
		o.ShippingMethod = &method
		return o
	}

	result, err := client.RateEstimates(context.Background(), testShipment(), uspsintl.NewRateEstimateOptionsWithDefaults(defaults))
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Priority Mail International", result.Data[0].ShippingMethod.Name)
}

func TestClient_FindRates_AuthError(t *testing.T) {
	client := newTestClient(httpapi.NewMock().Respond(200, fixture(t, "intl_rate_v2_error.xml")), true)

	_, err := client.FindRates(context.Background(), testShipment())

	var failure *shipper.APIFailure
	require.ErrorAs(t, err, &failure)
	var se *shipper.ShipperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "80040B1A", se.Code)
	assert.NotNil(t, failure.OriginalResponse)
}

func TestClient_FindRates_PackageError(t *testing.T) {
	body := `<IntlRateV2Response>
		<Package ID="pkg-1"><Error><Number>-2147219080</Number><Description>Invalid Country Name</Description></Error></Package>
	</IntlRateV2Response>`
	client := newTestClient(httpapi.NewMock().Respond(200, body), false)

	_, err := client.FindRates(context.Background(), testShipment())

	var se *shipper.ShipperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, shipper.CodeCarrierError, se.Code)
	assert.Equal(t, "Invalid Country Name", se.Message())
}

func TestClient_FindRates_UnknownPackage(t *testing.T) {
	client := newTestClient(httpapi.NewMock().Respond(200, fixture(t, "intl_rate_v2_response.xml")), false)

	shipment := testShipment()
	shipment.Packages = shipment.Packages[1:]

	_, err := client.FindRates(context.Background(), shipment)
	assert.ErrorIs(t, err, shipper.ErrUnknownPackage)
}

func TestClient_FindRates_MalformedBody(t *testing.T) {
	client := newTestClient(httpapi.NewMock().Respond(200, "not xml at all <"), false)

	_, err := client.FindRates(context.Background(), testShipment())
	assert.ErrorIs(t, err, &shipper.ShipperError{Code: shipper.CodeParseError})
}

func TestClient_FindRates_UnknownCountryFailsFast(t *testing.T) {
	mock := httpapi.NewMock()
	client := newTestClient(mock, false)

	shipment := testShipment()
	shipment.Destination.CountryCode = "XX"

	_, err := client.FindRates(context.Background(), shipment)
	assert.ErrorIs(t, err, shipper.ErrUnknownCode)
	assert.Empty(t, mock.Requests())
}

func TestClient_RateEstimates_NilOptions(t *testing.T) {
	mock := httpapi.NewMock().Respond(200, fixture(t, "intl_rate_v2_response.xml"))
	client := newTestClient(mock, false)

	result, err := client.RateEstimates(context.Background(), testShipment(), nil)
	require.NoError(t, err)
	assert.Len(t, result.Data, 3)
}
