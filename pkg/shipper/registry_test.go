package shipper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/mock"
)

func testShipment() *shipper.Shipment {
	return &shipper.Shipment{
		Origin: shipper.Address{
			Name:         "Sender",
			Line1:        "123 Main St",
			City:         "Boston",
			ProvinceCode: "MA",
			PostalCode:   "02110",
			CountryCode:  "US",
		},
		Destination: shipper.Address{
			Name:         "Receiver",
			Line1:        "456 Oak Ave",
			City:         "Beverly Hills",
			ProvinceCode: "CA",
			PostalCode:   "90210",
			CountryCode:  "US",
		},
		Packages: []shipper.Package{
			{
				ID:         "pkg-1",
				Dimensions: shipper.Dimensions{Length: 10, Width: 10, Height: 10, Unit: shipper.DimensionIN},
				Weight:     shipper.Weight{Value: 5, Unit: shipper.WeightLB},
			},
		},
	}
}

func TestRegistry_Register(t *testing.T) {
	registry := shipper.NewRegistry()

	mockShipper := mock.New("test-shipper")
	registry.Register(mockShipper)

	got, err := registry.Get("test-shipper")
	require.NoError(t, err, "shipper should be registered")
	assert.Equal(t, "test-shipper", got.Name())
}

func TestRegistry_Register_Override(t *testing.T) {
	registry := shipper.NewRegistry()

	// Register first shipper
	registry.Register(mock.New("test-shipper"))
	assert.Equal(t, 1, registry.Count())

	// Register again with same name should override
	registry.Register(mock.New("test-shipper"))
	assert.Equal(t, 1, registry.Count())
}

func TestRegistry_Get_NotFound(t *testing.T) {
	registry := shipper.NewRegistry()

	_, err := registry.Get("nonexistent")
	assert.Error(t, err, "should return error for unregistered shipper")
	assert.True(t, errors.Is(err, shipper.ErrCarrierNotFound))
}

func TestRegistry_All(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("shipper-b"))
	registry.Register(mock.New("shipper-a"))
	registry.Register(mock.New("shipper-c"))

	all := registry.All()
	require.Len(t, all, 3)
	assert.Equal(t, "shipper-a", all[0].Name())
}

func TestRegistry_Names(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("usps"))
	registry.Register(mock.New("canadapost"))
	registry.Register(mock.New("tforce"))

	assert.Equal(t, []string{"canadapost", "tforce", "usps"}, registry.Names())
}

func TestRegistry_Count(t *testing.T) {
	registry := shipper.NewRegistry()
	assert.Equal(t, 0, registry.Count())

	registry.Register(mock.New("shipper-a"))
	assert.Equal(t, 1, registry.Count())

	registry.Register(mock.New("shipper-b"))
	assert.Equal(t, 2, registry.Count())
}

func TestRegistry_FindAllRates(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("usps"))
	registry.Register(mock.New("canadapost"))

	results, errs := registry.FindAllRates(context.Background(), testShipment())

	assert.Empty(t, errs, "should have no errors from mock shippers")
	require.Len(t, results, 2, "should have results from both shippers")
	assert.Equal(t, "canadapost", results[0].Carrier)
	assert.Equal(t, "usps", results[1].Carrier)

	for _, result := range results {
		assert.NotEmpty(t, result.Rates)
	}
}

func TestRegistry_FindAllRates_Empty(t *testing.T) {
	registry := shipper.NewRegistry()

	results, errs := registry.FindAllRates(context.Background(), testShipment())

	assert.Empty(t, results, "should return empty results for empty registry")
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], shipper.ErrCarrierNotFound)
}

func TestRegistry_FindRatesFromCarriers_Success(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("usps"))
	registry.Register(mock.New("canadapost"))
	registry.Register(mock.New("tforce"))

	// Only request quotes from 2 carriers
	results, errs := registry.FindRatesFromCarriers(context.Background(), testShipment(), []string{"usps", "tforce"})

	assert.Empty(t, errs)
	assert.Len(t, results, 2)
}

func TestRegistry_FindRatesFromCarriers_PartialFailure(t *testing.T) {
	registry := shipper.NewRegistry()

	failing := mock.New("tforce")
	failing.Err = shipper.NewShipperError("tforce", shipper.CodeCarrierError, "service down")
	registry.Register(failing)
	registry.Register(mock.New("usps"))

	results, errs := registry.FindRatesFromCarriers(context.Background(), testShipment(), nil)

	require.Len(t, results, 1)
	assert.Equal(t, "usps", results[0].Carrier)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "tforce: ")
	assert.ErrorIs(t, errs[0], &shipper.ShipperError{Code: shipper.CodeCarrierError})
}

func TestRegistry_FindRatesFromCarriers_NotFound(t *testing.T) {
	registry := shipper.NewRegistry()

	registry.Register(mock.New("usps"))

	results, errs := registry.FindRatesFromCarriers(context.Background(), testShipment(), []string{"nonexistent"})

	assert.Len(t, results, 0)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], shipper.ErrCarrierNotFound))
}

// ratesOnly hides the mock's FindTimings.
type ratesOnly struct {
	inner *mock.Client
}

func (r ratesOnly) Name() string { return r.inner.Name() }
func (r ratesOnly) Carrier() shipper.Carrier { return r.inner.Carrier() }
func (r ratesOnly) FindRates(ctx context.Context, s *shipper.Shipment) (*shipper.APIResult[[]shipper.Rate], error) {
	return r.inner.FindRates(ctx, s)
}

func TestRegistry_FindRatesFromCarriers_CarrierError(t *testing.T) {
	registry := shipper.NewRegistry()

	failing := mock.New("tforce")
	failing.Err = shipper.NewShipperError("tforce", shipper.CodeParseError, "malformed response")
	registry.Register(failing)

	results, errs := registry.FindRatesFromCarriers(context.Background(), testShipment(), nil)
	assert.Empty(t, results)
	require.Len(t, errs, 1)

	var ce *shipper.CarrierError
	require.ErrorAs(t, errs[0], &ce)
	assert.Equal(t, "tforce", ce.Carrier)
	assert.Equal(t, "tforce: tforce error (PARSE_ERROR): malformed response", ce.Error())
}

func TestRegistry_FindTimingsFromCarriers(t *testing.T) {
	registry := shipper.NewRegistry()
	registry.Register(mock.New("usps"))
	registry.Register(ratesOnly{inner: mock.New("tforce")})

	results, errs := registry.FindTimingsFromCarriers(context.Background(), testShipment(), nil)

	require.Len(t, results, 1)
	assert.Equal(t, "usps", results[0].Carrier)
	assert.NotEmpty(t, results[0].Timings)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], shipper.ErrNotSupported)
	assert.Contains(t, errs[0].Error(), "tforce: ")
}
