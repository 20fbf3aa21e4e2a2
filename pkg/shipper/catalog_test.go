package shipper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
)

var testCatalog = shipper.NewCatalog(
	shipper.ShippingMethod{Name: "Priority Mail", ServiceCode: "1", Domestic: true},
	shipper.ShippingMethod{Name: "Priority Mail Express", ServiceCode: "3", Domestic: true},
	shipper.ShippingMethod{Name: "Media Mail", ServiceCode: "6", Domestic: true, OriginCountries: []string{"US"}},
)

func TestCatalog_ByCode(t *testing.T) {
	m, ok := testCatalog.ByCode("3")
	require.True(t, ok)
	assert.Equal(t, "Priority Mail Express", m.Name)

	_, ok = testCatalog.ByCode("99")
	assert.False(t, ok)
}

func TestCatalog_ByName(t *testing.T) {
	tests := []struct {
		name string
		want string
		ok   bool
	}{
		{"Priority Mail 2-Day", "1", true},
		{"PRIORITY MAIL EXPRESS 1-Day", "3", true},
		{"media mail parcel", "6", true},
		{"Ground Advantage", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := testCatalog.ByName(tt.name)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, m.ServiceCode)
		})
	}
}

func TestCatalog_Resolve(t *testing.T) {
	assert.Equal(t, "1", testCatalog.Resolve("1", "whatever").ServiceCode)
	assert.Equal(t, "3", testCatalog.Resolve("77", "Priority Mail Express 2-Day").ServiceCode)

	adHoc := testCatalog.Resolve("77", "Parcel Select Lightweight")
	assert.Equal(t, "77", adHoc.ServiceCode)
	assert.Equal(t, "Parcel Select Lightweight", adHoc.Name)

	assert.Equal(t, "77", testCatalog.Resolve("77", "").Name)
}

func TestCatalog_AllReturnsCopy(t *testing.T) {
	all := testCatalog.All()
	all[0].Name = "mutated"

	m, _ := testCatalog.ByCode("1")
	assert.Equal(t, "Priority Mail", m.Name)
	assert.Equal(t, 3, testCatalog.Len())
}

func TestShippingMethod_ShipsFrom(t *testing.T) {
	media, _ := testCatalog.ByCode("6")
	assert.True(t, media.ShipsFrom("us"))
	assert.False(t, media.ShipsFrom("CA"))

	priority, _ := testCatalog.ByCode("1")
	assert.True(t, priority.ShipsFrom("CA"))
}
