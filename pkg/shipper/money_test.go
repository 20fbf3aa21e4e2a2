package shipper_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
)

func TestParseMoney(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"26.40", 2640},
		{"0.00", 0},
		{"4.5", 450},
		{"12", 1200},
		{" 7.99 ", 799},
		{"1.005", 101},
		{"1.004", 100},
		{"-2.345", -235},
		{"19.999", 2000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			m, err := shipper.ParseMoney(tt.in, shipper.USD)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Subunits)
			assert.Equal(t, "USD", m.Currency.Code)
		})
	}
}

func TestParseMoney_Invalid(t *testing.T) {
	for _, in := range []string{"", "abc", "12,50", "1/3", "1e3", "2.5E-1", "99999999999999999999.00", "-99999999999999999999"} {
		_, err := shipper.ParseMoney(in, shipper.USD)
		assert.ErrorIs(t, err, shipper.ErrInvalidAmount, in)
	}
}

func TestMoney_Add(t *testing.T) {
	a := shipper.NewMoney(1000, shipper.USD)
	b := shipper.NewMoney(250, shipper.USD)

	sum, err := a.Add(b)
	require.NoError(t, err)
	assert.Equal(t, int64(1250), sum.Subunits)

	_, err = a.Add(shipper.NewMoney(1, shipper.CAD))
	assert.ErrorIs(t, err, shipper.ErrCurrencyMismatch)
}

func TestMoney_String(t *testing.T) {
	assert.Equal(t, "26.40 USD", shipper.NewMoney(2640, shipper.USD).String())
	assert.Equal(t, "0.05 CAD", shipper.NewMoney(5, shipper.CAD).String())
}

func TestParseMoney_Int64Bounds(t *testing.T) {
	m, err := shipper.ParseMoney("92233720368547758.07", shipper.USD)
	require.NoError(t, err)
	assert.Equal(t, int64(9223372036854775807), m.Subunits)

	_, err = shipper.ParseMoney("92233720368547758.08", shipper.USD)
	assert.ErrorIs(t, err, shipper.ErrInvalidAmount)
}

func TestMoney_Decimal(t *testing.T) {
	assert.Equal(t, "-2.35", shipper.NewMoney(-235, shipper.USD).Decimal())
	assert.Equal(t, "1200", shipper.NewMoney(1200, shipper.Currency{Code: "JPY", SubunitToUnit: 1}).Decimal())
	assert.Equal(t, "1.500", shipper.NewMoney(1500, shipper.Currency{Code: "KWD", SubunitToUnit: 1000}).Decimal())
}
