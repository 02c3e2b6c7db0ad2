package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizesCurrency(t *testing.T) {
	m, err := New(1200, " inr ")
	require.NoError(t, err)
	assert.Equal(t, "INR", m.Currency)
	assert.Equal(t, int64(1200), m.Amount)

	_, err = New(10, "  ")
	assert.ErrorIs(t, err, ErrInvalidCurrency)
}

func TestAddRejectsCurrencyMismatch(t *testing.T) {
	a := Must(100, "INR")
	b := Must(50, "USD")

	_, err := a.Add(b)
	assert.ErrorIs(t, err, ErrCurrencyMismatch)

	sum, err := a.Add(Must(25, "INR"))
	require.NoError(t, err)
	assert.Equal(t, int64(125), sum.Amount)
}

func TestPercentRoundedHalfUp(t *testing.T) {
	cases := []struct {
		amount  int64
		percent int64
		want    int64
	}{
		{3000, 12, 360},
		{3000, 18, 540},
		{1037, 12, 124},  // 124.44 rounds down
		{1038, 12, 125},  // 124.56 rounds up
		{1250, 18, 225},  // exact
		{25, 18, 5},      // 4.5 rounds up
		{0, 12, 0},
	}
	for _, tc := range cases {
		got := Must(tc.amount, "INR").PercentRounded(tc.percent)
		assert.Equal(t, tc.want, got.Amount, "%d%% of %d", tc.percent, tc.amount)
		assert.Equal(t, "INR", got.Currency)
	}
}

func TestSubunits(t *testing.T) {
	assert.Equal(t, int64(390000), Must(3900, "INR").Subunits())
	assert.Equal(t, int64(0), Money{Currency: "INR"}.Subunits())
}

func TestString(t *testing.T) {
	assert.Equal(t, "₹3900", Must(3900, "INR").String())
	assert.Equal(t, "$120", Must(120, "USD").String())
}
