package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		out  int64
		want error
	}{
		{`1`, 100, nil},
		{`1.0`, 100, nil},
		{`1.23`, 123, nil},
		{`"1,23"`, 123, nil},
		{`0.01`, 1, nil},
		{`1.005`, 101, nil}, // half-up rounding
		{`1.004`, 100, nil},
		{`" 2.50 "`, 250, nil},
		{`0`, 0, nil},
		{`-1`, -100, nil},
		{`100000000000`, MaxAmountCents, nil},
		{`0.004`, 0, ErrInvalidAmount},
		{`"+1"`, 0, ErrInvalidAmount},
		{`"abc"`, 0, ErrInvalidAmount},
		{`"1.2.3"`, 0, ErrInvalidAmount},
		{`""`, 0, ErrInvalidAmount},
		{`100000000000.01`, 0, ErrAmountTooLarge},
		{`184467440737095517.16`, 0, ErrAmountTooLarge},
		{`92233720368547758.07`, 0, ErrAmountTooLarge},
		{`-92233720368547758.08`, 0, ErrAmountTooLarge},
	}
	for _, tc := range cases {
		var m Money
		err := json.Unmarshal([]byte(tc.in), &m)
		if tc.want != nil {
			assert.ErrorIs(t, err, tc.want, tc.in)
			assert.ErrorIs(t, err, ErrValidation, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.out, m.Cents, tc.in)
	}
}

func TestMoneyFromDecimal(t *testing.T) {
	m, err := MoneyFromDecimal(decimal.RequireFromString("12.345"))
	require.NoError(t, err)
	assert.Equal(t, int64(1235), m.Cents)

	_, err = MoneyFromDecimal(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = MoneyFromDecimal(decimal.NewFromInt(-3))
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = MoneyFromDecimal(decimal.NewFromInt(MaxAmountCents))
	assert.ErrorIs(t, err, ErrAmountTooLarge)
}

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Money `json:"amount"`
	}{Money{Cents: 12345}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":123.45}`, string(b))

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 400, "b": "19.99"}`), &in))
	assert.Equal(t, int64(40000), in.A.Cents)
	assert.Equal(t, int64(1999), in.B.Cents)

	var bad struct {
		A Money `json:"a"`
	}
	assert.ErrorIs(t, json.Unmarshal([]byte(`{"a": "lots"}`), &bad), ErrValidation)

	// Past int64 range: must fail, not wrap to a small positive amount.
	err = json.Unmarshal([]byte(`{"a": 184467440737095517.16}`), &bad)
	assert.ErrorIs(t, err, ErrAmountTooLarge)
	assert.Zero(t, bad.A.Cents)
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "5.00", Money{Cents: 500}.String())
	assert.Equal(t, "0.07", Money{Cents: 7}.String())
	assert.InDelta(t, 12.5, Money{Cents: 1250}.Float(), 1e-9)
}
