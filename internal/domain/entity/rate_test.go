package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRateValue(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"32,18", "32.18"},
		{"32,50", "32.5"},
		{" 0,0234 ", "0.0234"},
		{"1.234,56", "1234.56"},
		{"45.12", "45.12"},
		{"7", "7"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseRateValue(tt.raw)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), "got %s", got)
		})
	}

	t.Run("float conversion", func(t *testing.T) {
		got, err := ParseRateValue("32,18")
		require.NoError(t, err)
		assert.Equal(t, 32.18, got.InexactFloat64())
	})

	for _, raw := range []string{"", "abc", "12,3x", "--1"} {
		t.Run("invalid "+raw, func(t *testing.T) {
			_, err := ParseRateValue(raw)
			assert.Error(t, err)
		})
	}
}

func TestNullRateJSON(t *testing.T) {
	data, err := json.Marshal([]NullRate{Known(32.5), Unknown})
	require.NoError(t, err)
	assert.JSONEq(t, `[32.5, null]`, string(data))

	var back []NullRate
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []NullRate{Known(32.5), Unknown}, back)
}

func TestSnapshotPoint(t *testing.T) {
	date := time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC)

	t.Run("Present and absent codes", func(t *testing.T) {
		snap := &Snapshot{Rates: map[CurrencyCode]Rate{
			"USD": {Code: "USD", Title: "ABD DOLARI", Value: "32,50"},
			"JPY": {Code: "JPY", Title: "JAPON YENI", Value: ""},
			"ZZZ": {Code: "ZZZ", Value: "1,00"},
		}}

		point, err := snap.Point(date)
		require.NoError(t, err)
		assert.Equal(t, date, point.Date)
		assert.Len(t, point.Values, len(Currencies))
		assert.Equal(t, Known(32.5), point.Values["USD"])
		assert.Equal(t, Unknown, point.Values["EUR"])
		assert.Equal(t, Unknown, point.Values["JPY"])
		assert.NotContains(t, point.Values, CurrencyCode("ZZZ"))
	})

	t.Run("Unparsable value fails every currency", func(t *testing.T) {
		snap := &Snapshot{Rates: map[CurrencyCode]Rate{
			"USD": {Value: "32,50"},
			"EUR": {Value: "n/a"},
		}}

		point, err := snap.Point(date)
		assert.Error(t, err)
		for _, code := range Currencies {
			assert.False(t, point.Values[code].Valid, code)
		}
	})

	t.Run("Nil snapshot", func(t *testing.T) {
		var snap *Snapshot
		point, err := snap.Point(date)
		require.NoError(t, err)
		assert.Len(t, point.Values, len(Currencies))
	})
}
