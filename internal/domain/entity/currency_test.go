package entity

import (
	"testing"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrencies(t *testing.T) {
	assert.Len(t, Currencies, 22)
	assert.Equal(t, CurrencyCode("USD"), Currencies[0])
	assert.Equal(t, CurrencyCode("XDR"), Currencies[21])
	assert.Equal(t, 1, CurrencyCode("EUR").Index())
	assert.Equal(t, -1, BaseCurrency.Index())
}

func TestParseCurrencyCode(t *testing.T) {
	code, err := ParseCurrencyCode(" usd ")
	require.NoError(t, err)
	assert.Equal(t, CurrencyCode("USD"), code)

	code, err = ParseCurrencyCode("try")
	require.NoError(t, err)
	assert.True(t, code.IsBase())

	_, err = ParseCurrencyCode("ABC")
	assert.Error(t, err)
}

func TestParseGranularity(t *testing.T) {
	tests := map[string]Granularity{
		"":        Weekly,
		"daily":   Daily,
		"week":    Weekly,
		"Monthly": Monthly,
		"year":    Yearly,
	}
	for in, want := range tests {
		got, err := ParseGranularity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseGranularity("hourly")
	assert.Error(t, err)

	assert.Equal(t, 1, Daily.Points())
	assert.Equal(t, 7, Weekly.Points())
	assert.Equal(t, 30, Monthly.Points())
	assert.Equal(t, 365, Yearly.Points())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "03-07-2024", FormatDate(time.Date(2024, 7, 3, 15, 4, 5, 0, time.UTC)))

	parsed, err := ParseDate("03-07-2024", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC), parsed)

	_, err = ParseDate("2024-07-03", time.UTC)
	assert.Error(t, err)

	assert.Equal(t, time.Date(2024, 7, 3, 0, 0, 0, 0, time.UTC),
		CalendarDate(time.Date(2024, 7, 3, 23, 59, 0, 0, time.UTC)))
}

func TestConversionRequestValidate(t *testing.T) {
	req := ConversionRequest{Amount: decimal.NewFromInt(10), From: "USD", To: BaseCurrency}
	assert.NoError(t, req.Validate())

	req.Amount = decimal.NewFromInt(-1)
	assert.Error(t, req.Validate())

	req = ConversionRequest{Amount: decimal.Zero, From: "ABC", To: "EUR"}
	assert.Error(t, req.Validate())
}

func TestConversionRequestValidateAmountBounds(t *testing.T) {
	tests := []struct {
		amount string
		valid  bool
	}{
		{"0", true},
		{"0.00000000000", true},
		{"999999999999999", true},
		{"123.45678901", true},
		{"1000000000000000", false},
		{"1e15", false},
		{"1e40000000", false},
		{"0.123456789", false},
		{"1e-40000000", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			req := ConversionRequest{Amount: decimal.RequireFromString(tt.amount), From: "USD", To: "EUR"}
			err := req.Validate()
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		})
	}
}
