package entity

import (
	"fmt"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/shopspring/decimal"
)

// Bounds on a convertible amount: whole digits and digits after the decimal point
const (
	MaxAmountDigits = 15
	MaxAmountScale  = 8
)

// ConversionRequest asks for amount units of From expressed in To
type ConversionRequest struct {
	Amount decimal.Decimal
	From   CurrencyCode
	To     CurrencyCode
	// Date selects a historical snapshot; zero means today
	Date time.Time
}

// Validate ensures the request can be priced
func (r *ConversionRequest) Validate() error {
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", apperrors.ErrInvalidAmount)
	}
	// checked on the raw exponent so oversized values are never rescaled
	exp := r.Amount.Exponent()
	if exp < -MaxAmountScale && !r.Amount.IsZero() {
		return fmt.Errorf("%w: at most %d decimal places are supported", apperrors.ErrInvalidAmount, MaxAmountScale)
	}
	if !r.Amount.IsZero() && int(exp)+r.Amount.NumDigits() > MaxAmountDigits {
		return fmt.Errorf("%w: amount must have at most %d whole digits", apperrors.ErrInvalidAmount, MaxAmountDigits)
	}
	if !r.From.IsBase() && !r.From.IsCharted() {
		return fmt.Errorf("%w: unsupported source currency %q", apperrors.ErrInvalidCurrency, r.From)
	}
	if !r.To.IsBase() && !r.To.IsCharted() {
		return fmt.Errorf("%w: unsupported target currency %q", apperrors.ErrInvalidCurrency, r.To)
	}
	return nil
}

// Conversion is a priced ConversionRequest
type Conversion struct {
	Amount   decimal.Decimal `json:"amount"`
	From     CurrencyCode    `json:"from"`
	To       CurrencyCode    `json:"to"`
	RateFrom decimal.Decimal `json:"rate_from"`
	RateTo   decimal.Decimal `json:"rate_to"`
	Result   decimal.Decimal `json:"result"`
	Date     time.Time       `json:"date"`
}

// RateTableRow is one line of the single-date rate table, with the upstream strings untouched
type RateTableRow struct {
	Code  CurrencyCode `json:"code"`
	Title string       `json:"title"`
	Value string       `json:"value"`
}
