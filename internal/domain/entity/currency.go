package entity

import (
	"fmt"
	"strings"
)

// CurrencyCode is a three-letter ISO-style currency code as published by the exchange API
type CurrencyCode string

// BaseCurrency is the currency every upstream rate is quoted in. It never appears in a snapshot
// and always has rate 1.
const BaseCurrency CurrencyCode = "TRY"

// Currencies is the fixed, ordered set of charted currencies. The order drives series and legend
// ordering everywhere.
var Currencies = []CurrencyCode{
	"USD", "EUR", "AUD", "DKK", "GBP", "CHF", "SEK", "CAD", "KWD", "NOK", "SAR",
	"JPY", "BGN", "RON", "RUB", "CNY", "PKR", "QAR", "KRW", "AZN", "AED", "XDR",
}

var currencyIndex = func() map[CurrencyCode]int {
	idx := make(map[CurrencyCode]int, len(Currencies))
	for i, c := range Currencies {
		idx[c] = i
	}
	return idx
}()

// Index returns the position of the code in Currencies, or -1 for codes outside the set
func (c CurrencyCode) Index() int {
	if i, ok := currencyIndex[c]; ok {
		return i
	}
	return -1
}

// IsCharted reports whether the code belongs to the fixed charted set
func (c CurrencyCode) IsCharted() bool {
	return c.Index() >= 0
}

// IsBase reports whether the code is the quote currency
func (c CurrencyCode) IsBase() bool {
	return c == BaseCurrency
}

// ParseCurrencyCode normalizes s and accepts any charted code or the base currency
func ParseCurrencyCode(s string) (CurrencyCode, error) {
	code := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if code.IsBase() || code.IsCharted() {
		return code, nil
	}
	return "", fmt.Errorf("unsupported currency code %q", s)
}
