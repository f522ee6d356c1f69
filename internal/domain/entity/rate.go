package entity

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Rate is one entry of an exchange API snapshot. Value keeps the upstream comma-decimal string.
type Rate struct {
	Code  CurrencyCode `json:"code"`
	Title string       `json:"title"`
	Value string       `json:"value"`
}

// Snapshot is the full set of rates the exchange API published for one date
type Snapshot struct {
	Date  time.Time             `json:"date"`
	Rates map[CurrencyCode]Rate `json:"rates"`
}

// ParseRateValue converts an upstream decimal string such as "32,18" or "1.234,56".
// Dots before the comma are thousands separators.
func ParseRateValue(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid rate value %q: %w", raw, err)
	}
	return d, nil
}

// NullRate is a rate that may be unknown for its date
type NullRate struct {
	Value float64
	Valid bool
}

// Known wraps a known rate value
func Known(v float64) NullRate {
	return NullRate{Value: v, Valid: true}
}

// Unknown is the "no value" marker
var Unknown = NullRate{}

func (n NullRate) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

func (n *NullRate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = Unknown
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*n = Known(v)
	return nil
}

// RatePoint holds one value per charted currency for a single date
type RatePoint struct {
	Date   time.Time
	Values map[CurrencyCode]NullRate
}

// UnknownPoint returns a point with every charted currency unknown
func UnknownPoint(date time.Time) RatePoint {
	values := make(map[CurrencyCode]NullRate, len(Currencies))
	for _, code := range Currencies {
		values[code] = Unknown
	}
	return RatePoint{Date: date, Values: values}
}

// Point extracts the charted currencies from the snapshot. Codes that are missing or have an
// empty value are unknown; an unparsable value fails the whole snapshot.
func (s *Snapshot) Point(date time.Time) (RatePoint, error) {
	point := UnknownPoint(date)
	if s == nil {
		return point, nil
	}
	for _, code := range Currencies {
		rate, ok := s.Rates[code]
		if !ok || strings.TrimSpace(rate.Value) == "" {
			continue
		}
		d, err := ParseRateValue(rate.Value)
		if err != nil {
			return UnknownPoint(date), fmt.Errorf("%s: %w", code, err)
		}
		point.Values[code] = Known(d.InexactFloat64())
	}
	return point, nil
}
