package handler

import (
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
)

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}

// RefreshResponse identifies the chart cycle a refresh started
type RefreshResponse struct {
	Generation  uint64             `json:"generation"`
	Granularity entity.Granularity `json:"range"`
}

// RateTableResponse represents the single-date rate table
type RateTableResponse struct {
	Date  string                `json:"date"`
	Base  entity.CurrencyCode   `json:"base"`
	Rates []entity.RateTableRow `json:"rates"`
}

// ConversionResponse represents the response for the conversion endpoint. Decimal amounts are
// rendered as strings so no precision is lost in the browser.
type ConversionResponse struct {
	Amount   string              `json:"amount"`
	From     entity.CurrencyCode `json:"from"`
	To       entity.CurrencyCode `json:"to"`
	RateFrom string              `json:"rate_from"`
	RateTo   string              `json:"rate_to"`
	Result   string              `json:"result"`
	Date     string              `json:"date"`
}

func newConversionResponse(c *entity.Conversion) ConversionResponse {
	return ConversionResponse{
		Amount:   c.Amount.String(),
		From:     c.From,
		To:       c.To,
		RateFrom: c.RateFrom.String(),
		RateTo:   c.RateTo.String(),
		Result:   c.Result.StringFixed(2),
		Date:     formatDate(c.Date),
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return entity.FormatDate(t)
}
