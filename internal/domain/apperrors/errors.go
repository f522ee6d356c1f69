// Package apperrors holds the sentinel errors shared across layers. Callers wrap them with
// fmt.Errorf("...: %w") and handlers match them with errors.Is.
package apperrors

import "errors"

// Upstream errors describe failures talking to the exchange API.
var (
	// ErrUpstreamStatus indicates the exchange API answered with a non-2xx status.
	ErrUpstreamStatus = errors.New("exchange api returned an error status")

	// ErrMalformedSnapshot indicates the exchange API body could not be decoded or parsed.
	ErrMalformedSnapshot = errors.New("malformed exchange snapshot")
)

// Service errors are surfaced to API clients.
var (
	// ErrDataUnavailable is the single user-visible failure of a chart cycle, rate table or
	// conversion when no snapshot could be used.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrRateUnavailable indicates a snapshot was fetched but lacks a usable rate for a requested currency.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrSnapshotNotFound indicates the snapshot store holds nothing for a date.
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Validation errors.
var (
	ErrInvalidRange    = errors.New("invalid range")
	ErrInvalidDate     = errors.New("invalid date")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidCurrency = errors.New("invalid currency")
)
