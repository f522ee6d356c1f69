package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/repository"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/middleware"
	"github.com/shopspring/decimal"
)

// ConversionService prices an amount of one currency in another using a single snapshot
type ConversionService struct {
	snapshots repository.SnapshotRepository
	logger    logger.Logger
}

// NewConversionService creates a new conversion service
func NewConversionService(snapshots repository.SnapshotRepository, log logger.Logger) *ConversionService {
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ConversionService{
		snapshots: snapshots,
		logger:    log,
	}
}

// Convert prices req. Every upstream rate is quoted in the base currency, so the result is
// amount * fromRate / toRate with the base currency at rate 1, rounded to two decimals.
func (s *ConversionService) Convert(ctx context.Context, req entity.ConversionRequest) (*entity.Conversion, error) {
	requestID := middleware.GetRequestID(ctx)

	if err := req.Validate(); err != nil {
		return nil, err
	}

	s.logger.Info("Converting amount", map[string]interface{}{
		"request_id": requestID,
		"amount":     req.Amount.String(),
		"from":       req.From,
		"to":         req.To,
	})

	var (
		snapshot *entity.Snapshot
		err      error
	)
	if req.Date.IsZero() {
		snapshot, err = s.snapshots.Today(ctx)
	} else {
		snapshot, err = s.snapshots.FindByDate(ctx, req.Date)
	}
	if err != nil {
		s.logger.Error("Failed to get snapshot for conversion", map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", apperrors.ErrDataUnavailable, err)
	}

	fromRate, err := rateOf(snapshot, req.From)
	if err != nil {
		return nil, err
	}
	toRate, err := rateOf(snapshot, req.To)
	if err != nil {
		return nil, err
	}

	result := req.Amount.Mul(fromRate).Div(toRate).Round(2)

	s.logger.Info("Conversion completed", map[string]interface{}{
		"request_id": requestID,
		"from":       req.From,
		"to":         req.To,
		"rate_from":  fromRate.String(),
		"rate_to":    toRate.String(),
		"result":     result.String(),
	})

	date := snapshot.Date
	if date.IsZero() {
		date = req.Date
	}

	return &entity.Conversion{
		Amount:   req.Amount,
		From:     req.From,
		To:       req.To,
		RateFrom: fromRate,
		RateTo:   toRate,
		Result:   result,
		Date:     date,
	}, nil
}

func rateOf(snapshot *entity.Snapshot, code entity.CurrencyCode) (decimal.Decimal, error) {
	if code.IsBase() {
		return decimal.NewFromInt(1), nil
	}

	rate, ok := snapshot.Rates[code]
	if !ok || strings.TrimSpace(rate.Value) == "" {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s", apperrors.ErrRateUnavailable, code)
	}

	value, err := entity.ParseRateValue(rate.Value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", apperrors.ErrRateUnavailable, err)
	}
	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: non-positive rate for %s", apperrors.ErrRateUnavailable, code)
	}
	return value, nil
}
