package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/damon-houk/fx-rate-dashboard/internal/domain/apperrors"
	"github.com/damon-houk/fx-rate-dashboard/internal/domain/entity"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/cache"
	"github.com/damon-houk/fx-rate-dashboard/internal/infrastructure/logger"
)

const (
	todayPath  = "/api/exchange/today"
	filterPath = "/api/exchange/filter"

	maxBodyBytes = 4 << 20
)

// ExchangeAPIClient fetches snapshots from the remote exchange API. Requests are never retried.
type ExchangeAPIClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *cache.SnapshotCache
	logger     logger.Logger
	now        func() time.Time
}

// NewExchangeAPIClient creates a client for the API rooted at baseURL. A nil httpClient gets a
// 10 second timeout.
func NewExchangeAPIClient(baseURL string, httpClient *http.Client, log logger.Logger) *ExchangeAPIClient {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 10 * time.Second,
		}
	}
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	return &ExchangeAPIClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		cache:      cache.NewSnapshotCache(0),
		logger:     log.WithField("component", "exchange_api"),
		now:        time.Now,
	}
}

// SetCache replaces the in-memory snapshot cache
func (c *ExchangeAPIClient) SetCache(sc *cache.SnapshotCache) {
	if sc != nil {
		c.cache = sc
	}
}

// SetClock sets the clock used to date the "today" snapshot
func (c *ExchangeAPIClient) SetClock(now func() time.Time) {
	if now != nil {
		c.now = now
	}
}

// snapshotResponse is the body shared by the today and filter endpoints
type snapshotResponse struct {
	Data map[string]struct {
		Code  string `json:"code"`
		Title string `json:"title"`
		Value string `json:"value"`
	} `json:"data"`
}

// FetchToday retrieves the current snapshot
func (c *ExchangeAPIClient) FetchToday(ctx context.Context) (*entity.Snapshot, error) {
	today := entity.CalendarDate(c.now())
	key := cache.TodayKey(today)
	if cached := c.cache.Get(key); cached != nil {
		return cached, nil
	}

	snapshot, err := c.fetch(ctx, c.baseURL+todayPath, today)
	if err != nil {
		return nil, err
	}

	c.remember(key, snapshot)
	return snapshot, nil
}

// FetchByDate retrieves the snapshot published for date
func (c *ExchangeAPIClient) FetchByDate(ctx context.Context, date time.Time) (*entity.Snapshot, error) {
	date = entity.CalendarDate(date)
	key := cache.DateKey(date)
	if cached := c.cache.Get(key); cached != nil {
		return cached, nil
	}

	reqURL := fmt.Sprintf("%s%s?date=%s", c.baseURL, filterPath, url.QueryEscape(entity.FormatDate(date)))
	snapshot, err := c.fetch(ctx, reqURL, date)
	if err != nil {
		return nil, err
	}

	c.remember(key, snapshot)
	return snapshot, nil
}

// remember caches snapshot unless it carries no rates
func (c *ExchangeAPIClient) remember(key string, snapshot *entity.Snapshot) {
	if len(snapshot.Rates) == 0 {
		return
	}
	c.cache.Put(key, snapshot)
}

func (c *ExchangeAPIClient) fetch(ctx context.Context, reqURL string, date time.Time) (*entity.Snapshot, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Warn("Error closing response body", map[string]interface{}{
				"error": closeErr.Error(),
			})
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("Exchange API response", map[string]interface{}{
		"url":         reqURL,
		"status":      resp.StatusCode,
		"bytes":       len(body),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", apperrors.ErrUpstreamStatus, resp.StatusCode)
	}

	var payload snapshotResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrMalformedSnapshot, err)
	}

	snapshot := &entity.Snapshot{
		Date:  date,
		Rates: make(map[entity.CurrencyCode]entity.Rate, len(payload.Data)),
	}
	for key, item := range payload.Data {
		code := entity.CurrencyCode(strings.ToUpper(key))
		snapshot.Rates[code] = entity.Rate{
			Code:  code,
			Title: item.Title,
			Value: item.Value,
		}
	}

	return snapshot, nil
}
