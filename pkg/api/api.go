// Package api fetches the schedule dataset and live market metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tonunlock/pkg/config"
	"tonunlock/pkg/models"
)

var DefaultTimeout = 10 * time.Second

// ErrMalformedMarketData is returned when the market feed lacks a required field.
var ErrMalformedMarketData = errors.New("malformed market data")

// StatusError reports a non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client performs single-attempt requests against both resources.
type Client struct {
	HTTP          *http.Client
	ScheduleURL   string
	MarketDataURL string
	CoinID        string
}

// NewClient builds a Client from the loaded configuration.
func NewClient(cfg config.Config) *Client {
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		HTTP:          &http.Client{Timeout: timeout},
		ScheduleURL:   cfg.ScheduleURL,
		MarketDataURL: cfg.MarketDataURL,
		CoinID:        cfg.CoinGeckoID,
	}
}

// FetchSchedule downloads and decodes the schedule dataset.
func (c *Client) FetchSchedule(ctx context.Context) (*models.AppData, error) {
	return FetchSchedule(ctx, c.HTTP, c.ScheduleURL)
}

// FetchMarketMetrics reads price, market cap, volume and rank for the configured coin.
func (c *Client) FetchMarketMetrics(ctx context.Context) (models.MarketMetrics, error) {
	return FetchMarketMetrics(ctx, c.HTTP, c.MarketDataURL, c.CoinID)
}

// FetchSchedule performs a single GET of the schedule resource.
func FetchSchedule(ctx context.Context, client *http.Client, scheduleURL string) (*models.AppData, error) {
	var data models.AppData
	if err := getJSON(ctx, client, scheduleURL, &data); err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	return &data, nil
}

type coinResponse struct {
	MarketData *struct {
		CurrentPrice  usdQuote `json:"current_price"`
		MarketCap     usdQuote `json:"market_cap"`
		TotalVolume   usdQuote `json:"total_volume"`
		MarketCapRank *int     `json:"market_cap_rank"`
	} `json:"market_data"`
}

type usdQuote struct {
	USD *float64 `json:"usd"`
}

// MarketDataURLFor builds the CoinGecko coin endpoint with only market data enabled.
func MarketDataURLFor(baseURL, coinID string) string {
	q := url.Values{}
	q.Set("localization", "false")
	q.Set("tickers", "false")
	q.Set("market_data", "true")
	q.Set("community_data", "false")
	q.Set("developer_data", "false")
	q.Set("sparkline", "false")
	return fmt.Sprintf("%s/coins/%s?%s", strings.TrimRight(baseURL, "/"), url.PathEscape(coinID), q.Encode())
}

// FetchMarketMetrics performs a single GET of the coin endpoint. Every one of the
// four fields must be present.
func FetchMarketMetrics(ctx context.Context, client *http.Client, baseURL, coinID string) (models.MarketMetrics, error) {
	var resp coinResponse
	if err := getJSON(ctx, client, MarketDataURLFor(baseURL, coinID), &resp); err != nil {
		return models.MarketMetrics{}, fmt.Errorf("fetch market metrics: %w", err)
	}

	md := resp.MarketData
	if md == nil {
		return models.MarketMetrics{}, fmt.Errorf("%w: missing market_data", ErrMalformedMarketData)
	}
	var missing []string
	if md.CurrentPrice.USD == nil {
		missing = append(missing, "current_price.usd")
	}
	if md.MarketCap.USD == nil {
		missing = append(missing, "market_cap.usd")
	}
	if md.TotalVolume.USD == nil {
		missing = append(missing, "total_volume.usd")
	}
	if md.MarketCapRank == nil {
		missing = append(missing, "market_cap_rank")
	}
	if len(missing) > 0 {
		return models.MarketMetrics{}, fmt.Errorf("%w: missing %s", ErrMalformedMarketData, strings.Join(missing, ", "))
	}

	return models.MarketMetrics{
		PriceUSD:      *md.CurrentPrice.USD,
		MarketCapUSD:  *md.MarketCap.USD,
		VolumeUSD:     *md.TotalVolume.USD,
		MarketCapRank: *md.MarketCapRank,
		FetchedAt:     time.Now(),
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}
