package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tonunlock/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scheduleJSON = `{
	"data_date": "2024-07-01",
	"total_wallets": 2,
	"methodology": "On-chain vesting contracts",
	"chart_data": {
		"labels": ["2024-01", "2024-02"],
		"datasets": [{"label": "Cumulative", "data": [1.5, 2.25]}]
	},
	"wallet_table_data": [
		{"rank": 1, "address": "EQCabcdefghijklmnopqrstuvwxyz0123", "total_amount": 1250000, "unlocked_amount": "250000", "locked_amount": 1000000, "start_date": "2024-01-01", "end_date": "2025-01-01"},
		{"rank": 2, "address": "EQDshort", "total_amount": 500, "unlocked_amount": 500, "locked_amount": 0, "start_date": "2024-06-01", "end_date": "2024-06-01"}
	]
}`

const coinJSON = `{
	"id": "the-open-network",
	"market_data": {
		"current_price": {"usd": 5.4321, "eur": 5.0},
		"market_cap": {"usd": 13250000000},
		"total_volume": {"usd": 245600000},
		"market_cap_rank": 9
	}
}`

func newClient(url string) *Client {
	cfg := config.Default()
	cfg.ScheduleURL = url + "/schedule.json"
	cfg.MarketDataURL = url + "/api/v3"
	return NewClient(cfg)
}

func TestFetchSchedule(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schedule.json", r.URL.Path)
		_, _ = w.Write([]byte(scheduleJSON))
	}))
	defer server.Close()

	data, err := newClient(server.URL).FetchSchedule(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "2024-07-01", data.DataDate)
	assert.Equal(t, 2, data.TotalWallets)
	assert.Equal(t, []float64{1.5, 2.25}, data.ChartData.Series())
	require.Len(t, data.WalletTableData, 2)

	w := data.WalletTableData[0]
	assert.Equal(t, "1250000", w.TotalAmount.String())
	assert.Equal(t, "250000", w.UnlockedAmount.String())
	assert.True(t, w.Consistent())
	assert.True(t, data.WalletTableData[1].Consistent())
}

func TestFetchSchedule_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	data, err := newClient(server.URL).FetchSchedule(context.Background())
	require.Error(t, err)
	assert.Nil(t, data)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}

func TestFetchSchedule_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := newClient(url).FetchSchedule(context.Background())
	assert.Error(t, err)
}

func TestFetchSchedule_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data_date": `))
	}))
	defer server.Close()

	_, err := newClient(server.URL).FetchSchedule(context.Background())
	assert.Error(t, err)
}

func TestFetchMarketMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/coins/the-open-network", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("market_data"))
		assert.Equal(t, "false", r.URL.Query().Get("tickers"))
		_, _ = w.Write([]byte(coinJSON))
	}))
	defer server.Close()

	m, err := newClient(server.URL).FetchMarketMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5.4321, m.PriceUSD)
	assert.Equal(t, 13250000000.0, m.MarketCapUSD)
	assert.Equal(t, 245600000.0, m.VolumeUSD)
	assert.Equal(t, 9, m.MarketCapRank)
	assert.False(t, m.FetchedAt.IsZero())
}

func TestFetchMarketMetrics_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"No market_data", `{"id": "the-open-network"}`},
		{"Missing rank", `{"market_data": {"current_price": {"usd": 1}, "market_cap": {"usd": 2}, "total_volume": {"usd": 3}}}`},
		{"Missing usd quote", `{"market_data": {"current_price": {"eur": 1}, "market_cap": {"usd": 2}, "total_volume": {"usd": 3}, "market_cap_rank": 4}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newClient(server.URL).FetchMarketMetrics(context.Background())
			assert.ErrorIs(t, err, ErrMalformedMarketData)
		})
	}
}

func TestFetchMarketMetrics_RateLimited(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newClient(server.URL).FetchMarketMetrics(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, calls, "no retries")
}

func TestMarketDataURLFor(t *testing.T) {
	u := MarketDataURLFor("https://api.coingecko.com/api/v3/", "the-open-network")
	assert.Equal(t, "https://api.coingecko.com/api/v3/coins/the-open-network?community_data=false&developer_data=false&localization=false&market_data=true&sparkline=false&tickers=false", u)
}
