package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AppData is the schedule dataset as served by the data provider.
type AppData struct {
	DataDate        string         `json:"data_date"`
	TotalWallets    int            `json:"total_wallets"`
	Methodology     string         `json:"methodology"`
	ChartData       *ChartData     `json:"chart_data"`
	WalletTableData []WalletRecord `json:"wallet_table_data"`
}

// ChartData holds the cumulative unlock series.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset is one numeric series of the chart.
type Dataset struct {
	Label string    `json:"label,omitempty"`
	Data  []float64 `json:"data"`
}

// Series returns the first dataset, which is the only one the dashboard draws.
func (c *ChartData) Series() []float64 {
	if c == nil || len(c.Datasets) == 0 {
		return nil
	}
	return c.Datasets[0].Data
}

// WalletRecord is a single row of the unlock table.
// Amounts accept both JSON numbers and numeric strings.
type WalletRecord struct {
	Rank           int             `json:"rank"`
	Address        string          `json:"address"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	UnlockedAmount decimal.Decimal `json:"unlocked_amount"`
	LockedAmount   decimal.Decimal `json:"locked_amount"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
}

// Consistent reports whether unlocked + locked equals total.
// Records are displayed as provided either way.
func (w WalletRecord) Consistent() bool {
	return w.UnlockedAmount.Add(w.LockedAmount).Equal(w.TotalAmount)
}

// MarketMetrics is the live market snapshot for the tracked coin.
type MarketMetrics struct {
	PriceUSD      float64   `json:"price_usd"`
	MarketCapUSD  float64   `json:"market_cap_usd"`
	VolumeUSD     float64   `json:"volume_usd"`
	MarketCapRank int       `json:"market_cap_rank"`
	FetchedAt     time.Time `json:"fetched_at"`
}

// ResourceResult holds the -test outcome for one remote resource.
type ResourceResult struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Status  string `json:"status"` // "ok" or "error"
	Error   string `json:"error,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// TestReport holds the results of the configuration test.
type TestReport struct {
	ConfigPath          string           `json:"config_path"`
	ValidStructure      bool             `json:"valid_structure"`
	StructureErrors     []string         `json:"structure_errors,omitempty"`
	Resources           []ResourceResult `json:"resources"`
	WalletCount         int              `json:"wallet_count"`
	InconsistentWallets int              `json:"inconsistent_wallets"`
	ChartPoints         int              `json:"chart_points"`
}
