package dashboard

import (
	"testing"

	"tonunlock/pkg/models"
	"tonunlock/pkg/sorting"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(rank int, addr string, total int64, start string) models.WalletRecord {
	return models.WalletRecord{
		Rank:           rank,
		Address:        addr,
		TotalAmount:    decimal.NewFromInt(total),
		UnlockedAmount: decimal.Zero,
		LockedAmount:   decimal.NewFromInt(total),
		StartDate:      start,
		EndDate:        "2026-01-01",
	}
}

func sample() *models.AppData {
	return &models.AppData{
		DataDate:     "2024-07-01",
		TotalWallets: 1234,
		Methodology:  "Vesting contracts",
		ChartData: &models.ChartData{
			Labels:   []string{"Jan", "Feb"},
			Datasets: []models.Dataset{{Data: []float64{1.25, 2.5}}},
		},
		WalletTableData: []models.WalletRecord{
			record(2, "EQBzyxwvutsrqponmlkjihgfedcba98765", 500, "2024-03-01"),
			record(1, "EQCabcdefghijklmnopqrstuvwxyz0123", 1250000, "2024-01-01"),
			record(3, "short", 1500, "2024-02-01"),
		},
	}
}

func TestTableRows_Absent(t *testing.T) {
	assert.Nil(t, TableRows(nil, sorting.DefaultState()))
	assert.Nil(t, TableRows(&models.AppData{}, sorting.DefaultState()))
}

func TestTableRows(t *testing.T) {
	rows := TableRows(sample(), sorting.DefaultState())
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"1", "EQCabcdefghi...wxyz0123", "1.25M", "0.00", "1.25M", "2024-01-01", "2026-01-01"}, rows[0].Cells())
	assert.Equal(t, "500.00", rows[1].Total)
	assert.Equal(t, "1.5K", rows[2].Total)
	assert.Equal(t, "short", rows[2].Address)
}

func TestTableRows_SortToggle(t *testing.T) {
	s := sorting.DefaultState().Toggle(sorting.FieldTotalAmount)
	rows := TableRows(sample(), s)
	assert.Equal(t, []string{"2", "3", "1"}, []string{rows[0].Rank, rows[1].Rank, rows[2].Rank})

	s = s.Toggle(sorting.FieldTotalAmount)
	rows = TableRows(sample(), s)
	assert.Equal(t, []string{"1", "3", "2"}, []string{rows[0].Rank, rows[1].Rank, rows[2].Rank})
}

func TestColumns(t *testing.T) {
	cols := Columns(sorting.State{Field: sorting.FieldStartDate, Direction: sorting.Descending})
	assert.Equal(t, "Start ↓", cols[5].Title)
	assert.Equal(t, "Rank", cols[0].Title)

	cols = Columns(sorting.DefaultState())
	assert.Equal(t, "Rank ↑", cols[0].Title)
	assert.Equal(t, "Rank", columns[0].Title, "package headers untouched")
}

func TestMetricSlots(t *testing.T) {
	slots := MetricSlots(State{Metrics: &models.MarketMetrics{
		PriceUSD:      5.4321,
		MarketCapUSD:  13_250_000_000,
		VolumeUSD:     245_600_000,
		MarketCapRank: 9,
	}})
	values := []string{}
	for _, s := range slots {
		values = append(values, s.Value)
		assert.False(t, s.Err)
	}
	assert.Equal(t, []string{"$5.43", "$13.3B", "$245.6M", "#9"}, values)

	for _, s := range MetricSlots(State{MetricsErr: "429"}) {
		assert.Equal(t, ErrorLoadingText, s.Value)
		assert.True(t, s.Err)
	}
	for _, s := range MetricSlots(State{MetricsPending: true}) {
		assert.Equal(t, LoadingText, s.Value)
	}
}

func TestFooterFor(t *testing.T) {
	f := FooterFor(sample())
	assert.Equal(t, "2024-07-01", f.DataDate)
	assert.Equal(t, "1234", f.TotalWallets, "raw count")
	assert.Equal(t, "Vesting contracts", f.Methodology)

	assert.Equal(t, LoadingText, FooterFor(nil).DataDate)
}

func TestChartSpec(t *testing.T) {
	spec, ok := ChartSpec(sample(), "TON")
	require.True(t, ok)
	assert.Equal(t, "Cumulative TON Unlocks (Billions)", spec.Legend)
	assert.Equal(t, "Date", spec.XTitle)
	assert.Equal(t, "Cumulative Unlocks (Billions)", spec.YTitle)
	assert.Equal(t, 8, spec.MaxXTicks)
	assert.True(t, spec.Fill)
	assert.Equal(t, "1.3B TON unlocked", spec.Tooltip(1.25))
	assert.Equal(t, "2.5B", spec.YTick(2.5))

	_, ok = ChartSpec(nil, "TON")
	assert.False(t, ok)
	_, ok = ChartSpec(&models.AppData{ChartData: &models.ChartData{}}, "TON")
	assert.False(t, ok)

	points := ChartPoints(spec)
	require.Len(t, points, 2)
	assert.Equal(t, ChartPoint{Label: "Feb", Value: 2.5, Tooltip: "2.5B TON unlocked"}, points[1])
}
