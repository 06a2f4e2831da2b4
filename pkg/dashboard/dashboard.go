// Package dashboard turns loaded data into display strings. Everything here
// is a pure function of State.
package dashboard

import (
	"fmt"
	"strconv"

	"tonunlock/pkg/chart"
	"tonunlock/pkg/models"
	"tonunlock/pkg/sorting"
	"tonunlock/pkg/utils"
)

const (
	LoadingText      = "Loading..."
	ErrorLoadingText = "Error loading"
	LoadFailedBanner = "Failed to load application data"
)

// State is everything the dashboard renders from.
type State struct {
	Data           *models.AppData
	Sort           sorting.State
	Metrics        *models.MarketMetrics
	MetricsErr     string
	MetricsPending bool
}

// Row is one formatted table row, with the record it came from.
type Row struct {
	Rank     string `json:"rank"`
	Address  string `json:"address"`
	Total    string `json:"total_amount"`
	Unlocked string `json:"unlocked_amount"`
	Locked   string `json:"locked_amount"`
	Start    string `json:"start_date"`
	End      string `json:"end_date"`

	Record models.WalletRecord `json:"-"`
}

// Cells returns the row in column order.
func (r Row) Cells() []string {
	return []string{r.Rank, r.Address, r.Total, r.Unlocked, r.Locked, r.Start, r.End}
}

// TableRows formats the records in sort order. It returns nil when no
// schedule data is loaded.
func TableRows(data *models.AppData, s sorting.State) []Row {
	if data == nil || data.WalletTableData == nil {
		return nil
	}
	sorted := sorting.Sort(data.WalletTableData, s)
	rows := make([]Row, 0, len(sorted))
	for _, w := range sorted {
		rows = append(rows, Row{
			Rank:     fmt.Sprintf("%d", w.Rank),
			Address:  utils.TruncateAddress(w.Address),
			Total:    utils.FormatAmount(w.TotalAmount.InexactFloat64()),
			Unlocked: utils.FormatAmount(w.UnlockedAmount.InexactFloat64()),
			Locked:   utils.FormatAmount(w.LockedAmount.InexactFloat64()),
			Start:    w.StartDate,
			End:      w.EndDate,
			Record:   w,
		})
	}
	return rows
}

// Column is a table header.
type Column struct {
	Field sorting.Field
	Title string
	Width int
}

var columns = []Column{
	{sorting.FieldRank, "Rank", 6},
	{sorting.FieldAddress, "Address", 25},
	{sorting.FieldTotalAmount, "Total", 12},
	{sorting.FieldUnlockedAmount, "Unlocked", 12},
	{sorting.FieldLockedAmount, "Locked", 12},
	{sorting.FieldStartDate, "Start", 12},
	{sorting.FieldEndDate, "End", 12},
}

// Columns returns the headers with an arrow on the active sort column.
func Columns(s sorting.State) []Column {
	out := make([]Column, len(columns))
	copy(out, columns)
	for i := range out {
		if out[i].Field != s.Field {
			continue
		}
		if s.Direction == sorting.Descending {
			out[i].Title += " ↓"
		} else {
			out[i].Title += " ↑"
		}
	}
	return out
}

// MetricSlot is one labelled market value.
type MetricSlot struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Err   bool   `json:"error"`
}

// MetricSlots renders price, market cap, volume and rank.
func MetricSlots(s State) []MetricSlot {
	labels := []string{"Price", "Market Cap", "24h Volume", "Rank"}
	slots := make([]MetricSlot, len(labels))
	for i, l := range labels {
		slots[i].Label = l
	}

	switch {
	case s.Metrics != nil:
		m := s.Metrics
		slots[0].Value = utils.FormatPrice(m.PriceUSD)
		slots[1].Value = utils.FormatLargeNumber(m.MarketCapUSD)
		slots[2].Value = utils.FormatLargeNumber(m.VolumeUSD)
		slots[3].Value = utils.FormatRank(m.MarketCapRank)
	case s.MetricsErr != "":
		for i := range slots {
			slots[i].Value = ErrorLoadingText
			slots[i].Err = true
		}
	default:
		for i := range slots {
			slots[i].Value = LoadingText
		}
	}
	return slots
}

// Footer holds the dataset facts shown under the table.
type Footer struct {
	DataDate     string `json:"data_date"`
	TotalWallets string `json:"total_wallets"`
	Methodology  string `json:"methodology"`
}

// FooterFor returns placeholder text until data is loaded.
func FooterFor(data *models.AppData) Footer {
	if data == nil {
		return Footer{DataDate: LoadingText, TotalWallets: LoadingText, Methodology: LoadingText}
	}
	return Footer{
		DataDate:     data.DataDate,
		TotalWallets: strconv.Itoa(data.TotalWallets),
		Methodology:  data.Methodology,
	}
}

// ChartSpec builds the cumulative unlock chart from the first dataset.
// It reports false when there is nothing to draw.
func ChartSpec(data *models.AppData, symbol string) (chart.Spec, bool) {
	if data == nil || data.ChartData == nil {
		return chart.Spec{}, false
	}
	values := data.ChartData.Series()
	if len(values) == 0 {
		return chart.Spec{}, false
	}
	return chart.Spec{
		Labels:    data.ChartData.Labels,
		Values:    values,
		Legend:    fmt.Sprintf("Cumulative %s Unlocks (Billions)", symbol),
		XTitle:    "Date",
		YTitle:    "Cumulative Unlocks (Billions)",
		MaxXTicks: chart.DefaultMaxXTicks,
		Fill:      true,
		Tooltip: func(v float64) string {
			return utils.ToFixed(v, 1) + "B " + symbol + " unlocked"
		},
		YTick: func(v float64) string {
			return utils.ToFixed(v, 1) + "B"
		},
	}, true
}

// ChartPoint is one formatted point for API consumers.
type ChartPoint struct {
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Tooltip string  `json:"tooltip"`
}

// ChartPoints flattens the chart data into labelled points.
func ChartPoints(spec chart.Spec) []ChartPoint {
	points := make([]ChartPoint, 0, len(spec.Values))
	for i, v := range spec.Values {
		p := ChartPoint{Value: v}
		if i < len(spec.Labels) {
			p.Label = spec.Labels[i]
		}
		if spec.Tooltip != nil {
			p.Tooltip = spec.Tooltip(v)
		}
		points = append(points, p)
	}
	return points
}
