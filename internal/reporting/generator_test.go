package reporting

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/stats"
)

func f64(v float64) *float64 { return &v }

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func setupTestTrades() []domain.Trade {
	mk := func(market, setup, date, clock, outcome string, be, executed bool, profit float64) domain.Trade {
		return domain.Trade{ParsedTrade: domain.ParsedTrade{
			Market:           market,
			Direction:        domain.DirectionLong,
			SetupType:        setup,
			TradeDate:        date,
			TradeTime:        clock,
			DayOfWeek:        "Monday",
			Quarter:          "Q1",
			TradeOutcome:     outcome,
			BreakEven:        be,
			Executed:         executed,
			RiskPerTrade:     f64(1),
			RiskRewardRatio:  f64(2),
			CalculatedProfit: f64(profit),
		}}
	}
	return []domain.Trade{
		mk("EURUSD", "Breakout", "2024-01-08", "09:15", domain.OutcomeWin, false, true, 200),
		mk("EURUSD", "Breakout", "2024-01-08", "14:00", domain.OutcomeLose, false, true, -100),
		mk("GBPUSD", "Reversal", "2024-01-09", "09:30", domain.OutcomeWin, true, true, 0),
		mk("EURUSD", "Reversal", "2024-01-10", "10:00", domain.OutcomeWin, false, false, 200),
		mk("NAS100", "Breakout", "", "15:00", domain.OutcomeLose, false, true, -100),
	}
}

func TestGenerator_Generate(t *testing.T) {
	g := NewGenerator().WithClock(fixedClock)

	r := g.Generate(setupTestTrades(), Options{
		AccountID:      "acc-1",
		AccountBalance: 10000,
		Intervals:      []domain.TimeInterval{{Label: "Morning", Start: "09:00", End: "11:59"}},
	})

	assert.Equal(t, fixedClock(), r.GeneratedAt)
	assert.Equal(t, "acc-1", r.AccountID)

	assert.Equal(t, DataSummary{
		TotalTrades:    5,
		ExecutedTrades: 4,
		UndatedTrades:  1,
		DateRangeStart: "2024-01-08",
		DateRangeEnd:   "2024-01-10",
		TotalProfit:    200,
	}, r.DataSummary)

	assert.Equal(t, stats.LabelAll, r.Overall.Label)
	assert.Equal(t, 5, r.Overall.Total)
	assert.Equal(t, 3, r.Overall.Wins)
	assert.Equal(t, 1, r.Overall.BEWins)

	require.Len(t, r.Markets, 3)
	assert.Equal(t, "EURUSD", r.Markets[0].Label)
	assert.InDelta(t, 300.0, r.Markets[0].Profit, 1e-9)
	assert.InDelta(t, 3.0, r.Markets[0].PnLPercentage, 1e-9)

	// Fixed section order, time buckets last
	var dims []string
	for _, s := range r.Sections {
		dims = append(dims, s.Dimension)
	}
	assert.Equal(t, []string{
		domain.DimensionSetup, domain.DimensionDirection, domain.DimensionDayOfWeek,
		domain.DimensionQuarter, domain.DimensionMSS, domain.DimensionNews,
		domain.DimensionLiquidity, domain.DimensionLocalHighLow, domain.DimensionTrend,
		domain.DimensionReentry, domain.DimensionBreakEven, domain.DimensionTimeInterval,
	}, dims)

	interval := r.Section(domain.DimensionTimeInterval)
	require.NotNil(t, interval)
	require.Len(t, interval.Rows, 1)
	assert.Equal(t, 3, interval.Rows[0].Total)

	assert.Nil(t, r.Section("unknown"))
}

func TestGenerator_ExecutedOnly(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(setupTestTrades(), Options{ExecutedOnly: true})

	// Summary still describes the full input
	assert.Equal(t, 5, r.DataSummary.TotalTrades)
	assert.Equal(t, 0.0, r.DataSummary.TotalProfit)

	assert.Equal(t, 4, r.Overall.Total)
	assert.Nil(t, r.Section(domain.DimensionTimeInterval))
}

func TestGenerator_Empty(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(nil, Options{})

	assert.Equal(t, 0, r.Overall.Total)
	assert.Empty(t, r.Markets)
	assert.Equal(t, domain.MacroStats{}, r.Macro)
	assert.Equal(t, "", r.DataSummary.DateRangeStart)

	md := RenderMarkdown(r)
	assert.Contains(t, md, "| Date Range | n/a |")
	assert.Contains(t, md, "No trades.")
}

func TestReport_Snapshots(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(setupTestTrades(), Options{AccountID: "acc-1"})

	rows := r.Snapshots(1709294400000)

	require.NotEmpty(t, rows)
	assert.Equal(t, domain.DimensionOverall, rows[0].Dimension)
	assert.Equal(t, domain.DimensionMarket, rows[1].Dimension)

	seen := make(map[string]bool)
	for _, row := range rows {
		assert.Equal(t, "acc-1", row.AccountID)
		assert.Equal(t, int64(1709294400000), row.ComputedAt)
		key := row.Dimension + "|" + row.Label
		assert.False(t, seen[key], "duplicate snapshot %s", key)
		seen[key] = true
	}
}

func TestRenderMarkdown(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(setupTestTrades(), Options{
		AccountID:      "acc-1",
		AccountBalance: 10000,
	})
	r.Markets[0].Label = "EUR|USD"

	md := RenderMarkdown(r)

	assert.True(t, strings.HasPrefix(md, "# Trade Statistics Report\n"))
	assert.Contains(t, md, "Generated: 2024-03-01T12:00:00Z")
	assert.Contains(t, md, "Account: acc-1")
	assert.Contains(t, md, "| Date Range | 2024-01-08 .. 2024-01-10 |")
	assert.Contains(t, md, "## Break Even")
	assert.Contains(t, md, `| EUR\|USD | 3 |`)
	assert.NotContains(t, md, "## Time of Day")
}

func TestRenderCSV(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(setupTestTrades(), Options{AccountBalance: 10000})
	r.Markets[0].Label = "EUR,USD"

	records, err := csv.NewReader(strings.NewReader(RenderCSV(r))).ReadAll()
	require.NoError(t, err)

	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, domain.DimensionOverall, records[1][0])
	assert.Equal(t, "", records[1][9])

	market := records[2]
	assert.Equal(t, []string{"market", "EUR,USD", "3", "2", "1", "0", "0", "66.67", "66.67", "300.00", "3.00"}, market)
	assert.Len(t, records, len(r.Snapshots(0))+1)
}

func TestRenderJSON(t *testing.T) {
	r := NewGenerator().WithClock(fixedClock).Generate(setupTestTrades(), Options{AccountID: "acc-1"})

	b, err := RenderJSON(r)
	require.NoError(t, err)

	var decoded Report
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, r.Overall, decoded.Overall)
	assert.Equal(t, r.Sections, decoded.Sections)
	assert.True(t, decoded.GeneratedAt.Equal(r.GeneratedAt))
}
