package journal

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/observability"
	"trade-journal-lab/internal/storage"
	"trade-journal-lab/internal/storage/memory"
)

func seedTrades(t *testing.T, store storage.TradeStore) {
	t.Helper()
	trades := []*domain.Trade{
		{ID: "t1", AccountID: "acc-1", Fingerprint: "fp1", ParsedTrade: domain.ParsedTrade{
			Market: "EURUSD", TradeDate: "2024-01-08", TradeTime: "09:00", TradeOutcome: domain.OutcomeWin,
			RiskPerTrade: f64(1), RiskRewardRatio: f64(2), Executed: true,
		}},
		{ID: "t2", AccountID: "acc-1", Fingerprint: "fp2", ParsedTrade: domain.ParsedTrade{
			Market: "EURUSD", TradeDate: "2024-01-09", TradeTime: "09:00", TradeOutcome: domain.OutcomeLose,
			RiskPerTrade: f64(1), RiskRewardRatio: f64(2), Executed: true,
		}},
		{ID: "t3", AccountID: "acc-1", Fingerprint: "fp3", ParsedTrade: domain.ParsedTrade{
			Market: "GBPUSD", TradeDate: "2024-01-09", TradeTime: "15:00", TradeOutcome: domain.OutcomeWin,
			RiskPerTrade: f64(1), RiskRewardRatio: f64(2), Executed: false,
		}},
	}
	for _, tr := range trades {
		require.NoError(t, store.Insert(context.Background(), tr))
	}
}

func newTestAnalyzer(trades storage.TradeStore, snapshots storage.StatsSnapshotStore, m *observability.Metrics) *Analyzer {
	return NewAnalyzer(AnalyzerOptions{
		Trades:    trades,
		Snapshots: snapshots,
		Metrics:   m,
		Logger:    zerolog.Nop(),
	}).WithClock(fixedClock)
}

func TestAnalyzer_BuildReport(t *testing.T) {
	store := memory.NewTradeStore()
	seedTrades(t, store)
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	a := newTestAnalyzer(store, nil, m)

	r, err := a.BuildReport(context.Background(), ReportRequest{
		AccountID:      "acc-1",
		AccountBalance: 10000,
		Intervals:      []domain.TimeInterval{{Label: "Open", Start: "08:00", End: "10:00"}},
	})
	require.NoError(t, err)

	assert.Equal(t, fixedClock(), r.GeneratedAt)
	assert.Equal(t, 3, r.Overall.Total)
	assert.Equal(t, 2, r.Overall.Wins)
	assert.InDelta(t, 66.67, r.Overall.WinRate, 0.01)

	// Synthetic P&L: +200, -100, +200
	assert.InDelta(t, 4.0, r.Macro.ProfitFactor, 1e-9)
	assert.Equal(t, 2, r.Macro.TradingDays)

	require.NotNil(t, r.Section(domain.DimensionTimeInterval))
	assert.Equal(t, 2, r.Section(domain.DimensionTimeInterval).Rows[0].Total)

	assert.Equal(t, 1.0, counterValue(t, m.StatsRunsTotal.WithLabelValues(observability.StatusOK)))
}

func TestAnalyzer_ExecutedOnly(t *testing.T) {
	store := memory.NewTradeStore()
	seedTrades(t, store)
	a := newTestAnalyzer(store, nil, nil)

	r, err := a.BuildReport(context.Background(), ReportRequest{AccountID: "acc-1", ExecutedOnly: true})
	require.NoError(t, err)

	assert.Equal(t, 2, r.Overall.Total)
	assert.Equal(t, 3, r.DataSummary.TotalTrades)
}

func TestAnalyzer_NoTrades(t *testing.T) {
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	a := newTestAnalyzer(memory.NewTradeStore(), nil, m)

	_, err := a.BuildReport(context.Background(), ReportRequest{AccountID: "empty"})
	assert.ErrorIs(t, err, ErrNoTrades)

	assert.Equal(t, 1.0, counterValue(t, m.StatsRunsTotal.WithLabelValues(observability.StatusFailed)))
}

func TestAnalyzer_Analyze(t *testing.T) {
	a := newTestAnalyzer(nil, nil, nil)

	r := a.Analyze([]domain.Trade{
		{ParsedTrade: domain.ParsedTrade{TradeOutcome: domain.OutcomeWin, BreakEven: true}},
		{ParsedTrade: domain.ParsedTrade{TradeOutcome: domain.OutcomeLose}},
	}, ReportRequest{})

	assert.Equal(t, 2, r.Overall.Total)
	assert.Equal(t, 0.0, r.Overall.WinRate)
	assert.Equal(t, "", r.AccountID)
}

func TestAnalyzer_SaveSnapshot(t *testing.T) {
	ctx := context.Background()
	trades := memory.NewTradeStore()
	seedTrades(t, trades)
	snapshots := memory.NewStatsSnapshotStore()
	m := observability.NewMetrics("test", prometheus.NewRegistry())
	a := newTestAnalyzer(trades, snapshots, m)

	r, err := a.BuildReport(ctx, ReportRequest{AccountID: "acc-1", AccountBalance: 10000})
	require.NoError(t, err)

	n, err := a.SaveSnapshot(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, len(r.Snapshots(0)), n)
	assert.Equal(t, float64(n), counterValue(t, m.SnapshotRowsSent))

	markets, err := a.LatestSnapshot(ctx, "acc-1", domain.DimensionMarket)
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "EURUSD", markets[0].Label)
	assert.Equal(t, fixedClock().UnixMilli(), markets[0].ComputedAt)

	// Same report twice collides on computed_at
	_, err = a.SaveSnapshot(ctx, r)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestAnalyzer_SnapshotsDisabled(t *testing.T) {
	store := memory.NewTradeStore()
	seedTrades(t, store)
	a := newTestAnalyzer(store, nil, nil)

	r, err := a.BuildReport(context.Background(), ReportRequest{AccountID: "acc-1"})
	require.NoError(t, err)

	_, err = a.SaveSnapshot(context.Background(), r)
	assert.ErrorIs(t, err, ErrSnapshotsDisabled)

	_, err = a.LatestSnapshot(context.Background(), "acc-1", domain.DimensionOverall)
	assert.ErrorIs(t, err, ErrSnapshotsDisabled)
}

func TestAnalyzer_SaveSnapshotWithoutAccount(t *testing.T) {
	a := newTestAnalyzer(nil, memory.NewStatsSnapshotStore(), nil)

	r := a.Analyze(nil, ReportRequest{})
	_, err := a.SaveSnapshot(context.Background(), r)
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}
