package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/observability"
	"trade-journal-lab/internal/reporting"
	"trade-journal-lab/internal/storage"
)

// ErrSnapshotsDisabled is returned by snapshot operations when no snapshot store is configured.
var ErrSnapshotsDisabled = errors.New("snapshot store not configured")

// ReportRequest selects the account and options for one report.
type ReportRequest struct {
	AccountID      string
	AccountBalance float64
	ExecutedOnly   bool
	Intervals      []domain.TimeInterval
}

// AnalyzerOptions for creating Analyzer.
type AnalyzerOptions struct {
	Trades    storage.TradeStore
	Snapshots storage.StatsSnapshotStore // optional
	Metrics   *observability.Metrics     // optional
	Logger    zerolog.Logger
}

// Analyzer computes statistics reports over stored or in-memory trades.
type Analyzer struct {
	trades    storage.TradeStore
	snapshots storage.StatsSnapshotStore
	metrics   *observability.Metrics
	log       zerolog.Logger
	now       func() time.Time
	generator *reporting.Generator
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts AnalyzerOptions) *Analyzer {
	a := &Analyzer{
		trades:    opts.Trades,
		snapshots: opts.Snapshots,
		metrics:   opts.Metrics,
		log:       opts.Logger.With().Str("component", "analyzer").Logger(),
		generator: reporting.NewGenerator(),
	}
	return a.WithClock(func() time.Time { return time.Now().UTC() })
}

// WithClock sets a custom clock function for deterministic output.
func (a *Analyzer) WithClock(now func() time.Time) *Analyzer {
	a.now = now
	a.generator.WithClock(now)
	return a
}

// BuildReport loads the account's trades and computes every view.
// Returns ErrNoTrades when the account is empty.
func (a *Analyzer) BuildReport(ctx context.Context, req ReportRequest) (*reporting.Report, error) {
	start := a.now()

	stored, err := a.trades.GetByAccount(ctx, req.AccountID)
	if err != nil {
		a.recordRun(observability.StatusFailed, 0, start)
		return nil, fmt.Errorf("load trades: %w", err)
	}
	if len(stored) == 0 {
		a.recordRun(observability.StatusFailed, 0, start)
		return nil, fmt.Errorf("%w: account %s", ErrNoTrades, req.AccountID)
	}

	trades := make([]domain.Trade, len(stored))
	for i, t := range stored {
		trades[i] = *t
	}
	return a.analyze(trades, req, start), nil
}

// Analyze computes a report over trades that are not in a store, such as a CSV
// checked from the command line.
func (a *Analyzer) Analyze(trades []domain.Trade, req ReportRequest) *reporting.Report {
	return a.analyze(trades, req, a.now())
}

func (a *Analyzer) analyze(trades []domain.Trade, req ReportRequest, start time.Time) *reporting.Report {
	report := a.generator.Generate(trades, reporting.Options{
		AccountID:      req.AccountID,
		AccountBalance: req.AccountBalance,
		ExecutedOnly:   req.ExecutedOnly,
		Intervals:      req.Intervals,
	})

	a.log.Info().
		Str("account_id", req.AccountID).
		Int("trades", report.Overall.Total).
		Float64("win_rate", report.Overall.WinRate).
		Float64("profit_factor", report.Macro.ProfitFactor).
		Msg("report computed")
	a.recordRun(observability.StatusOK, report.Overall.Total, start)

	return report
}

// SaveSnapshot writes every group row of the report, stamped with its generation time.
// Returns the number of rows written.
func (a *Analyzer) SaveSnapshot(ctx context.Context, report *reporting.Report) (int, error) {
	if a.snapshots == nil {
		return 0, ErrSnapshotsDisabled
	}
	if report.AccountID == "" {
		return 0, fmt.Errorf("%w: report has no account", storage.ErrInvalidInput)
	}

	rows := report.Snapshots(report.GeneratedAt.UnixMilli())
	if err := a.snapshots.InsertBulk(ctx, rows); err != nil {
		return 0, fmt.Errorf("save snapshot: %w", err)
	}
	if a.metrics != nil {
		a.metrics.RecordSnapshotRows(len(rows))
	}

	a.log.Debug().Str("account_id", report.AccountID).Int("rows", len(rows)).Msg("snapshot saved")
	return len(rows), nil
}

// LatestSnapshot returns the most recent stored rows for one dimension.
func (a *Analyzer) LatestSnapshot(ctx context.Context, accountID, dimension string) ([]*domain.StatsSnapshot, error) {
	if a.snapshots == nil {
		return nil, ErrSnapshotsDisabled
	}
	return a.snapshots.GetLatest(ctx, accountID, dimension)
}

func (a *Analyzer) recordRun(status string, trades int, start time.Time) {
	if a.metrics == nil {
		return
	}
	a.metrics.RecordStatsRun(status, trades, a.now().Sub(start).Seconds())
}
