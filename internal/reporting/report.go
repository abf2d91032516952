package reporting

import (
	"time"

	"trade-journal-lab/internal/domain"
)

// Report represents a full statistics report for one set of trades.
type Report struct {
	// Metadata
	GeneratedAt    time.Time `json:"generated_at"`
	AccountID      string    `json:"account_id,omitempty"`
	AccountBalance float64   `json:"account_balance"`
	ExecutedOnly   bool      `json:"executed_only"`

	// Data Summary
	DataSummary DataSummary `json:"data_summary"`

	// Headline numbers
	Overall domain.GroupStats `json:"overall"`
	Macro   domain.MacroStats `json:"macro"`

	// Market view carries money totals, so it is kept apart from Sections
	Markets []domain.MarketStats `json:"markets"`

	// Category views in a fixed order
	Sections []Section `json:"sections"`
}

// DataSummary contains data description.
type DataSummary struct {
	TotalTrades    int     `json:"total_trades"`
	ExecutedTrades int     `json:"executed_trades"`
	UndatedTrades  int     `json:"undated_trades"`
	DateRangeStart string  `json:"date_range_start"` // YYYY-MM-DD, empty when no trade is dated
	DateRangeEnd   string  `json:"date_range_end"`
	TotalProfit    float64 `json:"total_profit"` // sum of calculated_profit
}

// Section is one category view.
type Section struct {
	Dimension string              `json:"dimension"`
	Title     string              `json:"title"`
	Rows      []domain.GroupStats `json:"rows"`
}

// Section returns the view for dimension, or nil when absent.
func (r *Report) Section(dimension string) *Section {
	for i := range r.Sections {
		if r.Sections[i].Dimension == dimension {
			return &r.Sections[i]
		}
	}
	return nil
}

// Snapshots flattens the report into stats_snapshots rows stamped with computedAt (Unix ms).
// Overall and market rows come first, then each section in order.
func (r *Report) Snapshots(computedAt int64) []*domain.StatsSnapshot {
	snapshot := func(dimension string, gs domain.GroupStats) *domain.StatsSnapshot {
		return &domain.StatsSnapshot{
			AccountID:  r.AccountID,
			Dimension:  dimension,
			ComputedAt: computedAt,
			GroupStats: gs,
		}
	}

	rows := []*domain.StatsSnapshot{snapshot(domain.DimensionOverall, r.Overall)}
	for _, m := range r.Markets {
		rows = append(rows, snapshot(domain.DimensionMarket, m.GroupStats))
	}
	for _, s := range r.Sections {
		for _, gs := range s.Rows {
			rows = append(rows, snapshot(s.Dimension, gs))
		}
	}
	return rows
}
