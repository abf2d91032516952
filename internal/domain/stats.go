package domain

// GroupStats holds win/loss counts and win rates for one category value.
type GroupStats struct {
	Label  string `json:"label"`
	Total  int    `json:"total"`
	Wins   int    `json:"wins"`
	Losses int    `json:"losses"`

	// Break-even subsets of Wins and Losses
	BEWins   int `json:"be_wins"`
	BELosses int `json:"be_losses"`

	WinRate       float64 `json:"win_rate"`         // percent, break-even wins excluded
	WinRateWithBE float64 `json:"win_rate_with_be"` // percent, all break-even trades dilute
}

// MarketStats extends GroupStats with money totals for one market.
type MarketStats struct {
	GroupStats
	Profit        float64 `json:"profit"`         // sum of calculated_profit
	PnLPercentage float64 `json:"pnl_percentage"` // profit / account balance * 100
}

// TimeInterval is an inclusive HH:MM time-of-day bucket.
type TimeInterval struct {
	Label string `json:"label" yaml:"label"`
	Start string `json:"start" yaml:"start"`
	End   string `json:"end" yaml:"end"`
}

// MacroStats holds account-level metrics over synthetic P&L.
type MacroStats struct {
	ProfitFactor           float64 `json:"profit_factor"`
	ConsistencyScore       float64 `json:"consistency_score"`         // percent of days in profit, break-even excluded
	ConsistencyScoreWithBE float64 `json:"consistency_score_with_be"` // percent of days in profit, break-even as zero
	SharpeWithBE           float64 `json:"sharpe_with_be"`

	GrossProfit          float64 `json:"gross_profit"`
	GrossLoss            float64 `json:"gross_loss"`
	TradingDays          int     `json:"trading_days"`
	MaxDrawdown          float64 `json:"max_drawdown"` // worst peak-to-trough of cumulative P&L
	MaxConsecutiveLosses int     `json:"max_consecutive_losses"`
}

// StatsSnapshot is one persisted GroupStats row.
// Corresponds to stats_snapshots table.
type StatsSnapshot struct {
	AccountID  string `json:"account_id"`
	Dimension  string `json:"dimension"`   // market, setup, direction, ...
	ComputedAt int64  `json:"computed_at"` // Unix ms
	GroupStats
}

// Stats dimension names used in reports and snapshots.
const (
	DimensionOverall      = "overall"
	DimensionMarket       = "market"
	DimensionSetup        = "setup"
	DimensionDirection    = "direction"
	DimensionDayOfWeek    = "day_of_week"
	DimensionQuarter      = "quarter"
	DimensionMSS          = "mss"
	DimensionNews         = "news"
	DimensionLiquidity    = "liquidity"
	DimensionLocalHighLow = "local_high_low"
	DimensionTrend        = "trend"
	DimensionReentry      = "reentry"
	DimensionBreakEven    = "break_even"
	DimensionTimeInterval = "time_interval"
)
