package stats

import (
	"strings"

	"trade-journal-lab/internal/domain"
)

// Labels used by the flag-based views.
const (
	LabelAll           = "All"
	LabelNews          = "News"
	LabelNoNews        = "No News"
	LabelLiquidated    = "Liquidated"
	LabelNotLiquidated = "Not Liquidated"
	LabelReentry       = "Re-entry"
	LabelBreakEven     = "Break Even"
	DefaultMSS         = "Normal"

	TrendFollowing = "Trend-following"
	CounterTrend   = "Counter-trend"
)

// ByMarket groups by market and adds profit totals.
// PnLPercentage is 0 when accountBalance <= 0.
func ByMarket(trades []domain.Trade, accountBalance float64) []domain.MarketStats {
	groups := Group(trades, func(t domain.Trade) string { return t.Market })

	profits := make(map[string]float64, len(groups))
	for _, t := range trades {
		key := t.Market
		if key == "" {
			key = UnknownLabel
		}
		if t.CalculatedProfit != nil {
			profits[key] += *t.CalculatedProfit
		}
	}

	out := make([]domain.MarketStats, 0, len(groups))
	for _, g := range groups {
		ms := domain.MarketStats{
			GroupStats: g,
			Profit:     profits[g.Label],
		}
		if accountBalance > 0 {
			ms.PnLPercentage = ms.Profit / accountBalance * 100
		}
		out = append(out, ms)
	}
	return out
}

func BySetup(trades []domain.Trade) []domain.GroupStats {
	return Group(trades, func(t domain.Trade) string { return t.SetupType })
}

func ByDirection(trades []domain.Trade) []domain.GroupStats {
	return Group(trades, func(t domain.Trade) string { return t.Direction })
}

func ByDayOfWeek(trades []domain.Trade) []domain.GroupStats {
	return Group(trades, func(t domain.Trade) string { return t.DayOfWeek })
}

func ByQuarter(trades []domain.Trade) []domain.GroupStats {
	return Group(trades, func(t domain.Trade) string { return t.Quarter })
}

func ByLiquidity(trades []domain.Trade) []domain.GroupStats {
	return Group(trades, func(t domain.Trade) string { return t.Liquidity })
}

// ByMSS groups by market structure shift; an empty value counts as "Normal".
func ByMSS(trades []domain.Trade) []domain.GroupStats {
	return Group(trades, func(t domain.Trade) string {
		if t.MSS == "" {
			return DefaultMSS
		}
		return t.MSS
	})
}

func ByNews(trades []domain.Trade) []domain.GroupStats {
	return Group(trades, func(t domain.Trade) string {
		if t.NewsRelated {
			return LabelNews
		}
		return LabelNoNews
	})
}

// ByLocalHighLow splits trades into liquidated and not liquidated.
func ByLocalHighLow(trades []domain.Trade) []domain.GroupStats {
	return Group(trades, func(t domain.Trade) string {
		if domain.IsLiquidated(t.LocalHighLow) {
			return LabelLiquidated
		}
		return LabelNotLiquidated
	})
}

// ByTrend only considers "Trend-following" and "Counter-trend" trades.
// Anything else is left out rather than grouped as unknown.
func ByTrend(trades []domain.Trade) []domain.GroupStats {
	var subset []domain.Trade
	for _, t := range trades {
		switch strings.TrimSpace(t.Trend) {
		case TrendFollowing, CounterTrend:
			subset = append(subset, t)
		}
	}
	return Group(subset, func(t domain.Trade) string { return strings.TrimSpace(t.Trend) })
}

// ByReentry returns a single "Re-entry" group, or nothing when no trade is a re-entry.
func ByReentry(trades []domain.Trade) []domain.GroupStats {
	subset := filter(trades, func(t domain.Trade) bool { return t.Reentry })
	if len(subset) == 0 {
		return []domain.GroupStats{}
	}
	return []domain.GroupStats{ProcessGroup(LabelReentry, subset)}
}

// ByBreakEven returns a single "Break Even" group, or nothing when no trade is break-even.
// WinRate is plain wins/total here since every trade in the group is break-even.
func ByBreakEven(trades []domain.Trade) []domain.GroupStats {
	subset := filter(trades, func(t domain.Trade) bool { return t.BreakEven })
	if len(subset) == 0 {
		return []domain.GroupStats{}
	}
	g := ProcessGroup(LabelBreakEven, subset)
	g.WinRate = computeWinRate(g.Wins, g.Total)
	return []domain.GroupStats{g}
}

// Overall computes one "All" group over every trade.
func Overall(trades []domain.Trade) domain.GroupStats {
	return ProcessGroup(LabelAll, trades)
}

// FilterExecuted returns the trades that were actually taken.
func FilterExecuted(trades []domain.Trade) []domain.Trade {
	return filter(trades, func(t domain.Trade) bool { return t.Executed })
}

func filter(trades []domain.Trade, keep func(domain.Trade) bool) []domain.Trade {
	out := make([]domain.Trade, 0, len(trades))
	for _, t := range trades {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}
