package stats

import (
	"math"
	"sort"

	"trade-journal-lab/internal/domain"
)

// Fallbacks for trades without stored risk settings.
const (
	DefaultRiskPerTrade    = 0.5
	DefaultRiskRewardRatio = 2.0
)

// synthetic is one trade's reconstructed P&L.
type synthetic struct {
	date      string
	time      string
	pnl       float64
	breakEven bool
	loss      bool
}

// ComputeMacro derives account-level metrics from P&L reconstructed out of each
// trade's risk percentage and reward ratio. Stored calculated_profit is ignored.
func ComputeMacro(trades []domain.Trade, accountBalance float64) domain.MacroStats {
	if len(trades) == 0 {
		return domain.MacroStats{}
	}

	series := make([]synthetic, len(trades))
	for i, t := range trades {
		series[i] = syntheticPnL(t, accountBalance)
	}

	var stats domain.MacroStats

	// Profit factor, break-even trades excluded
	for _, s := range series {
		if s.breakEven {
			continue
		}
		if s.pnl > 0 {
			stats.GrossProfit += s.pnl
		} else if s.pnl < 0 {
			stats.GrossLoss -= s.pnl
		}
	}
	if stats.GrossLoss > 0 {
		stats.ProfitFactor = stats.GrossProfit / stats.GrossLoss
	}

	// Daily consistency, with and without break-even days
	daily := make(map[string]float64)
	dailyWithBE := make(map[string]float64)
	for _, s := range series {
		if s.date == "" {
			continue
		}
		dailyWithBE[s.date] += s.pnl
		if !s.breakEven {
			daily[s.date] += s.pnl
		}
	}
	stats.ConsistencyScore = computeConsistency(daily)
	stats.ConsistencyScoreWithBE = computeConsistency(dailyWithBE)
	stats.TradingDays = len(dailyWithBE)

	// Sharpe over the per-trade series including break-even zeros
	pnls := make([]float64, len(series))
	for i, s := range series {
		pnls[i] = s.pnl
	}
	mean := computeMean(pnls)
	if stddev := computeStddev(pnls, mean); stddev > 0 {
		stats.SharpeWithBE = mean / stddev
	}

	// Order-dependent metrics
	ordered := make([]synthetic, len(series))
	copy(ordered, series)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].date != ordered[j].date {
			return ordered[i].date < ordered[j].date
		}
		return ordered[i].time < ordered[j].time
	})
	orderedPnLs := make([]float64, len(ordered))
	for i, s := range ordered {
		orderedPnLs[i] = s.pnl
	}
	stats.MaxDrawdown = computeMaxDrawdown(orderedPnLs)
	stats.MaxConsecutiveLosses = computeMaxConsecutiveLosses(ordered)

	return stats
}

// syntheticPnL reconstructs one trade's P&L; break-even trades are worth 0.
func syntheticPnL(t domain.Trade, accountBalance float64) synthetic {
	riskPct := DefaultRiskPerTrade
	if t.RiskPerTrade != nil {
		riskPct = *t.RiskPerTrade
	}
	rr := DefaultRiskRewardRatio
	if t.RiskRewardRatio != nil {
		rr = *t.RiskRewardRatio
	}
	riskAmount := accountBalance * riskPct / 100

	s := synthetic{
		date:      t.TradeDate,
		time:      t.TradeTime,
		breakEven: t.BreakEven,
	}
	if t.BreakEven {
		return s
	}
	switch {
	case t.IsWin():
		s.pnl = riskAmount * rr
	case t.IsLoss():
		s.pnl = -riskAmount
		s.loss = true
	}
	return s
}

// computeConsistency returns the percentage of days with positive P&L.
func computeConsistency(daily map[string]float64) float64 {
	if len(daily) == 0 {
		return 0
	}
	positive := 0
	for _, pnl := range daily {
		if pnl > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(daily)) * 100
}

// computeMean calculates arithmetic mean.
func computeMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// computeStddev calculates sample standard deviation (n-1 denominator).
func computeStddev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	sumSq := 0.0
	for _, v := range values {
		diff := v - mean
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// computeMaxDrawdown calculates worst peak-to-trough on cumulative P&L.
// Values must be in chronological order.
func computeMaxDrawdown(values []float64) float64 {
	cumulative := 0.0
	peak := 0.0
	maxDrawdown := 0.0

	for _, v := range values {
		cumulative += v
		if cumulative > peak {
			peak = cumulative
		}
		if drawdown := peak - cumulative; drawdown > maxDrawdown {
			maxDrawdown = drawdown
		}
	}
	return maxDrawdown
}

// computeMaxConsecutiveLosses finds the longest run of losing trades.
// Break-even trades neither break nor extend a run.
func computeMaxConsecutiveLosses(series []synthetic) int {
	maxStreak := 0
	currentStreak := 0

	for _, s := range series {
		switch {
		case s.breakEven:
			continue
		case s.loss:
			currentStreak++
			if currentStreak > maxStreak {
				maxStreak = currentStreak
			}
		default:
			currentStreak = 0
		}
	}
	return maxStreak
}
