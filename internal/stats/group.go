// Package stats derives win-rate, profitability and consistency metrics from trades.
//
// Every function is pure: inputs are read-only, outputs are freshly allocated,
// and an empty input yields zero-valued metrics rather than NaN.
package stats

import (
	"sort"

	"trade-journal-lab/internal/domain"
)

// UnknownLabel is the group label for trades whose key is empty.
const UnknownLabel = "Unknown"

// KeyFunc maps a trade to its category label.
type KeyFunc func(t domain.Trade) string

// Group partitions trades by keyFn (empty keys become "Unknown") and computes
// stats per group. Groups are sorted by Total descending; ties keep first-seen order.
func Group(trades []domain.Trade, keyFn KeyFunc) []domain.GroupStats {
	labels, buckets := partition(trades, keyFn)

	groups := make([]domain.GroupStats, 0, len(labels))
	for _, label := range labels {
		groups = append(groups, ProcessGroup(label, buckets[label]))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total > groups[j].Total
	})
	return groups
}

// partition buckets trades by key, remembering first-seen label order.
func partition(trades []domain.Trade, keyFn KeyFunc) ([]string, map[string][]domain.Trade) {
	var labels []string
	buckets := make(map[string][]domain.Trade)
	for _, t := range trades {
		key := keyFn(t)
		if key == "" {
			key = UnknownLabel
		}
		if _, seen := buckets[key]; !seen {
			labels = append(labels, key)
		}
		buckets[key] = append(buckets[key], t)
	}
	return labels, buckets
}

// ProcessGroup counts outcomes of one group and derives both win rates.
//
// WinRate excludes break-even wins entirely but still counts break-even losses
// against the trader. WinRateWithBE dilutes the rate with every break-even trade.
func ProcessGroup(label string, trades []domain.Trade) domain.GroupStats {
	g := domain.GroupStats{
		Label: label,
		Total: len(trades),
	}
	for _, t := range trades {
		switch {
		case t.IsWin():
			g.Wins++
			if t.BreakEven {
				g.BEWins++
			}
		case t.IsLoss():
			g.Losses++
			if t.BreakEven {
				g.BELosses++
			}
		}
	}

	g.WinRate, g.WinRateWithBE = winRates(g.Wins-g.BEWins, g.Losses-g.BELosses, g.BEWins, g.BELosses)
	return g
}

// winRates returns (excl.-BE, incl.-BE) win rates in percent.
func winRates(nonBEWins, nonBELosses, beWins, beLosses int) (float64, float64) {
	return computeWinRate(nonBEWins, nonBEWins+nonBELosses+beLosses),
		computeWinRate(nonBEWins, nonBEWins+nonBELosses+beWins+beLosses)
}

// computeWinRate calculates wins / total as a percentage.
func computeWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total) * 100
}
