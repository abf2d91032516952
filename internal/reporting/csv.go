package reporting

import (
	"encoding/csv"
	"strconv"
	"strings"

	"trade-journal-lab/internal/domain"
)

var csvHeader = []string{
	"dimension", "label", "total", "wins", "losses", "be_wins", "be_losses",
	"win_rate", "win_rate_with_be", "profit", "pnl_percentage",
}

// RenderCSV renders every group row of the report as CSV.
// Profit columns are filled for market rows only.
func RenderCSV(r *Report) string {
	var sb strings.Builder
	w := csv.NewWriter(&sb)

	// Header
	_ = w.Write(csvHeader)

	// Rows
	_ = w.Write(groupRecord(domain.DimensionOverall, r.Overall, "", ""))
	for _, m := range r.Markets {
		_ = w.Write(groupRecord(domain.DimensionMarket, m.GroupStats,
			formatFloat(m.Profit, 2), formatFloat(m.PnLPercentage, 2)))
	}
	for _, s := range r.Sections {
		for _, gs := range s.Rows {
			_ = w.Write(groupRecord(s.Dimension, gs, "", ""))
		}
	}

	w.Flush()
	return sb.String()
}

func groupRecord(dimension string, gs domain.GroupStats, profit, pnlPct string) []string {
	return []string{
		dimension,
		gs.Label,
		strconv.Itoa(gs.Total),
		strconv.Itoa(gs.Wins),
		strconv.Itoa(gs.Losses),
		strconv.Itoa(gs.BEWins),
		strconv.Itoa(gs.BELosses),
		formatFloat(gs.WinRate, 2),
		formatFloat(gs.WinRateWithBE, 2),
		profit,
		pnlPct,
	}
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
