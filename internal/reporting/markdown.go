package reporting

import (
	"fmt"
	"strings"
	"time"

	"trade-journal-lab/internal/domain"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Trade Statistics Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	if r.AccountID != "" {
		sb.WriteString(fmt.Sprintf("Account: %s\n\n", r.AccountID))
	}
	if r.ExecutedOnly {
		sb.WriteString("Executed trades only.\n\n")
	}

	// Data Summary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Trades | %d |\n", r.DataSummary.TotalTrades))
	sb.WriteString(fmt.Sprintf("| Executed Trades | %d |\n", r.DataSummary.ExecutedTrades))
	sb.WriteString(fmt.Sprintf("| Undated Trades | %d |\n", r.DataSummary.UndatedTrades))
	sb.WriteString(fmt.Sprintf("| Date Range | %s |\n", dateRange(r.DataSummary)))
	sb.WriteString(fmt.Sprintf("| Account Balance | %.2f |\n", r.AccountBalance))
	sb.WriteString(fmt.Sprintf("| Total Profit | %.2f |\n", r.DataSummary.TotalProfit))
	sb.WriteString("\n")

	// Overall
	sb.WriteString("## Overall\n\n")
	writeGroupTable(&sb, []domain.GroupStats{r.Overall})

	// Macro
	m := r.Macro
	sb.WriteString("## Risk\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Profit Factor | %.2f |\n", m.ProfitFactor))
	sb.WriteString(fmt.Sprintf("| Gross Profit | %.2f |\n", m.GrossProfit))
	sb.WriteString(fmt.Sprintf("| Gross Loss | %.2f |\n", m.GrossLoss))
	sb.WriteString(fmt.Sprintf("| Consistency | %.2f%% |\n", m.ConsistencyScore))
	sb.WriteString(fmt.Sprintf("| Consistency (with BE) | %.2f%% |\n", m.ConsistencyScoreWithBE))
	sb.WriteString(fmt.Sprintf("| Sharpe (with BE) | %.4f |\n", m.SharpeWithBE))
	sb.WriteString(fmt.Sprintf("| Trading Days | %d |\n", m.TradingDays))
	sb.WriteString(fmt.Sprintf("| Max Drawdown | %.2f |\n", m.MaxDrawdown))
	sb.WriteString(fmt.Sprintf("| Max Consecutive Losses | %d |\n", m.MaxConsecutiveLosses))
	sb.WriteString("\n")

	// Markets
	sb.WriteString("## Market\n\n")
	if len(r.Markets) > 0 {
		sb.WriteString("| Market | Trades | Wins | Losses | BE Wins | BE Losses | WinRate | WinRate (BE) | Profit | PnL% |\n")
		sb.WriteString("|--------|--------|------|--------|---------|-----------|---------|--------------|--------|------|\n")
		for _, ms := range r.Markets {
			sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %.2f | %.2f | %.2f | %.2f |\n",
				escapeCell(ms.Label), ms.Total, ms.Wins, ms.Losses, ms.BEWins, ms.BELosses,
				ms.WinRate, ms.WinRateWithBE, ms.Profit, ms.PnLPercentage))
		}
	} else {
		sb.WriteString("No trades.\n")
	}
	sb.WriteString("\n")

	// Category sections
	for _, s := range r.Sections {
		sb.WriteString(fmt.Sprintf("## %s\n\n", s.Title))
		if len(s.Rows) > 0 {
			writeGroupTable(&sb, s.Rows)
		} else {
			sb.WriteString("No trades.\n\n")
		}
	}

	return sb.String()
}

func writeGroupTable(sb *strings.Builder, rows []domain.GroupStats) {
	sb.WriteString("| Label | Trades | Wins | Losses | BE Wins | BE Losses | WinRate | WinRate (BE) |\n")
	sb.WriteString("|-------|--------|------|--------|---------|-----------|---------|--------------|\n")
	for _, gs := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %d | %d | %d | %d | %.2f | %.2f |\n",
			escapeCell(gs.Label), gs.Total, gs.Wins, gs.Losses, gs.BEWins, gs.BELosses,
			gs.WinRate, gs.WinRateWithBE))
	}
	sb.WriteString("\n")
}

func dateRange(s DataSummary) string {
	if s.DateRangeStart == "" {
		return "n/a"
	}
	return s.DateRangeStart + " .. " + s.DateRangeEnd
}

// escapeCell keeps user labels from breaking the table.
func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
