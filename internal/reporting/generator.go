package reporting

import (
	"time"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/stats"
)

// Options selects what a report covers.
type Options struct {
	AccountID      string
	AccountBalance float64 // market P&L% and macro stats; <= 0 disables P&L%
	ExecutedOnly   bool    // drop trades with executed == false before computing views
	Intervals      []domain.TimeInterval
}

// sectionSpec binds a dimension to the view that computes it.
type sectionSpec struct {
	dimension string
	title     string
	view      func([]domain.Trade) []domain.GroupStats
}

var sectionSpecs = []sectionSpec{
	{domain.DimensionSetup, "Setup", stats.BySetup},
	{domain.DimensionDirection, "Direction", stats.ByDirection},
	{domain.DimensionDayOfWeek, "Day of Week", stats.ByDayOfWeek},
	{domain.DimensionQuarter, "Quarter", stats.ByQuarter},
	{domain.DimensionMSS, "MSS", stats.ByMSS},
	{domain.DimensionNews, "News", stats.ByNews},
	{domain.DimensionLiquidity, "Liquidity", stats.ByLiquidity},
	{domain.DimensionLocalHighLow, "Local High/Low", stats.ByLocalHighLow},
	{domain.DimensionTrend, "Trend", stats.ByTrend},
	{domain.DimensionReentry, "Re-entry", stats.ByReentry},
	{domain.DimensionBreakEven, "Break Even", stats.ByBreakEven},
}

// Generator produces reports from a trade collection.
type Generator struct {
	now func() time.Time // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{
		now: func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate computes every view over trades. The data summary always describes
// the full input; the views describe the filtered set when ExecutedOnly is set.
func (g *Generator) Generate(trades []domain.Trade, opts Options) *Report {
	analyzed := trades
	if opts.ExecutedOnly {
		analyzed = stats.FilterExecuted(trades)
	}

	sections := make([]Section, 0, len(sectionSpecs)+1)
	for _, spec := range sectionSpecs {
		sections = append(sections, Section{
			Dimension: spec.dimension,
			Title:     spec.title,
			Rows:      spec.view(analyzed),
		})
	}
	if len(opts.Intervals) > 0 {
		sections = append(sections, Section{
			Dimension: domain.DimensionTimeInterval,
			Title:     "Time of Day",
			Rows:      stats.ByTimeInterval(analyzed, opts.Intervals),
		})
	}

	summary := generateDataSummary(trades)
	summary.TotalProfit = totalProfit(analyzed)

	return &Report{
		GeneratedAt:    g.now(),
		AccountID:      opts.AccountID,
		AccountBalance: opts.AccountBalance,
		ExecutedOnly:   opts.ExecutedOnly,
		DataSummary:    summary,
		Overall:        stats.Overall(analyzed),
		Macro:          stats.ComputeMacro(analyzed, opts.AccountBalance),
		Markets:        stats.ByMarket(analyzed, opts.AccountBalance),
		Sections:       sections,
	}
}

// generateDataSummary counts trades and finds the date range.
// ISO dates compare correctly as strings.
func generateDataSummary(trades []domain.Trade) DataSummary {
	s := DataSummary{TotalTrades: len(trades)}
	for _, t := range trades {
		if t.Executed {
			s.ExecutedTrades++
		}
		if t.TradeDate == "" {
			s.UndatedTrades++
			continue
		}
		if s.DateRangeStart == "" || t.TradeDate < s.DateRangeStart {
			s.DateRangeStart = t.TradeDate
		}
		if t.TradeDate > s.DateRangeEnd {
			s.DateRangeEnd = t.TradeDate
		}
	}
	return s
}

func totalProfit(trades []domain.Trade) float64 {
	var sum float64
	for _, t := range trades {
		if t.CalculatedProfit != nil {
			sum += *t.CalculatedProfit
		}
	}
	return sum
}
