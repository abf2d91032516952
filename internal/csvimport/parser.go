package csvimport

import (
	"fmt"
	"regexp"
	"strings"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/pnl"
)

var lineBreak = regexp.MustCompile(`\r?\n`)

// Parser converts CSV text into parsed trades.
type Parser struct {
	calc            pnl.Calculator
	normalizeMarket func(string) string
}

// Option configures a Parser.
type Option func(*Parser)

// WithMarketNormalizer rewrites every non-empty market value through fn.
func WithMarketNormalizer(fn func(string) string) Option {
	return func(p *Parser) {
		p.normalizeMarket = fn
	}
}

// NewParser creates a parser. calc back-fills P&L for rows that carry none;
// a nil calc disables back-filling.
func NewParser(calc pnl.Calculator, opts ...Option) *Parser {
	p := &Parser{calc: calc}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// numericFields are validated in this order so error output is stable.
var numericFields = []domain.Field{
	domain.FieldRiskPerTrade,
	domain.FieldRiskRewardRatio,
	domain.FieldSLSize,
	domain.FieldRiskRewardRatioLong,
	domain.FieldCalculatedProfit,
	domain.FieldPnLPercentage,
	domain.FieldDisplacementSize,
	domain.FieldFVGSize,
}

// Parse converts csvText into trades using mapping (header text -> field).
// Rows with any error are dropped and their errors reported; other rows are unaffected.
// Only a file without data rows yields a file-level error.
func (p *Parser) Parse(csvText string, mapping domain.Mapping, defaults domain.ImportDefaults) domain.ImportResult {
	result := domain.ImportResult{
		Rows:   []domain.ParsedTrade{},
		Errors: []domain.RowError{},
	}

	var lines []string
	for _, line := range lineBreak.Split(csvText, -1) {
		if !isBlank(line) {
			lines = append(lines, line)
		}
	}
	if len(lines) < 2 {
		result.Errors = append(result.Errors, domain.RowError{
			Row:     0,
			Field:   domain.FieldFile,
			Message: "CSV file has no data rows",
		})
		return result
	}

	delim := DetectDelimiter(lines[0])
	headers := SplitLine(lines[0], delim)

	columns := resolveColumns(headers, mapping)
	present := make(map[domain.Field]bool, len(columns))
	for _, f := range columns {
		if f != "" {
			present[f] = true
		}
	}

	for i, line := range lines[1:] {
		rowNum := i + 2
		tokens := SplitLine(line, delim)

		values := make(map[domain.Field]string, len(present))
		for col, field := range columns {
			if field == "" {
				continue
			}
			v := ""
			if col < len(tokens) {
				v = CleanValue(tokens[col])
			}
			values[field] = v
		}
		if allEmpty(values) {
			continue
		}

		trade, errs := p.parseRow(rowNum, values, present, defaults)
		if len(errs) > 0 {
			result.Errors = append(result.Errors, errs...)
			continue
		}
		result.Rows = append(result.Rows, trade)
	}

	return result
}

// resolveColumns maps each header position to its target field ("" when unmapped).
func resolveColumns(headers []string, mapping domain.Mapping) []domain.Field {
	lookup := make(map[string]domain.Field, len(mapping))
	for header, field := range mapping {
		lookup[CleanValue(header)] = field
	}
	columns := make([]domain.Field, len(headers))
	for i, h := range headers {
		columns[i] = lookup[CleanValue(h)]
	}
	return columns
}

func allEmpty(values map[domain.Field]string) bool {
	for _, v := range values {
		if v != "" {
			return false
		}
	}
	return true
}

// parseRow validates one row. It returns either a trade or the row's errors.
func (p *Parser) parseRow(
	row int,
	values map[domain.Field]string,
	present map[domain.Field]bool,
	defaults domain.ImportDefaults,
) (domain.ParsedTrade, []domain.RowError) {
	var errs []domain.RowError
	addErr := func(field domain.Field, format string, args ...any) {
		errs = append(errs, domain.RowError{Row: row, Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Date and derived calendar fields
	tradeDate := values[domain.FieldTradeDate]
	dayOfWeek := values[domain.FieldDayOfWeek]
	quarter := values[domain.FieldQuarter]
	if tradeDate != "" {
		iso, ok := ParseDate(tradeDate)
		if ok {
			tradeDate = iso
			dayOfWeek, quarter = dateParts(iso)
		} else {
			addErr(domain.FieldTradeDate, "unrecognized date %q (expected one of: %s)",
				tradeDate, strings.Join(dateFormatNames(), ", "))
		}
	}

	// Numbers: nil means the cell was empty
	numbers := make(map[domain.Field]*float64, len(numericFields))
	for _, f := range numericFields {
		raw := values[f]
		if raw == "" {
			continue
		}
		n, ok := parseNumber(raw)
		if !ok {
			addErr(f, "invalid number %q", raw)
			continue
		}
		numbers[f] = &n
	}

	if len(errs) > 0 {
		return domain.ParsedTrade{}, errs
	}

	outcome := values[domain.FieldTradeOutcome]
	market := values[domain.FieldMarket]
	if p.normalizeMarket != nil && market != "" {
		market = p.normalizeMarket(market)
	}

	riskPerTrade := withDefault(numbers[domain.FieldRiskPerTrade], defaults.RiskPerTrade)
	riskReward := withDefault(numbers[domain.FieldRiskRewardRatio], defaults.RiskRewardRatio)

	var rrLong float64
	switch {
	case numbers[domain.FieldRiskRewardRatioLong] != nil:
		rrLong = *numbers[domain.FieldRiskRewardRatioLong]
	case domain.IsLoseOutcome(outcome):
		rrLong = 0
	default:
		rrLong = riskReward
	}

	executed := true
	if present[domain.FieldExecuted] {
		executed = parseFlag(values[domain.FieldExecuted])
	}

	t := domain.ParsedTrade{
		Market:     market,
		Direction:  values[domain.FieldDirection],
		SetupType:  values[domain.FieldSetupType],
		Liquidity:  values[domain.FieldLiquidity],
		MSS:        values[domain.FieldMSS],
		Trend:      values[domain.FieldTrend],
		StrategyID: optionalText(values[domain.FieldStrategyID]),

		TradeDate: tradeDate,
		TradeTime: values[domain.FieldTradeTime],
		DayOfWeek: dayOfWeek,
		Quarter:   quarter,

		TradeOutcome:        outcome,
		BreakEven:           parseFlag(values[domain.FieldBreakEven]),
		RiskPerTrade:        &riskPerTrade,
		RiskRewardRatio:     &riskReward,
		RiskRewardRatioLong: rrLong,
		SLSize:              valueOrZero(numbers[domain.FieldSLSize]),

		Reentry:       parseFlag(values[domain.FieldReentry]),
		NewsRelated:   parseFlag(values[domain.FieldNewsRelated]),
		LocalHighLow:  domain.Liquidation(parseFlag(values[domain.FieldLocalHighLow])),
		PartialsTaken: parseFlag(values[domain.FieldPartialsTaken]),
		Executed:      executed,
		LaunchHour:    parseFlag(values[domain.FieldLaunchHour]),

		Evaluation:        values[domain.FieldEvaluation],
		Notes:             values[domain.FieldNotes],
		TradeLink:         values[domain.FieldTradeLink],
		LiquidityTaken:    values[domain.FieldLiquidityTaken],
		DisplacementSize:  valueOrZero(numbers[domain.FieldDisplacementSize]),
		FVGSize:           numbers[domain.FieldFVGSize],
		ConfidenceAtEntry: values[domain.FieldConfidenceAtEntry],
		MindStateAtEntry:  values[domain.FieldMindStateAtEntry],

		CalculatedProfit: numbers[domain.FieldCalculatedProfit],
		PnLPercentage:    numbers[domain.FieldPnLPercentage],
	}

	if t.CalculatedProfit == nil && t.PnLPercentage == nil && defaults.AccountBalance != nil && p.calc != nil {
		formulaOutcome := domain.OutcomeWin
		if domain.IsLoseOutcome(outcome) {
			formulaOutcome = domain.OutcomeLose
		}
		res := p.calc.Calculate(formulaOutcome, riskPerTrade, riskReward, t.BreakEven, *defaults.AccountBalance)
		t.CalculatedProfit = &res.CalculatedProfit
		t.PnLPercentage = &res.PnLPercentage
	}

	return t, nil
}

func withDefault(v, def *float64) float64 {
	if v != nil {
		return *v
	}
	if def != nil {
		return *def
	}
	return 0
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func optionalText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
