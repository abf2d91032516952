package domain

// Field names a trade column targeted by a CSV mapping.
type Field string

// Trade fields accepted as mapping targets.
const (
	FieldMarket              Field = "market"
	FieldDirection           Field = "direction"
	FieldSetupType           Field = "setup_type"
	FieldLiquidity           Field = "liquidity"
	FieldMSS                 Field = "mss"
	FieldTrend               Field = "trend"
	FieldStrategyID          Field = "strategy_id"
	FieldTradeDate           Field = "trade_date"
	FieldTradeTime           Field = "trade_time"
	FieldDayOfWeek           Field = "day_of_week"
	FieldQuarter             Field = "quarter"
	FieldTradeOutcome        Field = "trade_outcome"
	FieldBreakEven           Field = "break_even"
	FieldRiskPerTrade        Field = "risk_per_trade"
	FieldRiskRewardRatio     Field = "risk_reward_ratio"
	FieldRiskRewardRatioLong Field = "risk_reward_ratio_long"
	FieldSLSize              Field = "sl_size"
	FieldReentry             Field = "reentry"
	FieldNewsRelated         Field = "news_related"
	FieldLocalHighLow        Field = "local_high_low"
	FieldPartialsTaken       Field = "partials_taken"
	FieldExecuted            Field = "executed"
	FieldLaunchHour          Field = "launch_hour"
	FieldEvaluation          Field = "evaluation"
	FieldNotes               Field = "notes"
	FieldTradeLink           Field = "trade_link"
	FieldLiquidityTaken      Field = "liquidity_taken"
	FieldDisplacementSize    Field = "displacement_size"
	FieldFVGSize             Field = "fvg_size"
	FieldConfidenceAtEntry   Field = "confidence_at_entry"
	FieldMindStateAtEntry    Field = "mind_state_at_entry"
	FieldCalculatedProfit    Field = "calculated_profit"
	FieldPnLPercentage       Field = "pnl_percentage"
)

// FieldFile is the RowError field used for file-level failures.
const FieldFile Field = "file"

var knownFields = map[Field]struct{}{
	FieldMarket: {}, FieldDirection: {}, FieldSetupType: {}, FieldLiquidity: {},
	FieldMSS: {}, FieldTrend: {}, FieldStrategyID: {}, FieldTradeDate: {},
	FieldTradeTime: {}, FieldDayOfWeek: {}, FieldQuarter: {}, FieldTradeOutcome: {},
	FieldBreakEven: {}, FieldRiskPerTrade: {}, FieldRiskRewardRatio: {},
	FieldRiskRewardRatioLong: {}, FieldSLSize: {}, FieldReentry: {}, FieldNewsRelated: {},
	FieldLocalHighLow: {}, FieldPartialsTaken: {}, FieldExecuted: {}, FieldLaunchHour: {},
	FieldEvaluation: {}, FieldNotes: {}, FieldTradeLink: {}, FieldLiquidityTaken: {},
	FieldDisplacementSize: {}, FieldFVGSize: {}, FieldConfidenceAtEntry: {},
	FieldMindStateAtEntry: {}, FieldCalculatedProfit: {}, FieldPnLPercentage: {},
}

// IsValid reports whether f is a known trade field.
func (f Field) IsValid() bool {
	_, ok := knownFields[f]
	return ok
}

// Mapping maps CSV header text to a trade field.
// An empty Field means the column is ignored.
type Mapping map[string]Field

// Maps reports whether any header is mapped to f.
func (m Mapping) Maps(f Field) bool {
	for _, target := range m {
		if target == f {
			return true
		}
	}
	return false
}

// ImportDefaults supplies values for empty cells. Nil means no default.
type ImportDefaults struct {
	RiskPerTrade    *float64 `json:"risk_per_trade,omitempty" yaml:"risk_per_trade"`
	RiskRewardRatio *float64 `json:"risk_reward_ratio,omitempty" yaml:"risk_reward_ratio"`
	AccountBalance  *float64 `json:"account_balance,omitempty" yaml:"account_balance"`
}

// RowError describes one validation failure in a source row.
// Row is the 1-based line number among non-blank lines (header = 1); 0 for file-level errors.
type RowError struct {
	Row     int    `json:"row"`
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

// ImportResult is the outcome of parsing one CSV file.
type ImportResult struct {
	Rows   []ParsedTrade `json:"rows"`
	Errors []RowError    `json:"errors"`
}
