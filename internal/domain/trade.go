package domain

// Trade is one journaled trade.
// Corresponds to the trades table; ID, UserID and AccountID are assigned by storage.
type Trade struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	AccountID   string `json:"account_id,omitempty"`
	Fingerprint string `json:"fingerprint,omitempty"` // dedup key within an account
	ImportedAt  int64  `json:"imported_at,omitempty"` // Unix ms

	ParsedTrade
}

// ParsedTrade is a Trade without identity fields, as produced by the CSV importer.
type ParsedTrade struct {
	// Classification
	Market     string  `json:"market"`
	Direction  string  `json:"direction"` // "Long" | "Short"
	SetupType  string  `json:"setup_type"`
	Liquidity  string  `json:"liquidity"`
	MSS        string  `json:"mss"`
	Trend      string  `json:"trend"`       // empty when unknown
	StrategyID *string `json:"strategy_id"` // opaque reference

	// Temporal
	TradeDate string `json:"trade_date"` // YYYY-MM-DD or empty
	TradeTime string `json:"trade_time"` // HH:MM[:SS]
	DayOfWeek string `json:"day_of_week"`
	Quarter   string `json:"quarter"` // Q1..Q4

	// Outcome and risk
	TradeOutcome        string   `json:"trade_outcome"` // "Win" | "Lose"
	BreakEven           bool     `json:"break_even"`
	RiskPerTrade        *float64 `json:"risk_per_trade"` // percent of account
	RiskRewardRatio     *float64 `json:"risk_reward_ratio"`
	RiskRewardRatioLong float64  `json:"risk_reward_ratio_long"`
	SLSize              float64  `json:"sl_size"`

	// Behavioral flags
	Reentry       bool        `json:"reentry"`
	NewsRelated   bool        `json:"news_related"`
	LocalHighLow  Liquidation `json:"local_high_low"`
	PartialsTaken bool        `json:"partials_taken"`
	Executed      bool        `json:"executed"`
	LaunchHour    bool        `json:"launch_hour"`

	// Annotations
	Evaluation        string   `json:"evaluation"`
	Notes             string   `json:"notes"`
	TradeLink         string   `json:"trade_link"`
	LiquidityTaken    string   `json:"liquidity_taken"`
	DisplacementSize  float64  `json:"displacement_size"`
	FVGSize           *float64 `json:"fvg_size"`
	ConfidenceAtEntry string   `json:"confidence_at_entry"`
	MindStateAtEntry  string   `json:"mind_state_at_entry"`

	// Money, either imported or back-filled by the P&L formula
	CalculatedProfit *float64 `json:"calculated_profit,omitempty"`
	PnLPercentage    *float64 `json:"pnl_percentage,omitempty"`
}

// Outcome constants
const (
	OutcomeWin  = "Win"
	OutcomeLose = "Lose"
)

// Direction constants
const (
	DirectionLong  = "Long"
	DirectionShort = "Short"
)

// IsWin reports whether the outcome is exactly "Win".
func (t ParsedTrade) IsWin() bool {
	return t.TradeOutcome == OutcomeWin
}

// IsLoss reports whether the outcome is exactly "Lose".
func (t ParsedTrade) IsLoss() bool {
	return t.TradeOutcome == OutcomeLose
}
