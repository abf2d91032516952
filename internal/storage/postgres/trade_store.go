package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	id, user_id, account_id, COALESCE(fingerprint, ''), imported_at,
	market, direction, setup_type, liquidity, mss, trend, strategy_id,
	trade_date, trade_time, day_of_week, quarter,
	trade_outcome, break_even, risk_per_trade, risk_reward_ratio, risk_reward_ratio_long, sl_size,
	reentry, news_related, local_high_low, partials_taken, executed, launch_hour,
	evaluation, notes, trade_link, liquidity_taken, displacement_size, fvg_size,
	confidence_at_entry, mind_state_at_entry,
	calculated_profit, pnl_percentage
`

// Insert adds a new trade. Returns ErrDuplicateKey if id or (account_id, fingerprint) exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" || t.AccountID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO trades (
			id, user_id, account_id, fingerprint, imported_at,
			market, direction, setup_type, liquidity, mss, trend, strategy_id,
			trade_date, trade_time, day_of_week, quarter,
			trade_outcome, break_even, risk_per_trade, risk_reward_ratio, risk_reward_ratio_long, sl_size,
			reentry, news_related, local_high_low, partials_taken, executed, launch_hour,
			evaluation, notes, trade_link, liquidity_taken, displacement_size, fvg_size,
			confidence_at_entry, mind_state_at_entry,
			calculated_profit, pnl_percentage
		) VALUES (
			$1, $2, $3, NULLIF($4, ''), $5,
			$6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22,
			$23, $24, $25, $26, $27, $28,
			$29, $30, $31, $32, $33, $34,
			$35, $36,
			$37, $38
		)
	`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.UserID, t.AccountID, t.Fingerprint, t.ImportedAt,
		t.Market, t.Direction, t.SetupType, t.Liquidity, t.MSS, t.Trend, t.StrategyID,
		t.TradeDate, t.TradeTime, t.DayOfWeek, t.Quarter,
		t.TradeOutcome, t.BreakEven, t.RiskPerTrade, t.RiskRewardRatio, t.RiskRewardRatioLong, t.SLSize,
		t.Reentry, t.NewsRelated, bool(t.LocalHighLow), t.PartialsTaken, t.Executed, t.LaunchHour,
		t.Evaluation, t.Notes, t.TradeLink, t.LiquidityTaken, t.DisplacementSize, t.FVGSize,
		t.ConfidenceAtEntry, t.MindStateAtEntry,
		t.CalculatedProfit, t.PnLPercentage,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, id string) (*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	t, err := scanTrade(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get trade by id: %w", err)
	}
	return t, nil
}

// GetByAccount retrieves all trades of an account in chronological order.
func (s *TradeStore) GetByAccount(ctx context.Context, accountID string) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trades
		WHERE account_id = $1
		ORDER BY trade_date ASC, trade_time ASC, imported_at ASC, seq ASC
	`

	rows, err := s.pool.Query(ctx, query, accountID)
	if err != nil {
		return nil, fmt.Errorf("get trades by account: %w", err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}

// ExistsFingerprint reports whether the account already holds the fingerprint.
func (s *TradeStore) ExistsFingerprint(ctx context.Context, accountID, fingerprint string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM trades WHERE account_id = $1 AND fingerprint = $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, accountID, fingerprint).Scan(&exists); err != nil {
		return false, fmt.Errorf("check trade fingerprint: %w", err)
	}
	return exists, nil
}

// scanTrade scans a single row into a Trade. Works for both pgx.Row and pgx.Rows.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	var liquidated bool

	err := row.Scan(
		&t.ID, &t.UserID, &t.AccountID, &t.Fingerprint, &t.ImportedAt,
		&t.Market, &t.Direction, &t.SetupType, &t.Liquidity, &t.MSS, &t.Trend, &t.StrategyID,
		&t.TradeDate, &t.TradeTime, &t.DayOfWeek, &t.Quarter,
		&t.TradeOutcome, &t.BreakEven, &t.RiskPerTrade, &t.RiskRewardRatio, &t.RiskRewardRatioLong, &t.SLSize,
		&t.Reentry, &t.NewsRelated, &liquidated, &t.PartialsTaken, &t.Executed, &t.LaunchHour,
		&t.Evaluation, &t.Notes, &t.TradeLink, &t.LiquidityTaken, &t.DisplacementSize, &t.FVGSize,
		&t.ConfidenceAtEntry, &t.MindStateAtEntry,
		&t.CalculatedProfit, &t.PnLPercentage,
	)
	if err != nil {
		return nil, err
	}
	t.LocalHighLow = domain.Liquidation(domain.IsLiquidated(liquidated))

	return &t, nil
}
