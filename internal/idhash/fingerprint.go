package idhash

import (
	"crypto/sha256"
	"strconv"
	"strings"

	"github.com/mr-tron/base58"

	"trade-journal-lab/internal/domain"
)

// ComputeTradeFingerprint computes a deterministic fingerprint of an imported trade.
// Formula: SHA256(account_id|trade_date|trade_time|market|direction|setup_type|
// trade_outcome|break_even|risk_per_trade|risk_reward_ratio|sl_size|calculated_profit|notes)
// Returns base58-encoded hash (43-44 characters).
// Two rows of one account with the same fingerprint are the same trade.
func ComputeTradeFingerprint(accountID string, t domain.ParsedTrade) string {
	data := strings.Join([]string{
		accountID,
		t.TradeDate,
		t.TradeTime,
		t.Market,
		t.Direction,
		t.SetupType,
		t.TradeOutcome,
		strconv.FormatBool(t.BreakEven),
		formatOptional(t.RiskPerTrade),
		formatOptional(t.RiskRewardRatio),
		strconv.FormatFloat(t.SLSize, 'g', -1, 64),
		formatOptional(t.CalculatedProfit),
		t.Notes,
	}, "|")

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'g', -1, 64)
}

// ComputeOccurrenceFingerprint separates identical rows within one import.
// occurrence is 0-based; the first occurrence keeps the plain fingerprint, so
// re-importing the same file yields the same sequence of fingerprints.
func ComputeOccurrenceFingerprint(fingerprint string, occurrence int) string {
	if occurrence <= 0 {
		return fingerprint
	}
	hash := sha256.Sum256([]byte(fingerprint + "#" + strconv.Itoa(occurrence)))
	return base58.Encode(hash[:])
}
