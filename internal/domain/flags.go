package domain

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// IsLiquidated reports whether a local high/low value marks the trade as liquidated.
// Accepts true, "true"/"1" (case-insensitive) and numeric 1; everything else,
// including nil, false, "" and 0, is not liquidated.
// Every place that interprets local_high_low must go through this function.
func IsLiquidated(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case *bool:
		return x != nil && *x
	case Liquidation:
		return bool(x)
	case string:
		s := strings.ToLower(strings.TrimSpace(x))
		return s == "true" || s == "1"
	case []byte:
		return IsLiquidated(string(x))
	case json.Number:
		f, err := x.Float64()
		return err == nil && f == 1
	case int:
		return x == 1
	case int8:
		return x == 1
	case int16:
		return x == 1
	case int32:
		return x == 1
	case int64:
		return x == 1
	case uint:
		return x == 1
	case uint8:
		return x == 1
	case uint16:
		return x == 1
	case uint32:
		return x == 1
	case uint64:
		return x == 1
	case float32:
		return x == 1
	case float64:
		return x == 1
	default:
		return false
	}
}

// Liquidation is the local high/low flag. Decoding from JSON or SQL accepts
// the loose encodings understood by IsLiquidated.
type Liquidation bool

// UnmarshalJSON implements json.Unmarshaler.
func (l *Liquidation) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("decode local_high_low: %w", err)
	}
	*l = Liquidation(IsLiquidated(raw))
	return nil
}

// Scan implements sql.Scanner.
func (l *Liquidation) Scan(src any) error {
	*l = Liquidation(IsLiquidated(src))
	return nil
}

// Value implements driver.Valuer.
func (l Liquidation) Value() (driver.Value, error) {
	return bool(l), nil
}

var loseOutcomePattern = regexp.MustCompile(`(?i)^(lose|loss|l)$`)

// IsLoseOutcome reports whether raw outcome text denotes a losing trade.
func IsLoseOutcome(outcome string) bool {
	return loseOutcomePattern.MatchString(strings.TrimSpace(outcome))
}

// NormalizeMarket upper-cases a market symbol and drops separators,
// so "eur/usd" and "EUR-USD" both become "EURUSD".
func NormalizeMarket(market string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(market)) {
		switch r {
		case ' ', '/', '-', '_', '.':
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
