package csvimport

import (
	"math"
	"strconv"
	"strings"
)

// parseNumber reads a numeric cell.
// A trailing percent sign is ignored and a lone decimal comma is read as a period.
// Non-finite values are rejected.
func parseNumber(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if s == "" {
		return 0, false
	}
	if !strings.Contains(s, ".") && strings.Count(s, ",") == 1 {
		s = strings.Replace(s, ",", ".", 1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseFlag is deliberately permissive: any non-empty cell is true,
// so "no" and "false" are true too. Callers wanting stricter truthiness
// must normalize the column before import.
func parseFlag(raw string) bool {
	return raw != ""
}
