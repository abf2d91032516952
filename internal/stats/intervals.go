package stats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"trade-journal-lab/internal/domain"
)

// ErrInvalidInterval is returned for malformed interval bounds.
var ErrInvalidInterval = errors.New("invalid time interval")

// ByTimeInterval computes one group per interval, in the given order.
// A trade joins the first interval whose inclusive [Start, End] range contains
// its time; trades without a readable time join none. Empty intervals are kept.
func ByTimeInterval(trades []domain.Trade, intervals []domain.TimeInterval) []domain.GroupStats {
	buckets := make([][]domain.Trade, len(intervals))
	bounds := make([][2]string, len(intervals))
	for i, iv := range intervals {
		start, _ := NormalizeClock(iv.Start)
		end, _ := NormalizeClock(iv.End)
		bounds[i] = [2]string{start, end}
	}

	for _, t := range trades {
		clock, ok := NormalizeClock(t.TradeTime)
		if !ok {
			continue
		}
		for i, b := range bounds {
			if b[0] == "" || b[1] == "" {
				continue
			}
			if b[0] <= clock && clock <= b[1] {
				buckets[i] = append(buckets[i], t)
				break
			}
		}
	}

	groups := make([]domain.GroupStats, len(intervals))
	for i, iv := range intervals {
		groups[i] = ProcessGroup(iv.Label, buckets[i])
	}
	return groups
}

// NormalizeClock reduces "H:MM", "HH:MM" or "HH:MM:SS" to zero-padded "HH:MM".
func NormalizeClock(raw string) (string, bool) {
	m, ok := minuteOfDay(raw)
	if !ok {
		return "", false
	}
	return formatClock(m), true
}

// SessionIntervals splits [start, end] into consecutive non-overlapping buckets
// of stepMinutes each. The last bucket is cut at end.
func SessionIntervals(start, end string, stepMinutes int) ([]domain.TimeInterval, error) {
	from, ok := minuteOfDay(start)
	if !ok {
		return nil, fmt.Errorf("%w: start %q", ErrInvalidInterval, start)
	}
	to, ok := minuteOfDay(end)
	if !ok {
		return nil, fmt.Errorf("%w: end %q", ErrInvalidInterval, end)
	}
	if to < from {
		return nil, fmt.Errorf("%w: end %s before start %s", ErrInvalidInterval, end, start)
	}
	if stepMinutes <= 0 {
		return nil, fmt.Errorf("%w: step must be positive, got %d", ErrInvalidInterval, stepMinutes)
	}

	var out []domain.TimeInterval
	for m := from; m <= to; m += stepMinutes {
		last := min(m+stepMinutes-1, to)
		s, e := formatClock(m), formatClock(last)
		out = append(out, domain.TimeInterval{
			Label: s + "-" + e,
			Start: s,
			End:   e,
		})
	}
	return out, nil
}

func minuteOfDay(raw string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 || len(parts[0]) > 2 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || len(parts[1]) != 2 {
		return 0, false
	}
	if len(parts) == 3 {
		s, err := strconv.Atoi(parts[2])
		if err != nil || s < 0 || s > 59 {
			return 0, false
		}
	}
	return h*60 + m, true
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
