package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"trade-journal-lab/internal/domain"
	"trade-journal-lab/internal/stats"
)

// ErrInvalidProfile is returned for profiles that fail to decode or validate.
var ErrInvalidProfile = errors.New("invalid mapping profile")

// Profile is a named CSV mapping with import defaults and time buckets.
//
//	name: broker-export
//	columns: {"Date": trade_date, "Pair": market, "Stats": null}
//	defaults: {risk_per_trade: 1, risk_reward_ratio: 2, account_balance: 10000}
//	intervals: [{label: "London", start: "08:00", end: "10:59"}]
type Profile struct {
	Name      string                `yaml:"name"`
	Columns   map[string]*string    `yaml:"columns"` // null target ignores the column
	Defaults  domain.ImportDefaults `yaml:"defaults"`
	Intervals []domain.TimeInterval `yaml:"intervals"`
}

// LoadProfile reads and validates a profile file.
func LoadProfile(path string) (*Profile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	p, err := ParseProfile(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParseProfile decodes a YAML profile. Unknown keys, unknown target fields and
// malformed interval times are rejected with ErrInvalidProfile.
// Interval bounds are normalized to HH:MM.
func ParseProfile(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidProfile)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks column targets, interval labels and interval bounds, normalizing the bounds in place.
func (p *Profile) Validate() error {
	if len(p.Columns) == 0 {
		return fmt.Errorf("%w: no columns", ErrInvalidProfile)
	}

	headers := make([]string, 0, len(p.Columns))
	for h := range p.Columns {
		headers = append(headers, h)
	}
	sort.Strings(headers)
	for _, h := range headers {
		target := p.Columns[h]
		if target == nil {
			continue
		}
		if !domain.Field(strings.TrimSpace(*target)).IsValid() {
			return fmt.Errorf("%w: column %q maps to unknown field %q", ErrInvalidProfile, h, *target)
		}
	}

	seen := make(map[string]struct{}, len(p.Intervals))
	for i := range p.Intervals {
		iv := &p.Intervals[i]
		if strings.TrimSpace(iv.Label) == "" {
			return fmt.Errorf("%w: interval %d has no label", ErrInvalidProfile, i)
		}
		if _, dup := seen[iv.Label]; dup {
			return fmt.Errorf("%w: duplicate interval label %q", ErrInvalidProfile, iv.Label)
		}
		seen[iv.Label] = struct{}{}
		start, ok := stats.NormalizeClock(iv.Start)
		if !ok {
			return fmt.Errorf("%w: interval %q start %q", ErrInvalidProfile, iv.Label, iv.Start)
		}
		end, ok := stats.NormalizeClock(iv.End)
		if !ok {
			return fmt.Errorf("%w: interval %q end %q", ErrInvalidProfile, iv.Label, iv.End)
		}
		iv.Start, iv.End = start, end
	}
	return nil
}

// Mapping converts the column table to a domain.Mapping.
func (p *Profile) Mapping() domain.Mapping {
	m := make(domain.Mapping, len(p.Columns))
	for header, target := range p.Columns {
		if target == nil {
			m[header] = ""
			continue
		}
		m[header] = domain.Field(strings.TrimSpace(*target))
	}
	return m
}

// ImportDefaults returns the profile defaults, filling unset values from fallback.
func (p *Profile) ImportDefaults(fallback domain.ImportDefaults) domain.ImportDefaults {
	d := p.Defaults
	if d.RiskPerTrade == nil {
		d.RiskPerTrade = fallback.RiskPerTrade
	}
	if d.RiskRewardRatio == nil {
		d.RiskRewardRatio = fallback.RiskRewardRatio
	}
	if d.AccountBalance == nil {
		d.AccountBalance = fallback.AccountBalance
	}
	return d
}
