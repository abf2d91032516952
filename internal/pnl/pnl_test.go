package pnl

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"trade-journal-lab/internal/domain"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name      string
		outcome   string
		riskPct   float64
		rr        float64
		breakEven bool
		balance   float64
		want      Result
	}{
		{"win", domain.OutcomeWin, 1, 2, false, 10000, Result{CalculatedProfit: 200, PnLPercentage: 2}},
		{"loss", domain.OutcomeLose, 1, 2, false, 10000, Result{CalculatedProfit: -100, PnLPercentage: -1}},
		{"break-even win", domain.OutcomeWin, 1, 2, true, 10000, Result{}},
		{"break-even loss", domain.OutcomeLose, 1, 2, true, 10000, Result{}},
		{"unknown outcome", "Pending", 1, 2, false, 10000, Result{}},
		{"rounded to cents", domain.OutcomeWin, 0.333, 1.5, false, 1234.56, Result{CalculatedProfit: 6.17, PnLPercentage: 0.5}},
		{"fractional risk", domain.OutcomeLose, 0.5, 3, false, 25000, Result{CalculatedProfit: -125, PnLPercentage: -0.5}},
		{"zero balance", domain.OutcomeWin, 1, 2, false, 0, Result{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.outcome, tt.riskPct, tt.rr, tt.breakEven, tt.balance)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDefaultCalculator(t *testing.T) {
	got := Default.Calculate(domain.OutcomeWin, 2, 1.5, false, 5000)

	assert.Equal(t, Result{CalculatedProfit: 150, PnLPercentage: 3}, got)
}

func TestCalculatorFunc(t *testing.T) {
	var calls int
	calc := CalculatorFunc(func(outcome string, riskPct, rr float64, breakEven bool, balance float64) Result {
		calls++
		return Result{CalculatedProfit: balance}
	})

	got := calc.Calculate(domain.OutcomeLose, 1, 1, false, 42)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 42.0, got.CalculatedProfit)
}
