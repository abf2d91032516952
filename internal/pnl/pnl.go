// Package pnl computes money results of a trade from its risk parameters.
package pnl

import (
	"github.com/shopspring/decimal"

	"trade-journal-lab/internal/domain"
)

// Result is the money outcome of one trade.
type Result struct {
	CalculatedProfit float64 // account currency
	PnLPercentage    float64 // percent of account balance
}

// Calculator computes a trade's P&L from outcome, risk percent and reward ratio.
type Calculator interface {
	Calculate(outcome string, riskPct, rr float64, breakEven bool, accountBalance float64) Result
}

// CalculatorFunc adapts a function to Calculator.
type CalculatorFunc func(outcome string, riskPct, rr float64, breakEven bool, accountBalance float64) Result

// Calculate calls f.
func (f CalculatorFunc) Calculate(outcome string, riskPct, rr float64, breakEven bool, accountBalance float64) Result {
	return f(outcome, riskPct, rr, breakEven, accountBalance)
}

// Default is the standard formula.
var Default Calculator = CalculatorFunc(Calculate)

var hundred = decimal.NewFromInt(100)

// Calculate applies the journal's P&L formula:
// risk amount = balance * riskPct / 100; a win earns risk * rr, a loss costs the risk,
// a break-even trade is flat. Profit is rounded to cents, percentage to two decimals.
func Calculate(outcome string, riskPct, rr float64, breakEven bool, accountBalance float64) Result {
	if breakEven {
		return Result{}
	}

	balance := decimal.NewFromFloat(accountBalance)
	risk := balance.Mul(decimal.NewFromFloat(riskPct)).Div(hundred)

	var profit decimal.Decimal
	switch outcome {
	case domain.OutcomeWin:
		profit = risk.Mul(decimal.NewFromFloat(rr))
	case domain.OutcomeLose:
		profit = risk.Neg()
	default:
		return Result{}
	}
	profit = profit.Round(2)

	pct := decimal.Zero
	if balance.IsPositive() {
		pct = profit.Div(balance).Mul(hundred).Round(2)
	}

	return Result{
		CalculatedProfit: profit.InexactFloat64(),
		PnLPercentage:    pct.InexactFloat64(),
	}
}
