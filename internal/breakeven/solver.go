package breakeven

import (
	"CSEAnalyzer/internal/fees"
	"CSEAnalyzer/internal/model"

	"github.com/shopspring/decimal"
)

// solveSellValue finds the sell gross value whose net proceeds (after
// sell-side fees) equal proceeds(tier). Each tier is tried in order and the
// first solution inside its own band wins. When a tier's solution falls below
// its band the threshold itself is the answer: the lower tier cannot reach the
// target and the cheaper tier overshoots it, so the first value past the
// threshold is returned and jumped is true.
func (c *Calculator) solveSellValue(proceeds func(fees.Tier) decimal.Decimal) (value decimal.Decimal, jumped bool, err error) {
	tiers := c.schedule.Tiers()
	minCommission := c.schedule.MinimumCommission()
	lower := decimal.Zero

	for _, t := range tiers {
		v := sellValueFor(proceeds(t), c.schedule.RatesFor(t, model.SideSell), minCommission)
		if !v.GreaterThan(lower) {
			return lower.Add(valueTick), true, nil
		}
		if t.Unbounded() || v.LessThanOrEqual(*t.MaxValue) {
			return v, false, nil
		}
		lower = *t.MaxValue
	}
	return decimal.Zero, false, model.ConfigError("fees.tiers", "no tier can absorb the break-even sell value")
}

// sellValueFor solves V - fees(V) = target for a single rate set. Fees are
// linear in V except for the broker floor, which is handled as a second
// regime.
func sellValueFor(target decimal.Decimal, rates fees.RateSet, minCommission decimal.Decimal) decimal.Decimal {
	keep := one.Sub(rates.Total())
	v := target.Div(keep)
	if minCommission.IsPositive() && v.Mul(rates.Broker).LessThan(minCommission) {
		v = target.Add(minCommission).Div(keep.Add(rates.Broker))
	}
	return v
}
