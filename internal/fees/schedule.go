// Package fees models the tiered commission and levy schedule of the exchange.
package fees

import (
	"encoding/json"
	"fmt"
	"sync"

	"CSEAnalyzer/internal/model"

	"github.com/shopspring/decimal"
)

// RateSet is one side's fee rates as fractions of gross value.
type RateSet struct {
	Broker decimal.Decimal `json:"broker"`
	SEC    decimal.Decimal `json:"sec"`
	CSE    decimal.Decimal `json:"cse"`
	CDS    decimal.Decimal `json:"cds"`
	STL    decimal.Decimal `json:"stl"` // sell side only
}

// Total returns the sum of all rates.
func (r RateSet) Total() decimal.Decimal {
	return r.Broker.Add(r.SEC).Add(r.CSE).Add(r.CDS).Add(r.STL)
}

// WithSTL returns a copy of r with the STL levy set.
func (r RateSet) WithSTL(stl decimal.Decimal) RateSet {
	r.STL = stl
	return r
}

func (r RateSet) components() []component {
	return []component{
		{model.FeeBroker, r.Broker},
		{model.FeeSEC, r.SEC},
		{model.FeeCSE, r.CSE},
		{model.FeeCDS, r.CDS},
		{model.FeeSTL, r.STL},
	}
}

type component struct {
	name string
	rate decimal.Decimal
}

// Tier is one fee bracket. A nil MaxValue marks the unbounded final tier.
type Tier struct {
	ID               string           `json:"id"`
	Label            string           `json:"label"`
	MaxValue         *decimal.Decimal `json:"max_value,omitempty"`
	Buy              RateSet          `json:"buy"`
	Sell             RateSet          `json:"sell"`
	CapitalGainsRate decimal.Decimal  `json:"capital_gains_rate"`
}

// Unbounded reports whether the tier has no upper limit.
func (t Tier) Unbounded() bool { return t.MaxValue == nil }

// Schedule is an immutable, validated set of tiers.
type Schedule struct {
	tiers             []Tier
	minimumCommission decimal.Decimal
}

// NewSchedule validates tiers and returns a schedule. Thresholds must be
// strictly increasing, only the last tier may be unbounded and it must be,
// and every rate must be non-negative.
func NewSchedule(tiers []Tier, minimumCommission decimal.Decimal) (*Schedule, error) {
	if len(tiers) == 0 {
		return nil, model.ConfigError("fees.tiers", "at least one tier is required")
	}
	if minimumCommission.IsNegative() {
		return nil, model.ConfigError("fees.minimum_commission", "must be non-negative, got %s", minimumCommission)
	}

	var prev *decimal.Decimal
	for i, t := range tiers {
		field := fmt.Sprintf("fees.tiers[%d]", i)
		last := i == len(tiers)-1
		if t.ID == "" {
			return nil, model.ConfigError(field+".id", "is required")
		}
		if t.Unbounded() && !last {
			return nil, model.ConfigError(field+".max_value", "only the final tier may be unbounded")
		}
		if !t.Unbounded() {
			if last {
				return nil, model.ConfigError(field+".max_value", "final tier must be unbounded")
			}
			if !t.MaxValue.IsPositive() {
				return nil, model.ConfigError(field+".max_value", "must be positive, got %s", t.MaxValue)
			}
			if prev != nil && !t.MaxValue.GreaterThan(*prev) {
				return nil, model.ConfigError(field+".max_value", "thresholds must be strictly increasing (%s after %s)", t.MaxValue, prev)
			}
			prev = t.MaxValue
		}
		if err := checkRates(field+".buy", t.Buy); err != nil {
			return nil, err
		}
		if err := checkRates(field+".sell", t.Sell); err != nil {
			return nil, err
		}
		if t.CapitalGainsRate.IsNegative() || t.CapitalGainsRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return nil, model.ConfigError(field+".capital_gains_rate", "must be in [0, 1), got %s", t.CapitalGainsRate)
		}
	}

	cp := make([]Tier, len(tiers))
	copy(cp, tiers)
	for i := range cp {
		cp[i].Buy.STL = decimal.Zero
		if cp[i].Label == "" {
			cp[i].Label = cp[i].ID
		}
	}
	return &Schedule{tiers: cp, minimumCommission: minimumCommission}, nil
}

func checkRates(field string, r RateSet) error {
	for _, c := range r.components() {
		if c.rate.IsNegative() {
			return model.ConfigError(field+"."+c.name, "rate must be non-negative, got %s", c.rate)
		}
	}
	if r.Total().GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return model.ConfigError(field, "total rate %s leaves nothing of the gross value", r.Total())
	}
	return nil
}

// Tiers returns a copy of the tiers in ascending threshold order.
func (s *Schedule) Tiers() []Tier {
	cp := make([]Tier, len(s.tiers))
	copy(cp, s.tiers)
	return cp
}

// MarshalJSON exposes the tiers and minimum commission.
func (s *Schedule) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Tiers             []Tier          `json:"tiers"`
		MinimumCommission decimal.Decimal `json:"minimum_commission"`
	}{s.tiers, s.minimumCommission})
}

// MinimumCommission is the floor applied to the broker component.
func (s *Schedule) MinimumCommission() decimal.Decimal { return s.minimumCommission }

// SelectTier returns the tier whose band contains gross. A value equal to a
// threshold belongs to the lower tier.
func (s *Schedule) SelectTier(gross decimal.Decimal) (Tier, error) {
	for _, t := range s.tiers {
		if t.Unbounded() || gross.LessThanOrEqual(*t.MaxValue) {
			return t, nil
		}
	}
	return Tier{}, model.ConfigError("fees.tiers", "no tier matches gross value %s", gross)
}

// RatesFor returns the tier's rates for side.
func (s *Schedule) RatesFor(t Tier, side model.Side) RateSet {
	if side == model.SideSell {
		return t.Sell
	}
	return t.Buy
}

// Apply computes the fees for gross value on side using tier t.
func (s *Schedule) Apply(t Tier, side model.Side, gross decimal.Decimal) model.FeeBreakdown {
	rates := s.RatesFor(t, side)
	fees := make(map[string]decimal.Decimal, 5)
	total := decimal.Zero
	for _, c := range rates.components() {
		if side == model.SideBuy && c.name == model.FeeSTL {
			continue
		}
		fee := gross.Mul(c.rate)
		if c.name == model.FeeBroker && fee.LessThan(s.minimumCommission) {
			fee = s.minimumCommission
		}
		fees[c.name] = fee
		total = total.Add(fee)
	}

	rate := decimal.Zero
	if gross.IsPositive() {
		rate = total.Div(gross)
	}
	return model.FeeBreakdown{
		TierID:         t.ID,
		TierLabel:      t.Label,
		Side:           side,
		GrossValue:     gross,
		ComponentFees:  fees,
		TotalFeeAmount: total,
		TotalFeeRate:   rate,
	}
}

// Fees selects the tier for the transaction's gross value and applies it.
func (s *Schedule) Fees(tx model.Transaction) (model.FeeBreakdown, error) {
	if !tx.Price.IsPositive() {
		return model.FeeBreakdown{}, model.InvalidInput("price", "must be positive, got %s", tx.Price)
	}
	if !tx.Quantity.IsPositive() {
		return model.FeeBreakdown{}, model.InvalidInput("quantity", "must be positive, got %s", tx.Quantity)
	}
	if tx.Side != model.SideBuy && tx.Side != model.SideSell {
		return model.FeeBreakdown{}, model.InvalidInput("side", "unknown side %q", tx.Side)
	}
	gross := tx.GrossValue()
	tier, err := s.SelectTier(gross)
	if err != nil {
		return model.FeeBreakdown{}, err
	}
	return s.Apply(tier, tx.Side, gross), nil
}

// CapitalGainsTax is levied only on a positive profit.
func (s *Schedule) CapitalGainsTax(t Tier, profit decimal.Decimal) decimal.Decimal {
	if !profit.IsPositive() {
		return decimal.Zero
	}
	return profit.Mul(t.CapitalGainsRate)
}

var (
	defaultOnce     sync.Once
	defaultSchedule *Schedule
)

// Default returns the process-wide CSE schedule, built once.
func Default() *Schedule {
	defaultOnce.Do(func() {
		s, err := NewSchedule(CSETiers(), decimal.Zero)
		if err != nil {
			panic(fmt.Sprintf("built-in fee schedule is invalid: %v", err))
		}
		defaultSchedule = s
	})
	return defaultSchedule
}

// CSETiers returns the Colombo Stock Exchange equity schedule: tier 1 up to
// Rs. 100Mn per trade, tier 2 above it. STL applies to sales only.
func CSETiers() []Tier {
	d := decimal.RequireFromString
	tier1Max := d("100000000")
	stl := d("0.003")
	cgt := d("0.30")

	tier1 := RateSet{Broker: d("0.0064"), SEC: d("0.00072"), CSE: d("0.00084"), CDS: d("0.00024")}
	tier2 := RateSet{Broker: d("0.002"), SEC: d("0.00045"), CSE: d("0.000525"), CDS: d("0.00015")}
	return []Tier{
		{ID: "tier_1", Label: "Tier 1 (<= Rs. 100Mn)", MaxValue: &tier1Max, Buy: tier1, Sell: tier1.WithSTL(stl), CapitalGainsRate: cgt},
		{ID: "tier_2", Label: "Tier 2 (> Rs. 100Mn)", Buy: tier2, Sell: tier2.WithSTL(stl), CapitalGainsRate: cgt},
	}
}
