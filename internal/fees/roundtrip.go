package fees

import (
	"CSEAnalyzer/internal/model"

	"github.com/shopspring/decimal"
)

// RoundTrip is a complete buy-then-sell of the same quantity.
type RoundTrip struct {
	BuyFees         model.FeeBreakdown `json:"buy_fees"`
	SellFees        model.FeeBreakdown `json:"sell_fees"`
	TotalCost       decimal.Decimal    `json:"total_cost"`
	NetProceeds     decimal.Decimal    `json:"net_proceeds"`
	TotalFees       decimal.Decimal    `json:"total_fees"`
	GrossProfit     decimal.Decimal    `json:"gross_profit"`
	CapitalGainsTax decimal.Decimal    `json:"capital_gains_tax"`
	NetProfit       decimal.Decimal    `json:"net_profit"`
	CostPct         decimal.Decimal    `json:"cost_pct"` // total fees as a percentage of the buy value
}

// RoundTrip prices buying at buyPrice and selling at sellPrice. Each leg picks
// its own tier from its own gross value; capital gains tax follows the sell tier.
func (s *Schedule) RoundTrip(buyPrice, sellPrice, quantity decimal.Decimal) (RoundTrip, error) {
	buy, err := s.Fees(model.Transaction{Price: buyPrice, Quantity: quantity, Side: model.SideBuy})
	if err != nil {
		return RoundTrip{}, err
	}
	sell, err := s.Fees(model.Transaction{Price: sellPrice, Quantity: quantity, Side: model.SideSell})
	if err != nil {
		return RoundTrip{}, err
	}
	sellTier, err := s.SelectTier(sell.GrossValue)
	if err != nil {
		return RoundTrip{}, err
	}

	totalCost := buy.GrossValue.Add(buy.TotalFeeAmount)
	netProceeds := sell.GrossValue.Sub(sell.TotalFeeAmount)
	gross := netProceeds.Sub(totalCost)
	tax := s.CapitalGainsTax(sellTier, gross)
	totalFees := buy.TotalFeeAmount.Add(sell.TotalFeeAmount)

	return RoundTrip{
		BuyFees:         buy,
		SellFees:        sell,
		TotalCost:       totalCost,
		NetProceeds:     netProceeds,
		TotalFees:       totalFees,
		GrossProfit:     gross,
		CapitalGainsTax: tax,
		NetProfit:       gross.Sub(tax),
		CostPct:         totalFees.Div(buy.GrossValue).Mul(decimal.NewFromInt(100)),
	}, nil
}
