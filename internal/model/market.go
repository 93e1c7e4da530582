package model

import "github.com/shopspring/decimal"

// Side is the direction of a transaction.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Transaction is a single exchange order at a fixed price.
type Transaction struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Side     Side
}

// GrossValue returns price × quantity.
func (t Transaction) GrossValue() decimal.Decimal {
	return t.Price.Mul(t.Quantity)
}

// Fee component names.
const (
	FeeBroker = "broker"
	FeeSEC    = "sec"
	FeeCSE    = "cse"
	FeeCDS    = "cds"
	FeeSTL    = "stl"
)

// FeeComponentOrder is the display order of fee components.
var FeeComponentOrder = []string{FeeBroker, FeeSEC, FeeCSE, FeeCDS, FeeSTL}

// FeeBreakdown is the result of applying a tier to a transaction.
type FeeBreakdown struct {
	TierID         string                     `json:"tier_id"`
	TierLabel      string                     `json:"tier_label"`
	Side           Side                       `json:"side"`
	GrossValue     decimal.Decimal            `json:"gross_value"`
	ComponentFees  map[string]decimal.Decimal `json:"component_fees"`
	TotalFeeAmount decimal.Decimal            `json:"total_fee_amount"`
	TotalFeeRate   decimal.Decimal            `json:"total_fee_rate"`
}

// BuyCost is the all-in cost of a purchase.
type BuyCost struct {
	GrossValue decimal.Decimal `json:"gross_value"`
	Fees       FeeBreakdown    `json:"fee_breakdown"`
	TotalCost  decimal.Decimal `json:"total_cost"`
}

// ProfitLoss holds the outcome of selling at a given price.
type ProfitLoss struct {
	SellPrice           decimal.Decimal `json:"sell_price"`
	SellFees            FeeBreakdown    `json:"sell_fees"`
	NetProceeds         decimal.Decimal `json:"net_proceeds"`
	PreTaxProfit        decimal.Decimal `json:"pre_tax_profit"`
	CapitalGainsTaxPaid decimal.Decimal `json:"capital_gains_tax_paid"`
	ProfitOrLoss        decimal.Decimal `json:"profit_or_loss"`
	ReturnPct           decimal.Decimal `json:"return_pct"`
}

// BreakEvenResult describes the break-even point of a position and,
// when a sell price was supplied, the profit or loss at that price.
type BreakEvenResult struct {
	BuyPrice              decimal.Decimal `json:"buy_price"`
	Quantity              decimal.Decimal `json:"quantity"`
	BuyFees               FeeBreakdown    `json:"buy_fees"`
	TotalCost             decimal.Decimal `json:"total_cost"`
	BreakEvenPrice        decimal.Decimal `json:"break_even_price"`
	BreakEvenRateOfReturn decimal.Decimal `json:"break_even_rate_of_return"`
	ProfitLoss            *ProfitLoss     `json:"profit_loss,omitempty"`
}

// TargetPriceResult is the sell price needed for a target after-tax return.
type TargetPriceResult struct {
	BreakEven           BreakEvenResult `json:"break_even"`
	TargetReturnPct     decimal.Decimal `json:"target_return_pct"`
	TargetProfit        decimal.Decimal `json:"target_profit"`
	TargetSellPrice     decimal.Decimal `json:"target_sell_price"`
	PriceAboveBreakEven decimal.Decimal `json:"price_above_break_even"`
	Outcome             ProfitLoss      `json:"outcome"`
}

// PositionStatus classifies a held position against its break-even.
type PositionStatus string

const (
	PositionProfitable PositionStatus = "PROFITABLE"
	PositionLoss       PositionStatus = "LOSS"
)

// PositionReview compares the current market price with break-even.
type PositionReview struct {
	BreakEven        BreakEvenResult `json:"break_even"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	PriceToBreakEven decimal.Decimal `json:"price_to_break_even"`
	ProfitLoss       ProfitLoss      `json:"profit_loss"`
	Status           PositionStatus  `json:"status"`
	Advice           string          `json:"advice"`
}
