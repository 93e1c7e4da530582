// Package breakeven finds the sell price that recovers a purchase after all
// exchange fees and taxes, and prices the outcome of selling elsewhere.
package breakeven

import (
	"CSEAnalyzer/internal/fees"
	"CSEAnalyzer/internal/model"

	"github.com/shopspring/decimal"
)

// Break-even prices are carried to this many fractional digits.
const priceScale = 8

var (
	one       = decimal.NewFromInt(1)
	hundred   = decimal.NewFromInt(100)
	priceTick = decimal.New(1, -priceScale)
	valueTick = decimal.New(1, -4)
)

// Calculator prices positions against a fee schedule.
type Calculator struct {
	schedule *fees.Schedule
}

// NewCalculator creates a Calculator bound to schedule.
func NewCalculator(schedule *fees.Schedule) *Calculator {
	return &Calculator{schedule: schedule}
}

// Schedule returns the fee schedule the calculator uses.
func (c *Calculator) Schedule() *fees.Schedule { return c.schedule }

// ComputeBuyCost returns the gross value, buy-side fees and all-in cost of tx.
// The tier is chosen from the buy gross value.
func (c *Calculator) ComputeBuyCost(tx model.Transaction) (model.BuyCost, error) {
	if tx.Side == "" {
		tx.Side = model.SideBuy
	}
	if tx.Side != model.SideBuy {
		return model.BuyCost{}, model.InvalidInput("side", "buy cost requires a buy transaction, got %s", tx.Side)
	}
	fb, err := c.schedule.Fees(tx)
	if err != nil {
		return model.BuyCost{}, err
	}
	return model.BuyCost{
		GrossValue: fb.GrossValue,
		Fees:       fb,
		TotalCost:  fb.GrossValue.Add(fb.TotalFeeAmount),
	}, nil
}

// ComputeBreakEven solves for the lowest sell price whose net proceeds cover
// the total buy cost. Profit is zero there, so capital gains tax never enters
// the equation.
func (c *Calculator) ComputeBreakEven(buyPrice, quantity decimal.Decimal) (*model.BreakEvenResult, error) {
	if err := validatePosition(buyPrice, quantity); err != nil {
		return nil, err
	}
	buy, err := c.ComputeBuyCost(model.Transaction{Price: buyPrice, Quantity: quantity, Side: model.SideBuy})
	if err != nil {
		return nil, err
	}

	value, jumped, err := c.solveSellValue(func(fees.Tier) decimal.Decimal { return buy.TotalCost })
	if err != nil {
		return nil, err
	}
	price := value.Div(quantity).RoundCeil(priceScale)
	if !jumped {
		// Division rounding can leave the ceiling one tick off either way.
		if price, err = c.settleBreakEven(buy.TotalCost, price, quantity); err != nil {
			return nil, err
		}
	}

	return &model.BreakEvenResult{
		BuyPrice:              buyPrice,
		Quantity:              quantity,
		BuyFees:               buy.Fees,
		TotalCost:             buy.TotalCost,
		BreakEvenPrice:        price,
		BreakEvenRateOfReturn: price.Sub(buyPrice).Div(buyPrice),
	}, nil
}

// settleBreakEven moves price to the smallest tick whose pre-tax profit is
// not negative.
func (c *Calculator) settleBreakEven(totalCost, price, quantity decimal.Decimal) (decimal.Decimal, error) {
	pre, err := c.preTaxProfit(totalCost, price, quantity)
	if err != nil {
		return price, err
	}
	if pre.IsNegative() {
		return price.Add(priceTick), nil
	}
	lower := price.Sub(priceTick)
	if !lower.IsPositive() {
		return price, nil
	}
	pre, err = c.preTaxProfit(totalCost, lower, quantity)
	if err != nil {
		return price, err
	}
	if !pre.IsNegative() {
		return lower, nil
	}
	return price, nil
}

// ComputeProfitLoss is ComputeBreakEven plus the outcome of selling at sellPrice.
func (c *Calculator) ComputeProfitLoss(buyPrice, quantity, sellPrice decimal.Decimal) (*model.BreakEvenResult, error) {
	if !sellPrice.IsPositive() {
		return nil, model.InvalidInput("sell_price", "must be positive, got %s", sellPrice)
	}
	res, err := c.ComputeBreakEven(buyPrice, quantity)
	if err != nil {
		return nil, err
	}
	pl, err := c.profitLoss(res.TotalCost, sellPrice, quantity)
	if err != nil {
		return nil, err
	}
	res.ProfitLoss = &pl
	return res, nil
}

// ComputeTargetPrice finds the sell price whose after-tax profit equals
// targetPct percent of the total buy cost.
func (c *Calculator) ComputeTargetPrice(buyPrice, quantity, targetPct decimal.Decimal) (*model.TargetPriceResult, error) {
	if !targetPct.IsPositive() {
		return nil, model.InvalidInput("target_pct", "must be positive, got %s", targetPct)
	}
	be, err := c.ComputeBreakEven(buyPrice, quantity)
	if err != nil {
		return nil, err
	}

	target := be.TotalCost.Mul(targetPct).Div(hundred)
	value, _, err := c.solveSellValue(func(t fees.Tier) decimal.Decimal {
		// Gross profit must cover the tax levied on itself.
		return be.TotalCost.Add(target.Div(one.Sub(t.CapitalGainsRate)))
	})
	if err != nil {
		return nil, err
	}
	price := value.Div(quantity).RoundCeil(priceScale)
	outcome, err := c.profitLoss(be.TotalCost, price, quantity)
	if err != nil {
		return nil, err
	}

	return &model.TargetPriceResult{
		BreakEven:           *be,
		TargetReturnPct:     targetPct,
		TargetProfit:        target,
		TargetSellPrice:     price,
		PriceAboveBreakEven: price.Sub(be.BreakEvenPrice),
		Outcome:             outcome,
	}, nil
}

// ComparePosition reviews a held position at the current market price.
func (c *Calculator) ComparePosition(buyPrice, quantity, currentPrice decimal.Decimal) (*model.PositionReview, error) {
	res, err := c.ComputeProfitLoss(buyPrice, quantity, currentPrice)
	if err != nil {
		return nil, err
	}
	pl := *res.ProfitLoss

	status := model.PositionLoss
	if currentPrice.GreaterThanOrEqual(res.BreakEvenPrice) {
		status = model.PositionProfitable
	}
	ret := pl.ReturnPct.InexactFloat64()

	var advice string
	switch {
	case status == model.PositionProfitable && ret >= 20:
		advice = "Consider taking profits - strong gains achieved"
	case status == model.PositionProfitable && ret >= 10:
		advice = "Moderate profits - hold for further gains or take profits"
	case status == model.PositionProfitable:
		advice = "Slightly above break-even - hold for better returns"
	case ret <= -20:
		advice = "Significant loss - evaluate if fundamentals support recovery"
	case ret <= -10:
		advice = "Moderate loss - hold if fundamentals are strong"
	default:
		advice = "Small loss - near break-even, consider holding"
	}

	return &model.PositionReview{
		BreakEven:        *res,
		CurrentPrice:     currentPrice,
		PriceToBreakEven: currentPrice.Sub(res.BreakEvenPrice),
		ProfitLoss:       pl,
		Status:           status,
		Advice:           advice,
	}, nil
}

func (c *Calculator) profitLoss(totalCost, sellPrice, quantity decimal.Decimal) (model.ProfitLoss, error) {
	sell, err := c.schedule.Fees(model.Transaction{Price: sellPrice, Quantity: quantity, Side: model.SideSell})
	if err != nil {
		return model.ProfitLoss{}, err
	}
	tier, err := c.schedule.SelectTier(sell.GrossValue)
	if err != nil {
		return model.ProfitLoss{}, err
	}

	net := sell.GrossValue.Sub(sell.TotalFeeAmount)
	pre := net.Sub(totalCost)
	tax := c.schedule.CapitalGainsTax(tier, pre)
	profit := pre.Sub(tax)

	return model.ProfitLoss{
		SellPrice:           sellPrice,
		SellFees:            sell,
		NetProceeds:         net,
		PreTaxProfit:        pre,
		CapitalGainsTaxPaid: tax,
		ProfitOrLoss:        profit,
		ReturnPct:           profit.Div(totalCost).Mul(hundred),
	}, nil
}

func (c *Calculator) preTaxProfit(totalCost, sellPrice, quantity decimal.Decimal) (decimal.Decimal, error) {
	sell, err := c.schedule.Fees(model.Transaction{Price: sellPrice, Quantity: quantity, Side: model.SideSell})
	if err != nil {
		return decimal.Zero, err
	}
	return sell.GrossValue.Sub(sell.TotalFeeAmount).Sub(totalCost), nil
}

func validatePosition(buyPrice, quantity decimal.Decimal) error {
	if !buyPrice.IsPositive() {
		return model.InvalidInput("buy_price", "must be positive, got %s", buyPrice)
	}
	if !quantity.IsPositive() {
		return model.InvalidInput("quantity", "must be positive, got %s", quantity)
	}
	return nil
}
