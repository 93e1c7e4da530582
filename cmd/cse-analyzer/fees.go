package main

import (
	"strings"

	"CSEAnalyzer/internal/model"
	"CSEAnalyzer/internal/notifier"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// addFeeCommands adds the fee and break-even commands.
func addFeeCommands(root *cobra.Command, app *App) {
	root.AddCommand(newFeesCmd(app))
	root.AddCommand(newBreakEvenCmd(app))
	root.AddCommand(newProfitCmd(app))
	root.AddCommand(newTargetCmd(app))
	root.AddCommand(newPositionCmd(app))
}

func newFeesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fees",
		Short: "Fee breakdown for a transaction or a round trip",
		Example: `  cse-analyzer fees --price 50 --qty 100
  cse-analyzer fees --price 50 --qty 100 --side sell
  cse-analyzer fees --price 50 --qty 100 --sell 60
  cse-analyzer fees schedule`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, qty, err := positionFlags(cmd)
			if err != nil {
				return err
			}
			calc, err := app.calculator()
			if err != nil {
				return err
			}
			schedule := calc.Schedule()

			if cmd.Flags().Changed("sell") {
				sell, err := decimalFlag(cmd, "sell")
				if err != nil {
					return err
				}
				rt, err := schedule.RoundTrip(price, sell, qty)
				if err != nil {
					return err
				}
				return app.print(cmd, rt, notifier.FormatRoundTrip(rt))
			}

			sideFlag, _ := cmd.Flags().GetString("side")
			var side model.Side
			switch strings.ToLower(sideFlag) {
			case "buy":
				side = model.SideBuy
			case "sell":
				side = model.SideSell
			default:
				return model.InvalidInput("side", "must be buy or sell, got %q", sideFlag)
			}
			fb, err := schedule.Fees(model.Transaction{Price: price, Quantity: qty, Side: side})
			if err != nil {
				return err
			}
			return app.print(cmd, fb, notifier.FormatFeeBreakdown(fb))
		},
	}
	addPositionFlags(cmd)
	cmd.Flags().String("side", "buy", "transaction side: buy or sell")
	cmd.Flags().String("sell", "", "sell price; prints the full round trip")
	cmd.AddCommand(newScheduleCmd(app))
	return cmd
}

func newScheduleCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Print the configured fee tiers and rates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schedule, err := app.Config.FeeSchedule()
			if err != nil {
				return err
			}
			return app.print(cmd, schedule, notifier.FormatSchedule(schedule))
		},
	}
}

func newBreakEvenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "breakeven",
		Short:   "Lowest sell price that recovers the buy cost and all sell fees",
		Example: `  cse-analyzer breakeven --price 50 --qty 100`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, qty, err := positionFlags(cmd)
			if err != nil {
				return err
			}
			calc, err := app.calculator()
			if err != nil {
				return err
			}
			r, err := calc.ComputeBreakEven(price, qty)
			if err != nil {
				return err
			}
			return app.print(cmd, r, notifier.FormatBreakEven(r))
		},
	}
	addPositionFlags(cmd)
	return cmd
}

func newProfitCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profit",
		Short:   "Net profit or loss after fees and capital gains tax",
		Example: `  cse-analyzer profit --price 50 --qty 100 --sell 60`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, qty, err := positionFlags(cmd)
			if err != nil {
				return err
			}
			sell, err := decimalFlag(cmd, "sell")
			if err != nil {
				return err
			}
			calc, err := app.calculator()
			if err != nil {
				return err
			}
			r, err := calc.ComputeProfitLoss(price, qty, sell)
			if err != nil {
				return err
			}
			return app.print(cmd, r, notifier.FormatBreakEven(r))
		},
	}
	addPositionFlags(cmd)
	cmd.Flags().String("sell", "", "sell price")
	_ = cmd.MarkFlagRequired("sell")
	return cmd
}

func newTargetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "target",
		Short:   "Sell price that yields a target return after fees and tax",
		Example: `  cse-analyzer target --price 50 --qty 100 --pct 10`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, qty, err := positionFlags(cmd)
			if err != nil {
				return err
			}
			pct, err := decimalFlag(cmd, "pct")
			if err != nil {
				return err
			}
			calc, err := app.calculator()
			if err != nil {
				return err
			}
			r, err := calc.ComputeTargetPrice(price, qty, pct)
			if err != nil {
				return err
			}
			return app.print(cmd, r, notifier.FormatTargetPrice(r))
		},
	}
	addPositionFlags(cmd)
	cmd.Flags().String("pct", "10", "target return on total cost, in percent")
	return cmd
}

func newPositionCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "position",
		Short:   "Review a held position against the current price",
		Example: `  cse-analyzer position --price 50 --qty 100 --current 45`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, qty, err := positionFlags(cmd)
			if err != nil {
				return err
			}
			current, err := decimalFlag(cmd, "current")
			if err != nil {
				return err
			}
			calc, err := app.calculator()
			if err != nil {
				return err
			}
			r, err := calc.ComparePosition(price, qty, current)
			if err != nil {
				return err
			}
			return app.print(cmd, r, notifier.FormatPosition(r))
		},
	}
	addPositionFlags(cmd)
	cmd.Flags().String("current", "", "current market price")
	_ = cmd.MarkFlagRequired("current")
	return cmd
}

func addPositionFlags(cmd *cobra.Command) {
	cmd.Flags().String("price", "", "buy price per share")
	cmd.Flags().String("qty", "", "number of shares")
	_ = cmd.MarkFlagRequired("price")
	_ = cmd.MarkFlagRequired("qty")
}

func positionFlags(cmd *cobra.Command) (price, qty decimal.Decimal, err error) {
	if price, err = decimalFlag(cmd, "price"); err != nil {
		return
	}
	qty, err = decimalFlag(cmd, "qty")
	return
}

// decimalFlag parses a string flag exactly, so prices keep their decimal digits.
func decimalFlag(cmd *cobra.Command, name string) (decimal.Decimal, error) {
	raw, _ := cmd.Flags().GetString(name)
	d, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
	if err != nil {
		return decimal.Zero, model.InvalidInput(name, "not a number: %q", raw)
	}
	return d, nil
}
