package notifier

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"CSEAnalyzer/internal/fees"
	"CSEAnalyzer/internal/model"
	"CSEAnalyzer/internal/recorder"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

const rule = "────────────────────────\n"

// money renders a rupee amount with thousands separators.
func money(d decimal.Decimal) string {
	return "Rs. " + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

func pct(d decimal.Decimal) string {
	return d.Mul(decimal.NewFromInt(100)).StringFixed(3) + "%"
}

// FormatFeeBreakdown lists each fee component of a transaction.
func FormatFeeBreakdown(fb model.FeeBreakdown) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s fees | %s\n", fb.Side, fb.TierLabel)
	b.WriteString(rule)
	fmt.Fprintf(&b, "Gross value:     %s\n", money(fb.GrossValue))
	for _, name := range model.FeeComponentOrder {
		if fee, ok := fb.ComponentFees[name]; ok {
			fmt.Fprintf(&b, "  %-14s %s\n", strings.ToUpper(name)+":", money(fee))
		}
	}
	fmt.Fprintf(&b, "Total fees:      %s (%s)\n", money(fb.TotalFeeAmount), pct(fb.TotalFeeRate))
	return b.String()
}

// FormatRoundTrip renders a buy-then-sell of the same quantity.
func FormatRoundTrip(rt fees.RoundTrip) string {
	var b strings.Builder
	b.WriteString(FormatFeeBreakdown(rt.BuyFees))
	b.WriteString("\n")
	b.WriteString(FormatFeeBreakdown(rt.SellFees))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Total cost:      %s\n", money(rt.TotalCost))
	fmt.Fprintf(&b, "Net proceeds:    %s\n", money(rt.NetProceeds))
	fmt.Fprintf(&b, "Total fees:      %s (%s%% of buy value)\n", money(rt.TotalFees), rt.CostPct.StringFixed(3))
	fmt.Fprintf(&b, "Gross profit:    %s\n", money(rt.GrossProfit))
	fmt.Fprintf(&b, "Capital gains:   %s\n", money(rt.CapitalGainsTax))
	fmt.Fprintf(&b, "Net profit:      %s\n", money(rt.NetProfit))
	return b.String()
}

// FormatSchedule lists every tier with its value band, per-side rates and
// capital gains rate.
func FormatSchedule(s *fees.Schedule) string {
	rate := func(d decimal.Decimal) string {
		return d.Mul(decimal.NewFromInt(100)).StringFixed(4) + "%"
	}
	var b strings.Builder
	b.WriteString("Fee schedule\n")
	b.WriteString(rule)
	lower := decimal.Zero
	for _, t := range s.Tiers() {
		band := "above " + money(lower)
		if !t.Unbounded() {
			band = fmt.Sprintf("%s to %s", money(lower), money(*t.MaxValue))
			lower = *t.MaxValue
		}
		fmt.Fprintf(&b, "%s | %s\n", t.Label, band)
		fmt.Fprintf(&b, "  %-5s %-9s %-9s %-9s %-9s %-9s %s\n", "Side", "Broker", "SEC", "CSE", "CDS", "STL", "Total")
		for _, side := range []model.Side{model.SideBuy, model.SideSell} {
			r := s.RatesFor(t, side)
			fmt.Fprintf(&b, "  %-5s %-9s %-9s %-9s %-9s %-9s %s\n", side,
				rate(r.Broker), rate(r.SEC), rate(r.CSE), rate(r.CDS), rate(r.STL), rate(r.Total()))
		}
		fmt.Fprintf(&b, "  Capital gains tax: %s\n", rate(t.CapitalGainsRate))
	}
	if floor := s.MinimumCommission(); floor.IsPositive() {
		fmt.Fprintf(&b, "Minimum commission: %s\n", money(floor))
	} else {
		b.WriteString("Minimum commission: none\n")
	}
	return b.String()
}

// FormatBreakEven renders a break-even result and, when present, the
// outcome at the supplied sell price.
func FormatBreakEven(r *model.BreakEvenResult) string {
	var b strings.Builder
	b.WriteString("Break-even analysis\n")
	b.WriteString(rule)
	fmt.Fprintf(&b, "Buy:             %s x %s\n", r.Quantity.String(), money(r.BuyPrice))
	fmt.Fprintf(&b, "Buy fees:        %s (%s)\n", money(r.BuyFees.TotalFeeAmount), pct(r.BuyFees.TotalFeeRate))
	fmt.Fprintf(&b, "Total cost:      %s\n", money(r.TotalCost))
	fmt.Fprintf(&b, "Break-even:      %s (%+.2f%%)\n", money(r.BreakEvenPrice), r.BreakEvenRateOfReturn.InexactFloat64()*100)
	if pl := r.ProfitLoss; pl != nil {
		b.WriteString(formatProfitLoss(*pl))
	}
	return b.String()
}

func formatProfitLoss(pl model.ProfitLoss) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\nSell at %s\n", money(pl.SellPrice))
	fmt.Fprintf(&b, "Sell fees:       %s (%s)\n", money(pl.SellFees.TotalFeeAmount), pct(pl.SellFees.TotalFeeRate))
	fmt.Fprintf(&b, "Net proceeds:    %s\n", money(pl.NetProceeds))
	fmt.Fprintf(&b, "Pre-tax profit:  %s\n", money(pl.PreTaxProfit))
	fmt.Fprintf(&b, "Capital gains:   %s\n", money(pl.CapitalGainsTaxPaid))
	fmt.Fprintf(&b, "Profit/loss:     %s (%+.2f%%)\n", money(pl.ProfitOrLoss), pl.ReturnPct.InexactFloat64())
	return b.String()
}

// FormatTargetPrice renders the sell price needed for a target return.
func FormatTargetPrice(r *model.TargetPriceResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target %s%% after fees and tax\n", r.TargetReturnPct.String())
	b.WriteString(rule)
	fmt.Fprintf(&b, "Total cost:      %s\n", money(r.BreakEven.TotalCost))
	fmt.Fprintf(&b, "Break-even:      %s\n", money(r.BreakEven.BreakEvenPrice))
	fmt.Fprintf(&b, "Target price:    %s (+%s over break-even)\n", money(r.TargetSellPrice), money(r.PriceAboveBreakEven))
	fmt.Fprintf(&b, "Target profit:   %s\n", money(r.TargetProfit))
	b.WriteString(formatProfitLoss(r.Outcome))
	return b.String()
}

// FormatPosition renders a held-position review.
func FormatPosition(r *model.PositionReview) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Position: %s\n", r.Status)
	b.WriteString(rule)
	fmt.Fprintf(&b, "Current price:   %s\n", money(r.CurrentPrice))
	fmt.Fprintf(&b, "Break-even:      %s (%s away)\n", money(r.BreakEven.BreakEvenPrice), money(r.PriceToBreakEven))
	fmt.Fprintf(&b, "Profit/loss:     %s (%+.2f%%)\n", money(r.ProfitLoss.ProfitOrLoss), r.ProfitLoss.ReturnPct.InexactFloat64())
	fmt.Fprintf(&b, "Advice:          %s\n", r.Advice)
	return b.String()
}

// FormatFundamental lists each rated ratio and the aggregate.
func FormatFundamental(fs *model.FundamentalScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Fundamental score: %.1f/100\n", fs.Score)
	for _, m := range fs.Metrics {
		fmt.Fprintf(&b, "  %-16s %10.2f  %-9s x%.2f", m.Metric, m.Value, m.Rating, m.Weight)
		if m.Note != "" {
			fmt.Fprintf(&b, "  (%s)", m.Note)
		}
		b.WriteString("\n")
	}
	if len(fs.Omitted) > 0 {
		omitted := make([]string, len(fs.Omitted))
		for i, id := range fs.Omitted {
			omitted[i] = string(id)
		}
		fmt.Fprintf(&b, "  not computed: %s\n", strings.Join(omitted, ", "))
	}
	return b.String()
}

// FormatTechnical lists each indicator, its signal and secondary values.
func FormatTechnical(ts *model.TechnicalScore) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Technical score: %.1f/100 (%d points, last %.2f)\n", ts.Score, ts.Points, ts.LastPrice)
	for _, ind := range ts.Indicators {
		fmt.Fprintf(&b, "  %-16s %10.2f  %-8s", ind.Indicator, ind.Value, ind.Signal)
		if len(ind.Values) > 0 {
			keys := make([]string, 0, len(ind.Values))
			for k := range ind.Values {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			parts := make([]string, len(keys))
			for i, k := range keys {
				parts[i] = fmt.Sprintf("%s=%.2f", k, ind.Values[k])
			}
			fmt.Fprintf(&b, " [%s]", strings.Join(parts, " "))
		}
		if ind.Detail != "" {
			fmt.Fprintf(&b, " %s", ind.Detail)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// FormatAnalysis renders a complete analysis report.
func FormatAnalysis(a *model.Analysis) string {
	var b strings.Builder
	title := a.Symbol
	if a.CompanyName != "" {
		title += " - " + a.CompanyName
	}
	fmt.Fprintf(&b, "%s | %s\n", title, a.CreatedAt.Local().Format("2006-01-02 15:04"))
	b.WriteString(rule)
	if a.Price > 0 {
		fmt.Fprintf(&b, "Price: %.2f\n", a.Price)
	}

	rec := a.Recommendation
	fmt.Fprintf(&b, "Verdict: %s (confidence %s)\n", rec.Verdict, rec.Confidence)
	fmt.Fprintf(&b, "Weighted total: %.1f  [fundamental %.1f | technical %.1f | risk %.1f, spread %.1f]\n",
		rec.WeightedTotal, rec.FundamentalScore, rec.TechnicalScore, rec.RiskScore, rec.Spread)
	if !a.FundamentalAvailable {
		b.WriteString("  fundamentals unavailable, scored neutral\n")
	}
	if !a.TechnicalAvailable {
		b.WriteString("  price history unavailable, scored neutral\n")
	}

	if a.Fundamental != nil {
		b.WriteString("\n" + FormatFundamental(a.Fundamental))
	}
	if a.Technical != nil {
		b.WriteString("\n" + FormatTechnical(a.Technical))
	}

	fmt.Fprintf(&b, "\nRisk: %.1f %s", a.Risk.Score, a.Risk.Level)
	if a.Risk.Supplied {
		b.WriteString(" (supplied)")
	}
	b.WriteString("\n")
	for _, f := range a.Risk.Factors {
		fmt.Fprintf(&b, "  %-12s %.2f -> %.0f %s\n", f.Name, f.Value, f.Score, f.Note)
	}

	writeList(&b, "Strengths", a.KeyStrengths)
	writeList(&b, "Concerns", a.KeyConcerns)
	writeList(&b, "Actions", rec.ActionItems)
	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(b, "  - %s\n", it)
	}
}

// FormatEntry renders an entry suggestion.
func FormatEntry(s model.EntrySuggestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entry plan for %s (%s, total %.1f)\n", s.Symbol, s.Verdict, s.WeightedTotal)
	fmt.Fprintf(&b, "  current %.2f | ideal %.2f | max %.2f\n", s.CurrentPrice, s.IdealEntry, s.MaxEntry)
	fmt.Fprintf(&b, "  exit for %.1f%%: %.2f\n", s.TargetReturnPct, s.TargetExitPrice)
	fmt.Fprintf(&b, "  %s\n", s.Note)
	return b.String()
}

// FormatDigest summarises a batch run for the watchlist notification.
func FormatDigest(at time.Time, results []*model.Analysis, failures map[string]error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CSE watchlist | %s\n", at.Local().Format("2006-01-02 15:04"))
	b.WriteString(rule)
	for _, a := range results {
		rec := a.Recommendation
		fmt.Fprintf(&b, "%-12s %-11s %5.1f  %s\n", a.Symbol, rec.Verdict, rec.WeightedTotal, rec.Confidence)
	}
	if len(failures) > 0 {
		symbols := make([]string, 0, len(failures))
		for s := range failures {
			symbols = append(symbols, s)
		}
		sort.Strings(symbols)
		b.WriteString("\nFailed:\n")
		for _, s := range symbols {
			fmt.Fprintf(&b, "  %s: %v\n", s, failures[s])
		}
	}
	if len(results) == 0 && len(failures) == 0 {
		b.WriteString("Watchlist is empty\n")
	}
	return b.String()
}

// FormatHistory renders history summaries, newest first.
func FormatHistory(rows []recorder.Summary) string {
	if len(rows) == 0 {
		return "No analyses recorded\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-36s  %-16s  %-12s %8s %6s  %-11s %s\n", "ID", "TIME", "SYMBOL", "PRICE", "TOTAL", "VERDICT", "CONFIDENCE")
	for _, r := range rows {
		fmt.Fprintf(&b, "%-36s  %-16s  %-12s %8.2f %6.1f  %-11s %s\n",
			r.ID, r.CreatedAt.Local().Format("2006-01-02 15:04"), r.Symbol, r.Price, r.WeightedTotal, r.Verdict, r.Confidence)
	}
	return b.String()
}
