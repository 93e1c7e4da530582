package notifier

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"CSEAnalyzer/internal/model"
	"CSEAnalyzer/internal/recorder"
)

// AnalysisCSVHeader is the column order written by WriteAnalysisCSV.
var AnalysisCSVHeader = []string{
	"id", "symbol", "company_name", "created_at", "price",
	"fundamental_score", "technical_score", "risk_score", "weighted_total",
	"verdict", "confidence", "fundamental_available", "technical_available",
	"risk_level", "key_strengths", "key_concerns", "action_items",
}

// WriteAnalysisCSV flattens each analysis into one row with a header.
func WriteAnalysisCSV(w io.Writer, analyses []*model.Analysis) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AnalysisCSVHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, a := range analyses {
		rec := a.Recommendation
		row := []string{
			a.ID,
			a.Symbol,
			a.CompanyName,
			a.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			ftoa(a.Price),
			ftoa(rec.FundamentalScore),
			ftoa(rec.TechnicalScore),
			ftoa(rec.RiskScore),
			ftoa(rec.WeightedTotal),
			string(rec.Verdict),
			string(rec.Confidence),
			strconv.FormatBool(a.FundamentalAvailable),
			strconv.FormatBool(a.TechnicalAvailable),
			a.Risk.Level,
			strings.Join(a.KeyStrengths, "; "),
			strings.Join(a.KeyConcerns, "; "),
			strings.Join(rec.ActionItems, "; "),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write %s: %w", a.Symbol, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHistoryCSV writes history summaries with a header row.
func WriteHistoryCSV(w io.Writer, rows []recorder.Summary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{
		"id", "created_at", "symbol", "company_name", "price",
		"fundamental_score", "technical_score", "risk_score", "weighted_total",
		"verdict", "confidence",
	}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{
			r.ID,
			r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			r.Symbol,
			r.CompanyName,
			ftoa(r.Price),
			ftoa(r.Fundamental),
			ftoa(r.Technical),
			ftoa(r.Risk),
			ftoa(r.WeightedTotal),
			string(r.Verdict),
			string(r.Confidence),
		}); err != nil {
			return fmt.Errorf("write %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
