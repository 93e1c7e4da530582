package collector

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"CSEAnalyzer/internal/model"
)

// CSVFetcher reads closing prices from local CSV exports. A symbol's file is
// taken from Paths, falling back to <Dir>/<symbol>.csv.
type CSVFetcher struct {
	Dir   string
	Paths map[string]string
}

// NewCSVFetcher creates a CSVFetcher that resolves the watchlist's price files.
func NewCSVFetcher(dir string, wl *Watchlist) *CSVFetcher {
	f := &CSVFetcher{Dir: dir, Paths: map[string]string{}}
	if wl != nil {
		for _, e := range wl.Symbols {
			if e.PriceFile != "" {
				f.Paths[e.Symbol] = e.PriceFile
			}
		}
	}
	return f
}

func (f *CSVFetcher) Name() string { return "csv" }

func (f *CSVFetcher) path(symbol string) string {
	if p, ok := f.Paths[symbol]; ok {
		return p
	}
	return filepath.Join(f.Dir, symbol+".csv")
}

// FetchHistory reads the close and, when present, volume columns of the
// symbol's CSV file.
func (f *CSVFetcher) FetchHistory(symbol string, days int) (model.PriceHistory, error) {
	path := f.path(symbol)
	file, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return model.PriceHistory{}, fmt.Errorf("%w for %s: %s not found", ErrNoPrices, symbol, path)
	}
	if err != nil {
		return model.PriceHistory{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	h, err := ParseHistory(file)
	if err != nil {
		return model.PriceHistory{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(h.Closes) == 0 {
		return model.PriceHistory{}, fmt.Errorf("%w for %s: %s is empty", ErrNoPrices, symbol, path)
	}
	return trim(h, days), nil
}

// trim keeps the most recent days points of h.
func trim(h model.PriceHistory, days int) model.PriceHistory {
	if days <= 0 || len(h.Closes) <= days {
		return h
	}
	h.Closes = h.Closes[len(h.Closes)-days:]
	if len(h.Volumes) > days {
		h.Volumes = h.Volumes[len(h.Volumes)-days:]
	}
	return h
}

// ParseHistory reads a price CSV. With a header row the "close" column is
// used, plus a "volume" column when there is one (rows are reordered oldest
// first when a "date" column shows them newest first). Without a header a
// single column is the close, two columns are date,close and wider rows
// follow date,open,high,low,close[,volume]. Volumes are dropped entirely
// when any priced row lacks one.
func ParseHistory(r io.Reader) (model.PriceHistory, error) {
	var h model.PriceHistory
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return h, err
	}
	if len(rows) == 0 {
		return h, nil
	}

	closeCol, dateCol, volCol := -1, -1, -1
	header := rows[0]
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "close", "close_price", "closing price", "last":
			closeCol = i
		case "date", "trade_date", "time":
			dateCol = i
		case "volume", "vol", "share volume", "shares traded":
			volCol = i
		}
	}
	if closeCol >= 0 {
		rows = rows[1:]
	} else {
		volCol = -1
		switch n := len(header); {
		case n == 1:
			closeCol = 0
		case n < 5:
			closeCol, dateCol = 1, 0
		default:
			closeCol, dateCol = 4, 0
			if n > 5 {
				volCol = 5
			}
		}
		if _, err := parsePrice(header[closeCol]); err != nil {
			return h, fmt.Errorf("header has no close column: %v", header)
		}
	}

	h.Closes = make([]float64, 0, len(rows))
	volumesOK := volCol >= 0
	for i, row := range rows {
		if len(row) <= closeCol || strings.TrimSpace(row[closeCol]) == "" {
			continue
		}
		v, err := parsePrice(row[closeCol])
		if err != nil {
			return h, fmt.Errorf("row %d: %w", i+1, err)
		}
		h.Closes = append(h.Closes, v)
		if !volumesOK {
			continue
		}
		if len(row) <= volCol {
			volumesOK = false
			continue
		}
		vol, err := parsePrice(row[volCol])
		if err != nil {
			volumesOK = false
			continue
		}
		h.Volumes = append(h.Volumes, vol)
	}
	if !volumesOK {
		h.Volumes = nil
	}

	if dateCol >= 0 && len(rows) > 1 && newestFirst(rows[0], rows[len(rows)-1], dateCol) {
		reverse(h.Closes)
		reverse(h.Volumes)
	}
	return h, nil
}

func reverse(s []float64) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}

func parsePrice(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q", s)
	}
	return v, nil
}

func newestFirst(first, last []string, col int) bool {
	if len(first) <= col || len(last) <= col {
		return false
	}
	a, errA := time.Parse("2006-01-02", strings.TrimSpace(first[col]))
	b, errB := time.Parse("2006-01-02", strings.TrimSpace(last[col]))
	return errA == nil && errB == nil && a.After(b)
}
