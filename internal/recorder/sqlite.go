package recorder

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"CSEAnalyzer/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists analysis history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode lets the CLI read history while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analyses (
			id                    TEXT PRIMARY KEY,
			timestamp             INTEGER NOT NULL,
			symbol                TEXT,
			company_name          TEXT,
			price                 REAL,
			fundamental_score     REAL,
			fundamental_available INTEGER,
			technical_score       REAL,
			technical_available   INTEGER,
			risk_score            REAL,
			weighted_total        REAL,
			verdict               TEXT,
			confidence            TEXT,
			full_result           TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_ts ON analyses(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_analyses_symbol ON analyses(symbol, timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAnalysis(a *model.Analysis) (string, error) {
	if a == nil {
		return "", model.InvalidInput("analysis", "nil analysis")
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := a.Recommendation
	_, err = r.db.Exec(`INSERT INTO analyses
		(id, timestamp, symbol, company_name, price,
		 fundamental_score, fundamental_available, technical_score, technical_available,
		 risk_score, weighted_total, verdict, confidence, full_result)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.CreatedAt.UnixMilli(), a.Symbol, a.CompanyName, a.Price,
		rec.FundamentalScore, a.FundamentalAvailable, rec.TechnicalScore, a.TechnicalAvailable,
		rec.RiskScore, rec.WeightedTotal, string(rec.Verdict), string(rec.Confidence), string(payload),
	)
	if err != nil {
		return "", fmt.Errorf("insert analysis: %w", err)
	}
	r.log.Debug().Str("id", a.ID).Str("symbol", a.Symbol).Msg("analysis recorded")
	return a.ID, nil
}

func (r *SQLiteRecorder) History(symbol string, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, timestamp, symbol, company_name, price,
		fundamental_score, technical_score, risk_score, weighted_total, verdict, confidence
		FROM analyses`
	args := []any{}
	if symbol != "" {
		query += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	query += ` ORDER BY timestamp DESC, rowid DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var s Summary
		var ts int64
		var verdict, confidence string
		if err := rows.Scan(&s.ID, &ts, &s.Symbol, &s.CompanyName, &s.Price,
			&s.Fundamental, &s.Technical, &s.Risk, &s.WeightedTotal, &verdict, &confidence); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		s.CreatedAt = time.UnixMilli(ts).UTC()
		s.Verdict = model.Verdict(verdict)
		s.Confidence = model.Confidence(confidence)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Analysis(id string) (*model.Analysis, error) {
	var payload string
	err := r.db.QueryRow(`SELECT full_result FROM analyses WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	a := &model.Analysis{}
	if err := json.Unmarshal([]byte(payload), a); err != nil {
		return nil, fmt.Errorf("decode analysis %s: %w", id, err)
	}
	return a, nil
}

func (r *SQLiteRecorder) Prune(before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, err := r.db.Exec(`DELETE FROM analyses WHERE timestamp < ?`, before.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune analyses: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.log.Info().Int64("deleted", n).Time("before", before).Msg("pruned analysis history")
	}
	return n, nil
}

func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}
