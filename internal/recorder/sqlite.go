package recorder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"SignalReplay/internal/backtest"
	"SignalReplay/internal/report"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// DefaultListLimit caps ListRuns when the caller passes a non-positive limit.
const DefaultListLimit = 20

// SQLiteRecorder persists runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so the API can read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS backtest_runs (
			id                    TEXT PRIMARY KEY,
			symbol                TEXT NOT NULL,
			signal_source         TEXT,
			data_provider         TEXT,
			started_at            INTEGER NOT NULL,
			duration_ns           INTEGER,
			initial_capital       REAL,
			fee_rate              REAL,
			samples               INTEGER,
			empty                 INTEGER NOT NULL DEFAULT 0,
			total_return_pct      REAL,
			annualized_return_pct REAL,
			volatility_pct        REAL,
			sharpe_ratio          REAL,
			max_drawdown_pct      REAL,
			num_trades            INTEGER,
			final_value           REAL,
			round_trips           INTEGER,
			win_rate_pct          REAL,
			benchmark_return_pct  REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_ts ON backtest_runs(symbol, started_at)`,

		`CREATE TABLE IF NOT EXISTS backtest_trades (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL REFERENCES backtest_runs(id),
			timestamp INTEGER NOT NULL,
			action    TEXT NOT NULL,
			shares    INTEGER,
			price     REAL,
			amount    REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON backtest_trades(run_id)`,

		`CREATE TABLE IF NOT EXISTS equity_samples (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL REFERENCES backtest_runs(id),
			timestamp       INTEGER NOT NULL,
			portfolio_value REAL,
			position        INTEGER,
			cash            REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equity_run ON equity_samples(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun writes the run, its trades and its equity curve in one
// transaction.
func (r *SQLiteRecorder) RecordRun(ctx context.Context, rep *report.Report) error {
	if rep == nil || rep.Result == nil {
		return fmt.Errorf("record run: nil report")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	s := rep.Summary()
	m := s.Metrics
	if m == nil {
		m = &backtest.Metrics{}
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO backtest_runs
		(id, symbol, signal_source, data_provider, started_at, duration_ns,
		 initial_capital, fee_rate, samples, empty,
		 total_return_pct, annualized_return_pct, volatility_pct, sharpe_ratio,
		 max_drawdown_pct, num_trades, final_value, round_trips, win_rate_pct,
		 benchmark_return_pct)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		s.RunID, s.Symbol, s.Source, s.Provider, s.StartedAt.UnixNano(), int64(s.Duration),
		s.InitialCapital, s.FeeRate, s.Samples, boolInt(s.Empty),
		m.TotalReturnPct, m.AnnualizedReturnPct, m.VolatilityPct, m.SharpeRatio,
		m.MaxDrawdownPct, m.NumTrades, m.FinalValue, m.RoundTrips, m.WinRatePct,
		m.BenchmarkReturnPct,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, t := range rep.Result.Trades {
		if _, err := tx.ExecContext(ctx, `INSERT INTO backtest_trades
			(run_id, timestamp, action, shares, price, amount) VALUES (?,?,?,?,?,?)`,
			s.RunID, t.Time.UnixNano(), string(t.Action), t.Shares, t.Price, t.Amount,
		); err != nil {
			return fmt.Errorf("insert trade: %w", err)
		}
	}
	for _, e := range rep.Result.Equity {
		if _, err := tx.ExecContext(ctx, `INSERT INTO equity_samples
			(run_id, timestamp, portfolio_value, position, cash) VALUES (?,?,?,?,?)`,
			s.RunID, e.Time.UnixNano(), e.Value, e.Position, e.Cash,
		); err != nil {
			return fmt.Errorf("insert equity sample: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	r.log.Debug().Str("run_id", s.RunID).Str("symbol", s.Symbol).
		Int("trades", len(rep.Result.Trades)).Int("samples", s.Samples).Msg("run recorded")
	return nil
}

const summaryColumns = `id, symbol, signal_source, data_provider, started_at, duration_ns,
	initial_capital, fee_rate, samples, empty,
	total_return_pct, annualized_return_pct, volatility_pct, sharpe_ratio,
	max_drawdown_pct, num_trades, final_value, round_trips, win_rate_pct,
	benchmark_return_pct`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (*report.Summary, error) {
	var (
		s                  report.Summary
		startedAt, durNano int64
		m                  backtest.Metrics
	)
	err := row.Scan(&s.RunID, &s.Symbol, &s.Source, &s.Provider, &startedAt, &durNano,
		&s.InitialCapital, &s.FeeRate, &s.Samples, &s.Empty,
		&m.TotalReturnPct, &m.AnnualizedReturnPct, &m.VolatilityPct, &m.SharpeRatio,
		&m.MaxDrawdownPct, &m.NumTrades, &m.FinalValue, &m.RoundTrips, &m.WinRatePct,
		&m.BenchmarkReturnPct)
	if err != nil {
		return nil, err
	}
	s.StartedAt = time.Unix(0, startedAt).UTC()
	s.Duration = time.Duration(durNano)
	if !s.Empty {
		m.Samples = s.Samples
		s.Metrics = &m
	}
	return &s, nil
}

func (r *SQLiteRecorder) LatestRun(ctx context.Context, symbol string) (*report.Summary, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM backtest_runs
		WHERE symbol = ? ORDER BY started_at DESC LIMIT 1`, strings.ToUpper(symbol))
	s, err := scanSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest run: %w", err)
	}
	return s, nil
}

func (r *SQLiteRecorder) ListRuns(ctx context.Context, limit int) ([]report.Summary, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := r.db.QueryContext(ctx, `SELECT `+summaryColumns+` FROM backtest_runs
		ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []report.Summary
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
