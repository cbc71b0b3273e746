package storage

// sqlite.go — histórico de runs de descubrimiento, ligero y sin ruido.
//
// Estrategia:
//   - `runs`: resumen por ciclo (conteos por etapa, best score). Siempre 1 fila.
//   - `strategies`: UNA fila por estrategia del shortlist (UPSERT). Solo lo que
//     superó la selección se persiste — los descartes no aportan como histórico.
//   - `peak_score` conserva el mejor score que la estrategia alcanzó en
//     cualquier run; `first_seen` no se sobreescribe en conflicto.
//   - Prune automático al arrancar: runs > 90d, strategies no vistas en 30d.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vandanchopra/MathematricksQ-sub000/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Resumen ligero por run de descubrimiento
CREATE TABLE IF NOT EXISTS runs (
    id         TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    generated  INTEGER  NOT NULL DEFAULT 0,
    evaluated  INTEGER  NOT NULL DEFAULT 0,
    selected   INTEGER  NOT NULL DEFAULT 0,
    optimized  INTEGER  NOT NULL DEFAULT 0,
    best_score REAL     NOT NULL DEFAULT 0
);

-- Una fila por estrategia del shortlist, sin duplicados
CREATE TABLE IF NOT EXISTS strategies (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    description   TEXT,
    score         REAL    NOT NULL DEFAULT 0,
    cagr          REAL    NOT NULL DEFAULT 0,
    sharpe        REAL    NOT NULL DEFAULT 0,
    max_drawdown  REAL    NOT NULL DEFAULT 0,
    win_rate      REAL    NOT NULL DEFAULT 0,
    profit_factor REAL    NOT NULL DEFAULT 0,
    total_trades  INTEGER NOT NULL DEFAULT 0,
    is_optimized  INTEGER NOT NULL DEFAULT 0,
    analysis      TEXT,
    first_seen    DATETIME NOT NULL,
    last_seen     DATETIME NOT NULL,
    peak_score    REAL    NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_at    ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_strat_last ON strategies(last_seen DESC);
CREATE INDEX IF NOT EXISTS idx_strat_peak ON strategies(peak_score DESC);
`

const (
	retentionRuns       = 90 * 24 * time.Hour // runs: 90 días
	retentionStrategies = 30 * 24 * time.Hour // estrategias: 30 días sin aparecer
)

// SQLiteStorage implementa ports.RunStorage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia datos antiguos.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background())
	return s, nil
}

// SaveRun persiste el resumen del run y hace upsert del shortlist
// (las optimizadas si las hay, las seleccionadas si no).
func (s *SQLiteStorage) SaveRun(ctx context.Context, result domain.DiscoveryResult) error {
	now := time.Now().UTC()

	// 1. Resumen del run — siempre una fila, pesa ~60 bytes
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, generated, evaluated, selected, optimized, best_score)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.StartedAt.UTC(),
		len(result.Generated), len(result.Evaluated),
		len(result.Selected), len(result.Optimized),
		result.BestScore(),
	); err != nil {
		return fmt.Errorf("storage.SaveRun: insert run: %w", err)
	}

	shortlist := result.Shortlist()
	if len(shortlist) == 0 {
		return nil // run en seco — solo queda el resumen
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO strategies
			(id, name, description, score, cagr, sharpe, max_drawdown, win_rate,
			 profit_factor, total_trades, is_optimized, analysis,
			 first_seen, last_seen, peak_score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name          = excluded.name,
			description   = excluded.description,
			score         = excluded.score,
			cagr          = excluded.cagr,
			sharpe        = excluded.sharpe,
			max_drawdown  = excluded.max_drawdown,
			win_rate      = excluded.win_rate,
			profit_factor = excluded.profit_factor,
			total_trades  = excluded.total_trades,
			is_optimized  = excluded.is_optimized,
			analysis      = excluded.analysis,
			last_seen     = excluded.last_seen,
			peak_score    = MAX(peak_score, excluded.score)
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveRun: prepare: %w", err)
	}
	defer stmt.Close()

	for _, strat := range shortlist {
		m := strat.EffectiveMetrics()
		opt := 0
		if strat.IsOptimized {
			opt = 1
		}

		if _, err := stmt.ExecContext(ctx,
			strat.ID,
			strat.Name,
			strat.Description,
			strat.Score,
			m.CAGR,
			m.SharpeRatio,
			m.MaxDrawdown,
			m.WinRate,
			m.ProfitFactor,
			m.TotalTrades,
			opt,
			strat.Analysis,
			now, // first_seen: ignorado en ON CONFLICT (no se sobreescribe)
			now, // last_seen
			strat.Score,
		); err != nil {
			return fmt.Errorf("storage.SaveRun: upsert %s: %w", strat.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveRun: commit: %w", err)
	}
	return nil
}

// TopStrategies devuelve las mejores estrategias históricas por peak_score.
func (s *SQLiteStorage) TopStrategies(ctx context.Context, limit int) ([]domain.Strategy, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, score, cagr, sharpe, max_drawdown,
		       win_rate, profit_factor, total_trades, is_optimized, analysis
		FROM strategies
		ORDER BY peak_score DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.TopStrategies: query: %w", err)
	}
	defer rows.Close()

	var strats []domain.Strategy
	for rows.Next() {
		var strat domain.Strategy
		var m domain.PerformanceMetrics
		var opt int

		if err := rows.Scan(
			&strat.ID,
			&strat.Name,
			&strat.Description,
			&strat.Score,
			&m.CAGR,
			&m.SharpeRatio,
			&m.MaxDrawdown,
			&m.WinRate,
			&m.ProfitFactor,
			&m.TotalTrades,
			&opt,
			&strat.Analysis,
		); err != nil {
			return nil, fmt.Errorf("storage.TopStrategies: scan row: %w", err)
		}

		strat.Metrics = &m
		strat.IsOptimized = opt == 1
		strats = append(strats, strat)
	}

	return strats, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context) {
	cutoffRuns := time.Now().UTC().Add(-retentionRuns)
	cutoffStrats := time.Now().UTC().Add(-retentionStrategies)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoffRuns)
	s.db.ExecContext(ctx, `DELETE FROM strategies WHERE last_seen < ?`, cutoffStrats)
}
