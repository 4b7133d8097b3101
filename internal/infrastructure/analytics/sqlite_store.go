package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/benwelker/terse/internal/domain"
	"github.com/benwelker/terse/internal/pkg/filesystem"
	"github.com/benwelker/terse/internal/ports"
)

// SQLiteStore aggregates invocation records in ~/.terse/analytics.db.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates (or opens) the analytics database.
func NewSQLiteStore() (*SQLiteStore, error) {
	return NewSQLiteStoreAt(filepath.Join(filesystem.TerseDir(), "analytics.db"))
}

// NewSQLiteStoreAt opens the database at an explicit path.
func NewSQLiteStoreAt(path string) (*SQLiteStore, error) {
	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("analytics: open db: %w", err)
	}
	store := &SQLiteStore{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("analytics: init schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS invocations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		command TEXT NOT NULL,
		path TEXT,
		original_tokens INTEGER,
		optimized_tokens INTEGER,
		savings_pct REAL,
		optimizer_used TEXT,
		latency_ms INTEGER,
		UNIQUE(timestamp, command)
	);`)
	return err
}

// Import upserts JSONL entries into the database. Re-importing the same
// log is a no-op thanks to the uniqueness constraint.
func (s *SQLiteStore) Import(entries []domain.CommandLogEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR IGNORE INTO invocations
		(timestamp, command, path, original_tokens, optimized_tokens, savings_pct, optimizer_used, latency_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.Exec(
			e.Timestamp.Format(time.RFC3339),
			e.Command,
			e.Path,
			e.OriginalTokens,
			e.OptimizedTokens,
			e.SavingsPct,
			e.OptimizerUsed,
			e.LatencyMS,
		); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Summary aggregates totals and a per-optimizer breakdown over the last
// days (0 means all time).
func (s *SQLiteStore) Summary(days int) (ports.AnalyticsSummary, error) {
	var summary ports.AnalyticsSummary
	where, args := sinceClause(days)

	row := s.db.QueryRow(`SELECT COUNT(*),
		COALESCE(SUM(original_tokens), 0),
		COALESCE(SUM(optimized_tokens), 0)
		FROM invocations`+where, args...)
	if err := row.Scan(&summary.Invocations, &summary.OriginalTokens, &summary.OptimizedTokens); err != nil {
		return summary, err
	}

	rows, err := s.db.Query(`SELECT COALESCE(optimizer_used, ''), COUNT(*),
		COALESCE(SUM(original_tokens), 0),
		COALESCE(SUM(optimized_tokens), 0)
		FROM invocations`+where+` GROUP BY optimizer_used ORDER BY COUNT(*) DESC`, args...)
	if err != nil {
		return summary, err
	}
	defer rows.Close()
	for rows.Next() {
		var agg ports.OptimizerAggregate
		if err := rows.Scan(&agg.Name, &agg.Invocations, &agg.OriginalTokens, &agg.OptimizedTokens); err != nil {
			return summary, err
		}
		summary.ByOptimizer = append(summary.ByOptimizer, agg)
	}
	return summary, rows.Err()
}

// TopCommands lists the command shapes burning the most original tokens.
func (s *SQLiteStore) TopCommands(days, limit int) ([]ports.CommandAggregate, error) {
	where, args := sinceClause(days)
	if limit <= 0 {
		limit = 10
	}
	args = append(args, limit)
	rows, err := s.db.Query(`SELECT command, COUNT(*),
		COALESCE(SUM(original_tokens), 0),
		COALESCE(SUM(optimized_tokens), 0)
		FROM invocations`+where+`
		GROUP BY command ORDER BY SUM(original_tokens) DESC LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ports.CommandAggregate
	for rows.Next() {
		var agg ports.CommandAggregate
		if err := rows.Scan(&agg.Command, &agg.Invocations, &agg.OriginalTokens, &agg.OptimizedTokens); err != nil {
			return nil, err
		}
		out = append(out, agg)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the sqlite database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

func sinceClause(days int) (string, []interface{}) {
	if days <= 0 {
		return "", nil
	}
	cutoff := time.Now().AddDate(0, 0, -days).Format(time.RFC3339)
	return " WHERE datetime(timestamp) >= datetime(?)", []interface{}{cutoff}
}

var _ ports.AnalyticsStore = (*SQLiteStore)(nil)
