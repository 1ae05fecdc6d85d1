package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"checkin/internal/adapters/http/perf"
)

// SQLDB is the database interface used by the session store.
// Both *sql.DB and *TimedDB satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQuery is the slow query threshold when none is configured.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDB wraps a *sql.DB, logs slow statements and records every
// statement to the perf collector as "<Op> <VERB>", e.g. "Exec INSERT".
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector // nil disables recording
	threshold time.Duration
}

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid database connection
// POST: statements slower than slow (DefaultSlowQuery when slow <= 0) log at warn
func NewTimedDB(db *sql.DB, collector *perf.Collector, slow time.Duration) *TimedDB {
	if slow <= 0 {
		slow = DefaultSlowQuery
	}
	return &TimedDB{db: db, collector: collector, threshold: slow}
}

// RawDB returns the underlying *sql.DB for migrations and Close.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// ExecContext runs a statement with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	defer t.observe(ctx, "Exec", query, time.Now())
	return t.db.ExecContext(ctx, query, args...)
}

// QueryContext runs a query with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	defer t.observe(ctx, "Query", query, time.Now())
	return t.db.QueryContext(ctx, query, args...)
}

// QueryRowContext runs a single-row query with timing.
// The row is not scanned here, so the timing covers execution only.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	defer t.observe(ctx, "QueryRow", query, time.Now())
	return t.db.QueryRowContext(ctx, query, args...)
}

// Close closes the underlying database.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

func (t *TimedDB) observe(ctx context.Context, op, query string, start time.Time) {
	elapsed := time.Since(start)
	label := op + " " + statementVerb(query)
	durationMs := float64(elapsed.Microseconds()) / 1000

	level, msg := slog.LevelDebug, "query"
	if elapsed >= t.threshold {
		level, msg = slog.LevelWarn, "slow_query"
	}
	slog.Log(ctx, level, msg, "op", label, "duration_ms", durationMs)

	t.collector.Record(perf.Entry{
		Kind:       perf.KindQuery,
		Path:       label,
		DurationMs: durationMs,
		Timestamp:  start,
	})
}

// statementVerb returns the upper-cased first keyword of query.
func statementVerb(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "?"
	}
	return strings.ToUpper(fields[0])
}
