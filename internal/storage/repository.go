// Package storage implements the durable record store over an embedded
// SQLite database. All monetary values are stored as integer cents and
// all dates as YYYY-MM-DD text.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	_ "modernc.org/sqlite"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx so every query method
// works unchanged inside WithTx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteRepository struct {
	db *sql.DB
	q  dbtx
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows a single writer. One pooled connection makes
	// concurrent transactions queue on the pool instead of surfacing
	// SQLITE_BUSY to callers.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, q: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// WithTx runs fn against a repository bound to a single database
// transaction. A non-nil error from fn rolls everything back, so a
// record, its synthesized transaction and the balance adjustment commit
// or fail as one unit.
func (r *SQLiteRepository) WithTx(ctx context.Context, fn func(tx *SQLiteRepository) error) error {
	if _, ok := r.q.(*sql.Tx); ok {
		return fn(r) // already inside a transaction
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return persistErr("begin transaction", err)
	}

	if err := fn(&SQLiteRepository{db: r.db, q: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return persistErr("commit transaction", err)
	}
	return nil
}

// persistErr maps driver failures onto the domain error kinds: missing
// rows become ErrNotFound, everything else is tagged ErrPersistence.
func persistErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrPersistence, err)
}

const dateLayout = "2006-01-02"

func dateString(d core.Date) string {
	return d.Format(dateLayout)
}

func parseDateString(s string) core.Date {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return core.Date{}
	}
	return core.Date{Time: t}
}

// monthBounds returns the inclusive start and exclusive end date strings
// for a calendar month.
func monthBounds(year, month int) (string, string) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start.Format(dateLayout), start.AddDate(0, 1, 0).Format(dateLayout)
}

func timeString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTimeString(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// fundingToColumns splits an optional funding reference into nullable
// column values.
func fundingToColumns(f *core.FundingRef) (sql.NullString, sql.NullString) {
	if f == nil {
		return sql.NullString{}, sql.NullString{}
	}
	return sql.NullString{String: string(f.Type), Valid: true},
		sql.NullString{String: f.ID, Valid: true}
}

func fundingFromColumns(typ, id sql.NullString) *core.FundingRef {
	if !typ.Valid || !id.Valid {
		return nil
	}
	return &core.FundingRef{Type: core.OwnerType(typ.String), ID: id.String}
}
