// Package store persists frame tables into a relational table store. The
// handle is an explicit value passed into each call; there is no package
// state and no create-before-use ordering to get wrong.
//
// Two backends are supported: SQLite (the default, one results database per
// experiment directory) and PostgreSQL for shared deployments. The DSN
// scheme picks the driver.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/cellops/meld/internal/logger"
	"github.com/cellops/meld/pkg/frame"
)

// MaxBindParams is the bind-parameter budget for one INSERT statement. It is
// SQLite's historic limit and is kept uniform across drivers so batch sizing
// never depends on the backend.
const MaxBindParams = 999

var (
	// ErrTooManyColumns means a single row already exceeds the bind budget,
	// so the table cannot be inserted at all. Callers fall back to a flat
	// CSV export.
	ErrTooManyColumns = errors.New("too many columns for batched inserts")
	// ErrNoColumns means the table has nothing to persist.
	ErrNoColumns = errors.New("table has no columns")
)

// Config carries connection settings for the table store.
type Config struct {
	DSN             string
	ConnMaxLifetime time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
}

// NewConfig returns connection defaults for dsn.
func NewConfig(dsn string) *Config {
	return &Config{
		DSN:             dsn,
		ConnMaxLifetime: 10 * time.Minute,
		MaxOpenConns:    10,
		MaxIdleConns:    5,
	}
}

// EnsureDSN builds the DSN for a SQLite results database named name inside
// location, appending the .sqlite extension when name carries none. An
// existing database file is left in place and extended; a warning records
// that appends will land in old tables.
func EnsureDSN(location, name string) string {
	if name == "" {
		name = "results"
	}
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".sqlite") && !strings.HasSuffix(lower, ".sqlite3") {
		name += ".sqlite"
	}

	path := filepath.Join(location, name)
	if _, err := os.Stat(path); err == nil {
		logger.Store().Warn("database already exists, it will be extended", "path", path)
	}

	return "sqlite://" + path
}

// driverFor maps a DSN onto a database/sql driver name and the DSN that
// driver expects. Bare filesystem paths mean SQLite.
func driverFor(dsn string) (driver, driverDSN string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		return "sqlite", strings.TrimPrefix(dsn, "sqlite://")
	default:
		return "sqlite", dsn
	}
}

// Store is an open handle to the table store.
type Store struct {
	db     *sqlx.DB
	driver string
	log    logger.Logger
}

// Open connects to the store described by cfg and verifies the connection
// with a ping.
func Open(ctx context.Context, cfg *Config) (*Store, error) {
	driver, dsn := driverFor(cfg.DSN)

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Store().Debug("connected to table store", "driver", driver)

	return &Store{db: db, driver: driver, log: logger.Store()}, nil
}

// NewWithDB wraps an existing connection. Tests use it to run the store
// against a mock; driver selects the SQL dialect ("sqlite" or "postgres").
func NewWithDB(db *sqlx.DB, driver string) *Store {
	return &Store{db: db, driver: driver, log: logger.Store()}
}

// DB exposes the underlying handle for ad hoc queries.
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close releases the connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append writes every row of t to the named table, creating the table from
// the frame schema when it does not exist yet. Create and inserts run in one
// transaction, so a failed append leaves the store untouched. Appending to
// an existing table whose columns differ surfaces the driver's error.
//
// Returns ErrTooManyColumns when one row alone would blow the bind budget
// and ErrNoColumns for an empty schema. The table header must already be
// collapsed.
func (s *Store) Append(ctx context.Context, t *frame.Table, table string) error {
	if t.HeaderDepth() != 1 {
		return fmt.Errorf("append %s: table header must be collapsed first", table)
	}
	if t.Width() == 0 {
		return fmt.Errorf("append %s: %w", table, ErrNoColumns)
	}

	perBatch := rowsPerBatch(t.Width())
	if perBatch == 0 {
		return fmt.Errorf("append %s: %d columns: %w", table, t.Width(), ErrTooManyColumns)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append %s: failed to begin transaction: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, s.createSQL(t, table)); err != nil {
		return fmt.Errorf("append %s: failed to create table: %w", table, err)
	}

	cols := t.Columns()
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = quoteIdentifier(c.Name)
	}

	batches := 0
	for start := 0; start < t.Rows(); start += perBatch {
		end := start + perBatch
		if end > t.Rows() {
			end = t.Rows()
		}

		insert := squirrel.Insert(quoteIdentifier(table)).
			PlaceholderFormat(s.placeholder()).
			Columns(names...)
		for r := start; r < end; r++ {
			insert = insert.Values(t.Row(r)...)
		}

		sqlQuery, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("append %s: failed to build insert: %w", table, err)
		}
		if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
			return fmt.Errorf("append %s: failed to execute insert: %w", table, err)
		}
		batches++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append %s: failed to commit transaction: %w", table, err)
	}

	s.log.Info("appended to table",
		"table", table,
		"rows", t.Rows(),
		"columns", t.Width(),
		"batches", batches,
	)

	return nil
}

// rowsPerBatch is how many rows fit one INSERT under the bind budget. Zero
// means not even one row fits.
func rowsPerBatch(width int) int {
	if width <= 0 {
		return 0
	}
	return MaxBindParams / width
}

func (s *Store) placeholder() squirrel.PlaceholderFormat {
	if s.driver == "postgres" {
		return squirrel.Dollar
	}
	return squirrel.Question
}

func (s *Store) createSQL(t *frame.Table, table string) string {
	cols := t.Columns()
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdentifier(c.Name) + " " + s.columnType(c.Kind)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdentifier(table), strings.Join(defs, ", "))
}

func (s *Store) columnType(k frame.Kind) string {
	if s.driver == "postgres" {
		switch k {
		case frame.Int:
			return "BIGINT"
		case frame.Float:
			return "DOUBLE PRECISION"
		default:
			return "TEXT"
		}
	}
	switch k {
	case frame.Int:
		return "INTEGER"
	case frame.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// quoteIdentifier quotes a SQL identifier, doubling embedded quotes.
func quoteIdentifier(name string) string {
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(name, `"`, `""`))
}
