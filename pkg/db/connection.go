package db

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3"    // SQLite driver
	"github.com/shopspring/decimal"
)

// Driver names a database/sql driver supported by the ledger store.
type Driver string

const (
	DriverSQLite   Driver = "sqlite3"
	DriverPostgres Driver = "pgx"
)

// Options describes how to reach the store.
type Options struct {
	// Driver defaults to DriverSQLite.
	Driver Driver
	// Path is the SQLite database file. Ignored for postgres.
	Path string
	// DSN is the postgres connection URL. Ignored for SQLite.
	DSN string
}

// Connection manages a ledger database connection.
type Connection struct {
	db      *sql.DB
	dbPath  string
	dialect dialect
	created []string
}

// Open opens a SQLite database connection.
// It enables WAL mode for better concurrency and foreign key constraints.
func Open(dbPath string) (*Connection, error) {
	return OpenWithOptions(Options{Driver: DriverSQLite, Path: dbPath})
}

// OpenWithOptions opens a connection for the given driver and initializes
// the schema. Tables created by this call are available via CreatedTables.
func OpenWithOptions(opts Options) (*Connection, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	var connStr string
	switch driver {
	case DriverSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("database path is required for %s", driver)
		}
		// Ensure database file's parent directory exists
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		connStr = fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", opts.Path)
	case DriverPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("DSN is required for %s", driver)
		}
		connStr = opts.DSN
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	db, err := sql.Open(string(driver), connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	conn := &Connection{
		db:      db,
		dbPath:  opts.Path,
		dialect: dialect{driver: driver},
	}

	created, err := InitializeSchema(conn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	conn.created = created
	if len(created) > 0 {
		slog.Debug("Created tables", "driver", driver, "tables", created)
	}

	return conn, nil
}

// Close closes the database connection.
func (c *Connection) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// GetDB returns the underlying *sql.DB instance.
func (c *Connection) GetDB() *sql.DB {
	return c.db
}

// GetPath returns the database file path (empty for postgres).
func (c *Connection) GetPath() string {
	return c.dbPath
}

// Driver returns the driver the connection was opened with.
func (c *Connection) Driver() Driver {
	return c.dialect.driver
}

// CreatedTables returns the tables created when the connection was opened.
func (c *Connection) CreatedTables() []string {
	return c.created
}

// Repository returns a repository that runs each statement on its own.
func (c *Connection) Repository() *Repository {
	return &Repository{q: c.db, dialect: c.dialect}
}

// Transaction executes a function within a transaction.
// If the function returns an error, the transaction is rolled back.
// Otherwise, the transaction is committed.
func (c *Connection) Transaction(fn func(*Repository) error) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Repository{q: tx, dialect: c.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction error: %w, rollback error: %w", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type dialect struct {
	driver Driver
}

// rebind rewrites ? placeholders to $n for postgres.
func (d dialect) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}

	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for _, r := range query {
		switch {
		case r == '\'':
			inQuote = !inQuote
			sb.WriteRune(r)
		case r == '?' && !inQuote:
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// money converts a decimal into the argument type the driver stores best.
// SQLite keeps money in REAL columns so CHECK constraints compare numbers;
// amounts with two decimal places and at most 13 integer digits survive the
// float64 round trip unchanged.
func (d dialect) money(v decimal.Decimal) any {
	if d.driver == DriverSQLite {
		return v.InexactFloat64()
	}
	return v.String()
}
