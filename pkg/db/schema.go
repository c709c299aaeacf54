// Package db provides the ledger store: entity types, schema management and
// the repository used by the ledger service.
package db

import "fmt"

// Table names.
const (
	TableUsers         = "users"
	TableBook          = "book"
	TableAccountGroup  = "account_group"
	TableAccount       = "account"
	TableBill          = "bill"
	TableTransfer      = "transfer"
	TableStatMonth     = "account_stat_month"
	TableImportHistory = "import_history"
	TableMetadata      = "ledger_metadata"
)

type tableDef struct {
	name     string
	sqlite   []string
	postgres []string
}

// tables is ordered so foreign keys always point at an earlier entry.
var tables = []tableDef{
	{
		name: TableUsers,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS users (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    nickname TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
)`},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email VARCHAR(64) NOT NULL UNIQUE,
    password_hash VARCHAR(128) NOT NULL,
    nickname VARCHAR(30) NOT NULL,
    created_at TIMESTAMP NOT NULL
)`},
	},
	{
		name: TableBook,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS book (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    is_default BOOLEAN NOT NULL DEFAULT 0,
    owner_id INTEGER NOT NULL REFERENCES users(id),
    UNIQUE(owner_id, name)
)`},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS book (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(64) NOT NULL,
    is_default BOOLEAN NOT NULL DEFAULT FALSE,
    owner_id BIGINT NOT NULL REFERENCES users(id),
    UNIQUE(owner_id, name)
)`},
	},
	{
		name: TableAccountGroup,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS account_group (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    comments TEXT,
    owner_id INTEGER NOT NULL REFERENCES users(id),
    UNIQUE(owner_id, name)
)`},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS account_group (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(30) NOT NULL,
    comments VARCHAR(50),
    owner_id BIGINT NOT NULL REFERENCES users(id),
    UNIQUE(owner_id, name)
)`},
	},
	{
		name: TableAccount,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS account (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    is_credit BOOLEAN NOT NULL DEFAULT 0,
    init_balance REAL NOT NULL DEFAULT 0.0 CHECK (init_balance >= 0.0),
    remain_balance REAL NOT NULL DEFAULT 0.0 CHECK (remain_balance >= 0.0),
    currency TEXT NOT NULL DEFAULT 'RMB' CHECK (currency IN ('RMB', 'Dollar')),
    owner_id INTEGER NOT NULL REFERENCES users(id),
    group_id INTEGER NOT NULL REFERENCES account_group(id),
    UNIQUE(owner_id, name)
)`},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS account (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(30) NOT NULL,
    is_credit BOOLEAN NOT NULL DEFAULT FALSE,
    init_balance NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (init_balance >= 0),
    remain_balance NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (remain_balance >= 0),
    currency VARCHAR(10) NOT NULL DEFAULT 'RMB' CHECK (currency IN ('RMB', 'Dollar')),
    owner_id BIGINT NOT NULL REFERENCES users(id),
    group_id BIGINT NOT NULL REFERENCES account_group(id),
    UNIQUE(owner_id, name)
)`},
	},
	{
		name: TableBill,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS bill (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    amount REAL NOT NULL DEFAULT 0.0 CHECK (amount >= 0.0),
    direction TEXT NOT NULL DEFAULT 'expense' CHECK (direction IN ('expense', 'income')),
    created_at TIMESTAMP NOT NULL,
    billing_date TEXT,                 -- YYYY-MM-DD
    billing_time TEXT,                 -- HH:MM:SS
    comments TEXT,
    account_id INTEGER NOT NULL REFERENCES account(id),
    book_id INTEGER NOT NULL REFERENCES book(id),
    owner_id INTEGER NOT NULL REFERENCES users(id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_bill_account_date ON bill(account_id, billing_date)`,
		},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS bill (
    id BIGSERIAL PRIMARY KEY,
    amount NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (amount >= 0),
    direction VARCHAR(10) NOT NULL DEFAULT 'expense' CHECK (direction IN ('expense', 'income')),
    created_at TIMESTAMP NOT NULL,
    billing_date VARCHAR(10),
    billing_time VARCHAR(8),
    comments VARCHAR(50),
    account_id BIGINT NOT NULL REFERENCES account(id),
    book_id BIGINT NOT NULL REFERENCES book(id),
    owner_id BIGINT NOT NULL REFERENCES users(id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_bill_account_date ON bill(account_id, billing_date)`,
		},
	},
	{
		name: TableTransfer,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS transfer (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    amount REAL NOT NULL DEFAULT 0.0 CHECK (amount >= 0.0),
    created_at TIMESTAMP NOT NULL,
    transfer_date TEXT,                -- YYYY-MM-DD
    transfer_time TEXT,                -- HH:MM:SS
    comments TEXT,
    from_account_id INTEGER NOT NULL REFERENCES account(id),
    to_account_id INTEGER NOT NULL REFERENCES account(id),
    book_id INTEGER NOT NULL REFERENCES book(id),
    owner_id INTEGER NOT NULL REFERENCES users(id),
    CHECK (from_account_id <> to_account_id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_transfer_from ON transfer(from_account_id, transfer_date)`,
			`CREATE INDEX IF NOT EXISTS idx_transfer_to ON transfer(to_account_id, transfer_date)`,
		},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS transfer (
    id BIGSERIAL PRIMARY KEY,
    amount NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (amount >= 0),
    created_at TIMESTAMP NOT NULL,
    transfer_date VARCHAR(10),
    transfer_time VARCHAR(8),
    comments VARCHAR(50),
    from_account_id BIGINT NOT NULL REFERENCES account(id),
    to_account_id BIGINT NOT NULL REFERENCES account(id),
    book_id BIGINT NOT NULL REFERENCES book(id),
    owner_id BIGINT NOT NULL REFERENCES users(id),
    CHECK (from_account_id <> to_account_id)
)`,
			`CREATE INDEX IF NOT EXISTS idx_transfer_from ON transfer(from_account_id, transfer_date)`,
			`CREATE INDEX IF NOT EXISTS idx_transfer_to ON transfer(to_account_id, transfer_date)`,
		},
	},
	{
		name: TableStatMonth,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS account_stat_month (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    date TEXT NOT NULL,                -- YYYY-MM-01
    account_id INTEGER NOT NULL REFERENCES account(id),
    amount REAL NOT NULL DEFAULT 0.0,
    adjust REAL NOT NULL DEFAULT 0.0,
    interest_income REAL NOT NULL DEFAULT 0.0,
    invest_income REAL NOT NULL DEFAULT 0.0,
    normal_income REAL NOT NULL DEFAULT 0.0 CHECK (normal_income >= 0.0),
    normal_outcome REAL NOT NULL DEFAULT 0.0 CHECK (normal_outcome >= 0.0),
    transfer REAL NOT NULL DEFAULT 0.0,
    UNIQUE(account_id, date)
)`,
			`CREATE INDEX IF NOT EXISTS idx_stat_month_date ON account_stat_month(date)`,
		},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS account_stat_month (
    id BIGSERIAL PRIMARY KEY,
    date VARCHAR(10) NOT NULL,
    account_id BIGINT NOT NULL REFERENCES account(id),
    amount NUMERIC(15,2) NOT NULL DEFAULT 0,
    adjust NUMERIC(15,2) NOT NULL DEFAULT 0,
    interest_income NUMERIC(15,2) NOT NULL DEFAULT 0,
    invest_income NUMERIC(15,2) NOT NULL DEFAULT 0,
    normal_income NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (normal_income >= 0),
    normal_outcome NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (normal_outcome >= 0),
    transfer NUMERIC(15,2) NOT NULL DEFAULT 0,
    UNIQUE(account_id, date)
)`,
			`CREATE INDEX IF NOT EXISTS idx_stat_month_date ON account_stat_month(date)`,
		},
	},
	{
		name: TableImportHistory,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS import_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    batch_id TEXT NOT NULL UNIQUE,
    kind TEXT NOT NULL,                -- 'accounts', 'bills', 'transfers', 'month_stats', 'chart'
    source_path TEXT NOT NULL,
    content_hash TEXT NOT NULL,        -- sha256 of the source file
    owner_id INTEGER NOT NULL REFERENCES users(id),
    rows_total INTEGER NOT NULL DEFAULT 0,
    rows_imported INTEGER NOT NULL DEFAULT 0,
    rows_skipped INTEGER NOT NULL DEFAULT 0,
    imported_at TIMESTAMP NOT NULL,
    UNIQUE(owner_id, kind, content_hash)
)`},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS import_history (
    id BIGSERIAL PRIMARY KEY,
    batch_id VARCHAR(36) NOT NULL UNIQUE,
    kind VARCHAR(20) NOT NULL,
    source_path TEXT NOT NULL,
    content_hash VARCHAR(64) NOT NULL,
    owner_id BIGINT NOT NULL REFERENCES users(id),
    rows_total INTEGER NOT NULL DEFAULT 0,
    rows_imported INTEGER NOT NULL DEFAULT 0,
    rows_skipped INTEGER NOT NULL DEFAULT 0,
    imported_at TIMESTAMP NOT NULL,
    UNIQUE(owner_id, kind, content_hash)
)`},
	},
	{
		name: TableMetadata,
		sqlite: []string{`
CREATE TABLE IF NOT EXISTS ledger_metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
		postgres: []string{`
CREATE TABLE IF NOT EXISTS ledger_metadata (
    key VARCHAR(64) PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
)`},
	},
}

// TableNames returns every table managed by the schema, in creation order.
func TableNames() []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.name
	}
	return names
}

// InitializeSchema creates every missing table in a single transaction and
// returns the names of the tables it created. Running it against an
// up-to-date database is a no-op that returns an empty list.
func InitializeSchema(conn *Connection) ([]string, error) {
	var created []string

	err := conn.Transaction(func(r *Repository) error {
		for _, t := range tables {
			exists, err := r.TableExists(t.name)
			if err != nil {
				return err
			}
			if exists {
				continue
			}

			stmts := t.sqlite
			if conn.dialect.driver == DriverPostgres {
				stmts = t.postgres
			}
			for _, stmt := range stmts {
				if _, err := r.q.Exec(stmt); err != nil {
					return fmt.Errorf("failed to create table %s: %w", t.name, err)
				}
			}
			created = append(created, t.name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// TableExists reports whether the named table exists in the store.
func (r *Repository) TableExists(name string) (bool, error) {
	query := `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`
	if r.dialect.driver == DriverPostgres {
		query = `SELECT COUNT(*) FROM information_schema.tables
			WHERE table_schema = current_schema() AND table_name = ?`
	}

	var count int
	if err := r.q.QueryRow(r.dialect.rebind(query), name).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", name, err)
	}
	return count > 0, nil
}
