package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrConflict is returned when a row vanished between a conflicting insert
// and the follow-up lookup.
var ErrConflict = errors.New("conflicting row not found after insert")

// Repository exposes lookup, get-or-create and insert operations for every
// ledger entity. It runs either directly on the connection or inside a
// transaction started by Connection.Transaction.
//
// Find* methods return nil, nil when no row matches.
type Repository struct {
	q       querier
	dialect dialect
}

func (r *Repository) queryRow(query string, args ...any) *sql.Row {
	return r.q.QueryRow(r.dialect.rebind(query), args...)
}

func (r *Repository) query(query string, args ...any) (*sql.Rows, error) {
	return r.q.Query(r.dialect.rebind(query), args...)
}

func (r *Repository) exec(query string, args ...any) (sql.Result, error) {
	return r.q.Exec(r.dialect.rebind(query), args...)
}

// insertReturningID runs an INSERT ... RETURNING id statement.
// inserted is false when an ON CONFLICT DO NOTHING clause skipped the row.
func (r *Repository) insertReturningID(query string, args ...any) (id int64, inserted bool, err error) {
	err = r.queryRow(query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

// CreateUser inserts a user. created is false when the email is taken,
// in which case the existing user is returned.
func (r *Repository) CreateUser(u User) (*User, bool, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	id, inserted, err := r.insertReturningID(`
		INSERT INTO users (email, password_hash, nickname, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(email) DO NOTHING
		RETURNING id
	`, u.Email, u.PasswordHash, u.Nickname, u.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	if inserted {
		u.ID = id
		return &u, true, nil
	}

	existing, err := r.FindUserByEmail(u.Email)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("user %s: %w", u.Email, ErrConflict)
	}
	return existing, false, nil
}

// FindUserByEmail retrieves a user by email.
func (r *Repository) FindUserByEmail(email string) (*User, error) {
	return r.scanUser(r.queryRow(`
		SELECT id, email, password_hash, nickname, created_at
		FROM users WHERE email = ?
	`, email))
}

// GetUser retrieves a user by id.
func (r *Repository) GetUser(id int64) (*User, error) {
	return r.scanUser(r.queryRow(`
		SELECT id, email, password_hash, nickname, created_at
		FROM users WHERE id = ?
	`, id))
}

func (r *Repository) scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nickname, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

// GetOrCreateBook returns the owner's book with b.Name, creating it from b
// when absent.
func (r *Repository) GetOrCreateBook(b Book) (*Book, bool, error) {
	id, inserted, err := r.insertReturningID(`
		INSERT INTO book (name, is_default, owner_id)
		VALUES (?, ?, ?)
		ON CONFLICT(owner_id, name) DO NOTHING
		RETURNING id
	`, b.Name, b.IsDefault, b.OwnerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create book: %w", err)
	}
	if inserted {
		b.ID = id
		return &b, true, nil
	}

	existing, err := r.FindBook(b.OwnerID, b.Name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("book %s: %w", b.Name, ErrConflict)
	}
	return existing, false, nil
}

// FindBook retrieves a book by owner and exact name.
func (r *Repository) FindBook(ownerID int64, name string) (*Book, error) {
	return scanBook(r.queryRow(`
		SELECT id, name, is_default, owner_id FROM book
		WHERE owner_id = ? AND name = ?
	`, ownerID, name))
}

// FindDefaultBook retrieves the owner's default book, preferring the oldest
// when more than one is flagged.
func (r *Repository) FindDefaultBook(ownerID int64) (*Book, error) {
	return scanBook(r.queryRow(`
		SELECT id, name, is_default, owner_id FROM book
		WHERE owner_id = ? AND is_default = ?
		ORDER BY id LIMIT 1
	`, ownerID, true))
}

// ListBooks retrieves all books of an owner.
func (r *Repository) ListBooks(ownerID int64) ([]Book, error) {
	rows, err := r.query(`
		SELECT id, name, is_default, owner_id FROM book
		WHERE owner_id = ? ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Name, &b.IsDefault, &b.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func scanBook(row *sql.Row) (*Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.Name, &b.IsDefault, &b.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &b, nil
}

// GetOrCreateGroup returns the owner's group named g.Name, creating it from g
// when absent. Comments of an existing group are left untouched.
func (r *Repository) GetOrCreateGroup(g AccountGroup) (*AccountGroup, bool, error) {
	id, inserted, err := r.insertReturningID(`
		INSERT INTO account_group (name, comments, owner_id)
		VALUES (?, ?, ?)
		ON CONFLICT(owner_id, name) DO NOTHING
		RETURNING id
	`, g.Name, g.Comments, g.OwnerID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account group: %w", err)
	}
	if inserted {
		g.ID = id
		return &g, true, nil
	}

	existing, err := r.FindGroup(g.OwnerID, g.Name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("account group %s: %w", g.Name, ErrConflict)
	}
	return existing, false, nil
}

// FindGroup retrieves an account group by owner and exact name.
func (r *Repository) FindGroup(ownerID int64, name string) (*AccountGroup, error) {
	return scanGroup(r.queryRow(`
		SELECT id, name, comments, owner_id FROM account_group
		WHERE owner_id = ? AND name = ?
	`, ownerID, name))
}

// GetGroup retrieves an account group by id.
func (r *Repository) GetGroup(id int64) (*AccountGroup, error) {
	return scanGroup(r.queryRow(`
		SELECT id, name, comments, owner_id FROM account_group WHERE id = ?
	`, id))
}

// ListGroups retrieves all account groups of an owner.
func (r *Repository) ListGroups(ownerID int64) ([]AccountGroup, error) {
	rows, err := r.query(`
		SELECT id, name, comments, owner_id FROM account_group
		WHERE owner_id = ? ORDER BY id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list account groups: %w", err)
	}
	defer rows.Close()

	var groups []AccountGroup
	for rows.Next() {
		var g AccountGroup
		if err := rows.Scan(&g.ID, &g.Name, &g.Comments, &g.OwnerID); err != nil {
			return nil, fmt.Errorf("failed to scan account group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func scanGroup(row *sql.Row) (*AccountGroup, error) {
	var g AccountGroup
	err := row.Scan(&g.ID, &g.Name, &g.Comments, &g.OwnerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account group: %w", err)
	}
	return &g, nil
}
