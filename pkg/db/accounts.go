package db

import (
	"database/sql"
	"errors"
	"fmt"
)

const accountColumns = `id, name, is_credit, init_balance, remain_balance, currency, owner_id, group_id`

// AccountWithGroup is an account joined with its group name.
type AccountWithGroup struct {
	Account
	GroupName string
}

// GetOrCreateAccount returns the owner's account named a.Name, creating it
// from a when absent. Fields of an existing account are never changed.
func (r *Repository) GetOrCreateAccount(a Account) (*Account, bool, error) {
	id, inserted, err := r.insertReturningID(`
		INSERT INTO account (name, is_credit, init_balance, remain_balance, currency, owner_id, group_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, name) DO NOTHING
		RETURNING id
	`,
		a.Name,
		a.IsCredit,
		r.dialect.money(a.InitBalance),
		r.dialect.money(a.RemainBalance),
		string(a.Currency),
		a.OwnerID,
		a.GroupID,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create account: %w", err)
	}
	if inserted {
		a.ID = id
		return &a, true, nil
	}

	existing, err := r.FindAccount(a.OwnerID, a.Name)
	if err != nil {
		return nil, false, err
	}
	if existing == nil {
		return nil, false, fmt.Errorf("account %s: %w", a.Name, ErrConflict)
	}
	return existing, false, nil
}

// FindAccount retrieves an account by owner and exact name.
func (r *Repository) FindAccount(ownerID int64, name string) (*Account, error) {
	return scanAccount(r.queryRow(`
		SELECT `+accountColumns+` FROM account
		WHERE owner_id = ? AND name = ?
	`, ownerID, name))
}

// GetAccount retrieves an account by id.
func (r *Repository) GetAccount(id int64) (*Account, error) {
	return scanAccount(r.queryRow(`
		SELECT `+accountColumns+` FROM account WHERE id = ?
	`, id))
}

// ListAccounts retrieves all accounts of an owner together with their
// group names, ordered by group then account.
func (r *Repository) ListAccounts(ownerID int64) ([]AccountWithGroup, error) {
	rows, err := r.query(`
		SELECT a.id, a.name, a.is_credit, a.init_balance, a.remain_balance,
		       a.currency, a.owner_id, a.group_id, g.name
		FROM account a
		JOIN account_group g ON g.id = a.group_id
		WHERE a.owner_id = ?
		ORDER BY g.id, a.id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []AccountWithGroup
	for rows.Next() {
		var a AccountWithGroup
		var currency string
		if err := rows.Scan(
			&a.ID,
			&a.Name,
			&a.IsCredit,
			&a.InitBalance,
			&a.RemainBalance,
			&currency,
			&a.OwnerID,
			&a.GroupID,
			&a.GroupName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.Currency = Currency(currency)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func scanAccount(row *sql.Row) (*Account, error) {
	var a Account
	var currency string
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.IsCredit,
		&a.InitBalance,
		&a.RemainBalance,
		&currency,
		&a.OwnerID,
		&a.GroupID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.Currency = Currency(currency)
	return &a, nil
}
