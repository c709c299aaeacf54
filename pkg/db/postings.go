package db

import (
	"database/sql"
	"fmt"
	"time"
)

// InsertBill inserts a bill and returns its id.
func (r *Repository) InsertBill(b Bill) (int64, error) {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}

	id, _, err := r.insertReturningID(`
		INSERT INTO bill (amount, direction, created_at, billing_date, billing_time,
		                  comments, account_id, book_id, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		r.dialect.money(b.Amount),
		string(b.Direction),
		b.CreatedAt,
		nullString(b.BillingDate),
		nullString(b.BillingTime),
		nullString(b.Comments),
		b.AccountID,
		b.BookID,
		b.OwnerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert bill: %w", err)
	}
	return id, nil
}

// InsertTransfer inserts a transfer and returns its id.
func (r *Repository) InsertTransfer(t Transfer) (int64, error) {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}

	id, _, err := r.insertReturningID(`
		INSERT INTO transfer (amount, created_at, transfer_date, transfer_time, comments,
		                      from_account_id, to_account_id, book_id, owner_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`,
		r.dialect.money(t.Amount),
		t.CreatedAt,
		nullString(t.TransferDate),
		nullString(t.TransferTime),
		nullString(t.Comments),
		t.FromAccountID,
		t.ToAccountID,
		t.BookID,
		t.OwnerID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert transfer: %w", err)
	}
	return id, nil
}

// ListBills retrieves the bills of one account, oldest first. An accountID
// of 0 matches every account of the owner. datePrefix narrows the result to
// billing dates starting with it (e.g. "2020-10"); an empty prefix returns
// every bill.
func (r *Repository) ListBills(ownerID, accountID int64, datePrefix string) ([]Bill, error) {
	rows, err := r.query(`
		SELECT id, amount, direction, created_at, billing_date, billing_time,
		       comments, account_id, book_id, owner_id
		FROM bill
		WHERE owner_id = ? AND (? = 0 OR account_id = ?) AND COALESCE(billing_date, '') LIKE ?
		ORDER BY billing_date, billing_time, id
	`, ownerID, accountID, accountID, datePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list bills: %w", err)
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		var b Bill
		var direction string
		var date, clock, comments sql.NullString
		if err := rows.Scan(
			&b.ID,
			&b.Amount,
			&direction,
			&b.CreatedAt,
			&date,
			&clock,
			&comments,
			&b.AccountID,
			&b.BookID,
			&b.OwnerID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.Direction = Direction(direction)
		b.BillingDate = date.String
		b.BillingTime = clock.String
		b.Comments = comments.String
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// ListTransfers retrieves the transfers touching one account on either
// side, oldest first. accountID and datePrefix work as in ListBills.
func (r *Repository) ListTransfers(ownerID, accountID int64, datePrefix string) ([]Transfer, error) {
	rows, err := r.query(`
		SELECT id, amount, created_at, transfer_date, transfer_time, comments,
		       from_account_id, to_account_id, book_id, owner_id
		FROM transfer
		WHERE owner_id = ? AND (? = 0 OR from_account_id = ? OR to_account_id = ?)
		  AND COALESCE(transfer_date, '') LIKE ?
		ORDER BY transfer_date, transfer_time, id
	`, ownerID, accountID, accountID, accountID, datePrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		var t Transfer
		var date, clock, comments sql.NullString
		if err := rows.Scan(
			&t.ID,
			&t.Amount,
			&t.CreatedAt,
			&date,
			&clock,
			&comments,
			&t.FromAccountID,
			&t.ToAccountID,
			&t.BookID,
			&t.OwnerID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		t.TransferDate = date.String
		t.TransferTime = clock.String
		t.Comments = comments.String
		transfers = append(transfers, t)
	}
	return transfers, rows.Err()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
