package db

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"
)

const statColumns = `s.id, s.date, s.account_id, s.amount, s.adjust, s.interest_income,
	s.invest_income, s.normal_income, s.normal_outcome, s.transfer`

// InsertMonthStat inserts the statistic unless a row for the same account
// and month already exists. Existing rows are never overwritten; inserted
// reports which case happened.
func (r *Repository) InsertMonthStat(s AccountStatMonth) (id int64, inserted bool, err error) {
	id, inserted, err = r.insertReturningID(`
		INSERT INTO account_stat_month (date, account_id, amount, adjust, interest_income,
		                                invest_income, normal_income, normal_outcome, transfer)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(account_id, date) DO NOTHING
		RETURNING id
	`,
		s.Date,
		s.AccountID,
		r.dialect.money(s.Amount),
		r.dialect.money(s.Adjust),
		r.dialect.money(s.InterestIncome),
		r.dialect.money(s.InvestIncome),
		r.dialect.money(s.NormalIncome),
		r.dialect.money(s.NormalOutcome),
		r.dialect.money(s.Transfer),
	)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert month statistic: %w", err)
	}
	return id, inserted, nil
}

// FindMonthStat retrieves the statistic of an account for a month key.
func (r *Repository) FindMonthStat(accountID int64, date string) (*AccountStatMonth, error) {
	var s AccountStatMonth
	err := scanStat(r.queryRow(`
		SELECT `+statColumns+` FROM account_stat_month s
		WHERE s.account_id = ? AND s.date = ?
	`, accountID, date), &s)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get month statistic: %w", err)
	}
	return &s, nil
}

// MonthStats yields the statistics of every account of the owner for a
// month key. The query runs when iteration starts, so ranging over the
// sequence again re-issues it.
func (r *Repository) MonthStats(ownerID int64, date string) iter.Seq2[AccountStatMonth, error] {
	return r.statSeq(`
		SELECT `+statColumns+` FROM account_stat_month s
		JOIN account a ON a.id = s.account_id
		WHERE a.owner_id = ? AND s.date = ?
		ORDER BY s.account_id
	`, ownerID, date)
}

// AccountMonthStats yields the statistics of one account for a month key.
func (r *Repository) AccountMonthStats(accountID int64, date string) iter.Seq2[AccountStatMonth, error] {
	return r.statSeq(`
		SELECT `+statColumns+` FROM account_stat_month s
		WHERE s.account_id = ? AND s.date = ?
		ORDER BY s.id
	`, accountID, date)
}

// ListMonthStats retrieves every statistic of an account, oldest month first.
func (r *Repository) ListMonthStats(accountID int64) ([]AccountStatMonth, error) {
	var stats []AccountStatMonth
	for s, err := range r.statSeq(`
		SELECT `+statColumns+` FROM account_stat_month s
		WHERE s.account_id = ?
		ORDER BY s.date
	`, accountID) {
		if err != nil {
			return nil, err
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func (r *Repository) statSeq(query string, args ...any) iter.Seq2[AccountStatMonth, error] {
	return func(yield func(AccountStatMonth, error) bool) {
		rows, err := r.query(query, args...)
		if err != nil {
			yield(AccountStatMonth{}, fmt.Errorf("failed to query month statistics: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var s AccountStatMonth
			if err := scanStat(rows, &s); err != nil {
				yield(AccountStatMonth{}, fmt.Errorf("failed to scan month statistic: %w", err))
				return
			}
			if !yield(s, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(AccountStatMonth{}, fmt.Errorf("failed to read month statistics: %w", err))
		}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStat(row scanner, s *AccountStatMonth) error {
	return row.Scan(
		&s.ID,
		&s.Date,
		&s.AccountID,
		&s.Amount,
		&s.Adjust,
		&s.InterestIncome,
		&s.InvestIncome,
		&s.NormalIncome,
		&s.NormalOutcome,
		&s.Transfer,
	)
}
