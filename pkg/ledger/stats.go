package ledger

import (
	"errors"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
)

// StatInput is one monthly statistic of an account.
type StatInput struct {
	Month          string // YYYY-MM
	Account        string
	Amount         decimal.Decimal
	Adjust         decimal.Decimal
	InterestIncome decimal.Decimal
	InvestIncome   decimal.Decimal
	NormalIncome   decimal.Decimal
	NormalOutcome  decimal.Decimal
	Transfer       decimal.Decimal
}

// StatOutcome reports what RecordMonthStat did.
type StatOutcome int

const (
	StatInserted StatOutcome = iota + 1
	StatExisted
	StatAccountMissing
)

func (o StatOutcome) String() string {
	switch o {
	case StatInserted:
		return "inserted"
	case StatExisted:
		return "already existed"
	case StatAccountMissing:
		return "account not found"
	}
	return "unknown"
}

// StatResult is the outcome of RecordMonthStat. Stat is nil when the
// account was missing.
type StatResult struct {
	Outcome StatOutcome
	Month   Month
	Stat    *db.AccountStatMonth
}

// RecordMonthStat stores the statistic of an account for a month unless one
// already exists; an existing row is returned untouched. A missing account
// is reported through StatAccountMissing, not as an error, so batch imports
// can continue. Invalid input and store failures are errors.
func (s *Service) RecordMonthStat(actor Actor, in StatInput) (StatResult, error) {
	month, err := ParseMonth(in.Month)
	if err != nil {
		return StatResult{}, err
	}
	name, err := requireName("account", in.Account)
	if err != nil {
		return StatResult{}, err
	}
	for _, f := range []struct {
		field string
		value decimal.Decimal
	}{
		{"amount", in.Amount},
		{"adjust", in.Adjust},
		{"interest income", in.InterestIncome},
		{"invest income", in.InvestIncome},
		{"transfer", in.Transfer},
	} {
		if err := requireMoney(f.field, f.value); err != nil {
			return StatResult{}, err
		}
	}
	if err := requireNonNegative("normal income", in.NormalIncome); err != nil {
		return StatResult{}, err
	}
	if err := requireNonNegative("normal outcome", in.NormalOutcome); err != nil {
		return StatResult{}, err
	}

	result := StatResult{Month: month}
	err = s.inTx("record month statistic", func(r *db.Repository) error {
		account, err := resolveAccount(r, actor, name)
		if err != nil {
			return err
		}

		stat := db.AccountStatMonth{
			Date:           month.Key(),
			AccountID:      account.ID,
			Amount:         in.Amount,
			Adjust:         in.Adjust,
			InterestIncome: in.InterestIncome,
			InvestIncome:   in.InvestIncome,
			NormalIncome:   in.NormalIncome,
			NormalOutcome:  in.NormalOutcome,
			Transfer:       in.Transfer,
		}
		id, inserted, err := r.InsertMonthStat(stat)
		if err != nil {
			return err
		}
		if inserted {
			stat.ID = id
			result.Outcome, result.Stat = StatInserted, &stat
			return nil
		}

		existing, err := r.FindMonthStat(account.ID, month.Key())
		if err != nil {
			return err
		}
		result.Outcome, result.Stat = StatExisted, existing
		return nil
	})
	if errors.Is(err, ErrAccountNotFound) {
		s.logger.Warn("Account is not existed", "account", name, "owner", actor.UserID)
		return StatResult{Outcome: StatAccountMissing, Month: month}, nil
	}
	if err != nil {
		return StatResult{}, err
	}

	s.logger.Info("Statistic recorded",
		"outcome", result.Outcome.String(), "account", name, "owner", actor.UserID, "month", month.String())
	return result, nil
}

// Totals is the field-wise sum of monthly statistics.
type Totals struct {
	Amount         decimal.Decimal
	Adjust         decimal.Decimal
	InterestIncome decimal.Decimal
	InvestIncome   decimal.Decimal
	NormalIncome   decimal.Decimal
	NormalOutcome  decimal.Decimal
	Transfer       decimal.Decimal
}

// Add accumulates one statistic.
func (t *Totals) Add(s db.AccountStatMonth) {
	t.Amount = t.Amount.Add(s.Amount)
	t.Adjust = t.Adjust.Add(s.Adjust)
	t.InterestIncome = t.InterestIncome.Add(s.InterestIncome)
	t.InvestIncome = t.InvestIncome.Add(s.InvestIncome)
	t.NormalIncome = t.NormalIncome.Add(s.NormalIncome)
	t.NormalOutcome = t.NormalOutcome.Add(s.NormalOutcome)
	t.Transfer = t.Transfer.Add(s.Transfer)
}

// Remainder is the net movement explaining the change from the opening
// balance: adjust + interest + invest + normal income + normal outcome +
// transfer. The snapshot amount is not part of it.
func (t Totals) Remainder() decimal.Decimal {
	return t.Adjust.
		Add(t.InterestIncome).
		Add(t.InvestIncome).
		Add(t.NormalIncome).
		Add(t.NormalOutcome).
		Add(t.Transfer)
}

// MonthTotals is the sum-up of one month. Rows is zero when no statistic
// matched, in which case the totals carry no information.
type MonthTotals struct {
	Month Month
	Rows  int
	Totals
}

// HasData reports whether any statistic matched.
func (m MonthTotals) HasData() bool {
	return m.Rows > 0
}

// SumUpMonth sums the statistics of every account of the owner for month.
func (s *Service) SumUpMonth(actor Actor, month string) (MonthTotals, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return MonthTotals{}, err
	}

	totals := MonthTotals{Month: m}
	for stat, err := range s.conn.Repository().MonthStats(actor.UserID, m.Key()) {
		if err != nil {
			return MonthTotals{}, persistence("sum up month", err)
		}
		totals.Add(stat)
		totals.Rows++
	}

	if !totals.HasData() {
		s.logger.Warn("No statistic item found", "month", m.String(), "owner", actor.UserID)
	}
	return totals, nil
}

// Reconciliation cross-checks a stated closing amount against the movement
// components recorded for an account and month.
type Reconciliation struct {
	Account   string
	Currency  db.Currency
	Month     Month
	Rows      int
	Remainder decimal.Decimal
	Amount    decimal.Decimal
	Totals    Totals
}

// HasData reports whether any statistic matched.
func (r Reconciliation) HasData() bool {
	return r.Rows > 0
}

// ReconcileAccountMonth sums remainder and amount over the account's
// statistics for month (normally exactly one row).
func (s *Service) ReconcileAccountMonth(actor Actor, account, month string) (Reconciliation, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return Reconciliation{}, err
	}

	repo := s.conn.Repository()
	a, err := resolveAccount(repo, actor, account)
	if err != nil {
		return Reconciliation{}, classify("find account", err)
	}

	rec := Reconciliation{Account: a.Name, Currency: a.Currency, Month: m}
	for stat, err := range repo.AccountMonthStats(a.ID, m.Key()) {
		if err != nil {
			return Reconciliation{}, persistence("reconcile account", err)
		}
		rec.Totals.Add(stat)
		rec.Rows++
	}
	rec.Remainder = rec.Totals.Remainder()
	rec.Amount = rec.Totals.Amount

	if !rec.HasData() {
		s.logger.Warn("No statistic item found for account", "account", a.Name, "month", m.String())
	}
	return rec, nil
}

// ListMonthStats returns every statistic of the named account.
func (s *Service) ListMonthStats(actor Actor, account string) ([]db.AccountStatMonth, error) {
	repo := s.conn.Repository()
	a, err := resolveAccount(repo, actor, account)
	if err != nil {
		return nil, classify("find account", err)
	}
	stats, err := repo.ListMonthStats(a.ID)
	if err != nil {
		return nil, persistence("list month statistics", err)
	}
	return stats, nil
}
