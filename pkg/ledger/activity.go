package ledger

import (
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
)

// Activity is the effect of the bill and transfer log on one account for
// one month.
type Activity struct {
	Account     string
	Month       Month
	Bills       int
	Transfers   int
	Income      decimal.Decimal
	Expense     decimal.Decimal
	TransferIn  decimal.Decimal
	TransferOut decimal.Decimal
}

// Net is income minus expense plus transfers in minus transfers out.
func (a Activity) Net() decimal.Decimal {
	return a.Income.Sub(a.Expense).Add(a.TransferIn).Sub(a.TransferOut)
}

// NetTransfer is transfers in minus transfers out.
func (a Activity) NetTransfer() decimal.Decimal {
	return a.TransferIn.Sub(a.TransferOut)
}

// AccountActivity derives the account's movement for month from bills and
// transfers. A transfer counts as outflow when the account is its source
// and inflow when it is its destination.
func (s *Service) AccountActivity(actor Actor, account, month string) (Activity, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return Activity{}, err
	}

	repo := s.conn.Repository()
	a, err := resolveAccount(repo, actor, account)
	if err != nil {
		return Activity{}, classify("find account", err)
	}

	bills, err := repo.ListBills(actor.UserID, a.ID, monthPrefix(&m))
	if err != nil {
		return Activity{}, persistence("list bills", err)
	}
	transfers, err := repo.ListTransfers(actor.UserID, a.ID, monthPrefix(&m))
	if err != nil {
		return Activity{}, persistence("list transfers", err)
	}

	return summarizeActivity(a, m, bills, transfers), nil
}

func summarizeActivity(a *db.Account, m Month, bills []db.Bill, transfers []db.Transfer) Activity {
	act := Activity{Account: a.Name, Month: m, Bills: len(bills), Transfers: len(transfers)}
	for _, b := range bills {
		switch b.Direction {
		case db.DirectionIncome:
			act.Income = act.Income.Add(b.Amount)
		case db.DirectionExpense:
			act.Expense = act.Expense.Add(b.Amount)
		}
	}
	for _, t := range transfers {
		if t.FromAccountID == a.ID {
			act.TransferOut = act.TransferOut.Add(t.Amount)
		}
		if t.ToAccountID == a.ID {
			act.TransferIn = act.TransferIn.Add(t.Amount)
		}
	}
	return act
}

// Comparison sets the recorded statistic of a month next to the movement
// derived from the activity log. Each difference is statistic minus log.
type Comparison struct {
	Reconciliation Reconciliation
	Activity       Activity
	IncomeDiff     decimal.Decimal
	OutcomeDiff    decimal.Decimal
	TransferDiff   decimal.Decimal
}

// Balanced reports whether every component matches.
func (c Comparison) Balanced() bool {
	return c.IncomeDiff.IsZero() && c.OutcomeDiff.IsZero() && c.TransferDiff.IsZero()
}

// CompareMonth cross-validates the account's statistic for month against its
// bills and transfers.
func (s *Service) CompareMonth(actor Actor, account, month string) (Comparison, error) {
	rec, err := s.ReconcileAccountMonth(actor, account, month)
	if err != nil {
		return Comparison{}, err
	}
	act, err := s.AccountActivity(actor, account, month)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Reconciliation: rec,
		Activity:       act,
		IncomeDiff:     rec.Totals.NormalIncome.Sub(act.Income),
		OutcomeDiff:    rec.Totals.NormalOutcome.Sub(act.Expense),
		TransferDiff:   rec.Totals.Transfer.Sub(act.NetTransfer()),
	}, nil
}
