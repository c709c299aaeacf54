package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
)

// BillInput describes a bill to post. Accounts and books are referenced by
// name and resolved within the actor's scope.
type BillInput struct {
	Account   string
	Book      string // empty uses the default book
	Amount    decimal.Decimal
	Direction db.Direction
	Date      string // YYYY-MM-DD
	Time      string // HH:MM[:SS]
	Comments  string
}

// TransferInput describes a transfer to post.
type TransferInput struct {
	From     string
	To       string
	Book     string // empty uses the default book
	Amount   decimal.Decimal
	Date     string // YYYY-MM-DD
	Time     string // HH:MM[:SS]
	Comments string
}

func (in BillInput) validate() (BillInput, error) {
	var err error
	if in.Account, err = requireName("account", in.Account); err != nil {
		return in, err
	}
	if err = requireNonNegative("amount", in.Amount); err != nil {
		return in, err
	}
	if !in.Direction.Valid() {
		return in, invalid("direction", "%q is neither expense nor income", in.Direction)
	}
	if in.Date, err = normalizeDate("date", in.Date); err != nil {
		return in, err
	}
	if in.Time, err = normalizeClock("time", in.Time); err != nil {
		return in, err
	}
	if in.Book, err = optionalName("book", in.Book); err != nil {
		return in, err
	}
	in.Comments = strings.TrimSpace(in.Comments)
	return in, nil
}

func (in TransferInput) validate() (TransferInput, error) {
	var err error
	if in.From, err = requireName("from account", in.From); err != nil {
		return in, err
	}
	if in.To, err = requireName("to account", in.To); err != nil {
		return in, err
	}
	if in.From == in.To {
		return in, invalid("to account", "must differ from the from account %q", in.From)
	}
	if err = requireNonNegative("amount", in.Amount); err != nil {
		return in, err
	}
	if in.Date, err = normalizeDate("date", in.Date); err != nil {
		return in, err
	}
	if in.Time, err = normalizeClock("time", in.Time); err != nil {
		return in, err
	}
	if in.Book, err = optionalName("book", in.Book); err != nil {
		return in, err
	}
	in.Comments = strings.TrimSpace(in.Comments)
	return in, nil
}

// PostBill appends a bill to the activity log and returns its id. Account
// balances are not touched.
func (s *Service) PostBill(actor Actor, in BillInput) (int64, error) {
	in, err := in.validate()
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.inTx("post bill", func(r *db.Repository) error {
		id, err = postBill(r, actor, in)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Bill posted", "id", id, "account", in.Account, "amount", in.Amount, "direction", in.Direction)
	return id, nil
}

// PostTransfer records a single row referencing both accounts and returns
// its id. If either account lookup fails nothing is recorded.
func (s *Service) PostTransfer(actor Actor, in TransferInput) (int64, error) {
	in, err := in.validate()
	if err != nil {
		return 0, err
	}

	var id int64
	err = s.inTx("post transfer", func(r *db.Repository) error {
		id, err = postTransfer(r, actor, in)
		return err
	})
	if err != nil {
		return 0, err
	}

	s.logger.Debug("Transfer posted", "id", id, "from", in.From, "to", in.To, "amount", in.Amount)
	return id, nil
}

// SeedBills posts a batch of bills in one transaction. Either every bill is
// stored or, on the first failure, none is.
func (s *Service) SeedBills(actor Actor, inputs []BillInput) ([]int64, error) {
	valid := make([]BillInput, len(inputs))
	for i, in := range inputs {
		v, err := in.validate()
		if err != nil {
			return nil, fmt.Errorf("bill %d: %w", i+1, err)
		}
		valid[i] = v
	}

	ids := make([]int64, 0, len(valid))
	err := s.inTx("seed bills", func(r *db.Repository) error {
		for i, in := range valid {
			id, err := postBill(r, actor, in)
			if err != nil {
				return fmt.Errorf("bill %d: %w", i+1, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Bills seeded", "count", len(ids), "owner", actor.UserID)
	return ids, nil
}

// SeedTransfers posts a batch of transfers in one transaction with the same
// all-or-nothing guarantee as SeedBills.
func (s *Service) SeedTransfers(actor Actor, inputs []TransferInput) ([]int64, error) {
	valid := make([]TransferInput, len(inputs))
	for i, in := range inputs {
		v, err := in.validate()
		if err != nil {
			return nil, fmt.Errorf("transfer %d: %w", i+1, err)
		}
		valid[i] = v
	}

	ids := make([]int64, 0, len(valid))
	err := s.inTx("seed transfers", func(r *db.Repository) error {
		for i, in := range valid {
			id, err := postTransfer(r, actor, in)
			if err != nil {
				return fmt.Errorf("transfer %d: %w", i+1, err)
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transfers seeded", "count", len(ids), "owner", actor.UserID)
	return ids, nil
}

func postBill(r *db.Repository, actor Actor, in BillInput) (int64, error) {
	account, err := resolveAccount(r, actor, in.Account)
	if err != nil {
		return 0, err
	}
	book, err := resolveBook(r, actor, in.Book)
	if err != nil {
		return 0, err
	}

	return r.InsertBill(db.Bill{
		Amount:      in.Amount,
		Direction:   in.Direction,
		BillingDate: in.Date,
		BillingTime: in.Time,
		Comments:    in.Comments,
		AccountID:   account.ID,
		BookID:      book.ID,
		OwnerID:     actor.UserID,
	})
}

func postTransfer(r *db.Repository, actor Actor, in TransferInput) (int64, error) {
	from, err := resolveAccount(r, actor, in.From)
	if err != nil {
		return 0, err
	}
	to, err := resolveAccount(r, actor, in.To)
	if err != nil {
		return 0, err
	}
	if from.ID == to.ID {
		return 0, invalid("to account", "must differ from the from account %q", in.From)
	}
	book, err := resolveBook(r, actor, in.Book)
	if err != nil {
		return 0, err
	}

	return r.InsertTransfer(db.Transfer{
		Amount:        in.Amount,
		TransferDate:  in.Date,
		TransferTime:  in.Time,
		Comments:      in.Comments,
		FromAccountID: from.ID,
		ToAccountID:   to.ID,
		BookID:        book.ID,
		OwnerID:       actor.UserID,
	})
}

// ListBills returns the bills of the named account, optionally limited to
// one month.
func (s *Service) ListBills(actor Actor, account string, month *Month) ([]db.Bill, error) {
	r := s.conn.Repository()
	a, err := resolveAccount(r, actor, account)
	if err != nil {
		return nil, classify("find account", err)
	}
	bills, err := r.ListBills(actor.UserID, a.ID, monthPrefix(month))
	if err != nil {
		return nil, persistence("list bills", err)
	}
	return bills, nil
}

// ListTransfers returns the transfers touching the named account,
// optionally limited to one month.
func (s *Service) ListTransfers(actor Actor, account string, month *Month) ([]db.Transfer, error) {
	r := s.conn.Repository()
	a, err := resolveAccount(r, actor, account)
	if err != nil {
		return nil, classify("find account", err)
	}
	transfers, err := r.ListTransfers(actor.UserID, a.ID, monthPrefix(month))
	if err != nil {
		return nil, persistence("list transfers", err)
	}
	return transfers, nil
}

func monthPrefix(m *Month) string {
	if m == nil {
		return ""
	}
	return m.String() + "-"
}

// MonthPostings returns every bill and transfer of the owner dated inside
// month, across all accounts.
func (s *Service) MonthPostings(actor Actor, month string) ([]db.Bill, []db.Transfer, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return nil, nil, err
	}
	r := s.conn.Repository()
	bills, err := r.ListBills(actor.UserID, 0, monthPrefix(&m))
	if err != nil {
		return nil, nil, persistence("list bills", err)
	}
	transfers, err := r.ListTransfers(actor.UserID, 0, monthPrefix(&m))
	if err != nil {
		return nil, nil, persistence("list transfers", err)
	}
	return bills, transfers, nil
}
