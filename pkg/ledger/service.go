// Package ledger implements the accounting engine: account and group
// provisioning, bill and transfer posting, monthly statistics and their
// reconciliation. Every operation is scoped to an Actor.
package ledger

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
)

// UngroupedGroupName is the per-owner group accounts fall back to when no
// group is given.
const UngroupedGroupName = "未分组"

// Service is the ledger service. It holds no state besides the store
// handle, and each write runs in its own transaction.
type Service struct {
	conn   *db.Connection
	logger *slog.Logger
}

// NewService creates a Service. A nil logger uses slog.Default().
func NewService(conn *db.Connection, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{conn: conn, logger: logger}
}

func (s *Service) inTx(op string, fn func(*db.Repository) error) error {
	return classify(op, s.conn.Transaction(fn))
}

// AccountInput describes an account to provision.
type AccountInput struct {
	Name     string
	IsCredit bool
	// Group must name an existing group of the owner. Empty uses the
	// owner's ungrouped group.
	Group string
	// Currency accepts anything ParseCurrency does. Empty means RMB.
	Currency string
}

// EnsureGroup returns the owner's group with this exact name, creating it
// when absent. created reports which case happened.
func (s *Service) EnsureGroup(actor Actor, name, comments string) (*db.AccountGroup, bool, error) {
	name, err := requireName("group name", name)
	if err != nil {
		return nil, false, err
	}

	var group *db.AccountGroup
	var created bool
	err = s.inTx("ensure account group", func(r *db.Repository) error {
		var err error
		group, created, err = r.GetOrCreateGroup(db.AccountGroup{
			Name:     name,
			Comments: nullString(comments),
			OwnerID:  actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("New account group created", "group", name, "owner", actor.UserID)
	} else {
		s.logger.Info("Account group already existed", "group", name, "owner", actor.UserID)
	}
	return group, created, nil
}

// EnsureAccount returns the owner's account with in.Name, creating it with
// zero balances when absent. A named group must already exist; it is never
// created implicitly.
func (s *Service) EnsureAccount(actor Actor, in AccountInput) (*db.Account, bool, error) {
	name, err := requireName("account name", in.Name)
	if err != nil {
		return nil, false, err
	}
	currency, err := ParseCurrency(in.Currency)
	if err != nil {
		return nil, false, err
	}
	groupName, err := optionalName("group name", in.Group)
	if err != nil {
		return nil, false, err
	}

	var account *db.Account
	var created bool
	err = s.inTx("ensure account", func(r *db.Repository) error {
		group, err := s.resolveGroup(r, actor, groupName)
		if err != nil {
			return err
		}

		account, created, err = r.GetOrCreateAccount(db.Account{
			Name:          name,
			IsCredit:      in.IsCredit,
			InitBalance:   decimal.Zero,
			RemainBalance: decimal.Zero,
			Currency:      currency,
			OwnerID:       actor.UserID,
			GroupID:       group.ID,
		})
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("New account created", "account", name, "owner", actor.UserID, "currency", currency)
	} else {
		s.logger.Info("Account already existed", "account", name, "owner", actor.UserID)
	}
	return account, created, nil
}

func (s *Service) resolveGroup(r *db.Repository, actor Actor, name string) (*db.AccountGroup, error) {
	if name == "" {
		group, created, err := r.GetOrCreateGroup(db.AccountGroup{Name: UngroupedGroupName, OwnerID: actor.UserID})
		if err != nil {
			return nil, err
		}
		if created {
			s.logger.Debug("Created ungrouped account group", "owner", actor.UserID)
		}
		return group, nil
	}

	group, err := r.FindGroup(actor.UserID, name)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, fmt.Errorf("%w: %s", ErrGroupNotFound, name)
	}
	return group, nil
}

// BookName returns the stored name of a book: "<nickname>的<name>".
func BookName(actor Actor, name string) string {
	return actor.Nickname + "的" + name
}

// CreateBook returns the owner's book named BookName(actor, name), creating
// it when absent. The owner's first book becomes the default book.
func (s *Service) CreateBook(actor Actor, name string) (*db.Book, bool, error) {
	name, err := requireName("book name", name)
	if err != nil {
		return nil, false, err
	}
	full := BookName(actor, name)

	var book *db.Book
	var created bool
	err = s.inTx("create book", func(r *db.Repository) error {
		current, err := r.FindDefaultBook(actor.UserID)
		if err != nil {
			return err
		}
		book, created, err = r.GetOrCreateBook(db.Book{
			Name:      full,
			IsDefault: current == nil,
			OwnerID:   actor.UserID,
		})
		return err
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("New book created", "book", full, "default", book.IsDefault, "owner", actor.UserID)
	} else {
		s.logger.Info("Book already existed", "book", full, "owner", actor.UserID)
	}
	return book, created, nil
}

// resolveBook finds a book by stored name or by the short name given to
// CreateBook. An empty name resolves the owner's default book.
func resolveBook(r *db.Repository, actor Actor, name string) (*db.Book, error) {
	if name == "" {
		book, err := r.FindDefaultBook(actor.UserID)
		if err != nil {
			return nil, err
		}
		if book == nil {
			return nil, fmt.Errorf("%w: no default book", ErrBookNotFound)
		}
		return book, nil
	}

	for _, candidate := range []string{name, BookName(actor, name)} {
		book, err := r.FindBook(actor.UserID, candidate)
		if err != nil {
			return nil, err
		}
		if book != nil {
			return book, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrBookNotFound, name)
}

func resolveAccount(r *db.Repository, actor Actor, name string) (*db.Account, error) {
	account, err := r.FindAccount(actor.UserID, name)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, name)
	}
	return account, nil
}

// FindAccount looks up one of the owner's accounts by name.
func (s *Service) FindAccount(actor Actor, name string) (*db.Account, error) {
	account, err := resolveAccount(s.conn.Repository(), actor, name)
	return account, classify("find account", err)
}

// ListAccounts returns the owner's accounts with their group names.
func (s *Service) ListAccounts(actor Actor) ([]db.AccountWithGroup, error) {
	accounts, err := s.conn.Repository().ListAccounts(actor.UserID)
	if err != nil {
		return nil, persistence("list accounts", err)
	}
	return accounts, nil
}

// ListGroups returns the owner's account groups.
func (s *Service) ListGroups(actor Actor) ([]db.AccountGroup, error) {
	groups, err := s.conn.Repository().ListGroups(actor.UserID)
	if err != nil {
		return nil, persistence("list account groups", err)
	}
	return groups, nil
}

// ListBooks returns the owner's books.
func (s *Service) ListBooks(actor Actor) ([]db.Book, error) {
	books, err := s.conn.Repository().ListBooks(actor.UserID)
	if err != nil {
		return nil, persistence("list books", err)
	}
	return books, nil
}
