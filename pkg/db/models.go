package db

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the flow of a bill relative to its account.
type Direction string

const (
	DirectionExpense Direction = "expense"
	DirectionIncome  Direction = "income"
)

// Valid reports whether d is one of the two stored directions.
func (d Direction) Valid() bool {
	return d == DirectionExpense || d == DirectionIncome
}

// Currency is the fixed currency of an account.
type Currency string

const (
	CurrencyRMB    Currency = "RMB"
	CurrencyDollar Currency = "Dollar"
)

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	return c == CurrencyRMB || c == CurrencyDollar
}

// User is the root aggregate every other entity belongs to.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Nickname     string
	CreatedAt    time.Time
}

// Book is a named journal scoping bills and transfers.
type Book struct {
	ID        int64
	Name      string
	IsDefault bool
	OwnerID   int64
}

// AccountGroup organizes accounts of one owner.
type AccountGroup struct {
	ID       int64
	Name     string
	Comments sql.NullString
	OwnerID  int64
}

// Account is a balance-holding entity.
type Account struct {
	ID            int64
	Name          string
	IsCredit      bool
	InitBalance   decimal.Decimal
	RemainBalance decimal.Decimal
	Currency      Currency
	OwnerID       int64
	GroupID       int64
}

// Bill is a single-account income or expense record.
type Bill struct {
	ID          int64
	Amount      decimal.Decimal
	Direction   Direction
	CreatedAt   time.Time
	BillingDate string // YYYY-MM-DD
	BillingTime string // HH:MM:SS
	Comments    string
	AccountID   int64
	BookID      int64
	OwnerID     int64
}

// Transfer moves value from one account to another.
type Transfer struct {
	ID            int64
	Amount        decimal.Decimal
	CreatedAt     time.Time
	TransferDate  string // YYYY-MM-DD
	TransferTime  string // HH:MM:SS
	Comments      string
	FromAccountID int64
	ToAccountID   int64
	BookID        int64
	OwnerID       int64
}

// AccountStatMonth is the immutable monthly statistic of one account.
type AccountStatMonth struct {
	ID             int64
	Date           string // YYYY-MM-01
	AccountID      int64
	Amount         decimal.Decimal
	Adjust         decimal.Decimal
	InterestIncome decimal.Decimal
	InvestIncome   decimal.Decimal
	NormalIncome   decimal.Decimal
	NormalOutcome  decimal.Decimal
	Transfer       decimal.Decimal
}
