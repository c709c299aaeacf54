// Package seed generates plausible bills and transfers for demos and load
// tests. Output is deterministic for a given seed.
package seed

import (
	"errors"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
)

// Options controls Generate.
type Options struct {
	Seed      int64
	Bills     int
	Transfers int
	// Accounts are the names postings are drawn from. Transfers need at
	// least two.
	Accounts []string
	Book     string
	Month    ledger.Month
	// MaxAmount bounds generated amounts. Zero means 1000.
	MaxAmount float64
}

// Batch is a generated set of postings.
type Batch struct {
	Bills     []ledger.BillInput
	Transfers []ledger.TransferInput
}

var expenseNotes = []string{"地铁", "买菜", "午饭", "房租", "水电", "话费", "咖啡", "超市"}

// Generate builds opts.Bills bills and opts.Transfers transfers dated
// inside opts.Month. Roughly one bill in five is income.
func Generate(opts Options) (*Batch, error) {
	if len(opts.Accounts) == 0 {
		return nil, errors.New("at least one account is required")
	}
	if opts.Transfers > 0 && len(opts.Accounts) < 2 {
		return nil, errors.New("transfers need at least two accounts")
	}
	if opts.Bills < 0 || opts.Transfers < 0 {
		return nil, fmt.Errorf("negative count: %d bills, %d transfers", opts.Bills, opts.Transfers)
	}
	if opts.Month == (ledger.Month{}) {
		opts.Month = ledger.MonthOf(time.Now())
	}
	maxAmount := opts.MaxAmount
	if maxAmount <= 0 {
		maxAmount = 1000
	}

	faker := gofakeit.New(opts.Seed)
	batch := &Batch{
		Bills:     make([]ledger.BillInput, 0, opts.Bills),
		Transfers: make([]ledger.TransferInput, 0, opts.Transfers),
	}

	for range opts.Bills {
		direction, note := db.DirectionExpense, faker.RandomString(expenseNotes)
		if faker.Number(1, 5) == 1 {
			direction, note = db.DirectionIncome, faker.Company()
		}
		date, clock := when(faker, opts.Month)
		batch.Bills = append(batch.Bills, ledger.BillInput{
			Account:   faker.RandomString(opts.Accounts),
			Book:      opts.Book,
			Amount:    amount(faker, maxAmount),
			Direction: direction,
			Date:      date,
			Time:      clock,
			Comments:  note,
		})
	}

	for range opts.Transfers {
		from := faker.Number(0, len(opts.Accounts)-1)
		to := (from + faker.Number(1, len(opts.Accounts)-1)) % len(opts.Accounts)
		date, clock := when(faker, opts.Month)
		batch.Transfers = append(batch.Transfers, ledger.TransferInput{
			From:     opts.Accounts[from],
			To:       opts.Accounts[to],
			Book:     opts.Book,
			Amount:   amount(faker, maxAmount),
			Date:     date,
			Time:     clock,
			Comments: faker.Sentence(3),
		})
	}

	return batch, nil
}

func amount(faker *gofakeit.Faker, max float64) decimal.Decimal {
	return decimal.NewFromFloat(faker.Price(1, max)).Round(2)
}

func when(faker *gofakeit.Faker, m ledger.Month) (string, string) {
	days := m.Next().First().AddDate(0, 0, -1).Day()
	t := m.First().
		AddDate(0, 0, faker.Number(0, days-1)).
		Add(time.Duration(faker.Number(0, 24*60*60-1)) * time.Second)
	return t.Format("2006-01-02"), t.Format("15:04:05")
}
