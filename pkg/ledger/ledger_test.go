package ledger

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"golang.org/x/crypto/bcrypt"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	conn    *db.Connection
	service *Service
	users   *Users
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("db.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := NewUsers(conn, logger)
	users.cost = bcrypt.MinCost

	return &fixture{conn: conn, service: NewService(conn, logger), users: users}
}

func (f *fixture) register(t *testing.T, nickname string) Actor {
	t.Helper()
	actor, _, err := f.users.Register(nickname+"@example.com", "secret-password", nickname)
	if err != nil {
		t.Fatalf("Register(%s) error = %v", nickname, err)
	}
	return actor
}

// provision creates group Main with accounts Checking and Savings plus a
// default book.
func (f *fixture) provision(t *testing.T, actor Actor) {
	t.Helper()
	if _, _, err := f.service.EnsureGroup(actor, "Main", "daily spending"); err != nil {
		t.Fatalf("EnsureGroup() error = %v", err)
	}
	for _, name := range []string{"Checking", "Savings"} {
		if _, _, err := f.service.EnsureAccount(actor, AccountInput{Name: name, Group: "Main", Currency: "RMB"}); err != nil {
			t.Fatalf("EnsureAccount(%s) error = %v", name, err)
		}
	}
	if _, _, err := f.service.CreateBook(actor, "日常账本"); err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}
}

func TestEnsureAccountScenario(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")

	group, created, err := f.service.EnsureGroup(alice, "Main", "")
	if err != nil || !created {
		t.Fatalf("EnsureGroup() = %v, %v, %v", group, created, err)
	}

	in := AccountInput{Name: "Checking", IsCredit: false, Group: "Main", Currency: "RMB"}
	account, created, err := f.service.EnsureAccount(alice, in)
	if err != nil {
		t.Fatalf("EnsureAccount() error = %v", err)
	}
	if !created {
		t.Error("first EnsureAccount() reported already existed")
	}
	if account.GroupID != group.ID || account.Currency != db.CurrencyRMB {
		t.Errorf("EnsureAccount() = %+v", account)
	}
	if !account.InitBalance.IsZero() || !account.RemainBalance.IsZero() {
		t.Errorf("new account balances = %s/%s, expected 0/0", account.InitBalance, account.RemainBalance)
	}

	again, created, err := f.service.EnsureAccount(alice, in)
	if err != nil {
		t.Fatalf("EnsureAccount() error = %v", err)
	}
	if created {
		t.Error("second EnsureAccount() reported created")
	}
	if again.ID != account.ID {
		t.Errorf("second EnsureAccount() id = %d, expected %d", again.ID, account.ID)
	}
}

func TestEnsureGroupIsIdempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")

	first, _, err := f.service.EnsureGroup(alice, "住房基金", "用于住房支出")
	if err != nil {
		t.Fatalf("EnsureGroup() error = %v", err)
	}
	second, created, err := f.service.EnsureGroup(alice, "住房基金", "other comment")
	if err != nil {
		t.Fatalf("EnsureGroup() error = %v", err)
	}
	if created || second.ID != first.ID {
		t.Errorf("second EnsureGroup() = %+v, created %v; expected existing id %d", second, created, first.ID)
	}
	if second.Comments.String != "用于住房支出" {
		t.Errorf("comments = %q, expected the first comments", second.Comments.String)
	}

	// Matching is exact, not case-normalized.
	other, created, err := f.service.EnsureGroup(alice, "main", "")
	if err != nil || !created || other.ID == first.ID {
		t.Errorf("EnsureGroup(main) = %+v, %v, %v; expected a new group", other, created, err)
	}
}

func TestEnsureAccountNeverCreatesNamedGroup(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	bob := f.register(t, "Bob")

	// Bob's group is not visible to Alice.
	if _, _, err := f.service.EnsureGroup(bob, "Main", ""); err != nil {
		t.Fatalf("EnsureGroup() error = %v", err)
	}

	_, _, err := f.service.EnsureAccount(alice, AccountInput{Name: "Checking", Group: "Main"})
	if !errors.Is(err, ErrGroupNotFound) || !errors.Is(err, ErrNotFound) {
		t.Fatalf("EnsureAccount() error = %v, expected ErrGroupNotFound", err)
	}

	groups, err := f.service.ListGroups(alice)
	if err != nil {
		t.Fatalf("ListGroups() error = %v", err)
	}
	if len(groups) != 0 {
		t.Errorf("ListGroups() = %+v, expected no implicit group", groups)
	}
}

func TestEnsureAccountUngroupedIsPerOwner(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	bob := f.register(t, "Bob")

	a, _, err := f.service.EnsureAccount(alice, AccountInput{Name: "Cash"})
	if err != nil {
		t.Fatalf("EnsureAccount(alice) error = %v", err)
	}
	b, _, err := f.service.EnsureAccount(bob, AccountInput{Name: "Cash", Currency: "USD"})
	if err != nil {
		t.Fatalf("EnsureAccount(bob) error = %v", err)
	}
	if a.GroupID == b.GroupID {
		t.Error("owners share the ungrouped group")
	}
	if b.Currency != db.CurrencyDollar {
		t.Errorf("currency = %s, expected Dollar", b.Currency)
	}

	accounts, err := f.service.ListAccounts(alice)
	if err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(accounts) != 1 || accounts[0].GroupName != UngroupedGroupName {
		t.Errorf("ListAccounts() = %+v", accounts)
	}
}

func TestEnsureAccountValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")

	tests := []struct {
		name string
		in   AccountInput
	}{
		{"empty name", AccountInput{Name: "  "}},
		{"unknown currency", AccountInput{Name: "Euro", Currency: "EUR"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.service.EnsureAccount(alice, tt.in)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("EnsureAccount() error = %v, expected ValidationError", err)
			}
		})
	}
}

func TestCreateBook(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")

	daily, created, err := f.service.CreateBook(alice, "日常账本")
	if err != nil || !created {
		t.Fatalf("CreateBook() = %+v, %v, %v", daily, created, err)
	}
	if daily.Name != "Alice的日常账本" || !daily.IsDefault {
		t.Errorf("CreateBook() = %+v, expected default book Alice的日常账本", daily)
	}

	travel, _, err := f.service.CreateBook(alice, "旅行")
	if err != nil {
		t.Fatalf("CreateBook() error = %v", err)
	}
	if travel.IsDefault {
		t.Error("second book became default")
	}

	again, created, err := f.service.CreateBook(alice, "日常账本")
	if err != nil || created || again.ID != daily.ID {
		t.Errorf("repeated CreateBook() = %+v, %v, %v", again, created, err)
	}

	books, err := f.service.ListBooks(alice)
	if err != nil || len(books) != 2 {
		t.Errorf("ListBooks() = %+v, %v", books, err)
	}
}

func TestPostBill(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	id, err := f.service.PostBill(alice, BillInput{
		Account:   "Checking",
		Amount:    dec("60"),
		Direction: db.DirectionExpense,
		Date:      "2020-11-01",
		Time:      "10:20",
		Comments:  "买菜",
	})
	if err != nil {
		t.Fatalf("PostBill() error = %v", err)
	}
	if id == 0 {
		t.Error("PostBill() returned id 0")
	}

	bills, err := f.service.ListBills(alice, "Checking", nil)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(bills) != 1 || bills[0].BillingTime != "10:20:00" || !bills[0].Amount.Equal(dec("60")) {
		t.Errorf("ListBills() = %+v", bills)
	}

	// Posting never touches balances.
	account, err := f.service.FindAccount(alice, "Checking")
	if err != nil {
		t.Fatalf("FindAccount() error = %v", err)
	}
	if !account.RemainBalance.IsZero() {
		t.Errorf("remain balance = %s, expected 0", account.RemainBalance)
	}
}

func TestPostBillErrors(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)
	bob := f.register(t, "Bob")
	if _, _, err := f.service.EnsureAccount(bob, AccountInput{Name: "Checking"}); err != nil {
		t.Fatalf("EnsureAccount() error = %v", err)
	}

	valid := BillInput{Account: "Checking", Amount: dec("3"), Direction: db.DirectionExpense, Date: "2020-11-01"}

	tests := []struct {
		name     string
		actor    Actor
		mutate   func(*BillInput)
		expected error
	}{
		{"negative amount", alice, func(in *BillInput) { in.Amount = dec("-0.01") }, ErrValidation},
		{"unknown direction", alice, func(in *BillInput) { in.Direction = "refund" }, ErrValidation},
		{"bad date", alice, func(in *BillInput) { in.Date = "2020/11/01" }, ErrValidation},
		{"bad time", alice, func(in *BillInput) { in.Time = "25:00" }, ErrValidation},
		{"missing account", alice, func(in *BillInput) { in.Account = "Nope" }, ErrAccountNotFound},
		{"missing book", alice, func(in *BillInput) { in.Book = "Nope" }, ErrBookNotFound},
		{"no default book", bob, func(in *BillInput) {}, ErrBookNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			if _, err := f.service.PostBill(tt.actor, in); !errors.Is(err, tt.expected) {
				t.Errorf("PostBill() error = %v, expected %v", err, tt.expected)
			}
		})
	}

	bills, err := f.service.ListBills(alice, "Checking", nil)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("rejected bills were stored: %+v", bills)
	}
}

func TestPostTransferRejectsSameAccount(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	for _, name := range []string{"Checking", "Savings", "Unknown"} {
		_, err := f.service.PostTransfer(alice, TransferInput{From: name, To: name, Amount: dec("100")})
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("PostTransfer(%s, %s) error = %v, expected ValidationError", name, name, err)
		}
	}
}

func TestPostTransferShortCircuits(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	_, err := f.service.PostTransfer(alice, TransferInput{From: "Checking", To: "Nope", Amount: dec("100")})
	if !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("PostTransfer() error = %v, expected ErrAccountNotFound", err)
	}

	id, err := f.service.PostTransfer(alice, TransferInput{From: "Checking", To: "Savings", Amount: dec("100"), Date: "2020-10-15", Book: "日常账本"})
	if err != nil || id == 0 {
		t.Fatalf("PostTransfer() = %d, %v", id, err)
	}

	transfers, err := f.service.ListTransfers(alice, "Savings", nil)
	if err != nil {
		t.Fatalf("ListTransfers() error = %v", err)
	}
	if len(transfers) != 1 {
		t.Errorf("ListTransfers() returned %d transfers, expected only the valid one", len(transfers))
	}
}

func TestSeedBillsIsAtomic(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	batch := []BillInput{
		{Account: "Checking", Amount: dec("3"), Direction: db.DirectionExpense, Date: "2020-11-01", Comments: "地铁"},
		{Account: "Checking", Amount: dec("60"), Direction: db.DirectionExpense, Date: "2020-11-01", Comments: "买菜"},
		{Account: "Missing", Amount: dec("1"), Direction: db.DirectionIncome, Date: "2020-11-02"},
	}
	if _, err := f.service.SeedBills(alice, batch); !errors.Is(err, ErrAccountNotFound) {
		t.Fatalf("SeedBills() error = %v, expected ErrAccountNotFound", err)
	}
	bills, err := f.service.ListBills(alice, "Checking", nil)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("failed batch left %d bills", len(bills))
	}

	ids, err := f.service.SeedBills(alice, batch[:2])
	if err != nil || len(ids) != 2 {
		t.Fatalf("SeedBills() = %v, %v", ids, err)
	}

	_, err = f.service.SeedTransfers(alice, []TransferInput{
		{From: "Checking", To: "Savings", Amount: dec("5")},
		{From: "Savings", To: "Savings", Amount: dec("5")},
	})
	if !errors.Is(err, ErrValidation) {
		t.Errorf("SeedTransfers() error = %v, expected ErrValidation", err)
	}
}

func TestRecordMonthStatIsIdempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	var logs bytes.Buffer
	f.service.logger = slog.New(slog.NewTextHandler(&logs, nil))

	in := StatInput{Month: "2020-10", Account: "Checking", Amount: dec("1000.2"), NormalIncome: dec("5000")}
	first, err := f.service.RecordMonthStat(alice, in)
	if err != nil {
		t.Fatalf("RecordMonthStat() error = %v", err)
	}
	if first.Outcome != StatInserted || first.Stat.Date != "2020-10-01" {
		t.Errorf("RecordMonthStat() = %+v, expected inserted 2020-10-01", first)
	}

	in.Amount = dec("1")
	in.Month = "2020-10-17"
	second, err := f.service.RecordMonthStat(alice, in)
	if err != nil {
		t.Fatalf("RecordMonthStat() error = %v", err)
	}
	if second.Outcome != StatExisted {
		t.Errorf("second RecordMonthStat() outcome = %s, expected already existed", second.Outcome)
	}
	if second.Stat.ID != first.Stat.ID || !second.Stat.Amount.Equal(dec("1000.2")) {
		t.Errorf("stored statistic changed: %+v", second.Stat)
	}

	out := logs.String()
	for _, want := range []string{
		`msg="Statistic recorded" outcome=inserted account=Checking`,
		`msg="Statistic recorded" outcome="already existed" account=Checking`,
		"month=2020-10",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("log lacks %q:\n%s", want, out)
		}
	}
}

func TestRecordMonthStatMissingAccountIsNotAnError(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")

	result, err := f.service.RecordMonthStat(alice, StatInput{Month: "2020-10", Account: "Nope"})
	if err != nil {
		t.Fatalf("RecordMonthStat() error = %v", err)
	}
	if result.Outcome != StatAccountMissing || result.Stat != nil {
		t.Errorf("RecordMonthStat() = %+v, expected account missing", result)
	}
}

func TestRecordMonthStatValidation(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	tests := []struct {
		name string
		in   StatInput
	}{
		{"bad month", StatInput{Month: "October", Account: "Checking"}},
		{"negative normal income", StatInput{Month: "2020-10", Account: "Checking", NormalIncome: dec("-1")}},
		{"negative normal outcome", StatInput{Month: "2020-10", Account: "Checking", NormalOutcome: dec("-1")}},
		{"amount below a cent", StatInput{Month: "2020-10", Account: "Checking", Amount: dec("0.123456789012345678")}},
		{"amount too large", StatInput{Month: "2020-10", Account: "Checking", Amount: dec("99999999999999.99")}},
		{"adjust below a cent", StatInput{Month: "2020-10", Account: "Checking", Adjust: dec("-0.001")}},
		{"interest income too large", StatInput{Month: "2020-10", Account: "Checking", InterestIncome: dec("10000000000000")}},
		{"invest income below a cent", StatInput{Month: "2020-10", Account: "Checking", InvestIncome: dec("1.005")}},
		{"normal income below a cent", StatInput{Month: "2020-10", Account: "Checking", NormalIncome: dec("0.001")}},
		{"normal outcome too large", StatInput{Month: "2020-10", Account: "Checking", NormalOutcome: dec("1e13")}},
		{"transfer below a cent", StatInput{Month: "2020-10", Account: "Checking", Transfer: dec("-20.125")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.service.RecordMonthStat(alice, tt.in); !errors.Is(err, ErrValidation) {
				t.Errorf("RecordMonthStat() error = %v, expected ErrValidation", err)
			}
		})
	}
}

func TestReconcileAccountMonth(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	_, err := f.service.RecordMonthStat(alice, StatInput{
		Month:          "2020-10",
		Account:        "Checking",
		Amount:         dec("1000.2"),
		Adjust:         dec("0"),
		InterestIncome: dec("0.8"),
		InvestIncome:   dec("-10"),
		NormalIncome:   dec("5000"),
		NormalOutcome:  dec("19.8"),
		Transfer:       dec("-20"),
	})
	if err != nil {
		t.Fatalf("RecordMonthStat() error = %v", err)
	}

	rec, err := f.service.ReconcileAccountMonth(alice, "Checking", "2020-10")
	if err != nil {
		t.Fatalf("ReconcileAccountMonth() error = %v", err)
	}
	if !rec.Remainder.Equal(dec("4990.6")) {
		t.Errorf("remainder = %s, expected 4990.6", rec.Remainder)
	}
	if !rec.Amount.Equal(dec("1000.2")) {
		t.Errorf("amount = %s, expected 1000.2", rec.Amount)
	}
	if rec.Rows != 1 {
		t.Errorf("rows = %d, expected 1", rec.Rows)
	}

	empty, err := f.service.ReconcileAccountMonth(alice, "Checking", "2020-11")
	if err != nil {
		t.Fatalf("ReconcileAccountMonth() error = %v", err)
	}
	if empty.HasData() {
		t.Errorf("ReconcileAccountMonth(2020-11) = %+v, expected no data", empty)
	}

	if _, err := f.service.ReconcileAccountMonth(alice, "Nope", "2020-10"); !errors.Is(err, ErrAccountNotFound) {
		t.Errorf("ReconcileAccountMonth(Nope) error = %v, expected ErrAccountNotFound", err)
	}
}

func TestSumUpMonth(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)
	bob := f.register(t, "Bob")
	f.provision(t, bob)

	checking := StatInput{Month: "2020-10", Account: "Checking", Amount: dec("1000.2"), Adjust: dec("1.1"),
		InterestIncome: dec("0.8"), InvestIncome: dec("-10"), NormalIncome: dec("5000"), NormalOutcome: dec("19.8"), Transfer: dec("-20")}
	savings := StatInput{Month: "2020-10", Account: "Savings", Amount: dec("300.3"), Adjust: dec("-0.1"),
		InterestIncome: dec("0.2"), InvestIncome: dec("10.5"), NormalIncome: dec("0"), NormalOutcome: dec("0.2"), Transfer: dec("20")}
	november := StatInput{Month: "2020-11", Account: "Checking", Amount: dec("7")}

	for _, in := range []StatInput{checking, savings, november} {
		if _, err := f.service.RecordMonthStat(alice, in); err != nil {
			t.Fatalf("RecordMonthStat() error = %v", err)
		}
	}
	// Another owner's rows never leak into the sum.
	if _, err := f.service.RecordMonthStat(bob, checking); err != nil {
		t.Fatalf("RecordMonthStat(bob) error = %v", err)
	}

	tests := []struct {
		month string
		rows  int
		want  Totals
	}{
		{"2020-09", 0, Totals{}},
		{"2020-11", 1, Totals{Amount: dec("7")}},
		{"2020-10", 2, Totals{
			Amount:         dec("1300.5"),
			Adjust:         dec("1"),
			InterestIncome: dec("1"),
			InvestIncome:   dec("0.5"),
			NormalIncome:   dec("5000"),
			NormalOutcome:  dec("20"),
			Transfer:       dec("0"),
		}},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			got, err := f.service.SumUpMonth(alice, tt.month)
			if err != nil {
				t.Fatalf("SumUpMonth() error = %v", err)
			}
			if got.Rows != tt.rows || got.HasData() != (tt.rows > 0) {
				t.Errorf("rows = %d, has data %v; expected %d", got.Rows, got.HasData(), tt.rows)
			}
			fields := []struct {
				name      string
				got, want decimal.Decimal
			}{
				{"amount", got.Amount, tt.want.Amount},
				{"adjust", got.Adjust, tt.want.Adjust},
				{"interest income", got.InterestIncome, tt.want.InterestIncome},
				{"invest income", got.InvestIncome, tt.want.InvestIncome},
				{"normal income", got.NormalIncome, tt.want.NormalIncome},
				{"normal outcome", got.NormalOutcome, tt.want.NormalOutcome},
				{"transfer", got.Transfer, tt.want.Transfer},
			}
			for _, fld := range fields {
				if !fld.got.Equal(fld.want) {
					t.Errorf("%s = %s, expected %s", fld.name, fld.got, fld.want)
				}
			}
		})
	}
}

func TestCompareMonth(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	_, err := f.service.SeedBills(alice, []BillInput{
		{Account: "Checking", Amount: dec("5000"), Direction: db.DirectionIncome, Date: "2020-10-05"},
		{Account: "Checking", Amount: dec("19.8"), Direction: db.DirectionExpense, Date: "2020-10-06"},
		{Account: "Checking", Amount: dec("99"), Direction: db.DirectionExpense, Date: "2020-11-01"},
	})
	if err != nil {
		t.Fatalf("SeedBills() error = %v", err)
	}
	_, err = f.service.SeedTransfers(alice, []TransferInput{
		{From: "Checking", To: "Savings", Amount: dec("50"), Date: "2020-10-10"},
		{From: "Savings", To: "Checking", Amount: dec("30"), Date: "2020-10-20"},
	})
	if err != nil {
		t.Fatalf("SeedTransfers() error = %v", err)
	}
	if _, err := f.service.RecordMonthStat(alice, StatInput{Month: "2020-10", Account: "Checking",
		NormalIncome: dec("5000"), NormalOutcome: dec("19.8"), Transfer: dec("-20")}); err != nil {
		t.Fatalf("RecordMonthStat() error = %v", err)
	}

	act, err := f.service.AccountActivity(alice, "Checking", "2020-10")
	if err != nil {
		t.Fatalf("AccountActivity() error = %v", err)
	}
	if act.Bills != 2 || act.Transfers != 2 {
		t.Errorf("activity counted %d bills and %d transfers, expected 2 and 2", act.Bills, act.Transfers)
	}
	if !act.Net().Equal(dec("4960.2")) {
		t.Errorf("net = %s, expected 4960.2", act.Net())
	}

	cmp, err := f.service.CompareMonth(alice, "Checking", "2020-10")
	if err != nil {
		t.Fatalf("CompareMonth() error = %v", err)
	}
	if !cmp.Balanced() {
		t.Errorf("CompareMonth() = %+v, expected balanced", cmp)
	}

	savings, err := f.service.CompareMonth(alice, "Savings", "2020-10")
	if err != nil {
		t.Fatalf("CompareMonth() error = %v", err)
	}
	if savings.Balanced() || !savings.TransferDiff.Equal(dec("-20")) {
		t.Errorf("CompareMonth(Savings) transfer diff = %s, expected -20", savings.TransferDiff)
	}
}

func TestMonthPostings(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	bob := f.register(t, "Bob")
	f.provision(t, alice)
	f.provision(t, bob)

	posts := []BillInput{
		{Account: "Checking", Amount: dec("60"), Direction: db.DirectionExpense, Date: "2020-10-01"},
		{Account: "Savings", Amount: dec("5"), Direction: db.DirectionIncome, Date: "2020-10-31"},
		{Account: "Checking", Amount: dec("7"), Direction: db.DirectionExpense, Date: "2020-11-01"},
	}
	for _, in := range posts {
		if _, err := f.service.PostBill(alice, in); err != nil {
			t.Fatalf("PostBill() error = %v", err)
		}
	}
	if _, err := f.service.PostBill(bob, posts[0]); err != nil {
		t.Fatalf("PostBill() error = %v", err)
	}
	if _, err := f.service.PostTransfer(alice, TransferInput{From: "Checking", To: "Savings", Amount: dec("100"), Date: "2020-10-02"}); err != nil {
		t.Fatalf("PostTransfer() error = %v", err)
	}

	bills, transfers, err := f.service.MonthPostings(alice, "2020-10")
	if err != nil {
		t.Fatalf("MonthPostings() error = %v", err)
	}
	if len(bills) != 2 {
		t.Errorf("MonthPostings() bills = %d, expected 2", len(bills))
	}
	if len(transfers) != 1 {
		t.Errorf("MonthPostings() transfers = %d, expected 1", len(transfers))
	}

	if _, _, err := f.service.MonthPostings(alice, "2020-13"); !errors.Is(err, ErrValidation) {
		t.Errorf("MonthPostings(2020-13) error = %v, expected ErrValidation", err)
	}
}

func TestMoneyKeepsItsValueThroughTheStore(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	largest := dec("9999999999999.99")
	in := StatInput{Month: "2020-10", Account: "Checking", Amount: largest, Adjust: dec("-0.01"), NormalIncome: largest}
	if _, err := f.service.RecordMonthStat(alice, in); err != nil {
		t.Fatalf("RecordMonthStat() error = %v", err)
	}

	rec, err := f.service.ReconcileAccountMonth(alice, "Checking", "2020-10")
	if err != nil {
		t.Fatalf("ReconcileAccountMonth() error = %v", err)
	}
	if !rec.Amount.Equal(largest) {
		t.Errorf("amount = %s, expected %s", rec.Amount, largest)
	}
	if expected := dec("9999999999999.98"); !rec.Remainder.Equal(expected) {
		t.Errorf("remainder = %s, expected %s", rec.Remainder, expected)
	}
}

func TestPostingsRejectAmountsOutsideTheMoneyDomain(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	for _, amount := range []string{"0.001", "12.345", "10000000000000", "99999999999999.99"} {
		bill := BillInput{Account: "Checking", Amount: dec(amount), Direction: db.DirectionExpense}
		if _, err := f.service.PostBill(alice, bill); !errors.Is(err, ErrValidation) {
			t.Errorf("PostBill(%s) error = %v, expected ErrValidation", amount, err)
		}
		transfer := TransferInput{From: "Checking", To: "Savings", Amount: dec(amount)}
		if _, err := f.service.PostTransfer(alice, transfer); !errors.Is(err, ErrValidation) {
			t.Errorf("PostTransfer(%s) error = %v, expected ErrValidation", amount, err)
		}
		if _, err := f.service.SeedBills(alice, []BillInput{bill}); !errors.Is(err, ErrValidation) {
			t.Errorf("SeedBills(%s) error = %v, expected ErrValidation", amount, err)
		}
	}

	bills, err := f.service.ListBills(alice, "Checking", nil)
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("rejected amounts left %d bills", len(bills))
	}

	for _, amount := range []string{"0.01", "12.30", "9999999999999.99"} {
		if _, err := f.service.PostBill(alice, BillInput{Account: "Checking", Amount: dec(amount), Direction: db.DirectionExpense}); err != nil {
			t.Errorf("PostBill(%s) error = %v", amount, err)
		}
	}
}

func TestNamesAreMatchedVerbatim(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "Alice")
	f.provision(t, alice)

	tests := []struct {
		name string
		run  func() error
	}{
		{"group", func() error { _, _, err := f.service.EnsureGroup(alice, " Main", ""); return err }},
		{"account", func() error {
			_, _, err := f.service.EnsureAccount(alice, AccountInput{Name: "Checking ", Group: "Main"})
			return err
		}},
		{"account group", func() error {
			_, _, err := f.service.EnsureAccount(alice, AccountInput{Name: "Wallet", Group: "Main "})
			return err
		}},
		{"book", func() error { _, _, err := f.service.CreateBook(alice, "日常账本\t"); return err }},
		{"bill account", func() error {
			_, err := f.service.PostBill(alice, BillInput{Account: " Checking", Amount: dec("1"), Direction: db.DirectionExpense})
			return err
		}},
		{"bill book", func() error {
			_, err := f.service.PostBill(alice, BillInput{Account: "Checking", Book: "日常账本 ", Amount: dec("1"), Direction: db.DirectionExpense})
			return err
		}},
		{"transfer account", func() error {
			_, err := f.service.PostTransfer(alice, TransferInput{From: "Checking", To: "Savings ", Amount: dec("1")})
			return err
		}},
		{"statistic account", func() error {
			_, err := f.service.RecordMonthStat(alice, StatInput{Month: "2020-10", Account: "Checking "})
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, expected ErrValidation", err)
			}
		})
	}

	group, created, err := f.service.EnsureGroup(alice, "main", "")
	if err != nil || !created {
		t.Errorf("EnsureGroup(main) = %v, %v, %v, expected a new group distinct from Main", group, created, err)
	}
}
