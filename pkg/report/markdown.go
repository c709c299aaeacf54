package report

import (
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/importer"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
)

// MonthTotals renders a month sum-up. Totals mix the currencies of all
// accounts, so amounts are printed without a symbol.
func MonthTotals(w io.Writer, t ledger.MonthTotals) error {
	var d document
	d.heading("Summary %s", t.Month)
	if !t.HasData() {
		d.para("No statistic item found.")
		return d.writeTo(w)
	}

	tbl := newTable("Component", "Total").right(1)
	for _, c := range components(t.Totals) {
		tbl.add(c.label, c.value.StringFixed(2))
	}
	tbl.add("**Remainder**", "**"+t.Remainder().StringFixed(2)+"**")
	d.table(tbl)
	d.para("\n%d statistic row(s).", t.Rows)
	return d.writeTo(w)
}

// Reconciliation renders the remainder and closing amount of an account.
func Reconciliation(w io.Writer, r ledger.Reconciliation) error {
	var d document
	d.heading("%s %s", r.Account, r.Month)
	if !r.HasData() {
		d.para("No statistic item found.")
		return d.writeTo(w)
	}

	tbl := newTable("Component", "Value").right(1)
	for _, c := range components(r.Totals)[1:] {
		tbl.add(c.label, Money(c.value, r.Currency))
	}
	tbl.add("**Remainder**", "**"+Money(r.Remainder, r.Currency)+"**")
	tbl.add("**Amount**", "**"+Money(r.Amount, r.Currency)+"**")
	d.table(tbl)
	return d.writeTo(w)
}

// Comparison renders a statistic next to the activity derived from bills
// and transfers.
func Comparison(w io.Writer, c ledger.Comparison, currency db.Currency) error {
	var d document
	a := c.Activity
	d.heading("%s %s: statistic vs. activity", a.Account, a.Month)

	tbl := newTable("Component", "Statistic", "Activity", "Difference").right(1, 2, 3)
	rows := []struct {
		label     string
		stat, act decimal.Decimal
		diff      decimal.Decimal
	}{
		{"Normal income", c.Reconciliation.Totals.NormalIncome, a.Income, c.IncomeDiff},
		{"Normal outcome", c.Reconciliation.Totals.NormalOutcome, a.Expense, c.OutcomeDiff},
		{"Transfer", c.Reconciliation.Totals.Transfer, a.NetTransfer(), c.TransferDiff},
	}
	for _, r := range rows {
		tbl.add(r.label, Money(r.stat, currency), Money(r.act, currency), Money(r.diff, currency))
	}
	d.table(tbl)

	d.para("\n%d bill(s), %d transfer(s); net activity %s.", a.Bills, a.Transfers, Money(a.Net(), currency))
	if c.Balanced() {
		d.para("\nStatistic and activity agree.")
	} else {
		d.para("\n**Statistic and activity disagree.**")
	}
	return d.writeTo(w)
}

// Accounts renders an account listing.
func Accounts(w io.Writer, accounts []db.AccountWithGroup) error {
	var d document
	d.heading("Accounts")
	tbl := newTable("Group", "Account", "Credit", "Currency", "Balance").right(4)
	for _, a := range accounts {
		tbl.add(a.GroupName, a.Name, yesNo(a.IsCredit), string(a.Currency), Money(a.RemainBalance, a.Currency))
	}
	d.table(tbl)
	return d.writeTo(w)
}

// Groups renders an account group listing.
func Groups(w io.Writer, groups []db.AccountGroup) error {
	var d document
	d.heading("Account groups")
	tbl := newTable("Group", "Comments")
	for _, g := range groups {
		tbl.add(g.Name, g.Comments.String)
	}
	d.table(tbl)
	return d.writeTo(w)
}

// Books renders a book listing.
func Books(w io.Writer, books []db.Book) error {
	var d document
	d.heading("Books")
	tbl := newTable("Book", "Default")
	for _, b := range books {
		tbl.add(b.Name, yesNo(b.IsDefault))
	}
	d.table(tbl)
	return d.writeTo(w)
}

// Bills renders the bills of one account.
func Bills(w io.Writer, account string, currency db.Currency, bills []db.Bill) error {
	var d document
	d.heading("Bills of %s", account)
	tbl := newTable("Date", "Time", "Direction", "Amount", "Comments").right(3)
	for _, b := range bills {
		tbl.add(b.BillingDate, b.BillingTime, string(b.Direction), Money(b.Amount, currency), b.Comments)
	}
	d.table(tbl)
	return d.writeTo(w)
}

// Transfers renders the transfers touching one account. names resolves
// account ids.
func Transfers(w io.Writer, account string, currency db.Currency, transfers []db.Transfer, names map[int64]string) error {
	var d document
	d.heading("Transfers of %s", account)
	tbl := newTable("Date", "Time", "From", "To", "Amount", "Comments").right(4)
	for _, t := range transfers {
		tbl.add(t.TransferDate, t.TransferTime, names[t.FromAccountID], names[t.ToAccountID], Money(t.Amount, currency), t.Comments)
	}
	d.table(tbl)
	return d.writeTo(w)
}

// MonthStats renders the statistics of one account.
func MonthStats(w io.Writer, account string, currency db.Currency, stats []db.AccountStatMonth) error {
	var d document
	d.heading("Statistics of %s", account)
	tbl := newTable("Month", "Amount", "Adjust", "Interest", "Invest", "Income", "Outcome", "Transfer").right(1, 2, 3, 4, 5, 6, 7)
	for _, s := range stats {
		month := s.Date
		if len(month) >= 7 {
			month = month[:7]
		}
		tbl.add(month,
			Money(s.Amount, currency),
			Money(s.Adjust, currency),
			Money(s.InterestIncome, currency),
			Money(s.InvestIncome, currency),
			Money(s.NormalIncome, currency),
			Money(s.NormalOutcome, currency),
			Money(s.Transfer, currency),
		)
	}
	d.table(tbl)
	return d.writeTo(w)
}

// ImportResult renders the outcome of an import batch.
func ImportResult(w io.Writer, r *importer.Result) error {
	var d document
	d.heading("Import %s", r.Kind)
	if r.Duplicate {
		d.para("%s was already imported. Use --force to import it again.", r.Source)
		return d.writeTo(w)
	}

	tbl := newTable("Rows", "Imported", "Existed", "Skipped", "Failed").right(0, 1, 2, 3, 4)
	tbl.add(strconv.Itoa(r.Rows), strconv.Itoa(r.Imported), strconv.Itoa(r.Existed), strconv.Itoa(r.Skipped), strconv.Itoa(r.Failed))
	d.table(tbl)
	d.para("\nBatch `%s`.", r.BatchID)

	if len(r.Errors) > 0 {
		d.heading("Rows not imported")
		for _, e := range r.Errors {
			d.para("- %s", e.Error())
		}
	}
	return d.writeTo(w)
}

// History renders the ledger statistics and import history of an owner.
func History(w io.Writer, stats *db.Stats, records []db.ImportRecord) error {
	var d document
	d.heading("Ledger")
	tbl := newTable("Entity", "Count").right(1)
	tbl.add("Accounts", strconv.Itoa(stats.TotalAccounts))
	tbl.add("Bills", strconv.Itoa(stats.TotalBills))
	tbl.add("Transfers", strconv.Itoa(stats.TotalTransfers))
	tbl.add("Monthly statistics", strconv.Itoa(stats.TotalMonthStats))
	tbl.add("Imports", strconv.Itoa(stats.TotalImports))
	d.table(tbl)

	if stats.LastImport.Valid {
		d.para("\nLast import: %s", stats.LastImport.Time.Format("2006-01-02 15:04:05"))
	} else {
		d.para("\nLast import: (never)")
	}

	if len(records) > 0 {
		d.heading("Imports")
		imports := newTable("Imported at", "Kind", "Source", "Rows", "Imported", "Skipped").right(3, 4, 5)
		for _, r := range records {
			imports.add(r.ImportedAt.Format("2006-01-02 15:04"), string(r.Kind), r.SourcePath,
				strconv.Itoa(r.RowsTotal), strconv.Itoa(r.RowsImported), strconv.Itoa(r.RowsSkipped))
		}
		d.table(imports)
	}
	return d.writeTo(w)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
