package report

import (
	"bytes"
	"database/sql"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMoney(t *testing.T) {
	tests := []struct {
		amount   string
		currency db.Currency
		contains string
	}{
		{"4990.6", db.CurrencyRMB, "4,990.60"},
		{"1000.2", db.CurrencyDollar, "$1,000.20"},
		{"0.005", db.CurrencyDollar, "0.01"},
		{"-10", db.CurrencyRMB, "10.00"},
	}
	for _, tt := range tests {
		if got := Money(amt(tt.amount), tt.currency); !strings.Contains(got, tt.contains) {
			t.Errorf("Money(%s, %s) = %q, expected it to contain %q", tt.amount, tt.currency, got, tt.contains)
		}
	}
	if got := Money(amt("-10"), db.CurrencyRMB); !strings.Contains(got, "-") {
		t.Errorf("Money(-10) = %q, expected a sign", got)
	}
}

func TestMonthTotals(t *testing.T) {
	var buf bytes.Buffer
	month := ledger.Month{Year: 2020, Month: 10}

	if err := MonthTotals(&buf, ledger.MonthTotals{Month: month}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No statistic item found") {
		t.Errorf("empty sum-up:\n%s", buf.String())
	}

	buf.Reset()
	totals := ledger.MonthTotals{Month: month, Rows: 2, Totals: ledger.Totals{
		Amount: amt("1000.2"), InterestIncome: amt("0.8"), InvestIncome: amt("-10"),
		NormalIncome: amt("5000"), NormalOutcome: amt("19.8"), Transfer: amt("-20"),
	}}
	if err := MonthTotals(&buf, totals); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"## Summary 2020-10", "| Amount | 1000.20 |", "| **Remainder** | **4990.60** |", "2 statistic row(s)."} {
		if !strings.Contains(out, want) {
			t.Errorf("sum-up lacks %q:\n%s", want, out)
		}
	}
}

func TestComparison(t *testing.T) {
	var buf bytes.Buffer
	cmp := ledger.Comparison{
		Reconciliation: ledger.Reconciliation{Totals: ledger.Totals{NormalIncome: amt("5000")}},
		Activity:       ledger.Activity{Account: "Checking", Month: ledger.Month{Year: 2020, Month: 10}, Income: amt("4000"), Bills: 1},
		IncomeDiff:     amt("1000"),
	}
	if err := Comparison(&buf, cmp, db.CurrencyDollar); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "$1,000.00") || !strings.Contains(out, "disagree") {
		t.Errorf("comparison:\n%s", out)
	}
}

func TestTableEscapesPipes(t *testing.T) {
	var buf bytes.Buffer
	err := Bills(&buf, "Checking", db.CurrencyRMB, []db.Bill{
		{BillingDate: "2020-10-01", Direction: db.DirectionExpense, Amount: amt("3"), Comments: "a|b"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `a\|b`) {
		t.Errorf("pipe not escaped:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "| --- | --- | --- | ---: | --- |") {
		t.Errorf("alignment row:\n%s", buf.String())
	}
}

func TestJSON(t *testing.T) {
	var buf bytes.Buffer
	rec := ledger.Reconciliation{
		Account:   "Checking",
		Month:     ledger.Month{Year: 2020, Month: 10},
		Remainder: amt("4990.6"),
		Amount:    amt("1000.2"),
		Rows:      1,
	}
	if err := JSON(&buf, rec); err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"Month": "2020-10"`, `"Remainder": "4990.6"`, `"Amount": "1000.2"`} {
		if !strings.Contains(out, want) {
			t.Errorf("JSON lacks %s:\n%s", want, out)
		}
	}
}

func TestGroups(t *testing.T) {
	var buf bytes.Buffer
	groups := []db.AccountGroup{
		{ID: 1, Name: "Main", Comments: sql.NullString{String: "daily spending", Valid: true}},
		{ID: 2, Name: "Ungrouped"},
	}
	if err := Groups(&buf, groups); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"## Account groups", "| Main | daily spending |", "| Ungrouped |"} {
		if !strings.Contains(out, want) {
			t.Errorf("groups lack %q:\n%s", want, out)
		}
	}
}
