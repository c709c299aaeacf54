// Package report renders ledger results as Markdown tables or JSON.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
)

// CurrencyCode returns the ISO code of a ledger currency.
func CurrencyCode(c db.Currency) string {
	switch c {
	case db.CurrencyDollar:
		return money.USD
	case db.CurrencyRMB, "":
		return money.CNY
	}
	return strings.ToUpper(string(c))
}

// Money formats amount in the currency's display format.
func Money(amount decimal.Decimal, c db.Currency) string {
	cur := *money.New(0, CurrencyCode(c)).Currency()
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// JSON writes v as indented JSON.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

type table struct {
	header []string
	align  []string
	rows   [][]string
}

func newTable(header ...string) *table {
	align := make([]string, len(header))
	for i := range align {
		align[i] = "---"
	}
	return &table{header: header, align: align}
}

// right marks columns as right-aligned.
func (t *table) right(cols ...int) *table {
	for _, c := range cols {
		t.align[c] = "---:"
	}
	return t
}

func (t *table) add(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *table) render(sb *strings.Builder) {
	line := func(cells []string) {
		sb.WriteString("|")
		for _, c := range cells {
			sb.WriteString(" " + strings.ReplaceAll(c, "|", `\|`) + " |")
		}
		sb.WriteString("\n")
	}
	line(t.header)
	sb.WriteString("|")
	for _, a := range t.align {
		sb.WriteString(" " + a + " |")
	}
	sb.WriteString("\n")
	for _, r := range t.rows {
		line(r)
	}
}

// document accumulates Markdown and writes it out once.
type document struct {
	sb strings.Builder
}

func (d *document) heading(format string, args ...any) {
	if d.sb.Len() > 0 {
		d.sb.WriteString("\n")
	}
	fmt.Fprintf(&d.sb, "## "+format+"\n\n", args...)
}

func (d *document) para(format string, args ...any) {
	fmt.Fprintf(&d.sb, format+"\n", args...)
}

func (d *document) table(t *table) {
	t.render(&d.sb)
}

func (d *document) writeTo(w io.Writer) error {
	_, err := io.WriteString(w, d.sb.String())
	return err
}

type component struct {
	label string
	value decimal.Decimal
}

// components lists the statistic fields in display order.
func components(t ledger.Totals) []component {
	return []component{
		{"Amount", t.Amount},
		{"Adjust", t.Adjust},
		{"Interest income", t.InterestIncome},
		{"Invest income", t.InvestIncome},
		{"Normal income", t.NormalIncome},
		{"Normal outcome", t.NormalOutcome},
		{"Transfer", t.Transfer},
	}
}
