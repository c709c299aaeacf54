package converter

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/beancount"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
)

// Converter converts bills and transfers to Beancount transactions.
type Converter struct {
	mapper   *Mapper
	accounts map[int64]db.AccountWithGroup
}

// NewConverter creates a new Converter for the given accounts. A nil mapper
// uses DefaultMapper.
func NewConverter(mapper *Mapper, accounts []db.AccountWithGroup) *Converter {
	if mapper == nil {
		mapper = DefaultMapper()
	}
	byID := make(map[int64]db.AccountWithGroup, len(accounts))
	for _, a := range accounts {
		byID[a.ID] = a
	}
	return &Converter{mapper: mapper, accounts: byID}
}

// BillLink and TransferLink identify exported postings inside a file.
func BillLink(id int64) string     { return fmt.Sprintf("ledger-bill-%d", id) }
func TransferLink(id int64) string { return fmt.Sprintf("ledger-transfer-%d", id) }

// AccountName returns the Beancount account of a ledger account: the mapped
// name, or Assets:<Group>:<Account> (Liabilities for credit accounts).
func (c *Converter) AccountName(a db.AccountWithGroup) string {
	root := "Assets"
	if a.IsCredit {
		root = "Liabilities"
	}
	fallback := strings.Join([]string{root, component(a.GroupName), component(a.Name)}, ":")
	return c.mapper.GetBeancountAccountWithFallback(a.Name, fallback)
}

// ConvertBill converts a bill. Expenses debit the expense account and credit
// the bill's account; income does the reverse.
func (c *Converter) ConvertBill(bill db.Bill) (beancount.Transaction, error) {
	account, ok := c.accounts[bill.AccountID]
	if !ok {
		return beancount.Transaction{}, fmt.Errorf("bill %d references unknown account %d", bill.ID, bill.AccountID)
	}
	commodity := c.mapper.Commodity(account.Currency)
	own := c.AccountName(account)

	counter, label := c.mapper.ExpenseAccount(), "支出"
	sign := bill.Amount.Neg()
	if bill.Direction == db.DirectionIncome {
		counter, label = c.mapper.IncomeAccount(), "收入"
		sign = bill.Amount
	}

	return beancount.Transaction{
		Date:      postingDate(bill.BillingDate, bill.CreatedAt),
		Narration: narration(bill.Comments, fmt.Sprintf("%s: %s", label, account.Name)),
		Links:     []string{BillLink(bill.ID)},
		Postings: []beancount.Posting{
			{Account: own, Amount: sign, Currency: commodity},
			{Account: counter, Amount: sign.Neg(), Currency: commodity},
		},
	}, nil
}

// ConvertTransfer converts a transfer. The from account is credited and the
// to account debited, both in the from account's commodity.
func (c *Converter) ConvertTransfer(t db.Transfer) (beancount.Transaction, error) {
	from, ok := c.accounts[t.FromAccountID]
	if !ok {
		return beancount.Transaction{}, fmt.Errorf("transfer %d references unknown account %d", t.ID, t.FromAccountID)
	}
	to, ok := c.accounts[t.ToAccountID]
	if !ok {
		return beancount.Transaction{}, fmt.Errorf("transfer %d references unknown account %d", t.ID, t.ToAccountID)
	}
	commodity := c.mapper.Commodity(from.Currency)

	return beancount.Transaction{
		Date:      postingDate(t.TransferDate, t.CreatedAt),
		Narration: narration(t.Comments, fmt.Sprintf("转账: %s → %s", from.Name, to.Name)),
		Links:     []string{TransferLink(t.ID)},
		Postings: []beancount.Posting{
			{Account: c.AccountName(to), Amount: t.Amount, Currency: commodity},
			{Account: c.AccountName(from), Amount: t.Amount.Neg(), Currency: commodity},
		},
	}, nil
}

// FormatTransaction formats a Beancount transaction as a string.
func (c *Converter) FormatTransaction(txn beancount.Transaction) string {
	var sb strings.Builder

	sb.WriteString(txn.Date)
	sb.WriteString(" *")
	if txn.Payee != "" {
		fmt.Fprintf(&sb, " %q", txn.Payee)
	}
	fmt.Fprintf(&sb, " %q", txn.Narration)
	for _, tag := range txn.Tags {
		sb.WriteString(" #" + tag)
	}
	for _, link := range txn.Links {
		sb.WriteString(" ^" + link)
	}
	sb.WriteString("\n")

	for _, key := range slices.Sorted(maps.Keys(txn.Metadata)) {
		fmt.Fprintf(&sb, "  %s: %q\n", key, txn.Metadata[key])
	}

	for _, posting := range txn.Postings {
		sb.WriteString("  ")
		sb.WriteString(posting.Account)

		amount := posting.Amount.StringFixed(2)
		// Right-align amount (typical Beancount style)
		spaces := max(2, 60-len([]rune(posting.Account))-len(amount))
		sb.WriteString(strings.Repeat(" ", spaces))
		fmt.Fprintf(&sb, "%s %s", amount, posting.Currency)

		if posting.Comment != "" {
			fmt.Fprintf(&sb, " ; %s", posting.Comment)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// component makes name usable as a Beancount account component.
func component(name string) string {
	var sb strings.Builder
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			sb.WriteRune(r)
		}
	}
	s := sb.String()
	if s == "" {
		return "Unnamed"
	}
	runes := []rune(s)
	if runes[0] == '-' {
		return "X" + s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func postingDate(date string, createdAt time.Time) string {
	if date != "" {
		return date
	}
	return createdAt.Format("2006-01-02")
}

func narration(comments, fallback string) string {
	if s := strings.TrimSpace(comments); s != "" {
		return s
	}
	return fallback
}
