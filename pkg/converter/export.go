package converter

import (
	"fmt"
	"slices"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/beancount"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
)

// ExportResult counts what Export did.
type ExportResult struct {
	Written int
	Skipped int
}

// ConvertMonth converts bills and transfers, ordered bills first.
func (c *Converter) ConvertMonth(bills []db.Bill, transfers []db.Transfer) ([]beancount.Transaction, error) {
	txns := make([]beancount.Transaction, 0, len(bills)+len(transfers))
	for _, b := range bills {
		txn, err := c.ConvertBill(b)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	for _, t := range transfers {
		txn, err := c.ConvertTransfer(t)
		if err != nil {
			return nil, err
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// Export appends txns to the journal of a month. Transactions whose link
// already appears in the journal are skipped, so exporting a month twice is
// harmless. Nothing is written when any transaction does not balance.
func (c *Converter) Export(repo beancount.Repository, yearMonth string, txns []beancount.Transaction) (ExportResult, error) {
	var result ExportResult

	existing, err := repo.ReadMonth(yearMonth)
	if err != nil {
		return result, err
	}
	links := beancount.Links(existing)

	entries := make([]string, 0, len(txns))
	for _, txn := range txns {
		if !txn.Balanced() {
			return ExportResult{}, fmt.Errorf("transaction %v on %s does not balance", txn.Links, txn.Date)
		}
		if slices.ContainsFunc(txn.Links, func(l string) bool { return links[l] }) {
			result.Skipped++
			continue
		}
		entries = append(entries, c.FormatTransaction(txn))
	}

	if err := repo.AppendMonth(yearMonth, entries...); err != nil {
		return ExportResult{}, err
	}
	result.Written = len(entries)
	return result, nil
}
