// Package beancount models Beancount transactions and the monthly journals they are exported to.
package beancount

import "github.com/shopspring/decimal"

// Transaction represents a Beancount transaction.
type Transaction struct {
	Date      string            // YYYY-MM-DD
	Narration string            // Transaction description
	Payee     string            // Payee name (optional)
	Tags      []string          // Tags (e.g., ["daily"])
	Links     []string          // Links identifying the source posting
	Metadata  map[string]string // Metadata key-value pairs
	Postings  []Posting         // Transaction postings
}

// Posting represents a posting in a Beancount transaction.
type Posting struct {
	Account  string          // Account name (e.g., "Assets:Main:Checking")
	Amount   decimal.Decimal // Amount (positive for debit, negative for credit)
	Currency string          // Commodity (e.g., "CNY")
	Comment  string          // Posting comment (optional)
}

// Balanced reports whether the postings of each commodity sum to zero.
func (t Transaction) Balanced() bool {
	sums := map[string]decimal.Decimal{}
	for _, p := range t.Postings {
		sums[p.Currency] = sums[p.Currency].Add(p.Amount)
	}
	for _, sum := range sums {
		if !sum.IsZero() {
			return false
		}
	}
	return true
}
