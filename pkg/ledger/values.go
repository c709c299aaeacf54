package ledger

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
)

// Month identifies a calendar month. Statistics are keyed by its first day.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth accepts YYYY-MM or any YYYY-MM-DD inside the month.
func ParseMonth(s string) (Month, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Month{Year: t.Year(), Month: t.Month()}, nil
		}
	}
	return Month{}, invalid("month", "%q is not in YYYY-MM format", s)
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// String returns YYYY-MM.
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// MarshalText encodes the month as YYYY-MM.
func (m Month) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText accepts what ParseMonth does.
func (m *Month) UnmarshalText(b []byte) error {
	parsed, err := ParseMonth(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Key returns the stored row key, YYYY-MM-01.
func (m Month) Key() string {
	return m.String() + "-01"
}

// First returns the first instant of the month in UTC.
func (m Month) First() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following month.
func (m Month) Next() Month {
	return MonthOf(m.First().AddDate(0, 1, 0))
}

// ParseDirection accepts expense/income and the labels 支出/收入.
func ParseDirection(s string) (db.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "expense", "支出", "out":
		return db.DirectionExpense, nil
	case "income", "收入", "in":
		return db.DirectionIncome, nil
	}
	return "", invalid("direction", "%q is neither expense nor income", s)
}

// ParseCurrency accepts RMB/Dollar and their ISO codes. Empty means RMB.
func ParseCurrency(s string) (db.Currency, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "RMB", "CNY":
		return db.CurrencyRMB, nil
	case "DOLLAR", "USD":
		return db.CurrencyDollar, nil
	}
	return "", invalid("currency", "%q is not supported", s)
}

// maxAmount is the first value outside NUMERIC(15,2).
var maxAmount = decimal.New(1, 13)

// ParseAmount parses a money amount. Empty means zero.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid(field, "%q is not a number", s)
	}
	if err := requireMoney(field, d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// normalizeDate validates an optional YYYY-MM-DD date.
func normalizeDate(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return "", invalid(field, "%q is not in YYYY-MM-DD format", s)
	}
	return t.Format("2006-01-02"), nil
}

// normalizeClock validates an optional HH:MM[:SS] time and returns HH:MM:SS.
func normalizeClock(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), nil
		}
	}
	return "", invalid(field, "%q is not in HH:MM:SS format", s)
}

// requireName checks a name that is stored and matched verbatim. Surrounding
// whitespace is rejected, not trimmed.
func requireName(field, s string) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", invalid(field, "must not be empty")
	}
	if trimmed != s {
		return "", invalid(field, "%q has leading or trailing whitespace", s)
	}
	return s, nil
}

// optionalName is requireName for names that may be left empty.
func optionalName(field, s string) (string, error) {
	if s == "" {
		return "", nil
	}
	return requireName(field, s)
}

// requireMoney checks that d has at most two decimal places and 13 integer
// digits, the domain of every money column.
func requireMoney(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(2)) {
		return invalid(field, "%s has more than two decimal places", d)
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return invalid(field, "%s has more than 13 integer digits", d)
	}
	return nil
}

func requireNonNegative(field string, d decimal.Decimal) error {
	if err := requireMoney(field, d); err != nil {
		return err
	}
	if d.IsNegative() {
		return invalid(field, "must not be negative, got %s", d)
	}
	return nil
}

func nullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
