// Package converter provides conversion from ledger postings to Beancount format.
package converter

import (
	"fmt"
	"os"
	"strings"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"gopkg.in/yaml.v3"
)

const (
	DefaultIncomeAccount  = "Income:Uncategorized"
	DefaultExpenseAccount = "Expenses:Uncategorized"
)

// AccountMapping maps a ledger account name to a Beancount account.
type AccountMapping struct {
	Ledger    string `yaml:"ledger"`
	Beancount string `yaml:"beancount"`
}

// MappingConfig represents the complete account mapping configuration.
//
//	accounts:
//	  - ledger: 招商银行
//	    beancount: Assets:Bank:CMB
//	income: Income:Salary
//	expenses: Expenses:Living
//	currencies:
//	  RMB: CNY
type MappingConfig struct {
	Accounts   []AccountMapping  `yaml:"accounts"`
	Income     string            `yaml:"income"`
	Expenses   string            `yaml:"expenses"`
	Currencies map[string]string `yaml:"currencies"`
}

// Mapper maps ledger account names to Beancount account names.
type Mapper struct {
	config       MappingConfig
	ledgerToBean map[string]string
	commodities  map[db.Currency]string
}

// NewMapper creates a new Mapper from a YAML configuration file.
func NewMapper(configPath string) (*Mapper, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return ParseMapper(data)
}

// ParseMapper creates a Mapper from YAML content.
func ParseMapper(data []byte) (*Mapper, error) {
	var config MappingConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return newMapper(config), nil
}

// DefaultMapper returns a Mapper without explicit mappings. Every account
// falls back to its derived name.
func DefaultMapper() *Mapper {
	return newMapper(MappingConfig{})
}

func newMapper(config MappingConfig) *Mapper {
	m := &Mapper{
		config:       config,
		ledgerToBean: make(map[string]string, len(config.Accounts)),
		commodities: map[db.Currency]string{
			db.CurrencyRMB:    "CNY",
			db.CurrencyDollar: "USD",
		},
	}
	for _, mapping := range config.Accounts {
		m.ledgerToBean[mapping.Ledger] = mapping.Beancount
	}
	for currency, commodity := range config.Currencies {
		m.commodities[db.Currency(currency)] = strings.ToUpper(commodity)
	}
	return m
}

// GetBeancountAccount returns the Beancount account for a ledger account name.
// Returns empty string if no mapping is found.
func (m *Mapper) GetBeancountAccount(name string) string {
	return m.ledgerToBean[name]
}

// GetBeancountAccountWithFallback returns the Beancount account name with a fallback.
func (m *Mapper) GetBeancountAccountWithFallback(name, fallback string) string {
	if account := m.ledgerToBean[name]; account != "" {
		return account
	}
	return fallback
}

// HasMapping checks if a mapping exists for a ledger account.
func (m *Mapper) HasMapping(name string) bool {
	_, ok := m.ledgerToBean[name]
	return ok
}

// IncomeAccount is the counter account of income bills.
func (m *Mapper) IncomeAccount() string {
	if m.config.Income != "" {
		return m.config.Income
	}
	return DefaultIncomeAccount
}

// ExpenseAccount is the counter account of expense bills.
func (m *Mapper) ExpenseAccount() string {
	if m.config.Expenses != "" {
		return m.config.Expenses
	}
	return DefaultExpenseAccount
}

// Commodity returns the Beancount commodity of a ledger currency.
func (m *Mapper) Commodity(currency db.Currency) string {
	if c, ok := m.commodities[currency]; ok {
		return c
	}
	return strings.ToUpper(string(currency))
}

// GetAllMappings returns all mapped account names.
func (m *Mapper) GetAllMappings() map[string]string {
	result := make(map[string]string, len(m.ledgerToBean))
	for k, v := range m.ledgerToBean {
		result[k] = v
	}
	return result
}
