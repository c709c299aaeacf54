package importer

import (
	"fmt"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
	"gopkg.in/yaml.v3"
)

// Chart is an account chart:
//
//	groups:
//	  - name: 住房基金
//	    comments: 用于住房支出
//	    accounts:
//	      - name: 招商银行
//	        is_credit: false
//	        currency: RMB
type Chart struct {
	Groups []ChartGroup `yaml:"groups"`
}

// ChartGroup is one group of a chart with its accounts.
type ChartGroup struct {
	Name     string         `yaml:"name"`
	Comments string         `yaml:"comments"`
	Accounts []ChartAccount `yaml:"accounts"`
}

// ChartAccount is one account of a chart group.
type ChartAccount struct {
	Name     string `yaml:"name"`
	IsCredit bool   `yaml:"is_credit"`
	Currency string `yaml:"currency"`
}

// ParseChart decodes a YAML account chart.
func ParseChart(data []byte) (*Chart, error) {
	var chart Chart
	if err := yaml.Unmarshal(data, &chart); err != nil {
		return nil, fmt.Errorf("failed to parse account chart: %w", err)
	}
	return &chart, nil
}

// importChart provisions every group before its accounts. Each group and
// each account counts as one row.
func (im *Importer) importChart(actor ledger.Actor, data []byte, result *Result) error {
	chart, err := ParseChart(data)
	if err != nil {
		return err
	}

	line := 0
	for _, g := range chart.Groups {
		line++
		result.Rows++
		_, created, err := im.service.EnsureGroup(actor, g.Name, g.Comments)
		if err != nil {
			out, err := failure(err)
			result.count(out, line, err)
			im.logger.Warn("Group not imported", "group", g.Name, "error", err)
			// Accounts of a missing group would land in the ungrouped group.
			for range g.Accounts {
				line++
				result.Rows++
				result.count(outcomeSkipped, line, nil)
			}
			continue
		}
		if created {
			result.count(outcomeImported, line, nil)
		} else {
			result.count(outcomeExisted, line, nil)
		}

		for _, a := range g.Accounts {
			line++
			result.Rows++
			_, created, err := im.service.EnsureAccount(actor, ledger.AccountInput{
				Name:     a.Name,
				IsCredit: a.IsCredit,
				Group:    g.Name,
				Currency: a.Currency,
			})
			switch {
			case err != nil:
				out, err := failure(err)
				result.count(out, line, err)
				im.logger.Warn("Account not imported", "account", a.Name, "group", g.Name, "error", err)
			case created:
				result.count(outcomeImported, line, nil)
			default:
				result.count(outcomeExisted, line, nil)
			}
		}
	}
	return nil
}
