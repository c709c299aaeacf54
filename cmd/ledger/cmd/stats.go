package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/report"
	"github.com/spf13/cobra"
)

var (
	statMonth   string
	statAccount string
	statValues  = map[string]*string{}
	archive     bool
)

var statColumns = []string{"amount", "adjust", "interest-income", "invest-income", "normal-income", "normal-outcome", "transfer"}

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Record and list monthly account statistics",
}

var statRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record the statistic of an account for a month",
	Long: `Record the monthly statistic of an account. An existing statistic for
the same account and month is never overwritten.

Example:
  ledger stat record --month 2020-10 --account Checking --amount 1000.2 \
    --interest-income 0.8 --invest-income -10 --normal-income 5000 \
    --normal-outcome 19.8 --transfer -20`,
	Args: cobra.NoArgs,
	Run:  runStatRecord,
}

var statListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the statistics of an account",
	Args:  cobra.NoArgs,
	Run:   runStatList,
}

var sumupCmd = &cobra.Command{
	Use:   "sumup",
	Short: "Sum the statistics of all accounts for a month",
	Long: `Sum every component of the monthly statistics of all your accounts.

Example:
  ledger sumup --month 2020-10 --archive`,
	Args: cobra.NoArgs,
	Run:  runSumUp,
}

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the statistic of an account for a month",
	Long: `Print the remainder (adjust + interest income + invest income + normal
income + normal outcome + transfer) next to the stated amount.

Example:
  ledger reconcile --account Checking --month 2020-10`,
	Args: cobra.NoArgs,
	Run:  runReconcile,
}

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Compare a statistic with the bills and transfers of its month",
	Args:  cobra.NoArgs,
	Run:   runActivity,
}

func init() {
	statRecordCmd.Flags().StringVar(&statMonth, "month", "", "month (YYYY-MM) (required)")
	statRecordCmd.Flags().StringVar(&statAccount, "account", "", "account name (required)")
	for _, c := range statColumns {
		statValues[c] = statRecordCmd.Flags().String(c, "0", c)
	}
	statRecordCmd.MarkFlagRequired("month")
	statRecordCmd.MarkFlagRequired("account")

	statListCmd.Flags().StringVar(&statAccount, "account", "", "account name (required)")
	statListCmd.MarkFlagRequired("account")

	statCmd.AddCommand(statRecordCmd, statListCmd)

	sumupCmd.Flags().StringVar(&statMonth, "month", "", "month (YYYY-MM) (required)")
	sumupCmd.Flags().BoolVar(&archive, "archive", false, "also write the report below the ledger root")
	sumupCmd.MarkFlagRequired("month")

	for _, c := range []*cobra.Command{reconcileCmd, activityCmd} {
		c.Flags().StringVar(&statAccount, "account", "", "account name (required)")
		c.Flags().StringVar(&statMonth, "month", "", "month (YYYY-MM) (required)")
		c.MarkFlagRequired("account")
		c.MarkFlagRequired("month")
	}
}

func runStatRecord(cmd *cobra.Command, args []string) {
	in := ledger.StatInput{Month: statMonth, Account: statAccount}
	for column, dest := range map[string]*decimal.Decimal{
		"amount":          &in.Amount,
		"adjust":          &in.Adjust,
		"interest-income": &in.InterestIncome,
		"invest-income":   &in.InvestIncome,
		"normal-income":   &in.NormalIncome,
		"normal-outcome":  &in.NormalOutcome,
		"transfer":        &in.Transfer,
	} {
		v, err := ledger.ParseAmount(column, *statValues[column])
		exitOnError(err, "invalid statistic")
		*dest = v
	}

	a := openApp()
	defer a.close()

	result, err := a.service.RecordMonthStat(a.actor(), in)
	exitOnError(err, "failed to record statistic")

	if jsonOut {
		output(map[string]any{"outcome": result.Outcome.String(), "month": result.Month, "stat": result.Stat}, nil)
		return
	}
	fmt.Printf("Statistic of %s for %s: %s\n", statAccount, result.Month, result.Outcome)
}

func runStatList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()
	actor := a.actor()

	account, err := a.service.FindAccount(actor, statAccount)
	exitOnError(err, "failed to find account")
	stats, err := a.service.ListMonthStats(actor, statAccount)
	exitOnError(err, "failed to list statistics")

	output(stats, func(w io.Writer) error {
		return report.MonthStats(w, account.Name, account.Currency, stats)
	})
}

func runSumUp(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	totals, err := a.service.SumUpMonth(a.actor(), statMonth)
	exitOnError(err, "failed to sum up month")

	render := func(w io.Writer) error { return report.MonthTotals(w, totals) }
	if archive {
		archiveReport(a, totals.Month, render)
	}
	output(totals, render)
}

func runReconcile(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	rec, err := a.service.ReconcileAccountMonth(a.actor(), statAccount, statMonth)
	exitOnError(err, "failed to reconcile account")

	output(rec, func(w io.Writer) error { return report.Reconciliation(w, rec) })
}

func runActivity(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()
	actor := a.actor()

	account, err := a.service.FindAccount(actor, statAccount)
	exitOnError(err, "failed to find account")
	cmp, err := a.service.CompareMonth(actor, statAccount, statMonth)
	exitOnError(err, "failed to compare month")

	output(cmp, func(w io.Writer) error { return report.Comparison(w, cmp, account.Currency) })
}

// archiveReport keeps the Markdown report of a month below the ledger root.
func archiveReport(a *app, month ledger.Month, render func(io.Writer) error) {
	path, err := a.paths.GetReportPath(month.String())
	exitOnError(err, "failed to resolve report path")
	exitOnError(a.paths.EnsureParentDir(path), "failed to create report directory")

	var buf bytes.Buffer
	exitOnError(render(&buf), "failed to render report")
	exitOnError(os.WriteFile(path, buf.Bytes(), 0644), "failed to write report")
	slog.Info("Report archived", "path", path)
}
