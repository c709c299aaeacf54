package cmd

import (
	"io"
	"log/slog"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/importer"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/report"
	"github.com/spf13/cobra"
)

var forceImport bool

var importCmd = &cobra.Command{
	Use:   "import <kind> <file>",
	Short: "Import accounts, bills, transfers, statistics or a chart of accounts",
	Long: `Import a CSV or XLSX table, or a YAML chart of accounts.

Kinds: accounts, bills, transfers, month_stats, chart.

A file whose content was already imported is skipped unless --force is
given. Rows naming another user are skipped.

Example:
  ledger import chart chart.yaml
  ledger import bills bills-2020-10.csv
  ledger import month_stats stats.xlsx --force`,
	Args: cobra.ExactArgs(2),
	Run:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&forceImport, "force", false, "import even if the content was imported before")
}

func runImport(cmd *cobra.Command, args []string) {
	kind, err := importer.ParseKind(args[0])
	exitOnError(err, "invalid import kind")

	a := openApp()
	defer a.close()

	im := importer.New(a.conn, a.service, a.paths, slog.Default())
	result, err := im.Import(a.actor(), kind, args[1], forceImport)
	exitOnError(err, "import failed")

	output(result, func(w io.Writer) error { return report.ImportResult(w, result) })
}
