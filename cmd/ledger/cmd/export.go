package cmd

import (
	"fmt"
	"log/slog"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/beancount"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/converter"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
	"github.com/spf13/cobra"
)

var (
	exportMonth   string
	exportMapping string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export ledger data",
}

var exportBeancountCmd = &cobra.Command{
	Use:   "beancount",
	Short: "Export the bills and transfers of a month to Beancount",
	Long: `Append the bills and transfers of a month to
<root>/beancount/YYYY/YYYY-MM.beancount.

Postings exported before are recognized by their link and skipped.
Account names come from the mapping file (LEDGER_MAPPING_FILE or
--mapping); unmapped accounts become Assets:<Group>:<Name>, or
Liabilities:<Group>:<Name> for credit accounts.

Example:
  ledger export beancount --month 2020-10 --mapping mapping.yaml`,
	Args: cobra.NoArgs,
	Run:  runExportBeancount,
}

func init() {
	exportBeancountCmd.Flags().StringVar(&exportMonth, "month", "", "month (YYYY-MM) (required)")
	exportBeancountCmd.Flags().StringVar(&exportMapping, "mapping", "", "account mapping YAML file")
	exportBeancountCmd.MarkFlagRequired("month")
	exportCmd.AddCommand(exportBeancountCmd)
}

func runExportBeancount(cmd *cobra.Command, args []string) {
	month, err := ledger.ParseMonth(exportMonth)
	exitOnError(err, "invalid month")

	a := openApp()
	defer a.close()
	actor := a.actor()

	mapper := converter.DefaultMapper()
	mappingFile := exportMapping
	if mappingFile == "" {
		mappingFile = a.cfg.Ledger.MappingFile
	}
	if mappingFile != "" {
		mapper, err = converter.NewMapper(mappingFile)
		exitOnError(err, "failed to load account mapping")
		slog.Debug("Loaded account mapping", "path", mappingFile, "accounts", len(mapper.GetAllMappings()))
	}

	accounts, err := a.service.ListAccounts(actor)
	exitOnError(err, "failed to list accounts")
	bills, transfers, err := a.service.MonthPostings(actor, month.String())
	exitOnError(err, "failed to list postings")

	conv := converter.NewConverter(mapper, accounts)
	txns, err := conv.ConvertMonth(bills, transfers)
	exitOnError(err, "failed to convert postings")

	repo := beancount.NewFileSystemRepository(a.paths)
	result, err := conv.Export(repo, month.String(), txns)
	exitOnError(err, "failed to export")

	path, _ := a.paths.GetBeancountPath(month.String())
	slog.Info("Exported to Beancount", "path", path, "written", result.Written, "skipped", result.Skipped)
	if jsonOut {
		output(map[string]any{"path": path, "written": result.Written, "skipped": result.Skipped}, nil)
		return
	}
	fmt.Printf("%d transaction(s) written to %s, %d already exported\n", result.Written, path, result.Skipped)
}
