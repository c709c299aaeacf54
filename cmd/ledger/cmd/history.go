package cmd

import (
	"io"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/importer"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/report"
	"github.com/spf13/cobra"
)

var historyKind string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show ledger counts and import history",
	Args:  cobra.NoArgs,
	Run:   runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "limit imports to one kind")
}

func runHistory(cmd *cobra.Command, args []string) {
	var kind db.ImportKind
	if historyKind != "" {
		k, err := importer.ParseKind(historyKind)
		exitOnError(err, "invalid import kind")
		kind = k
	}

	a := openApp()
	defer a.close()
	actor := a.actor()

	history := db.NewImportHistory(a.conn)
	stats, err := history.GetStats(actor.UserID)
	exitOnError(err, "failed to read ledger statistics")
	records, err := history.ListImports(actor.UserID, kind)
	exitOnError(err, "failed to list imports")

	output(map[string]any{"stats": stats, "imports": records}, func(w io.Writer) error {
		return report.History(w, stats, records)
	})
}
