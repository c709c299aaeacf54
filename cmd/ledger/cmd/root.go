// Package cmd provides CLI commands for the household ledger.
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/report"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	debug     bool
	email     string
	password  string
	jsonOut   bool
	rawOutput bool

	// logLevel is raised to Debug by --debug or DEBUG=true in the config.
	logLevel slog.LevelVar
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Household ledger with monthly reconciliation",
	Long: `ledger keeps a household ledger of accounts, bills and transfers
and reconciles monthly account statistics.

It supports:
- Account groups, accounts and books per user
- Posting bills and transfers
- Recording monthly statistics and reconciling them
- Importing CSV, XLSX and YAML sources
- Exporting months to Beancount

Example:
  ledger init
  ledger account add Checking --group Main
  ledger stat record --month 2020-10 --account Checking --amount 1000.2
  ledger reconcile --account Checking --month 2020-10`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel.Set(slog.LevelInfo)
		if debug {
			logLevel.Set(slog.LevelDebug)
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: &logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&email, "email", "", "user email (default LEDGER_EMAIL)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "user password (default LEDGER_PASSWORD)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&rawOutput, "raw", false, "print Markdown without terminal styling")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(groupCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(billCmd)
	rootCmd.AddCommand(transferCmd)
	rootCmd.AddCommand(statCmd)
	rootCmd.AddCommand(sumupCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(activityCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	return cfgFile
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}

// output prints v as JSON with --json, otherwise the Markdown produced by
// render, styled for the terminal unless --raw is set.
func output(v any, render func(io.Writer) error) {
	if jsonOut || render == nil {
		exitOnError(report.JSON(os.Stdout, v), "failed to print result")
		return
	}

	var buf bytes.Buffer
	exitOnError(render(&buf), "failed to render result")
	fmt.Print(style(buf.String()))
}

func style(markdown string) string {
	if rawOutput {
		return markdown
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		slog.Debug("Markdown renderer unavailable", "error", err)
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		slog.Debug("Failed to style Markdown", "error", err)
		return markdown
	}
	return out
}
