package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/seed"
	"github.com/spf13/cobra"
)

var (
	seedBills     int
	seedTransfers int
	seedValue     int64
	seedMonth     string
	seedBook      string
	seedMax       float64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Post generated bills and transfers",
	Long: `Generate plausible bills and transfers across your accounts and post
them in one transaction. The same --seed always generates the same postings.

Example:
  ledger seed --bills 50 --transfers 10 --month 2020-10 --seed 42`,
	Args: cobra.NoArgs,
	Run:  runSeed,
}

func init() {
	seedCmd.Flags().IntVar(&seedBills, "bills", 20, "number of bills")
	seedCmd.Flags().IntVar(&seedTransfers, "transfers", 5, "number of transfers")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "random seed (0 uses the current time)")
	seedCmd.Flags().StringVar(&seedMonth, "month", "", "month to date postings in (YYYY-MM, default current)")
	seedCmd.Flags().StringVar(&seedBook, "book", "", "book name (default book when empty)")
	seedCmd.Flags().Float64Var(&seedMax, "max-amount", 1000, "upper bound of generated amounts")
}

func runSeed(cmd *cobra.Command, args []string) {
	month := ledger.MonthOf(time.Now())
	if seedMonth != "" {
		m, err := ledger.ParseMonth(seedMonth)
		exitOnError(err, "invalid month")
		month = m
	}
	if seedValue == 0 {
		seedValue = time.Now().UnixNano()
	}

	a := openApp()
	defer a.close()
	actor := a.actor()

	accounts, err := a.service.ListAccounts(actor)
	exitOnError(err, "failed to list accounts")
	names := make([]string, 0, len(accounts))
	for _, acc := range accounts {
		names = append(names, acc.Name)
	}

	batch, err := seed.Generate(seed.Options{
		Seed:      seedValue,
		Bills:     seedBills,
		Transfers: seedTransfers,
		Accounts:  names,
		Book:      seedBook,
		Month:     month,
		MaxAmount: seedMax,
	})
	exitOnError(err, "failed to generate postings")

	bills, err := a.service.SeedBills(actor, batch.Bills)
	exitOnError(err, "failed to post bills")
	transfers, err := a.service.SeedTransfers(actor, batch.Transfers)
	exitOnError(err, "failed to post transfers")

	slog.Info("Seeded postings", "seed", seedValue, "month", month, "bills", len(bills), "transfers", len(transfers))
	if jsonOut {
		output(map[string]any{"seed": seedValue, "month": month, "bills": bills, "transfers": transfers}, nil)
		return
	}
	fmt.Printf("Posted %d bills and %d transfers for %s (seed %d)\n", len(bills), len(transfers), month, seedValue)
}
