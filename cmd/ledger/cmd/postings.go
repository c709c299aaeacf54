package cmd

import (
	"fmt"
	"io"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/report"
	"github.com/spf13/cobra"
)

var (
	postAccount   string
	postFrom      string
	postTo        string
	postBook      string
	postAmount    string
	postDirection string
	postDate      string
	postTime      string
	postComments  string
	listMonth     string
)

var billCmd = &cobra.Command{
	Use:   "bill",
	Short: "Post and list bills",
}

var billAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Post a bill",
	Long: `Post an income or expense bill to an account. Balances are not changed.

Example:
  ledger bill add --account Checking --amount 60 --direction 支出 --date 2020-11-01 --comments 买菜`,
	Args: cobra.NoArgs,
	Run:  runBillAdd,
}

var billListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the bills of an account",
	Args:  cobra.NoArgs,
	Run:   runBillList,
}

var transferCmd = &cobra.Command{
	Use:   "transfer",
	Short: "Post and list transfers",
}

var transferAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Post a transfer between two accounts",
	Long: `Post a transfer. Nothing is recorded unless both accounts exist.

Example:
  ledger transfer add --from Checking --to Savings --amount 100 --date 2020-11-02`,
	Args: cobra.NoArgs,
	Run:  runTransferAdd,
}

var transferListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the transfers touching an account",
	Args:  cobra.NoArgs,
	Run:   runTransferList,
}

func init() {
	for _, c := range []*cobra.Command{billAddCmd, transferAddCmd} {
		c.Flags().StringVar(&postBook, "book", "", "book name (default book when empty)")
		c.Flags().StringVar(&postAmount, "amount", "", "non-negative amount (required)")
		c.Flags().StringVar(&postDate, "date", "", "date (YYYY-MM-DD)")
		c.Flags().StringVar(&postTime, "time", "", "time (HH:MM[:SS])")
		c.Flags().StringVar(&postComments, "comments", "", "free text")
		c.MarkFlagRequired("amount")
	}

	billAddCmd.Flags().StringVar(&postAccount, "account", "", "account name (required)")
	billAddCmd.Flags().StringVar(&postDirection, "direction", "expense", "expense|income (支出|收入)")
	billAddCmd.MarkFlagRequired("account")

	transferAddCmd.Flags().StringVar(&postFrom, "from", "", "source account (required)")
	transferAddCmd.Flags().StringVar(&postTo, "to", "", "destination account (required)")
	transferAddCmd.MarkFlagRequired("from")
	transferAddCmd.MarkFlagRequired("to")

	for _, c := range []*cobra.Command{billListCmd, transferListCmd} {
		c.Flags().StringVar(&postAccount, "account", "", "account name (required)")
		c.Flags().StringVar(&listMonth, "month", "", "limit to a month (YYYY-MM)")
		c.MarkFlagRequired("account")
	}

	billCmd.AddCommand(billAddCmd, billListCmd)
	transferCmd.AddCommand(transferAddCmd, transferListCmd)
}

func runBillAdd(cmd *cobra.Command, args []string) {
	amount, err := ledger.ParseAmount("amount", postAmount)
	exitOnError(err, "invalid bill")
	direction, err := ledger.ParseDirection(postDirection)
	exitOnError(err, "invalid bill")

	a := openApp()
	defer a.close()

	id, err := a.service.PostBill(a.actor(), ledger.BillInput{
		Account:   postAccount,
		Book:      postBook,
		Amount:    amount,
		Direction: direction,
		Date:      postDate,
		Time:      postTime,
		Comments:  postComments,
	})
	exitOnError(err, "failed to post bill")
	printPosted("Bill", id)
}

func runTransferAdd(cmd *cobra.Command, args []string) {
	amount, err := ledger.ParseAmount("amount", postAmount)
	exitOnError(err, "invalid transfer")

	a := openApp()
	defer a.close()

	id, err := a.service.PostTransfer(a.actor(), ledger.TransferInput{
		From:     postFrom,
		To:       postTo,
		Book:     postBook,
		Amount:   amount,
		Date:     postDate,
		Time:     postTime,
		Comments: postComments,
	})
	exitOnError(err, "failed to post transfer")
	printPosted("Transfer", id)
}

func runBillList(cmd *cobra.Command, args []string) {
	month := optionalMonth()

	a := openApp()
	defer a.close()
	actor := a.actor()

	account, err := a.service.FindAccount(actor, postAccount)
	exitOnError(err, "failed to find account")
	bills, err := a.service.ListBills(actor, postAccount, month)
	exitOnError(err, "failed to list bills")

	output(bills, func(w io.Writer) error {
		return report.Bills(w, account.Name, account.Currency, bills)
	})
}

func runTransferList(cmd *cobra.Command, args []string) {
	month := optionalMonth()

	a := openApp()
	defer a.close()
	actor := a.actor()

	account, err := a.service.FindAccount(actor, postAccount)
	exitOnError(err, "failed to find account")
	transfers, err := a.service.ListTransfers(actor, postAccount, month)
	exitOnError(err, "failed to list transfers")

	accounts, err := a.service.ListAccounts(actor)
	exitOnError(err, "failed to list accounts")
	names := make(map[int64]string, len(accounts))
	for _, acc := range accounts {
		names[acc.ID] = acc.Name
	}

	output(transfers, func(w io.Writer) error {
		return report.Transfers(w, account.Name, account.Currency, transfers, names)
	})
}

func optionalMonth() *ledger.Month {
	if listMonth == "" {
		return nil
	}
	m, err := ledger.ParseMonth(listMonth)
	exitOnError(err, "invalid month")
	return &m
}

func printPosted(kind string, id int64) {
	if jsonOut {
		output(map[string]any{"id": id}, nil)
		return
	}
	fmt.Printf("%s %d posted\n", kind, id)
}
