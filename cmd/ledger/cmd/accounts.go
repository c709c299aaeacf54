package cmd

import (
	"fmt"
	"io"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/report"
	"github.com/spf13/cobra"
)

var (
	groupComments   string
	accountGroup    string
	accountCurrency string
	accountIsCredit bool
)

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage account groups",
}

var groupAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an account group",
	Long: `Create an account group unless one with the same name exists.

Example:
  ledger group add 住房基金 --comments 用于住房支出`,
	Args: cobra.ExactArgs(1),
	Run:  runGroupAdd,
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List account groups",
	Args:  cobra.NoArgs,
	Run:   runGroupList,
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts",
}

var accountAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create an account",
	Long: `Create an account with zero balances unless one with the same name exists.

The group given by --group must exist; without --group the account goes
to the ungrouped group.

Example:
  ledger account add Checking --group Main --currency RMB
  ledger account add Visa --group Cards --currency Dollar --credit`,
	Args: cobra.ExactArgs(1),
	Run:  runAccountAdd,
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with their groups",
	Args:  cobra.NoArgs,
	Run:   runAccountList,
}

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage books",
}

var bookAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a book",
	Long: `Create a book named "<nickname>的<name>". The first book becomes the
default book used when bills and transfers name none.

Example:
  ledger book add 日常账本`,
	Args: cobra.ExactArgs(1),
	Run:  runBookAdd,
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List books",
	Args:  cobra.NoArgs,
	Run:   runBookList,
}

func init() {
	groupAddCmd.Flags().StringVar(&groupComments, "comments", "", "group comments")
	groupCmd.AddCommand(groupAddCmd, groupListCmd)

	accountAddCmd.Flags().StringVar(&accountGroup, "group", "", "existing account group")
	accountAddCmd.Flags().StringVar(&accountCurrency, "currency", "RMB", "RMB or Dollar")
	accountAddCmd.Flags().BoolVar(&accountIsCredit, "credit", false, "credit account")
	accountCmd.AddCommand(accountAddCmd, accountListCmd)

	bookCmd.AddCommand(bookAddCmd, bookListCmd)
}

func runGroupAdd(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	group, created, err := a.service.EnsureGroup(a.actor(), args[0], groupComments)
	exitOnError(err, "failed to create account group")
	printCreated("Account group", group.Name, created, group)
}

func runGroupList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	groups, err := a.service.ListGroups(a.actor())
	exitOnError(err, "failed to list account groups")
	output(groups, func(w io.Writer) error { return report.Groups(w, groups) })
}

func runAccountAdd(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	account, created, err := a.service.EnsureAccount(a.actor(), ledger.AccountInput{
		Name:     args[0],
		IsCredit: accountIsCredit,
		Group:    accountGroup,
		Currency: accountCurrency,
	})
	exitOnError(err, "failed to create account")
	printCreated("Account", account.Name, created, account)
}

func runAccountList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	accounts, err := a.service.ListAccounts(a.actor())
	exitOnError(err, "failed to list accounts")
	output(accounts, func(w io.Writer) error { return report.Accounts(w, accounts) })
}

func runBookAdd(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	book, created, err := a.service.CreateBook(a.actor(), args[0])
	exitOnError(err, "failed to create book")
	printCreated("Book", book.Name, created, book)
}

func runBookList(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	books, err := a.service.ListBooks(a.actor())
	exitOnError(err, "failed to list books")
	output(books, func(w io.Writer) error { return report.Books(w, books) })
}

func printCreated(kind, name string, created bool, v any) {
	if jsonOut {
		output(map[string]any{"created": created, "item": v}, nil)
		return
	}
	if created {
		fmt.Printf("%s %s is created\n", kind, name)
	} else {
		fmt.Printf("%s %s is already existed\n", kind, name)
	}
}
