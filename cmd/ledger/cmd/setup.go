package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

var nickname string

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the ledger database",
	Long: `Create the ledger database and every missing table.

Running init again is harmless; it reports the tables it created.

Example:
  ledger init`,
	Run: runInit,
}

// registerCmd represents the register command.
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a ledger user",
	Long: `Register the user given by --email and --password.

Registering an existing email with its password is not an error.

Example:
  ledger register --email alice@example.com --password secret --nickname Alice`,
	Run: runRegister,
}

func init() {
	registerCmd.Flags().StringVar(&nickname, "nickname", "", "display name, prefixed to book names (required)")
	registerCmd.MarkFlagRequired("nickname")
}

func runInit(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	created := a.conn.CreatedTables()
	if jsonOut {
		output(map[string]any{"driver": a.conn.Driver(), "created": created}, nil)
		return
	}

	if len(created) == 0 {
		fmt.Println("All tables already existed")
	}
	for _, table := range created {
		fmt.Printf("Table %s is created\n", table)
	}
	slog.Info("Ledger initialized", "root", a.paths.GetRoot(), "created", len(created))
}

func runRegister(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.close()

	e, p := a.credentials()
	actor, created, err := a.users.Register(e, p, nickname)
	exitOnError(err, "failed to register")

	if jsonOut {
		output(map[string]any{"user_id": actor.UserID, "nickname": actor.Nickname, "created": created}, nil)
		return
	}
	if created {
		fmt.Printf("New user %s created (id %d)\n", actor.Nickname, actor.UserID)
	} else {
		fmt.Printf("User %s already existed (id %d)\n", actor.Nickname, actor.UserID)
	}
}
