package cmd

import (
	"errors"
	"log/slog"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/config"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/pathutil"
)

var errMissingEmail = errors.New("no email given (use --email or LEDGER_EMAIL)")

// app bundles what every command needs.
type app struct {
	cfg     *config.Config
	paths   *pathutil.PathResolver
	conn    *db.Connection
	users   *ledger.Users
	service *ledger.Service
}

func openApp() *app {
	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")
	if cfg.Debug {
		logLevel.Set(slog.LevelDebug)
	}

	if err := cfg.Validate(cfg.RequiredForDriver()...); err != nil {
		exitOnError(err, "invalid configuration")
	}

	pathResolver := pathutil.New(pathutil.Config{
		Root:         cfg.Ledger.Root,
		DatabasePath: cfg.Database.Path,
	})

	opts := db.Options{Driver: db.Driver(cfg.Database.Driver)}
	if opts.Driver == db.DriverPostgres {
		opts.DSN = cfg.Database.DSN()
		slog.Debug("Opening database", "driver", opts.Driver, "host", cfg.Database.Host, "name", cfg.Database.Name)
	} else {
		opts.Path = pathResolver.GetDatabasePath()
		slog.Debug("Opening database", "driver", opts.Driver, "path", opts.Path)
	}

	conn, err := db.OpenWithOptions(opts)
	exitOnError(err, "failed to open database")

	logger := slog.Default()
	return &app{
		cfg:     cfg,
		paths:   pathResolver,
		conn:    conn,
		users:   ledger.NewUsers(conn, logger),
		service: ledger.NewService(conn, logger),
	}
}

func (a *app) close() {
	if err := a.conn.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}

func (a *app) credentials() (string, string) {
	e, p := email, password
	if e == "" {
		e = a.cfg.Auth.Email
	}
	if p == "" {
		p = a.cfg.Auth.Password
	}
	return e, p
}

// actor logs in with the configured credentials.
func (a *app) actor() ledger.Actor {
	e, p := a.credentials()
	if e == "" {
		exitOnError(errMissingEmail, "not logged in")
	}
	actor, err := a.users.Login(e, p)
	exitOnError(err, "failed to log in")
	slog.Debug("Acting as", "nickname", actor.Nickname, "user_id", actor.UserID)
	return actor
}
