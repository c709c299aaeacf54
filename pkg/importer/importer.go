// Package importer loads accounts, bills, transfers and monthly statistics
// from CSV or XLSX sheets and account charts from YAML. Every row goes
// through the ledger service; a failing row is counted and logged but never
// aborts the batch.
package importer

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/db"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/ledger"
	"github.com/shunichi-ikebuchi/household-ledger/pkg/pathutil"
)

// Result summarizes one import batch.
type Result struct {
	BatchID string
	Kind    db.ImportKind
	Source  string
	// Duplicate is set when the same content was imported before and the
	// batch was not forced. Nothing else is populated then.
	Duplicate bool
	Rows      int
	Imported  int
	Existed   int
	Skipped   int
	Failed    int
	Errors    []RowError
}

// RowError describes a row that could not be imported.
type RowError struct {
	Line int
	Err  error
}

func (e RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

// Importer feeds external sources into the ledger.
type Importer struct {
	service *ledger.Service
	history *db.ImportHistory
	paths   *pathutil.PathResolver
	logger  *slog.Logger
}

// New creates an Importer. When paths is non-nil every imported file is
// copied below its imports directory. A nil logger uses slog.Default().
func New(conn *db.Connection, service *ledger.Service, paths *pathutil.PathResolver, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		service: service,
		history: db.NewImportHistory(conn),
		paths:   paths,
		logger:  logger,
	}
}

// ParseKind maps a command-line name to an import kind.
func ParseKind(s string) (db.ImportKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accounts", "account":
		return db.ImportAccounts, nil
	case "bills", "bill":
		return db.ImportBills, nil
	case "transfers", "transfer":
		return db.ImportTransfers, nil
	case "month_stats", "stats", "stat":
		return db.ImportMonthStats, nil
	case "chart":
		return db.ImportChart, nil
	}
	return "", fmt.Errorf("unknown import kind %q (expected accounts, bills, transfers, month_stats or chart)", s)
}

// Import reads path as kind and posts every row on behalf of actor. Content
// already imported by the actor is skipped unless force is set.
func (im *Importer) Import(actor ledger.Actor, kind db.ImportKind, path string, force bool) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	hash := contentHash(data)

	result := &Result{Kind: kind, Source: path}
	if !force {
		imported, err := im.history.IsImported(actor.UserID, kind, hash)
		if err != nil {
			return nil, err
		}
		if imported {
			im.logger.Info("Source already imported, skipping", "kind", kind, "path", path)
			result.Duplicate = true
			return result, nil
		}
	}
	result.BatchID = uuid.NewString()

	if kind == db.ImportChart {
		err = im.importChart(actor, data, result)
	} else {
		var records []record
		records, err = readTable(path, data)
		if err == nil {
			err = im.importRecords(actor, kind, records, result)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := im.history.RecordImport(db.ImportRecord{
		BatchID:      result.BatchID,
		Kind:         kind,
		SourcePath:   path,
		ContentHash:  hash,
		OwnerID:      actor.UserID,
		RowsTotal:    result.Rows,
		RowsImported: result.Imported,
		RowsSkipped:  result.Skipped + result.Existed + result.Failed,
	}); err != nil {
		return nil, err
	}

	if im.paths != nil {
		if err := im.archive(result.BatchID, path, data); err != nil {
			im.logger.Warn("Failed to keep a copy of the import", "path", path, "error", err)
		}
	}

	im.logger.Info("Import completed",
		"batch", result.BatchID,
		"kind", kind,
		"rows", result.Rows,
		"imported", result.Imported,
		"existed", result.Existed,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

func (im *Importer) archive(batchID, path string, data []byte) error {
	dest := im.paths.GetImportCopyPath(batchID, path)
	if err := im.paths.EnsureParentDir(dest); err != nil {
		return err
	}
	return os.WriteFile(dest, data, 0644)
}

func (im *Importer) importRecords(actor ledger.Actor, kind db.ImportKind, records []record, result *Result) error {
	var apply func(ledger.Actor, record) (outcome, error)
	switch kind {
	case db.ImportAccounts:
		apply = im.importAccount
	case db.ImportBills:
		apply = im.importBill
	case db.ImportTransfers:
		apply = im.importTransfer
	case db.ImportMonthStats:
		apply = im.importMonthStat
	default:
		return fmt.Errorf("unsupported import kind %q", kind)
	}

	for _, rec := range records {
		result.Rows++

		if user := rec.get("user"); user != "" && user != actor.Nickname {
			im.logger.Warn("Row belongs to another user, skipping", "kind", kind, "user", user, "line", rec.line)
			result.Skipped++
			continue
		}

		out, err := apply(actor, rec)
		result.count(out, rec.line, err)
		if err != nil {
			im.logger.Warn("Row not imported", "kind", kind, "line", rec.line, "error", err)
		}
	}
	return nil
}

type outcome int

const (
	outcomeImported outcome = iota
	outcomeExisted
	outcomeSkipped
	outcomeFailed
)

func (r *Result) count(o outcome, line int, err error) {
	switch o {
	case outcomeImported:
		r.Imported++
	case outcomeExisted:
		r.Existed++
	case outcomeSkipped:
		r.Skipped++
	case outcomeFailed:
		r.Failed++
	}
	if err != nil {
		r.Errors = append(r.Errors, RowError{Line: line, Err: err})
	}
}

// failure classifies a row error: lookup misses are skips, everything else
// is a failure.
func failure(err error) (outcome, error) {
	if errors.Is(err, ledger.ErrNotFound) {
		return outcomeSkipped, err
	}
	return outcomeFailed, err
}

func (im *Importer) importAccount(actor ledger.Actor, rec record) (outcome, error) {
	isCredit, err := parseBool(rec.get("is_credit"))
	if err != nil {
		return outcomeFailed, err
	}

	group := rec.get("group")
	if group != "" {
		if _, _, err := im.service.EnsureGroup(actor, group, ""); err != nil {
			return failure(err)
		}
	}

	_, created, err := im.service.EnsureAccount(actor, ledger.AccountInput{
		Name:     rec.get("name", "account"),
		IsCredit: isCredit,
		Group:    group,
		Currency: rec.get("currency"),
	})
	if err != nil {
		return failure(err)
	}
	if !created {
		return outcomeExisted, nil
	}
	return outcomeImported, nil
}

func (im *Importer) importBill(actor ledger.Actor, rec record) (outcome, error) {
	amount, err := ledger.ParseAmount("amount", rec.get("amount"))
	if err != nil {
		return outcomeFailed, err
	}
	direction, err := ledger.ParseDirection(rec.get("inout", "direction", "inout_type"))
	if err != nil {
		return outcomeFailed, err
	}

	_, err = im.service.PostBill(actor, ledger.BillInput{
		Account:   rec.get("account"),
		Book:      rec.get("book"),
		Amount:    amount,
		Direction: direction,
		Date:      rec.get("billing_date", "date"),
		Time:      rec.get("billing_time", "time"),
		Comments:  rec.get("comments"),
	})
	if err != nil {
		return failure(err)
	}
	return outcomeImported, nil
}

func (im *Importer) importTransfer(actor ledger.Actor, rec record) (outcome, error) {
	amount, err := ledger.ParseAmount("amount", rec.get("amount"))
	if err != nil {
		return outcomeFailed, err
	}

	_, err = im.service.PostTransfer(actor, ledger.TransferInput{
		From:     rec.get("from_account"),
		To:       rec.get("to_account"),
		Book:     rec.get("book"),
		Amount:   amount,
		Date:     rec.get("transfer_date", "date"),
		Time:     rec.get("transfer_time", "time"),
		Comments: rec.get("comments"),
	})
	if err != nil {
		return failure(err)
	}
	return outcomeImported, nil
}

func (im *Importer) importMonthStat(actor ledger.Actor, rec record) (outcome, error) {
	in := ledger.StatInput{
		Month:   rec.get("month"),
		Account: rec.get("account"),
	}
	amounts := []struct {
		column string
		dest   *decimal.Decimal
	}{
		{"amount", &in.Amount},
		{"adjust", &in.Adjust},
		{"interest_income", &in.InterestIncome},
		{"invest_income", &in.InvestIncome},
		{"normal_income", &in.NormalIncome},
		{"normal_outcome", &in.NormalOutcome},
		{"transfer", &in.Transfer},
	}
	for _, a := range amounts {
		v, err := ledger.ParseAmount(a.column, rec.get(a.column))
		if err != nil {
			return outcomeFailed, err
		}
		*a.dest = v
	}

	res, err := im.service.RecordMonthStat(actor, in)
	if err != nil {
		return failure(err)
	}
	switch res.Outcome {
	case ledger.StatInserted:
		return outcomeImported, nil
	case ledger.StatExisted:
		return outcomeExisted, nil
	}
	return outcomeSkipped, fmt.Errorf("%w: %s", ledger.ErrAccountNotFound, in.Account)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "":
		return false, nil
	case "yes", "y", "是":
		return true, nil
	case "no", "n", "否":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid is_credit: %q", s)
	}
	return b, nil
}
