package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ImportKind identifies the entity a bulk import source carries.
type ImportKind string

const (
	ImportAccounts   ImportKind = "accounts"
	ImportBills      ImportKind = "bills"
	ImportTransfers  ImportKind = "transfers"
	ImportMonthStats ImportKind = "month_stats"
	ImportChart      ImportKind = "chart"
)

// ImportRecord represents one bulk import batch.
type ImportRecord struct {
	ID           int64
	BatchID      string
	Kind         ImportKind
	SourcePath   string
	ContentHash  string
	OwnerID      int64
	RowsTotal    int
	RowsImported int
	RowsSkipped  int
	ImportedAt   time.Time
}

// ImportHistory manages import history operations.
type ImportHistory struct {
	conn *Connection
}

// NewImportHistory creates a new ImportHistory instance.
func NewImportHistory(conn *Connection) *ImportHistory {
	return &ImportHistory{conn: conn}
}

func (h *ImportHistory) repo() *Repository {
	return h.conn.Repository()
}

// RecordImport records an import batch.
// If the same owner already imported the same content for this kind, the
// record is replaced by the new batch.
func (h *ImportHistory) RecordImport(record ImportRecord) error {
	if record.ImportedAt.IsZero() {
		record.ImportedAt = time.Now().UTC()
	}

	_, err := h.repo().exec(`
		INSERT INTO import_history (batch_id, kind, source_path, content_hash, owner_id,
		                            rows_total, rows_imported, rows_skipped, imported_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner_id, kind, content_hash) DO UPDATE SET
			batch_id = excluded.batch_id,
			source_path = excluded.source_path,
			rows_total = excluded.rows_total,
			rows_imported = excluded.rows_imported,
			rows_skipped = excluded.rows_skipped,
			imported_at = excluded.imported_at
	`,
		record.BatchID,
		string(record.Kind),
		record.SourcePath,
		record.ContentHash,
		record.OwnerID,
		record.RowsTotal,
		record.RowsImported,
		record.RowsSkipped,
		record.ImportedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}

	return nil
}

// IsImported checks if the owner already imported content with this hash.
func (h *ImportHistory) IsImported(ownerID int64, kind ImportKind, contentHash string) (bool, error) {
	var count int
	err := h.repo().queryRow(`
		SELECT COUNT(*) FROM import_history
		WHERE owner_id = ? AND kind = ? AND content_hash = ?
	`, ownerID, string(kind), contentHash).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check if imported: %w", err)
	}

	return count > 0, nil
}

// GetImportRecord retrieves an import record by batch id.
func (h *ImportHistory) GetImportRecord(batchID string) (*ImportRecord, error) {
	rows, err := h.repo().query(`
		SELECT id, batch_id, kind, source_path, content_hash, owner_id,
		       rows_total, rows_imported, rows_skipped, imported_at
		FROM import_history
		WHERE batch_id = ?
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get import record: %w", err)
	}
	records, err := scanImportRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// ListImports retrieves the owner's import records, newest first.
// An empty kind matches every kind.
func (h *ImportHistory) ListImports(ownerID int64, kind ImportKind) ([]ImportRecord, error) {
	rows, err := h.repo().query(`
		SELECT id, batch_id, kind, source_path, content_hash, owner_id,
		       rows_total, rows_imported, rows_skipped, imported_at
		FROM import_history
		WHERE owner_id = ? AND (? = '' OR kind = ?)
		ORDER BY imported_at DESC, id DESC
	`, ownerID, string(kind), string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list imports: %w", err)
	}
	return scanImportRecords(rows)
}

func scanImportRecords(rows *sql.Rows) ([]ImportRecord, error) {
	defer rows.Close()

	var records []ImportRecord
	for rows.Next() {
		var record ImportRecord
		var kind string

		if err := rows.Scan(
			&record.ID,
			&record.BatchID,
			&kind,
			&record.SourcePath,
			&record.ContentHash,
			&record.OwnerID,
			&record.RowsTotal,
			&record.RowsImported,
			&record.RowsSkipped,
			&record.ImportedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan import record: %w", err)
		}

		record.Kind = ImportKind(kind)
		records = append(records, record)
	}

	return records, rows.Err()
}

// Stats represents per-owner ledger statistics.
type Stats struct {
	TotalAccounts   int
	TotalBills      int
	TotalTransfers  int
	TotalMonthStats int
	TotalImports    int
	LastImport      sql.NullTime
}

// GetStats retrieves ledger statistics of an owner.
func (h *ImportHistory) GetStats(ownerID int64) (*Stats, error) {
	var stats Stats
	r := h.repo()

	counts := []struct {
		label string
		query string
		dest  *int
	}{
		{"account", `SELECT COUNT(*) FROM account WHERE owner_id = ?`, &stats.TotalAccounts},
		{"bill", `SELECT COUNT(*) FROM bill WHERE owner_id = ?`, &stats.TotalBills},
		{"transfer", `SELECT COUNT(*) FROM transfer WHERE owner_id = ?`, &stats.TotalTransfers},
		{"month statistic", `SELECT COUNT(*) FROM account_stat_month s
			JOIN account a ON a.id = s.account_id WHERE a.owner_id = ?`, &stats.TotalMonthStats},
		{"import", `SELECT COUNT(*) FROM import_history WHERE owner_id = ?`, &stats.TotalImports},
	}
	for _, c := range counts {
		if err := r.queryRow(c.query, ownerID).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("failed to get %s count: %w", c.label, err)
		}
	}

	// MAX() loses the column type, so read the newest row instead.
	err := r.queryRow(`
		SELECT imported_at FROM import_history
		WHERE owner_id = ? ORDER BY imported_at DESC LIMIT 1
	`, ownerID).Scan(&stats.LastImport)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get last import time: %w", err)
	}

	return &stats, nil
}

// GetMetadata retrieves a metadata value.
func (h *ImportHistory) GetMetadata(key string) (string, error) {
	var value string
	err := h.repo().queryRow(`SELECT value FROM ledger_metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}

	return value, nil
}

// SetMetadata sets a metadata value.
func (h *ImportHistory) SetMetadata(key, value string) error {
	_, err := h.repo().exec(`
		INSERT INTO ledger_metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}

	return nil
}
