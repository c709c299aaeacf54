// Package pathutil provides centralized path management for the ledger's
// database, month reports, Beancount exports and import staging.
package pathutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathResolver manages the paths below the ledger root.
type PathResolver struct {
	root         string
	databasePath string
	importsDir   string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// Root is the ledger data directory (e.g., ~/household/ledger-data)
	Root string
	// DatabasePath is the SQLite database file
	DatabasePath string
	// ImportsDir keeps copies of imported files
	ImportsDir string
}

// New creates a new PathResolver with the given configuration.
// If DatabasePath is empty, it defaults to {Root}/.ledger/ledger.db
// If ImportsDir is empty, it defaults to {Root}/imports
func New(config Config) *PathResolver {
	dbPath := config.DatabasePath
	if dbPath == "" {
		dbPath = filepath.Join(config.Root, ".ledger", "ledger.db")
	}

	importsDir := config.ImportsDir
	if importsDir == "" {
		importsDir = filepath.Join(config.Root, "imports")
	}

	return &PathResolver{
		root:         config.Root,
		databasePath: dbPath,
		importsDir:   importsDir,
	}
}

// GetRoot returns the ledger root directory.
func (p *PathResolver) GetRoot() string {
	return p.root
}

// GetDatabasePath returns the database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetImportsDir returns the import staging directory.
func (p *PathResolver) GetImportsDir() string {
	return p.importsDir
}

// GetReportPath returns the archived month report.
// Example: ledger-data/reports/2020/2020-10.md
func (p *PathResolver) GetReportPath(yearMonth string) (string, error) {
	return p.monthFile("reports", yearMonth, ".md")
}

// GetBeancountPath returns the Beancount export of a month.
// Example: ledger-data/beancount/2020/2020-10.beancount
func (p *PathResolver) GetBeancountPath(yearMonth string) (string, error) {
	return p.monthFile("beancount", yearMonth, ".beancount")
}

// GetBeancountDir returns the root of the Beancount exports.
func (p *PathResolver) GetBeancountDir() string {
	return filepath.Join(p.root, "beancount")
}

func (p *PathResolver) monthFile(kind, yearMonth, ext string) (string, error) {
	parts := strings.Split(yearMonth, "-")
	if len(parts) != 2 || len(parts[0]) != 4 || len(parts[1]) != 2 {
		return "", fmt.Errorf("invalid year-month format: %s. Expected YYYY-MM", yearMonth)
	}
	return filepath.Join(p.root, kind, parts[0], yearMonth+ext), nil
}

// GetImportCopyPath returns where a copy of an imported file is kept.
// Example: imports/<batch>/bills.csv
func (p *PathResolver) GetImportCopyPath(batchID, source string) string {
	return filepath.Join(p.importsDir, batchID, filepath.Base(source))
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}
