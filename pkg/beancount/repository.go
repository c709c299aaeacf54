package beancount

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/pathutil"
)

// Repository stores exported transactions as one journal file per month.
type Repository interface {
	// ReadMonth returns the journal of a month, or "" when none was written.
	ReadMonth(yearMonth string) (string, error)

	// AppendMonth adds formatted entries to the journal of a month in one
	// write, creating the file with a header first.
	AppendMonth(yearMonth string, entries ...string) error

	// Months lists the months of a year that have a journal, in order.
	Months(year string) ([]string, error)
}

// FileSystemRepository keeps journals at <root>/beancount/YYYY/YYYY-MM.beancount.
type FileSystemRepository struct {
	paths *pathutil.PathResolver
	now   func() time.Time
}

func NewFileSystemRepository(paths *pathutil.PathResolver) *FileSystemRepository {
	return &FileSystemRepository{paths: paths, now: time.Now}
}

func (r *FileSystemRepository) ReadMonth(yearMonth string) (string, error) {
	path, err := r.paths.GetBeancountPath(yearMonth)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read journal %s: %w", yearMonth, err)
	}
	return string(data), nil
}

func (r *FileSystemRepository) AppendMonth(yearMonth string, entries ...string) error {
	if len(entries) == 0 {
		return nil
	}
	path, err := r.paths.GetBeancountPath(yearMonth)
	if err != nil {
		return err
	}

	var sb strings.Builder
	if !r.paths.FileExists(path) {
		if err := r.paths.EnsureParentDir(path); err != nil {
			return fmt.Errorf("failed to create journal directory: %w", err)
		}
		fmt.Fprintf(&sb, "; Household ledger export for %s\n; Generated at %s\n\n",
			yearMonth, r.now().Format(time.RFC3339))
	}
	for _, e := range entries {
		sb.WriteString(strings.TrimRight(e, "\n"))
		sb.WriteString("\n\n")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal %s: %w", yearMonth, err)
	}
	if _, err := f.WriteString(sb.String()); err != nil {
		f.Close()
		return fmt.Errorf("failed to append to journal %s: %w", yearMonth, err)
	}
	return f.Close()
}

func (r *FileSystemRepository) Months(year string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(r.paths.GetBeancountDir(), year))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list journals of %s: %w", year, err)
	}

	var months []string
	for _, e := range entries {
		if name, ok := strings.CutSuffix(e.Name(), ".beancount"); ok && !e.IsDir() {
			months = append(months, name)
		}
	}
	slices.Sort(months)
	return months, nil
}

// Links collects every ^link named in journal content.
func Links(content string) map[string]bool {
	links := map[string]bool{}
	for _, field := range strings.Fields(content) {
		if link, ok := strings.CutPrefix(field, "^"); ok && link != "" {
			links[link] = true
		}
	}
	return links
}
