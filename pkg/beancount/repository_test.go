package beancount

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/shunichi-ikebuchi/household-ledger/pkg/pathutil"
)

const salary = "2020-10-05 * \"工资\" ^ledger-bill-1\n  Assets:Main:Checking  5000.00 CNY\n  Income:Uncategorized  -5000.00 CNY\n"

func TestFileSystemRepository(t *testing.T) {
	repo := NewFileSystemRepository(pathutil.New(pathutil.Config{Root: t.TempDir()}))
	repo.now = func() time.Time { return time.Date(2020, 11, 1, 9, 0, 0, 0, time.UTC) }

	content, err := repo.ReadMonth("2020-10")
	if err != nil || content != "" {
		t.Fatalf("ReadMonth() = %q, %v", content, err)
	}

	if err := repo.AppendMonth("2020-10", salary, salary); err != nil {
		t.Fatalf("AppendMonth() error = %v", err)
	}
	if err := repo.AppendMonth("2020-11", salary); err != nil {
		t.Fatalf("AppendMonth() error = %v", err)
	}
	if err := repo.AppendMonth("2020-10", salary); err != nil {
		t.Fatalf("AppendMonth() error = %v", err)
	}
	if err := repo.AppendMonth("2020-12"); err != nil {
		t.Fatalf("AppendMonth() without entries error = %v", err)
	}

	content, err = repo.ReadMonth("2020-10")
	if err != nil {
		t.Fatalf("ReadMonth() error = %v", err)
	}
	header := "; Household ledger export for 2020-10\n; Generated at 2020-11-01T09:00:00Z\n\n"
	if !strings.HasPrefix(content, header) {
		t.Errorf("missing header:\n%s", content)
	}
	if strings.Count(content, "; Household ledger export") != 1 {
		t.Errorf("header written more than once:\n%s", content)
	}
	if strings.Count(content, "2020-10-05 *") != 3 || !strings.HasSuffix(content, "CNY\n\n") {
		t.Errorf("unexpected content:\n%s", content)
	}

	months, err := repo.Months("2020")
	if err != nil {
		t.Fatalf("Months() error = %v", err)
	}
	if !reflect.DeepEqual(months, []string{"2020-10", "2020-11"}) {
		t.Errorf("Months() = %v", months)
	}
	if empty, err := repo.Months("1999"); err != nil || len(empty) != 0 {
		t.Errorf("Months(1999) = %v, %v", empty, err)
	}

	if err := repo.AppendMonth("2020-1", salary); err == nil {
		t.Error("AppendMonth() accepted a malformed month")
	}
}

func TestLinks(t *testing.T) {
	content := salary + "\n2020-10-06 * \"转账\" ^ledger-transfer-2 ^ledger-bill-11\n  Assets:A  1 CNY\n  Assets:B  -1 CNY\n"
	links := Links(content)
	expected := map[string]bool{"ledger-bill-1": true, "ledger-transfer-2": true, "ledger-bill-11": true}
	if !reflect.DeepEqual(links, expected) {
		t.Errorf("Links() = %v, expected %v", links, expected)
	}
	if len(Links("")) != 0 {
		t.Error("Links(\"\") is not empty")
	}
}
