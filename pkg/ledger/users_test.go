package ledger

import (
	"errors"
	"testing"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	actor, created, err := f.users.Register("  Alice@Example.com ", "correct-horse", "Alice")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if !created || actor.Nickname != "Alice" || actor.UserID == 0 {
		t.Errorf("Register() = %+v, created %v", actor, created)
	}

	again, created, err := f.users.Register("alice@example.com", "correct-horse", "Someone")
	if err != nil {
		t.Fatalf("repeated Register() error = %v", err)
	}
	if created || again.UserID != actor.UserID {
		t.Errorf("repeated Register() = %+v, created %v; expected the existing user", again, created)
	}

	if _, _, err := f.users.Register("alice@example.com", "other-password", "Alice"); !errors.Is(err, ErrDuplicateEmail) {
		t.Errorf("Register() with another password error = %v, expected ErrDuplicateEmail", err)
	}

	logged, err := f.users.Login("ALICE@example.com", "correct-horse")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if logged != actor {
		t.Errorf("Login() = %+v, expected %+v", logged, actor)
	}

	if _, err := f.users.Login("alice@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() with wrong password error = %v, expected ErrInvalidCredentials", err)
	}
	if _, err := f.users.Login("nobody@example.com", "correct-horse"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login() for unknown email error = %v, expected ErrInvalidCredentials", err)
	}

	looked, err := f.users.Lookup(actor.UserID)
	if err != nil || looked != actor {
		t.Errorf("Lookup() = %+v, %v", looked, err)
	}
	if _, err := f.users.Lookup(actor.UserID + 100); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Lookup() of unknown id error = %v, expected ErrUserNotFound", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name     string
		email    string
		password string
		nickname string
	}{
		{"bad email", "not-an-email", "secret-password", "Alice"},
		{"short password", "alice@example.com", "12345", "Alice"},
		{"empty nickname", "alice@example.com", "secret-password", " "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := f.users.Register(tt.email, tt.password, tt.nickname)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("Register() error = %v, expected ErrValidation", err)
			}
		})
	}
}

func TestParseValues(t *testing.T) {
	m, err := ParseMonth("2020-10-17")
	if err != nil {
		t.Fatalf("ParseMonth() error = %v", err)
	}
	if m.String() != "2020-10" || m.Key() != "2020-10-01" || m.Next().String() != "2020-11" {
		t.Errorf("ParseMonth() = %v", m)
	}
	if next := (Month{Year: 2020, Month: 12}).Next(); next.String() != "2021-01" {
		t.Errorf("Next() = %s, expected 2021-01", next)
	}
	if _, err := ParseMonth("10/2020"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseMonth(10/2020) error = %v", err)
	}

	for in, want := range map[string]string{"支出": "expense", "Income": "income", "收入": "income"} {
		got, err := ParseDirection(in)
		if err != nil || string(got) != want {
			t.Errorf("ParseDirection(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseDirection("refund"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseDirection(refund) error = %v", err)
	}

	for in, want := range map[string]string{"": "RMB", "cny": "RMB", "usd": "Dollar", "Dollar": "Dollar"} {
		got, err := ParseCurrency(in)
		if err != nil || string(got) != want {
			t.Errorf("ParseCurrency(%q) = %q, %v", in, got, err)
		}
	}

	if d, err := ParseAmount("amount", ""); err != nil || !d.IsZero() {
		t.Errorf("ParseAmount(\"\") = %s, %v", d, err)
	}
	if _, err := ParseAmount("amount", "12,5"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParseAmount(12,5) error = %v", err)
	}
	for _, bad := range []string{"0.001", "1.005", "10000000000000", "-99999999999999.99"} {
		if _, err := ParseAmount("amount", bad); !errors.Is(err, ErrValidation) {
			t.Errorf("ParseAmount(%s) error = %v, expected ErrValidation", bad, err)
		}
	}
	for _, good := range []string{"1.50", "1.500", "-9999999999999.99"} {
		if _, err := ParseAmount("amount", good); err != nil {
			t.Errorf("ParseAmount(%s) error = %v", good, err)
		}
	}
}
