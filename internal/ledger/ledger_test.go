package ledger

import (
	"errors"
	"testing"
)

func asErr[T any](err error, target *T) bool {
	return errors.As(err, target)
}

func TestNameToKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"FooBarBaz", "foobarbaz"},
		{"Singular", "singular"},
		{"Inigo Montoya", "inigomontoya"},
		{"Iñigo Martínez", "iñigomartínez"},
		{"snake_case-name", "snakecasename"},
	}
	for _, tt := range tests {
		if got := NameToKey(tt.name); got != tt.want {
			t.Errorf("NameToKey(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestDirectories(t *testing.T) {
	l := New()

	t.Run("user found by key", func(t *testing.T) {
		u := l.CreateUser("", "a", "")
		if got := l.User("a"); got != u {
			t.Errorf("User(a) = %v, want %v", got, u)
		}
	})

	t.Run("missing key answers nil", func(t *testing.T) {
		if got := l.User("does-not-exist"); got != nil {
			t.Errorf("User(does-not-exist) = %v, want nil", got)
		}
	})

	t.Run("key defaults from name", func(t *testing.T) {
		u := l.CreateUser("Inigo Montoya", "", "")
		if got := l.User("inigomontoya"); got != u {
			t.Errorf("User(inigomontoya) = %v, want %v", got, u)
		}
		if got := l.User("Inigo Montoya"); got != nil {
			t.Errorf("unnormalized lookup = %v, want nil", got)
		}
	})

	t.Run("records name and img", func(t *testing.T) {
		u := l.CreateUser("Alice Cooper", "", "fright")
		if u.Name != "Alice Cooper" || u.Img != "fright" {
			t.Errorf("got name %q img %q", u.Name, u.Img)
		}
	})

	t.Run("users and groups have separate namespaces", func(t *testing.T) {
		u := l.CreateUser("", "similar", "")
		g := l.CreateGroup(GroupConfig{Key: "similar"})
		if l.User("similar") != u {
			t.Error("user lookup clobbered by group")
		}
		if l.Group("similar") != g {
			t.Error("group lookup clobbered by user")
		}
	})

	t.Run("group records fee, stipend, people", func(t *testing.T) {
		g := l.CreateGroup(GroupConfig{
			Name:    "Alice Cooper",
			Fee:     8,
			Stipend: 2,
			People:  map[string]*Member{"a": {Balance: 1}, "b": {Balance: 2}},
		})
		if g.Fee != 8 || g.Stipend != 2 {
			t.Errorf("fee %v stipend %v, want 8 and 2", g.Fee, g.Stipend)
		}
		if g.Member("a").Balance != 1 || g.Member("b").Balance != 2 {
			t.Error("member balances not recorded")
		}
		if g.Member("c") != nil {
			t.Error("non-member should answer nil")
		}
	})
}

func TestCertificateReplayGuard(t *testing.T) {
	u := NewUser("Bob", "", "")

	first := &Certificate{Payee: "bob", Amount: 5, Currency: "fairshare", Number: u.nextCertificateNumber()}
	second := &Certificate{Payee: "bob", Amount: 7, Currency: "fairshare", Number: u.nextCertificateNumber()}
	u.receiveCertificate(first)
	u.receiveCertificate(second)

	if amount, err := u.consumeCertificate(first); err != nil || amount != 5 {
		t.Fatalf("first consume = (%d, %v), want (5, nil)", amount, err)
	}
	_, err := u.consumeCertificate(first)
	var reused *ReusedCertificateError
	if !asErr(err, &reused) {
		t.Fatalf("second consume error = %v, want ReusedCertificateError", err)
	}

	// High-water mark, not a used-set: consuming the newer certificate then
	// presenting an older-numbered one is indistinguishable from replay.
	if _, err := u.consumeCertificate(second); err != nil {
		t.Fatalf("consume second: %v", err)
	}
	old := &Certificate{Payee: "bob", Amount: 1, Currency: "fairshare", Number: 1}
	if _, err := u.consumeCertificate(old); !asErr(err, &reused) {
		t.Errorf("out-of-order consume error = %v, want ReusedCertificateError", err)
	}
}
