package auth

import (
	"context"
	"testing"
	"time"

	"github.com/mmynk/fairshare/internal/models"
)

type memoryAccounts struct {
	accounts map[string]*models.Account
}

func newMemoryAccounts() *memoryAccounts {
	return &memoryAccounts{accounts: make(map[string]*models.Account)}
}

func (m *memoryAccounts) CreateAccount(_ context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = "acct-" + account.UserKey
	}
	m.accounts[account.UserKey] = account
	return nil
}

func (m *memoryAccounts) GetAccountByUserKey(_ context.Context, userKey string) (*models.Account, error) {
	return m.accounts[userKey], nil
}

func TestPasswordAuthenticator(t *testing.T) {
	ctx := context.Background()
	authn := NewPasswordAuthenticator(newMemoryAccounts())

	t.Run("register and authenticate", func(t *testing.T) {
		account, err := authn.Register(ctx, "alice", "Alice", "correct horse battery")
		if err != nil {
			t.Fatalf("Register failed: %v", err)
		}
		if account.PasswordHash == "correct horse battery" {
			t.Error("Expected password to be hashed")
		}

		got, err := authn.Authenticate(ctx, "alice", "correct horse battery")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.UserKey != "alice" {
			t.Errorf("Expected user key alice, got %s", got.UserKey)
		}
	})

	t.Run("wrong password rejected", func(t *testing.T) {
		if _, err := authn.Authenticate(ctx, "alice", "wrong password"); err != ErrInvalidCredentials {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user rejected", func(t *testing.T) {
		if _, err := authn.Authenticate(ctx, "mallory", "whatever12"); err != ErrInvalidCredentials {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("weak password rejected", func(t *testing.T) {
		if _, err := authn.Register(ctx, "bob", "Bob", "short"); err != ErrWeakPassword {
			t.Errorf("Expected ErrWeakPassword, got %v", err)
		}
	})

	t.Run("duplicate registration rejected", func(t *testing.T) {
		if _, err := authn.Register(ctx, "alice", "Alice", "another password"); err != ErrAccountExists {
			t.Errorf("Expected ErrAccountExists, got %v", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	manager := NewJWTManager("test-secret-key-32-bytes-long!!!", time.Hour)
	account := &models.Account{ID: "acct-1", UserKey: "alice"}

	token, err := manager.Generate(account)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.AccountID != "acct-1" {
		t.Errorf("Expected account ID acct-1, got %s", claims.AccountID)
	}
	if claims.UserKey != "alice" {
		t.Errorf("Expected user key alice, got %s", claims.UserKey)
	}

	t.Run("rejects garbage token", func(t *testing.T) {
		if _, err := manager.Validate("not.a.token"); err == nil {
			t.Error("Expected error for garbage token, got nil")
		}
	})

	t.Run("rejects token signed with another key", func(t *testing.T) {
		other := NewJWTManager("completely-different-secret-key!", time.Hour)
		otherToken, err := other.Generate(account)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(otherToken); err == nil {
			t.Error("Expected error for token signed with another key, got nil")
		}
	})

	t.Run("rejects expired token", func(t *testing.T) {
		expired := NewJWTManager("test-secret-key-32-bytes-long!!!", -time.Minute)
		expiredToken, err := expired.Generate(account)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := manager.Validate(expiredToken); err == nil {
			t.Error("Expected error for expired token, got nil")
		}
	})
}
