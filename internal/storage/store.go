// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/mmynk/fairshare/internal/models"
)

// Store defines the interface for the server's persistence: login accounts
// and the committed-transaction history. The in-memory ledger is not behind
// this interface on purpose; nothing here feeds back into ledger state.
// The abstraction allows swapping backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// CreateAccount persists a new account. The ID field is populated by
	// the store if empty.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccountByUserKey retrieves an account by its ledger user key.
	// Returns (nil, nil) if no such account exists.
	GetAccountByUserKey(ctx context.Context, userKey string) (*models.Account, error)

	// RecordTransaction appends a committed-operation record. The ID and
	// CreatedAt fields are populated by the store if empty.
	RecordTransaction(ctx context.Context, tx *models.Transaction) error

	// ListTransactionsByGroup retrieves a group's history, newest first.
	ListTransactionsByGroup(ctx context.Context, groupKey string, limit int) ([]*models.Transaction, error)

	// ListTransactionsByUser retrieves a user's history (as actor or
	// payee), newest first.
	ListTransactionsByUser(ctx context.Context, userKey string, limit int) ([]*models.Transaction, error)

	// Close releases any resources held by the store.
	Close() error
}
