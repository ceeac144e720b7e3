package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/fairshare/internal/models"
)

// CreateAccount inserts a new account into the database.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if account.CreatedAt == 0 {
		account.CreatedAt = now
	}
	if account.UpdatedAt == 0 {
		account.UpdatedAt = now
	}

	query := `
		INSERT INTO accounts (id, user_key, display_name, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.UserKey,
		account.DisplayName,
		account.PasswordHash,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// GetAccountByUserKey retrieves an account by its ledger user key.
func (s *SQLiteStore) GetAccountByUserKey(ctx context.Context, userKey string) (*models.Account, error) {
	query := `
		SELECT id, user_key, display_name, password_hash, created_at, updated_at
		FROM accounts
		WHERE user_key = ?
	`
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx, query, userKey).Scan(
		&account.ID,
		&account.UserKey,
		&account.DisplayName,
		&account.PasswordHash,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by user key: %w", err)
	}
	return account, nil
}
