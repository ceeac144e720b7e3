package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/fairshare/internal/models"
)

// RecordTransaction appends a committed operation to the history.
func (s *SQLiteStore) RecordTransaction(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.CreatedAt == 0 {
		tx.CreatedAt = time.Now().Unix()
	}

	query := `
		INSERT INTO transactions (id, op, group_key, actor, payee, amount, cost, certificate_number, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		tx.ID,
		tx.Op,
		tx.GroupKey,
		tx.Actor,
		tx.Payee,
		tx.Amount,
		tx.Cost,
		tx.CertificateNumber,
		tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// ListTransactionsByGroup returns the most recent transactions for a group, newest first.
func (s *SQLiteStore) ListTransactionsByGroup(ctx context.Context, groupKey string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, op, group_key, actor, payee, amount, cost, certificate_number, created_at
		FROM transactions
		WHERE group_key = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, groupKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by group: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ListTransactionsByUser returns the most recent transactions a user took part in,
// as actor or payee, newest first.
func (s *SQLiteStore) ListTransactionsByUser(ctx context.Context, userKey string, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, op, group_key, actor, payee, amount, cost, certificate_number, created_at
		FROM transactions
		WHERE actor = ? OR payee = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := s.db.QueryContext(ctx, query, userKey, userKey, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions by user: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	for rows.Next() {
		tx := &models.Transaction{}
		err := rows.Scan(
			&tx.ID,
			&tx.Op,
			&tx.GroupKey,
			&tx.Actor,
			&tx.Payee,
			&tx.Amount,
			&tx.Cost,
			&tx.CertificateNumber,
			&tx.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return txs, nil
}
