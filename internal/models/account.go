package models

// Account is a registered login account. Every account is bound to exactly
// one ledger user key; the ledger user is the identity money moves through,
// the account only authenticates it.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// UserKey is the ledger directory key this account acts as.
	UserKey string

	// DisplayName is the human-readable name shown in clients.
	DisplayName string

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last account change.
	UpdatedAt int64
}
