package auth

import (
	"context"

	"github.com/mmynk/fairshare/internal/models"
)

// Authenticator defines the interface for authentication implementations.
// This abstraction allows swapping between different auth methods (password, passkeys, OAuth, etc.)
// without changing the service layer code.
type Authenticator interface {
	// Register creates a new account bound to a ledger user key.
	// The credential format depends on the implementation (e.g., password, OAuth token, etc.)
	// Returns the created account or an error if registration fails.
	Register(ctx context.Context, userKey, displayName, credential string) (*models.Account, error)

	// Authenticate verifies the credentials and returns the account if successful.
	// Returns an error if authentication fails.
	Authenticate(ctx context.Context, userKey, credential string) (*models.Account, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	// For passwords: check length, complexity, etc.
	// For other methods: validate format, etc.
	ValidateCredential(credential string) error
}
