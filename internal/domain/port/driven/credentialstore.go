package driven

import (
	"context"
	"errors"
)

// ErrEncryptionKeyNotSet is returned by CredentialStore operations when
// GITMOMENTUM_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set GITMOMENTUM_SECRET_KEY")

// SessionTokenKey is the credential name the session token is stored under.
const SessionTokenKey = "gtm_token"

// CredentialStore defines the driven port for encrypted credential persistence.
// The adapter layer is responsible for encryption/decryption; this interface
// operates on plaintext values at the domain boundary.
type CredentialStore interface {
	// Set stores or replaces the credential with the given name.
	// Returns ErrEncryptionKeyNotSet if the adapter was constructed without a key.
	Set(ctx context.Context, name, plaintext string) error

	// Get retrieves the plaintext credential. Returns ("", nil) if absent.
	Get(ctx context.Context, name string) (string, error)

	// Delete removes the credential. Deleting an absent name is not an error.
	Delete(ctx context.Context, name string) error
}
