package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// errCiphertextTooShort means a stored value is shorter than the GCM nonce.
var errCiphertextTooShort = errors.New("ciphertext too short")

// CredentialRepo stores named secrets sealed with AES-256-GCM. The credential
// name is bound as additional data, so a value copied under another name
// fails to open.
type CredentialRepo struct {
	db   *DB
	aead cipher.AEAD // nil when no key was configured.
}

// NewCredentialRepo creates a CredentialRepo. key must be 32 bytes, or nil to
// run without persistence (Set and Get then return driven.ErrEncryptionKeyNotSet).
func NewCredentialRepo(db *DB, key []byte) (*CredentialRepo, error) {
	repo := &CredentialRepo{db: db}
	if key == nil {
		return repo, nil
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("credential key must be 32 bytes, got %d", len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("aes cipher: %w", err)
	}
	repo.aead, err = cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("gcm: %w", err)
	}
	return repo, nil
}

// Enabled reports whether values can be persisted.
func (r *CredentialRepo) Enabled() bool { return r.aead != nil }

// Set stores or replaces the named credential.
func (r *CredentialRepo) Set(ctx context.Context, name, plaintext string) error {
	if r.aead == nil {
		return driven.ErrEncryptionKeyNotSet
	}
	sealed, err := r.seal(name, plaintext)
	if err != nil {
		return fmt.Errorf("seal credential %q: %w", name, err)
	}

	const query = `INSERT INTO credentials (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	if _, err := r.db.Writer.ExecContext(ctx, query, name, sealed); err != nil {
		return fmt.Errorf("set credential %q: %w", name, err)
	}
	return nil
}

// Get returns the named credential, or ("", nil) when none is stored.
func (r *CredentialRepo) Get(ctx context.Context, name string) (string, error) {
	if r.aead == nil {
		return "", driven.ErrEncryptionKeyNotSet
	}

	var sealed string
	err := r.db.Reader.QueryRowContext(ctx, `SELECT value FROM credentials WHERE name = ?`, name).Scan(&sealed)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return "", nil
	case err != nil:
		return "", fmt.Errorf("get credential %q: %w", name, err)
	}

	plaintext, err := r.open(name, sealed)
	if err != nil {
		return "", fmt.Errorf("open credential %q: %w", name, err)
	}
	return plaintext, nil
}

// Delete removes the named credential. It works without a key so a logout
// always clears what an earlier run stored.
func (r *CredentialRepo) Delete(ctx context.Context, name string) error {
	if _, err := r.db.Writer.ExecContext(ctx, `DELETE FROM credentials WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete credential %q: %w", name, err)
	}
	return nil
}

// seal returns base64(nonce || ciphertext || tag).
func (r *CredentialRepo) seal(name, plaintext string) (string, error) {
	nonce := make([]byte, r.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	out := r.aead.Seal(nonce, nonce, []byte(plaintext), []byte(name))
	return base64.StdEncoding.EncodeToString(out), nil
}

func (r *CredentialRepo) open(name, encoded string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64: %w", err)
	}
	n := r.aead.NonceSize()
	if len(data) < n {
		return "", errCiphertextTooShort
	}
	plaintext, err := r.aead.Open(nil, data[:n], data[n:], []byte(name))
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
