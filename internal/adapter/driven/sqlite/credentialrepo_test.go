package sqlite

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/gitmomentum/internal/domain/port/driven"
)

func testKey() []byte {
	return bytes.Repeat([]byte{0x42}, 32)
}

func newTestCredentialRepo(t *testing.T) *CredentialRepo {
	t.Helper()
	repo, err := NewCredentialRepo(setupTestDB(t), testKey())
	require.NoError(t, err)
	return repo
}

func TestCredentialRepo_SetAndGet(t *testing.T) {
	repo := newTestCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.SessionTokenKey, "ghp_abc123"))

	val, err := repo.Get(ctx, driven.SessionTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "ghp_abc123", val)
}

func TestCredentialRepo_ValueIsEncryptedAtRest(t *testing.T) {
	repo := newTestCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.SessionTokenKey, "ghp_secret"))

	var stored string
	err := repo.db.Reader.QueryRowContext(ctx, `SELECT value FROM credentials WHERE name = ?`, driven.SessionTokenKey).Scan(&stored)
	require.NoError(t, err)
	assert.NotContains(t, stored, "ghp_secret")
}

func TestCredentialRepo_GetMissing(t *testing.T) {
	repo := newTestCredentialRepo(t)

	val, err := repo.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_UpsertOverwrites(t *testing.T) {
	repo := newTestCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.SessionTokenKey, "old-value"))
	require.NoError(t, repo.Set(ctx, driven.SessionTokenKey, "new-value"))

	val, err := repo.Get(ctx, driven.SessionTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "new-value", val)

	var rows int
	require.NoError(t, repo.db.Reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM credentials`).Scan(&rows))
	assert.Equal(t, 1, rows)
}

func TestCredentialRepo_Delete(t *testing.T) {
	repo := newTestCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.SessionTokenKey, "ghp_abc"))
	require.NoError(t, repo.Delete(ctx, driven.SessionTokenKey))

	val, err := repo.Get(ctx, driven.SessionTokenKey)
	require.NoError(t, err)
	assert.Equal(t, "", val)
}

func TestCredentialRepo_DeleteNonexistent(t *testing.T) {
	repo := newTestCredentialRepo(t)

	err := repo.Delete(context.Background(), "nonexistent")
	assert.NoError(t, err, "deleting nonexistent credential should not error")
}

func TestCredentialRepo_NoKey(t *testing.T) {
	repo, err := NewCredentialRepo(setupTestDB(t), nil)
	require.NoError(t, err)
	assert.False(t, repo.Enabled())

	ctx := context.Background()
	assert.ErrorIs(t, repo.Set(ctx, driven.SessionTokenKey, "x"), driven.ErrEncryptionKeyNotSet)
	_, err = repo.Get(ctx, driven.SessionTokenKey)
	assert.ErrorIs(t, err, driven.ErrEncryptionKeyNotSet)
	assert.NoError(t, repo.Delete(ctx, driven.SessionTokenKey))
}

func TestCredentialRepo_ValueBoundToName(t *testing.T) {
	repo := newTestCredentialRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, driven.SessionTokenKey, "ghp_abc"))
	_, err := repo.db.Writer.ExecContext(ctx,
		`INSERT INTO credentials (name, value) SELECT 'copied', value FROM credentials WHERE name = ?`,
		driven.SessionTokenKey)
	require.NoError(t, err)

	_, err = repo.Get(ctx, "copied")
	require.Error(t, err)
}

func TestCredentialRepo_CorruptValue(t *testing.T) {
	repo := newTestCredentialRepo(t)
	ctx := context.Background()

	_, err := repo.db.Writer.ExecContext(ctx,
		`INSERT INTO credentials (name, value) VALUES (?, ?)`, driven.SessionTokenKey, "AAAA")
	require.NoError(t, err)

	_, err = repo.Get(ctx, driven.SessionTokenKey)
	assert.ErrorIs(t, err, errCiphertextTooShort)
}

func TestNewCredentialRepo_RejectsShortKey(t *testing.T) {
	_, err := NewCredentialRepo(setupTestDB(t), []byte("short"))
	require.Error(t, err)
}

func TestCredentialRepo_WrongKeyFailsDecrypt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	writer, err := NewCredentialRepo(db, testKey())
	require.NoError(t, err)
	require.NoError(t, writer.Set(ctx, driven.SessionTokenKey, "ghp_abc"))

	reader, err := NewCredentialRepo(db, bytes.Repeat([]byte{0x07}, 32))
	require.NoError(t, err)
	_, err = reader.Get(ctx, driven.SessionTokenKey)
	require.Error(t, err)
}
