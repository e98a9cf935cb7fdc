package secrets

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"bist-cli/internal/logger"
)

// The file-backend tests use useKeyring=false; keyring behaviour is
// exercised through the library's in-memory mock, since no OS keyring is
// available in CI.
func fileStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return NewStore(dir, false, logger.New(io.Discard, logger.Options{Level: "ERROR"})), dir
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := fileStore(t)

	_, ok := store.Get(AccessTokenName)
	assert.False(t, ok)

	require.NoError(t, store.Set(AccessTokenName, "acc-1"))
	require.NoError(t, store.Set(RefreshTokenName, "ref-1"))

	v, ok := store.Get(AccessTokenName)
	require.True(t, ok)
	assert.Equal(t, "acc-1", v)

	v, ok = store.Get(RefreshTokenName)
	require.True(t, ok)
	assert.Equal(t, "ref-1", v)
}

func TestSetOverwrites(t *testing.T) {
	store, _ := fileStore(t)

	require.NoError(t, store.Set(AccessTokenName, "old"))
	require.NoError(t, store.Set(AccessTokenName, "new"))

	v, ok := store.Get(AccessTokenName)
	require.True(t, ok)
	assert.Equal(t, "new", v)
}

func TestTokenFilePermissions(t *testing.T) {
	store, dir := fileStore(t)
	require.NoError(t, store.Set(AccessTokenName, "acc-1"))

	info, err := os.Stat(filepath.Join(dir, tokenFileName))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestClearAll(t *testing.T) {
	store, dir := fileStore(t)
	require.NoError(t, store.Set(AccessTokenName, "acc-1"))
	require.NoError(t, store.Set(RefreshTokenName, "ref-1"))

	store.ClearAll()

	_, ok := store.Get(AccessTokenName)
	assert.False(t, ok)
	_, err := os.Stat(filepath.Join(dir, tokenFileName))
	assert.True(t, os.IsNotExist(err))

	// Clearing an already-empty store must not panic or recreate files.
	store.ClearAll()
}

func TestEmptyValueReadsAsAbsent(t *testing.T) {
	store, _ := fileStore(t)
	require.NoError(t, store.Set(AccessTokenName, ""))

	_, ok := store.Get(AccessTokenName)
	assert.False(t, ok)
}

func TestCorruptFileReadsAsAbsent(t *testing.T) {
	store, dir := fileStore(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, tokenFileName), []byte("not-json"), 0o600))

	_, ok := store.Get(AccessTokenName)
	assert.False(t, ok)

	// A subsequent write replaces the corrupt file.
	require.NoError(t, store.Set(AccessTokenName, "acc-1"))
	v, ok := store.Get(AccessTokenName)
	require.True(t, ok)
	assert.Equal(t, "acc-1", v)
}

func keyringStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return NewStore(dir, true, logger.New(io.Discard, logger.Options{Level: "ERROR"})), dir
}

func TestKeyringRoundTrip(t *testing.T) {
	keyring.MockInit()
	store, dir := keyringStore(t)

	_, ok := store.Get(AccessTokenName)
	assert.False(t, ok)

	require.NoError(t, store.Set(AccessTokenName, "acc-1"))
	require.NoError(t, store.Set(RefreshTokenName, "ref-1"))

	v, ok := store.Get(AccessTokenName)
	require.True(t, ok)
	assert.Equal(t, "acc-1", v)
	v, ok = store.Get(RefreshTokenName)
	require.True(t, ok)
	assert.Equal(t, "ref-1", v)

	// With a working keyring nothing is written to disk.
	_, err := os.Stat(filepath.Join(dir, tokenFileName))
	assert.True(t, os.IsNotExist(err))

	store.ClearAll()
	_, ok = store.Get(AccessTokenName)
	assert.False(t, ok)
	_, ok = store.Get(RefreshTokenName)
	assert.False(t, ok)
}

func TestKeyringFailureFallsBackToFile(t *testing.T) {
	keyring.MockInitWithError(errors.New("keyring locked"))
	store, dir := keyringStore(t)

	// The fallback write must succeed and not surface the keyring error.
	require.NoError(t, store.Set(AccessTokenName, "acc-1"))

	b, err := os.ReadFile(filepath.Join(dir, tokenFileName))
	require.NoError(t, err)
	assert.Contains(t, string(b), "acc-1")

	// Reads fall through the broken keyring to the file.
	v, ok := store.Get(AccessTokenName)
	require.True(t, ok)
	assert.Equal(t, "acc-1", v)

	// ClearAll removes the fallback file even while the keyring errors.
	store.ClearAll()
	_, ok = store.Get(AccessTokenName)
	assert.False(t, ok)
	_, err = os.Stat(filepath.Join(dir, tokenFileName))
	assert.True(t, os.IsNotExist(err))
}
