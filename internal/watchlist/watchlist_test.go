package watchlist

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bist-cli/internal/logger"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, logger.Options{Level: "ERROR"})
}

func TestOpenFreshCreatesDefault(t *testing.T) {
	store := Open(t.TempDir(), testLogger())

	assert.True(t, store.Has(DefaultList))
	assert.Equal(t, []string{DefaultList}, store.Lists())
	assert.Empty(t, store.Symbols(DefaultList))
}

func TestAddNormalizesAndRejectsDuplicates(t *testing.T) {
	store := Open(t.TempDir(), testLogger())

	require.NoError(t, store.Add(DefaultList, " thyao "))
	assert.Equal(t, []string{"THYAO"}, store.Symbols(DefaultList))

	// Same symbol in different case is still a duplicate.
	assert.ErrorIs(t, store.Add(DefaultList, "Thyao"), ErrDuplicateSymbol)
}

func TestAddCreatesListOnDemand(t *testing.T) {
	store := Open(t.TempDir(), testLogger())

	require.NoError(t, store.Add("banks", "GARAN"))
	assert.True(t, store.Has("banks"))
	assert.Equal(t, []string{"GARAN"}, store.Symbols("banks"))
}

func TestRemove(t *testing.T) {
	store := Open(t.TempDir(), testLogger())
	require.NoError(t, store.Add(DefaultList, "THYAO"))
	require.NoError(t, store.Add(DefaultList, "GARAN"))

	require.NoError(t, store.Remove(DefaultList, "thyao"))
	assert.Equal(t, []string{"GARAN"}, store.Symbols(DefaultList))

	assert.ErrorIs(t, store.Remove(DefaultList, "THYAO"), ErrSymbolNotFound)
	assert.ErrorIs(t, store.Remove("missing", "THYAO"), ErrListNotFound)
}

func TestCreateDeleteRename(t *testing.T) {
	store := Open(t.TempDir(), testLogger())

	require.NoError(t, store.Create("banks"))
	assert.ErrorIs(t, store.Create("banks"), ErrListExists)

	require.NoError(t, store.Add("banks", "AKBNK"))
	require.NoError(t, store.Rename("banks", "turkish-banks"))
	assert.False(t, store.Has("banks"))
	assert.Equal(t, []string{"AKBNK"}, store.Symbols("turkish-banks"))

	assert.ErrorIs(t, store.Rename("missing", "x"), ErrListNotFound)
	assert.ErrorIs(t, store.Rename("turkish-banks", DefaultList), ErrListExists)

	require.NoError(t, store.Delete("turkish-banks"))
	assert.ErrorIs(t, store.Delete("turkish-banks"), ErrListNotFound)
	assert.ErrorIs(t, store.Delete(DefaultList), ErrReservedList)
}

func TestRenameDefaultKeepsDefaultPresent(t *testing.T) {
	dir := t.TempDir()
	store := Open(dir, testLogger())
	require.NoError(t, store.Add(DefaultList, "THYAO"))

	require.NoError(t, store.Rename(DefaultList, "main"))
	assert.Equal(t, []string{"THYAO"}, store.Symbols("main"))

	// The default list survives its own rename, emptied.
	assert.True(t, store.Has(DefaultList))
	assert.Empty(t, store.Symbols(DefaultList))

	reopened := Open(dir, testLogger())
	assert.Equal(t, []string{"THYAO"}, reopened.Symbols("main"))
	assert.True(t, reopened.Has(DefaultList))
}

func TestListsOrderDefaultFirst(t *testing.T) {
	store := Open(t.TempDir(), testLogger())
	require.NoError(t, store.Create("zeta"))
	require.NoError(t, store.Create("alpha"))

	assert.Equal(t, []string{DefaultList, "alpha", "zeta"}, store.Lists())
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := Open(dir, testLogger())
	require.NoError(t, store.Add(DefaultList, "THYAO"))
	require.NoError(t, store.Create("banks"))
	require.NoError(t, store.Add("banks", "GARAN"))

	reopened := Open(dir, testLogger())
	assert.Equal(t, []string{"THYAO"}, reopened.Symbols(DefaultList))
	assert.Equal(t, []string{"GARAN"}, reopened.Symbols("banks"))
}

func TestOpenCorruptFileStartsFresh(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte("{broken"), 0o600))

	store := Open(dir, testLogger())
	assert.True(t, store.Has(DefaultList))
	assert.Empty(t, store.Symbols(DefaultList))
}

func TestOpenRestoresMissingDefault(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, fileName), []byte(`{"banks":["GARAN"]}`), 0o600))

	store := Open(dir, testLogger())
	assert.True(t, store.Has(DefaultList))
	assert.Equal(t, []string{"GARAN"}, store.Symbols("banks"))
}
