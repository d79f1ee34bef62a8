package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"qa-paper-be/internal/apperr"
	"qa-paper-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), logger.NewNopLogger())
	require.NoError(t, err)
	return store
}

func TestSaveAndOpen(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save([]byte("# Generated Answers"), ".md")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, ".md"))

	data, err := store.Open(id)
	require.NoError(t, err)
	assert.Equal(t, "# Generated Answers", string(data))
}

func TestSaveNormalizesExtension(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save([]byte("x"), "md")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(id, ".md"))
}

func TestOpenUnknownArtifact(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Open("00000000-0000-0000-0000-000000000000.md")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestResolveRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, id := range []string{"", "../etc/passwd", "a/b.md", `a\b.md`, "..", "foo..md"} {
		_, err := store.Open(id)
		assert.ErrorIs(t, err, apperr.ErrNotFound, id)
	}
}

func TestDelete(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save([]byte("x"), ".md")
	require.NoError(t, err)

	require.NoError(t, store.Delete(id))
	_, err = store.Open(id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	// Deleting an already-gone artifact is not an error.
	assert.NoError(t, store.Delete(id))
}

func TestCleanupExpired(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger.NewNopLogger())
	require.NoError(t, err)

	oldID, err := store.Save([]byte("old"), ".md")
	require.NoError(t, err)
	freshID, err := store.Save([]byte("fresh"), ".md")
	require.NoError(t, err)

	stale := time.Now().AddDate(0, 0, -10)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldID), stale, stale))

	removed, err := store.CleanupExpired(7)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Open(oldID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = store.Open(freshID)
	assert.NoError(t, err)
}

func TestCleanupDisabledRetention(t *testing.T) {
	store := newTestStore(t)

	id, err := store.Save([]byte("x"), ".md")
	require.NoError(t, err)

	removed, err := store.CleanupExpired(0)
	require.NoError(t, err)
	assert.Zero(t, removed)

	_, err = store.Open(id)
	assert.NoError(t, err)
}
