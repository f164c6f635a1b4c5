package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveReturnsServableReference(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save("photo.PNG", strings.NewReader("fake image bytes"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, URLPrefix+"/"))
	assert.True(t, strings.HasSuffix(ref, ".png"), "extension should be lowercased: %s", ref)

	name := strings.TrimPrefix(ref, URLPrefix+"/")
	content, err := os.ReadFile(filepath.Join(store.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(content))
}

func TestSaveGeneratesUniqueNames(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	first, err := store.Save("same.jpg", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := store.Save("same.jpg", strings.NewReader("b"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRemoveDeletesFile(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	ref, err := store.Save("photo.png", strings.NewReader("bytes"))
	require.NoError(t, err)
	require.NoError(t, store.Remove(ref))

	name := strings.TrimPrefix(ref, URLPrefix+"/")
	_, statErr := os.Stat(filepath.Join(store.Dir(), name))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRemoveMissingFileIsSuccess(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	assert.NoError(t, store.Remove(URLPrefix+"/never-existed.png"))
}

func TestRemoveRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, ref := range []string{
		"/uploads/../etc/passwd",
		"/uploads/..%2Fetc/passwd",
		"/etc/passwd",
		"plain.png",
		"/uploads/",
	} {
		assert.Error(t, store.Remove(ref), "reference %q should be rejected", ref)
	}
}

func TestNewLocalStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	store, err := NewLocalStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestNewLocalStoreRequiresDir(t *testing.T) {
	_, err := NewLocalStore("")
	assert.Error(t, err)
}
