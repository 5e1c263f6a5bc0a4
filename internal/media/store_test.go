package media

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/nazorat-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/nazorat-backend/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStoreForTests(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(config.MediaConfig{
		UploadDir:         t.TempDir(),
		MaxUploadMB:       1,
		AllowedExtensions: []string{"png", "JPG", ".jpeg", "gif", "mp4", "mov", "avi", "webm"},
	})
	require.NoError(t, err)
	return store
}

func TestSaveResolveRemove(t *testing.T) {
	store := newStoreForTests(t)

	name, err := store.Save("photo.PNG", bytes.NewReader([]byte("png-bytes")))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.Len(t, strings.TrimSuffix(name, ".png"), 32)

	p, err := store.Path(name)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Remove(name))
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, store.Remove(name), "removing a missing file is fine")

	leftovers, err := filepath.Glob(filepath.Join(store.Dir(), ".upload-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSaveRejectsDisallowedAndOversized(t *testing.T) {
	store := newStoreForTests(t)

	_, err := store.Save("notes.pdf", bytes.NewReader([]byte("x")))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
	assert.Contains(t, err.Error(), "images or videos")

	big := bytes.Repeat([]byte("a"), 1024*1024+1)
	_, err = store.Save("clip.mp4", bytes.NewReader(big))
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.CodeOf(err))
}

func TestPathRejectsTraversal(t *testing.T) {
	store := newStoreForTests(t)
	for _, bad := range []string{"", "..", "../etc/passwd", "a/b.png", `a\b.png`} {
		_, err := store.Path(bad)
		assert.Error(t, err, bad)
	}
}

func TestIsImageAndContentType(t *testing.T) {
	for _, name := range []string{"a.jpg", "b.JPEG", "c.png", "d.gif", "e.bmp", "f.webp"} {
		assert.True(t, IsImage(name), name)
	}
	for _, name := range []string{"a.mp4", "b.mov", "c", "d.pdf"} {
		assert.False(t, IsImage(name), name)
	}
	assert.Equal(t, "video/quicktime", ContentType("x.mov"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}
