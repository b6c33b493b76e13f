package filestorage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalFileStorage_SaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	storage, err := NewLocalFileStorage(dir)
	require.NoError(t, err)
	storage.now = func() time.Time { return time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC) }

	url, err := storage.Save(strings.NewReader("conteudo"), "Foto.JPG", "vistorias")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/uploads/vistorias/2024/03/05/2024-03-05-"))
	assert.True(t, strings.HasSuffix(url, ".jpg"))

	onDisk := filepath.Join(dir, filepath.FromSlash(strings.TrimPrefix(url, PublicPrefix)))
	data, err := os.ReadFile(onDisk)
	require.NoError(t, err)
	assert.Equal(t, "conteudo", string(data))

	require.NoError(t, storage.Delete(url))
	_, err = os.Stat(onDisk)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, storage.Delete(url), "deleting a missing file succeeds")
}

func TestLocalFileStorage_DeleteRejectsTraversal(t *testing.T) {
	storage, err := NewLocalFileStorage(t.TempDir())
	require.NoError(t, err)

	assert.Error(t, storage.Delete("/uploads/../etc/passwd"))
}
