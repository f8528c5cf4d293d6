package imagestore

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveWritesDecodedImage(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	require.NoError(t, err)

	payload := []byte("not really a jpeg")
	ref, err := store.Save("scan-1", "frame", base64.StdEncoding.EncodeToString(payload))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("scan-1", "frame.jpg"), ref)

	written, err := os.ReadFile(filepath.Join(dir, ref))
	require.NoError(t, err)
	assert.Equal(t, payload, written)
}

func TestSaveStripsDataURLPrefix(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	b64 := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("x"))
	_, err = store.Save("scan-1", "frame", b64)
	assert.NoError(t, err)
}

func TestSaveRejectsBadInput(t *testing.T) {
	store, err := New(t.TempDir())
	require.NoError(t, err)

	_, err = store.Save("scan-1", "frame", "")
	assert.Error(t, err)

	_, err = store.Save("scan-1", "frame", "!!not-base64!!")
	assert.Error(t, err)
}
