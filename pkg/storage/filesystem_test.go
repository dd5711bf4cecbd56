package storage

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "uploads"), "uploads/")
	require.NoError(t, err)
	s.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return s
}

func TestSaveStreamWritesTimePrefixedFile(t *testing.T) {
	s := newTestStorage(t)

	name, err := s.SaveStream("pothole.jpg", strings.NewReader("jpeg-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "1700000000123-pothole.jpg", name)
	assert.Equal(t, "/uploads/1700000000123-pothole.jpg", s.PublicPath(name))

	data, err := os.ReadFile(filepath.Join(s.Dir(), name))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestPublicPathEscapesReservedCharacters(t *testing.T) {
	s := newTestStorage(t)

	assert.Equal(t, "/uploads/1700000000123-report%20%231.png", s.PublicPath(s.StoreName("report #1.png")))
	assert.Equal(t, "/uploads/1700000000123-what%3F.png", s.PublicPath(s.StoreName("what?.png")))
	assert.Equal(t, "/uploads/1700000000123-50%25.png", s.PublicPath(s.StoreName("50%.png")))
}

func TestStoreNameStripsDirectories(t *testing.T) {
	s := newTestStorage(t)

	assert.Equal(t, "1700000000123-passwd", s.StoreName("../../etc/passwd"))
	assert.Equal(t, "1700000000123-photo.png", s.StoreName(`C:\Users\citizen\photo.png`))
	assert.Equal(t, "1700000000123-upload", s.StoreName(""))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSaveStreamRemovesPartialFile(t *testing.T) {
	s := newTestStorage(t)

	_, err := s.SaveStream("broken.jpg", failingReader{})
	require.Error(t, err)

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDeleteIgnoresMissingFile(t *testing.T) {
	s := newTestStorage(t)

	name, err := s.SaveStream("a.txt", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.Delete(name))
	require.NoError(t, s.Delete(name))

	_, err = os.Stat(filepath.Join(s.Dir(), name))
	assert.True(t, os.IsNotExist(err))
}

func TestNewLocalStorageRequiresDir(t *testing.T) {
	_, err := NewLocalStorage("", "/uploads")
	assert.Error(t, err)
}
