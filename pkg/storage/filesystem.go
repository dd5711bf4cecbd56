package storage

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// LocalStorage persists uploaded attachments on disk under a base directory
// and maps stored names to the public URL path they are served from.
type LocalStorage struct {
	baseDir   string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, urlPrefix string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, errors.New("upload directory is empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/uploads"
	}
	return &LocalStorage{
		baseDir:   baseDir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

// StoreName derives the on-disk name for an upload: the original base name
// prefixed with the current Unix time in milliseconds.
func (s *LocalStorage) StoreName(original string) string {
	base := filepath.Base(strings.ReplaceAll(original, "\\", "/"))
	if base == "." || base == "/" || base == "" {
		base = "upload"
	}
	return fmt.Sprintf("%d-%s", s.now().UnixMilli(), base)
}

// SaveStream copies r into a newly named file and returns that name.
func (s *LocalStorage) SaveStream(original string, r io.Reader) (string, error) {
	name := s.StoreName(original)
	file, err := os.OpenFile(s.resolve(name), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(s.resolve(name))
		return "", fmt.Errorf("write upload stream: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(s.resolve(name))
		return "", fmt.Errorf("close upload file: %w", err)
	}
	return name, nil
}

// PublicPath is the URL path a stored file is served from. The name is
// escaped so reserved characters such as '#', '?' and '%' survive as part
// of the path.
func (s *LocalStorage) PublicPath(name string) string {
	return path.Join(s.urlPrefix, url.PathEscape(name))
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(name string) error {
	if err := os.Remove(s.resolve(name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete upload file: %w", err)
	}
	return nil
}

// Dir is the directory served under the public prefix.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// URLPrefix is the public path prefix, e.g. "/uploads".
func (s *LocalStorage) URLPrefix() string {
	return s.urlPrefix
}

// Names never contain separators, so they always stay inside baseDir.
func (s *LocalStorage) resolve(name string) string {
	return filepath.Join(s.baseDir, filepath.Base(name))
}
