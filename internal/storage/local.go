// Package storage persists uploaded post attachments on local disk and maps
// them to the opaque references stored on posts.
package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// URLPrefix is the public path prefix under which stored files are served.
const URLPrefix = "/uploads"

// LocalStore writes attachments to a single directory. References returned by
// Save are URL paths like "/uploads/<name>"; only such references are accepted
// back by Remove.
type LocalStore struct {
	dir string
}

// NewLocalStore creates the upload directory if needed and returns a store over it.
func NewLocalStore(dir string) (*LocalStore, error) {
	if dir == "" {
		return nil, errors.New("storage: upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir returns the directory files are stored in, for static file serving.
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save writes the content of r to a new file and returns its public reference.
// The stored name is random; the original filename only contributes its extension.
func (s *LocalStore) Save(originalName string, r io.Reader) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.New().String() + ext
	dst := filepath.Join(s.dir, name)

	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("storage: create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("storage: close file: %w", err)
	}

	return URLPrefix + "/" + name, nil
}

// Remove deletes the file behind a reference previously returned by Save.
// A missing file is treated as success: an already-orphaned attachment must
// never mask the outcome of the operation that triggered the cleanup.
func (s *LocalStore) Remove(ref string) error {
	name, ok := refToName(ref)
	if !ok {
		return fmt.Errorf("storage: invalid attachment reference %q", ref)
	}
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("storage: remove file: %w", err)
	}
	return nil
}

// refToName extracts the bare file name from a "/uploads/..." reference,
// rejecting anything that would escape the upload directory.
func refToName(ref string) (string, bool) {
	if !strings.HasPrefix(ref, URLPrefix+"/") {
		return "", false
	}
	name := path.Clean(strings.TrimPrefix(ref, URLPrefix+"/"))
	if name == "" || name == "." || strings.Contains(name, "/") || strings.Contains(name, "\\") {
		return "", false
	}
	return name, true
}
