package storage

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"
)

// ErrInvalidPath is returned for empty paths or paths escaping the store root.
var ErrInvalidPath = errors.New("invalid asset path")

// AssetStore persists uploaded files. Paths are slash-separated and relative to the store root.
type AssetStore interface {
	Store(name string, r io.Reader) error
	Delete(name string) error
	Exists(name string) (bool, error)
}

// LocalStore keeps assets on a filesystem rooted at the upload directory.
type LocalStore struct {
	fs afero.Fs
}

// NewLocalStore roots a store at dir on the host filesystem, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}

	return NewLocalStoreFs(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// NewLocalStoreFs wraps an existing filesystem whose root is the store root.
func NewLocalStoreFs(fs afero.Fs) *LocalStore {
	return &LocalStore{fs: fs}
}

func (s *LocalStore) Store(name string, r io.Reader) error {
	p, err := cleanPath(name)
	if err != nil {
		return err
	}

	return afero.WriteReader(s.fs, p, r)
}

// Delete removes the asset. Missing files are not an error.
func (s *LocalStore) Delete(name string) error {
	p, err := cleanPath(name)
	if err != nil {
		return err
	}

	if err := s.fs.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

func (s *LocalStore) Exists(name string) (bool, error) {
	p, err := cleanPath(name)
	if err != nil {
		return false, err
	}

	return afero.Exists(s.fs, p)
}

// FileSystem exposes the directory dir of the store for static serving.
func (s *LocalStore) FileSystem(dir string) http.FileSystem {
	return afero.NewHttpFs(s.fs).Dir(dir)
}

func cleanPath(name string) (string, error) {
	name = strings.TrimPrefix(name, "/uploads/")
	if name == "" {
		return "", ErrInvalidPath
	}

	p := path.Clean("/" + name)
	if p == "/" || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}

	return p, nil
}
