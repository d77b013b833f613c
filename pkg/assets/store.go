// Package assets stores audio files and derived chunk segments behind a
// path-addressed filesystem abstraction. The pipeline only ever uploads an
// asset or fetches one back by its stored path.
package assets

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/afero"
)

var ErrAssetNotFound = errors.New("asset not found")

type Store struct {
	fs afero.Fs
}

// New returns a store rooted at dir on the local filesystem.
func New(dir string) *Store {
	return &Store{fs: afero.NewBasePathFs(afero.NewOsFs(), dir)}
}

// NewWithFs wraps an arbitrary filesystem, e.g. afero.NewMemMapFs in tests.
func NewWithFs(fs afero.Fs) *Store {
	return &Store{fs: fs}
}

// Save streams r into the asset at p, creating parent directories.
func (s *Store) Save(p string, r io.Reader) error {
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("failed to create asset dir: %w", err)
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return fmt.Errorf("failed to create asset %s: %w", p, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("failed to write asset %s: %w", p, err)
	}
	return nil
}

// Open fetches an asset for reading. The returned file is seekable, which
// the WAV decoder and the retrying service clients both rely on.
func (s *Store) Open(p string) (afero.File, error) {
	f, err := s.fs.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, p)
		}
		return nil, fmt.Errorf("failed to open asset %s: %w", p, err)
	}
	return f, nil
}

// Create opens a writable, seekable asset file for encoders that need
// io.WriteSeeker (the WAV encoder rewrites its header on close).
func (s *Store) Create(p string) (afero.File, error) {
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create asset dir: %w", err)
	}
	f, err := s.fs.Create(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset %s: %w", p, err)
	}
	return f, nil
}

// Remove deletes an asset; missing assets are not an error.
func (s *Store) Remove(p string) error {
	if err := s.fs.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove asset %s: %w", p, err)
	}
	return nil
}
