package storage

import (
	"io"
	"os"
	"path/filepath"
)

// FileStorage keeps artifacts in a caller-supplied directory, creating it on
// first write. Paths are visible to the caller: key "verifier.sol" lands at
// <dir>/verifier.sol.
type FileStorage struct {
	dir string
}

func NewFileStorage(dir string) *FileStorage {
	return &FileStorage{dir: dir}
}

// Path returns the on-disk location an artifact key maps to.
func (f *FileStorage) Path(key string) string {
	return filepath.Join(f.dir, key)
}

func (f *FileStorage) Reader(key string) (io.ReadCloser, error) {
	return os.Open(f.Path(key))
}

func (f *FileStorage) Writer(key string) (io.WriteCloser, error) {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(f.Path(key))
}
