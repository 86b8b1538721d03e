// Package filex contains small filesystem helpers for the temporary files
// that inbound uploads are staged in.
package filex

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// EnsureSubdDir creates dirName if it does not exist yet and returns its
// absolute path. Relative names resolve against the working directory.
func EnsureSubdDir(dirName string) (string, error) {
	dir := dirName
	if !filepath.IsAbs(dir) {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		dir = filepath.Join(cwd, dirName)
	}

	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}

// Remove deletes path. A file that is already gone is not an error.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// LocalFile is a staged file whose lifetime ends with exactly one Release,
// no matter how many code paths call it.
type LocalFile struct {
	Path string

	once sync.Once
	err  error
}

// NewLocalFile wraps path. An empty path yields a LocalFile whose Release is a no-op.
func NewLocalFile(path string) *LocalFile {
	return &LocalFile{Path: path}
}

// Release removes the file on the first call and returns the same result on
// every later call.
func (f *LocalFile) Release() error {
	f.once.Do(func() {
		f.err = Remove(f.Path)
	})
	return f.err
}
