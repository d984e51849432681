package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/MendoncaGabriel/TinyDBJson/internal/storage"
	"github.com/kjk/common/atomicfile"
	"github.com/pkg/errors"
)

// FileStore keeps the dataset in a single file. The path is resolved to
// its absolute form at construction; no file is touched until the first
// ReadAll or WriteAll.
type FileStore struct {
	path string
}

func New(location string) (*FileStore, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("file store location must be a non-empty path")
	}

	abs, err := filepath.Abs(location)
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve path %s", location)
	}

	return &FileStore{path: abs}, nil
}

func (fs *FileStore) Path() string {
	return fs.path
}

func (fs *FileStore) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNoContent
		}

		return nil, errors.Wrapf(err, "could not read file %s", fs.path)
	}

	return b, nil
}

// WriteAll replaces the file contents through a temp file and a rename,
// so a failed write never leaves a torn dataset behind.
func (fs *FileStore) WriteAll(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := atomicfile.New(fs.path)
	if err != nil {
		return errors.Wrapf(err, "could not open %s for writing", fs.path)
	}
	defer f.RemoveIfNotClosed()

	if _, err := f.Write(data); err != nil {
		return errors.Wrapf(err, "could not write to file %s", fs.path)
	}

	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "could not commit write to file %s", fs.path)
	}

	return nil
}

func (fs *FileStore) Close() error {
	return nil
}
