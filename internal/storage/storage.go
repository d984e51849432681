package storage

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNoContent is returned by ReadAll when nothing has ever been written
// to the backing medium. The layer above treats it as a signal to
// initialize the store, not as a failure.
var ErrNoContent = errors.New("backing store has no content")

// Backend is a byte-level medium holding the encoded dataset as a single
// blob. ReadAll returns the entire current contents, WriteAll replaces
// them entirely.
type Backend interface {
	ReadAll(ctx context.Context) ([]byte, error)
	WriteAll(ctx context.Context, data []byte) error
	Close() error
}
