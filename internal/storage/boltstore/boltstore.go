package boltstore

import (
	"context"
	"strings"
	"time"

	"github.com/MendoncaGabriel/TinyDBJson/internal/storage"
	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var bucketName = []byte("dataset")
var datasetKey = []byte("records")

// BoltStore keeps the encoded dataset as a single value in a bbolt
// database. Unlike the file store it holds an open handle for its whole
// lifetime, so Close matters.
type BoltStore struct {
	db *bolt.DB
}

func New(location string) (*BoltStore, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("bolt store location must be a non-empty path")
	}

	db, err := bolt.Open(location, 0600, &bolt.Options{Timeout: 10 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open bolt database at %s", location)
	}

	return &BoltStore{db: db}, nil
}

func (bs *BoltStore) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []byte
	err := bs.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketName)
		if b == nil {
			return storage.ErrNoContent
		}

		v := b.Get(datasetKey)
		if v == nil {
			return storage.ErrNoContent
		}

		// v is only valid inside the transaction
		out = append(out, v...)
		return nil
	})

	if err != nil {
		return nil, err
	}

	return out, nil
}

func (bs *BoltStore) WriteAll(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return bs.db.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(bucketName)
		if err != nil {
			return errors.Wrap(err, "could not create dataset bucket")
		}

		return b.Put(datasetKey, data)
	})
}

func (bs *BoltStore) Close() error {
	return bs.db.Close()
}
