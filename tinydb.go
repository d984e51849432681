// Package tinydb is a minimal embedded record store. The whole dataset
// lives as one JSON array on a backing medium; every operation reads it
// fresh, works on it in memory and, when mutating, writes it back in
// full. Records are open JSON objects with a reserved, auto-assigned
// positive integer "id" field.
package tinydb

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

type DB struct {
	e      *engine
	cfg    *Config
	mu     sync.RWMutex
	closed bool
}

type Closer func() error

func NullCloser() error { return nil }

// Open binds a database to a location. The meaning of location depends
// on the configured driver; with the default file driver it is a file
// path, resolved to its absolute form, and no I/O happens until the
// first operation.
func Open(location string, cfgs ...*Config) (*DB, Closer, error) {
	cfg := &Config{}
	if len(cfgs) > 0 && cfgs[0] != nil {
		cfg = cfgs[0]
	}
	cfg.applyDefaults()

	if strings.TrimSpace(location) == "" {
		return nil, NullCloser, errors.Wrap(ErrInvalidArgument, "store location must be a non-empty path")
	}

	backend, err := cfg.backend(location)
	if err != nil {
		if errors.Is(err, ErrInvalidArgument) {
			return nil, NullCloser, err
		}

		return nil, NullCloser, errors.Wrapf(err, "could not open store at %s", location)
	}

	lg := cfg.logger().With().Str("location", location).Logger()

	db := &DB{
		e:   newEngine(newStore(backend, lg), lg),
		cfg: cfg,
	}

	return db, db.close, nil
}

func (db *DB) close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return ErrDatabaseAlreadyClosed
	}

	if err := db.e.store.backend.Close(); err != nil {
		return err
	}

	db.closed = true
	return nil
}

// Create appends a new record built from payload under a freshly
// assigned id and returns it. Any "id" field in payload is discarded.
func (db *DB) Create(ctx context.Context, payload M) (*Record, error) {
	unlock := db.lockWrite()
	defer unlock()

	if db.closed {
		return nil, ErrDatabaseAlreadyClosed
	}

	return db.e.create(ctx, payload)
}

// GetAll returns every record in insertion order.
func (db *DB) GetAll(ctx context.Context) ([]*Record, error) {
	unlock := db.lockRead()
	defer unlock()

	if db.closed {
		return nil, ErrDatabaseAlreadyClosed
	}

	return db.e.getAll(ctx)
}

// GetByID returns the record with the given id, or (nil, nil) when no
// record has it.
func (db *DB) GetByID(ctx context.Context, id int) (*Record, error) {
	unlock := db.lockRead()
	defer unlock()

	if db.closed {
		return nil, ErrDatabaseAlreadyClosed
	}

	return db.e.getByID(ctx, id)
}

// Update shallow-merges payload over the record with the given id and
// returns the merged record. Payload fields override existing fields of
// the same name; the record's id is kept even if payload carries one.
func (db *DB) Update(ctx context.Context, id int, payload M) (*Record, error) {
	unlock := db.lockWrite()
	defer unlock()

	if db.closed {
		return nil, ErrDatabaseAlreadyClosed
	}

	return db.e.update(ctx, id, payload)
}

// Remove deletes the record with the given id and returns its
// pre-removal snapshot. Remaining records keep their relative order.
func (db *DB) Remove(ctx context.Context, id int) (*Record, error) {
	unlock := db.lockWrite()
	defer unlock()

	if db.closed {
		return nil, ErrDatabaseAlreadyClosed
	}

	return db.e.remove(ctx, id)
}

// Count returns the number of records currently stored.
func (db *DB) Count(ctx context.Context) (int, error) {
	unlock := db.lockRead()
	defer unlock()

	if db.closed {
		return 0, ErrDatabaseAlreadyClosed
	}

	return db.e.count(ctx)
}

func (db *DB) lockWrite() func() {
	if db.cfg.DisableLocking {
		return func() {}
	}

	db.mu.Lock()
	return db.mu.Unlock
}

func (db *DB) lockRead() func() {
	if db.cfg.DisableLocking {
		return func() {}
	}

	db.mu.RLock()
	return db.mu.RUnlock
}
