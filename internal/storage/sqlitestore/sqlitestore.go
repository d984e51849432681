package sqlitestore

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/MendoncaGabriel/TinyDBJson/internal/storage"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// SQLiteStore keeps the encoded dataset in a single-row table. sql.Open
// is lazy, so the schema is ensured on first use rather than at
// construction.
type SQLiteStore struct {
	db      *sql.DB
	once    sync.Once
	initErr error
}

func New(location string) (*SQLiteStore, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("sqlite store location must be a non-empty path")
	}

	db, err := sql.Open("sqlite3", location)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open sqlite database at %s", location)
	}

	return &SQLiteStore{db: db}, nil
}

func (ss *SQLiteStore) ensureSchema(ctx context.Context) error {
	ss.once.Do(func() {
		if _, err := ss.db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			ss.initErr = errors.Wrap(err, "could not enable WAL mode")
			return
		}

		if _, err := ss.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS dataset (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			body BLOB NOT NULL
		)`); err != nil {
			ss.initErr = errors.Wrap(err, "could not create dataset table")
		}
	})

	return ss.initErr
}

func (ss *SQLiteStore) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ss.ensureSchema(ctx); err != nil {
		return nil, err
	}

	var body []byte
	err := ss.db.QueryRowContext(ctx, "SELECT body FROM dataset WHERE id = 1").Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNoContent
		}

		return nil, errors.Wrap(err, "could not read dataset row")
	}

	return body, nil
}

func (ss *SQLiteStore) WriteAll(ctx context.Context, data []byte) error {
	if err := ss.ensureSchema(ctx); err != nil {
		return err
	}

	_, err := ss.db.ExecContext(
		ctx,
		"INSERT INTO dataset (id, body) VALUES (1, ?) ON CONFLICT(id) DO UPDATE SET body = excluded.body",
		data,
	)
	if err != nil {
		return errors.Wrap(err, "could not write dataset row")
	}

	return nil
}

func (ss *SQLiteStore) Close() error {
	return ss.db.Close()
}
