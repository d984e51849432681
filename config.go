package tinydb

import (
	"os"

	"github.com/MendoncaGabriel/TinyDBJson/internal/storage"
	"github.com/MendoncaGabriel/TinyDBJson/internal/storage/boltstore"
	"github.com/MendoncaGabriel/TinyDBJson/internal/storage/filestore"
	"github.com/MendoncaGabriel/TinyDBJson/internal/storage/sqlitestore"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Driver string

const (
	// FileDriver keeps the dataset in a single JSON file at the given
	// location. The default.
	FileDriver Driver = "file"

	// BoltDriver keeps the dataset in a bbolt database at the given
	// location.
	BoltDriver Driver = "bolt"

	// SQLiteDriver keeps the dataset in an sqlite3 database at the
	// given location.
	SQLiteDriver Driver = "sqlite"
)

type Config struct {
	// Driver selects the byte medium behind the store.
	Driver Driver

	// DisableLocking switches off the per-database mutex around each
	// load-mutate-persist sequence. With locking off the caller takes
	// over the single-writer contract: concurrent mutations against the
	// same location can lose writes or hand out duplicate ids.
	DisableLocking bool

	// Log enables the default stderr logger.
	Log bool

	// Logger overrides Log with a caller-provided logger.
	Logger *zerolog.Logger
}

func (cfg *Config) applyDefaults() {
	if cfg.Driver == "" {
		cfg.Driver = FileDriver
	}
}

func (cfg *Config) logger() zerolog.Logger {
	if cfg.Logger != nil {
		return *cfg.Logger
	}

	if cfg.Log {
		return zerolog.New(os.Stderr).With().Timestamp().Str("component", "tinydb").Logger()
	}

	return zerolog.Nop()
}

func (cfg *Config) backend(location string) (storage.Backend, error) {
	switch cfg.Driver {
	case FileDriver:
		return filestore.New(location)
	case BoltDriver:
		return boltstore.New(location)
	case SQLiteDriver:
		return sqlitestore.New(location)
	default:
		return nil, errors.Wrapf(ErrInvalidArgument, "unknown driver %q", cfg.Driver)
	}
}
