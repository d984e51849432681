package tinydb

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
)

// engine implements the record operations. Every call is one
// self-contained load, an in-memory computation and, for mutating
// operations, one persist. Nothing is cached between calls: the backing
// store is the source of truth.
type engine struct {
	store *store
	lg    zerolog.Logger
}

func newEngine(store *store, lg zerolog.Logger) *engine {
	return &engine{store: store, lg: lg}
}

func (e *engine) create(ctx context.Context, payload M) (*Record, error) {
	if payload == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "create payload must be a non-nil mapping")
	}

	ds, err := e.store.load(ctx)
	if err != nil {
		return nil, err
	}

	id := nextID(ds)
	if indexOf(ds, id) != -1 {
		// unreachable under single-writer use, kept as a safety net
		return nil, errors.Wrapf(ErrIdConflict, "id %d is already taken", id)
	}

	raw, err := encodeRecord(id, payload)
	if err != nil {
		return nil, err
	}

	ds = append(ds, raw)
	if err := e.store.persist(ctx, ds); err != nil {
		return nil, err
	}

	e.lg.Debug().Int("id", id).Msg("record created")

	return newRecord(raw), nil
}

func (e *engine) getAll(ctx context.Context) ([]*Record, error) {
	ds, err := e.store.load(ctx)
	if err != nil {
		return nil, err
	}

	records := make([]*Record, len(ds))
	for i, raw := range ds {
		records[i] = newRecord(raw)
	}

	return records, nil
}

// getByID returns (nil, nil) when no record matches: absence is an
// answer here, not a failure.
func (e *engine) getByID(ctx context.Context, id int) (*Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	ds, err := e.store.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(ds, id)
	if i == -1 {
		return nil, nil
	}

	return newRecord(ds[i]), nil
}

func (e *engine) update(ctx context.Context, id int, payload M) (*Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	if payload == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "update payload must be a non-nil mapping")
	}

	ds, err := e.store.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(ds, id)
	if i == -1 {
		return nil, errors.Wrapf(ErrNotFound, "record %d does not exist", id)
	}

	merged, err := mergeRecord(ds[i], id, payload)
	if err != nil {
		return nil, err
	}

	ds[i] = merged
	if err := e.store.persist(ctx, ds); err != nil {
		return nil, err
	}

	e.lg.Debug().Int("id", id).Msg("record updated")

	return newRecord(merged), nil
}

func (e *engine) remove(ctx context.Context, id int) (*Record, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	ds, err := e.store.load(ctx)
	if err != nil {
		return nil, err
	}

	i := indexOf(ds, id)
	if i == -1 {
		return nil, errors.Wrapf(ErrNotFound, "record %d does not exist", id)
	}

	snapshot := newRecord(ds[i])

	ds = append(ds[:i], ds[i+1:]...)
	if err := e.store.persist(ctx, ds); err != nil {
		return nil, err
	}

	e.lg.Debug().Int("id", id).Msg("record removed")

	return snapshot, nil
}

func (e *engine) count(ctx context.Context) (int, error) {
	ds, err := e.store.load(ctx)
	if err != nil {
		return 0, err
	}

	return len(ds), nil
}

func validateID(id int) error {
	if id < 1 {
		return errors.Wrapf(ErrInvalidArgument, "id must be a positive integer, got %d", id)
	}

	return nil
}

func recordID(raw json.RawMessage) int {
	return int(gjson.GetBytes(raw, idField).Int())
}

// nextID is recomputed from the current dataset on every create. There
// is no stored counter: after the highest-numbered record is removed,
// its id is handed out again.
func nextID(ds dataset) int {
	max := 0
	for _, raw := range ds {
		if id := recordID(raw); id > max {
			max = id
		}
	}

	return max + 1
}

func indexOf(ds dataset, id int) int {
	for i, raw := range ds {
		if recordID(raw) == id {
			return i
		}
	}

	return -1
}

func encodeRecord(id int, payload M) (json.RawMessage, error) {
	fields := make(M, len(payload)+1)
	for k, v := range payload {
		if k == idField {
			continue
		}

		fields[k] = v
	}

	fields[idField] = id

	b, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}

	return b, nil
}

// mergeRecord shallow-merges payload fields over the existing record.
// Payload fields win; the authoritative id always wins over both.
func mergeRecord(existing json.RawMessage, id int, payload M) (json.RawMessage, error) {
	fields, err := decodeFields(existing)
	if err != nil {
		return nil, errors.Wrapf(ErrCorruptedStore, "record %d is not a JSON object", id)
	}

	for k, v := range payload {
		if k == idField {
			continue
		}

		fields[k] = v
	}

	fields[idField] = id

	b, err := json.Marshal(fields)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}

	return b, nil
}
