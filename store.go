package tinydb

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/MendoncaGabriel/TinyDBJson/internal/storage"
	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"
)

type dataset []json.RawMessage

var encodingOptions = &pretty.Options{Width: 80, Indent: "  "}

// store is the codec layer between the record engine and the byte
// medium: it turns backing bytes into a dataset and back, owns the
// empty-store initialization and the corruption taxonomy.
type store struct {
	backend storage.Backend
	lg      zerolog.Logger
}

func newStore(backend storage.Backend, lg zerolog.Logger) *store {
	return &store{backend: backend, lg: lg}
}

func (s *store) load(ctx context.Context) (dataset, error) {
	b, err := s.backend.ReadAll(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNoContent) {
			return s.initialize(ctx)
		}

		s.lg.Error().Err(err).Msg("dataset read failed")
		return nil, errors.Wrap(ErrIOFailure, err.Error())
	}

	if len(bytes.TrimSpace(b)) == 0 {
		return s.initialize(ctx)
	}

	if !json.Valid(b) {
		s.lg.Error().Msg("dataset contents are not valid JSON")
		return nil, errors.Wrap(ErrMalformedEncoding, "dataset could not be decoded")
	}

	var ds dataset
	if err := json.Unmarshal(b, &ds); err != nil {
		s.lg.Error().Err(err).Msg("dataset top-level shape is not an array")
		return nil, errors.Wrap(ErrCorruptedStore, "dataset top-level value must be an array")
	}

	if ds == nil {
		// a top-level null unmarshals into a nil slice without an error
		s.lg.Error().Msg("dataset top-level value is null")
		return nil, errors.Wrap(ErrCorruptedStore, "dataset top-level value must be an array")
	}

	s.lg.Debug().
		Int("records", len(ds)).
		Uint64("checksum", xxhash.Sum64(b)).
		Msg("dataset loaded")

	return ds, nil
}

// initialize writes the empty form once and hands back an empty dataset.
// A later load finds valid content and never comes through here again.
func (s *store) initialize(ctx context.Context) (dataset, error) {
	ds := make(dataset, 0)
	if err := s.persist(ctx, ds); err != nil {
		return nil, err
	}

	return ds, nil
}

func (s *store) persist(ctx context.Context, ds dataset) error {
	if ds == nil {
		// a nil slice would encode as null, not as an empty array
		return errors.Wrap(ErrInvalidArgument, "dataset to persist must be a non-nil sequence")
	}

	b, err := json.Marshal(ds)
	if err != nil {
		return errors.Wrap(ErrInvalidArgument, err.Error())
	}

	b = pretty.PrettyOptions(b, encodingOptions)

	if err := s.backend.WriteAll(ctx, b); err != nil {
		s.lg.Error().Err(err).Msg("dataset write failed")
		return errors.Wrap(ErrIOFailure, err.Error())
	}

	s.lg.Debug().
		Int("records", len(ds)).
		Uint64("checksum", xxhash.Sum64(b)).
		Msg("dataset persisted")

	return nil
}
