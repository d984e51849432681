package tinydb

import (
	"bytes"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

var ErrJsonPathInvalid = errors.New("json path does not exist in the record")
var ErrRecordCouldNotBeUnmarshalled = errors.New("record could not be unmarshalled into the destination")

// M is an open payload mapping. Values can be any JSON-representable
// scalar, slice or nested mapping. The "id" key is reserved: the engine
// discards it on create and ignores it on update.
type M map[string]interface{}

const idField = "id"

// Record is one stored entity. It wraps the raw JSON bytes of the record
// as they sit in the dataset; field access goes through gjson paths.
type Record struct {
	b []byte
}

func newRecord(b []byte) *Record {
	cp := make([]byte, len(b))
	copy(cp, b)
	return &Record{b: cp}
}

// ID returns the record's assigned identifier.
func (r *Record) ID() int {
	return int(gjson.GetBytes(r.b, idField).Int())
}

// Unwrap returns the record as a raw JSON string.
func (r *Record) Unwrap() string {
	return string(r.b)
}

func (r *Record) Bytes() []byte {
	cp := make([]byte, len(r.b))
	copy(cp, r.b)
	return cp
}

func (r *Record) Has(path string) bool {
	return gjson.GetBytes(r.b, path).Exists()
}

func (r *Record) String(path string) (string, error) {
	v := gjson.GetBytes(r.b, path)
	if !v.Exists() {
		return "", errors.Wrapf(ErrJsonPathInvalid, "path %s", path)
	}

	return v.String(), nil
}

func (r *Record) Int(path string) (int, error) {
	v := gjson.GetBytes(r.b, path)
	if !v.Exists() {
		return 0, errors.Wrapf(ErrJsonPathInvalid, "path %s", path)
	}

	return int(v.Int()), nil
}

func (r *Record) Float(path string) (float64, error) {
	v := gjson.GetBytes(r.b, path)
	if !v.Exists() {
		return 0, errors.Wrapf(ErrJsonPathInvalid, "path %s", path)
	}

	return v.Float(), nil
}

func (r *Record) Bool(path string) (bool, error) {
	v := gjson.GetBytes(r.b, path)
	if !v.Exists() {
		return false, errors.Wrapf(ErrJsonPathInvalid, "path %s", path)
	}

	return v.Bool(), nil
}

func (r *Record) Unmarshal(dest interface{}) error {
	if err := json.Unmarshal(r.b, dest); err != nil {
		return errors.Wrap(ErrRecordCouldNotBeUnmarshalled, err.Error())
	}

	return nil
}

// Fields decodes the record into a mapping. Numbers come back as
// json.Number so that values survive a decode/encode cycle unchanged.
func (r *Record) Fields() (M, error) {
	m, err := decodeFields(r.b)
	if err != nil {
		return nil, errors.Wrap(ErrRecordCouldNotBeUnmarshalled, err.Error())
	}

	return m, nil
}

func decodeFields(raw []byte) (M, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var m M
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}

	if m == nil {
		m = make(M)
	}

	return m, nil
}
