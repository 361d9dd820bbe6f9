package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// record is a single object of a category file, keyed by the column names
// used in the exported source sheets (e.g. "Başlık ", "Süre (.dk)").
type record map[string]json.RawMessage

// decodeRecords parses a JSON array of objects
func decodeRecords(data []byte) ([]record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, goerr.New("category file must contain a JSON array",
			goerr.T(ErrTagMalformed))
	}

	var records []record
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, goerr.Wrap(err, "failed to parse JSON array", goerr.T(ErrTagMalformed))
	}
	return records, nil
}

// lookup returns the raw value of the first key that is present and not null
func (r record) lookup(keys ...string) (string, json.RawMessage, bool) {
	for _, key := range keys {
		raw, ok := r[key]
		if !ok || isNull(raw) {
			continue
		}
		return key, raw, true
	}
	return "", nil, false
}

// str reads an optional string column
func (r record) str(keys ...string) (string, error) {
	key, raw, ok := r.lookup(keys...)
	if !ok {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", goerr.Wrap(err, "column must be a string",
			goerr.V("column", key),
			goerr.V("value", string(raw)),
			goerr.T(ErrTagMalformed))
	}
	return s, nil
}

// requiredStr reads a string column that must be present
func (r record) requiredStr(keys ...string) (string, error) {
	if _, _, ok := r.lookup(keys...); !ok {
		return "", goerr.New("required column is missing",
			goerr.V("column", keys[0]),
			goerr.T(ErrTagMalformed))
	}
	return r.str(keys...)
}

// int reads an optional integral number column
func (r record) int(keys ...string) (int, error) {
	f, err := r.float(keys...)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		key, raw, _ := r.lookup(keys...)
		return 0, goerr.New("column must be an integer",
			goerr.V("column", key),
			goerr.V("value", string(raw)),
			goerr.T(ErrTagMalformed))
	}
	return int(f), nil
}

// float reads an optional number column
func (r record) float(keys ...string) (float64, error) {
	key, raw, ok := r.lookup(keys...)
	if !ok {
		return 0, nil
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, goerr.Wrap(err, "column must be a number",
			goerr.V("column", key),
			goerr.V("value", string(raw)),
			goerr.T(ErrTagMalformed))
	}
	return f, nil
}

// countOrNote reads a column that holds either a count or free text
func (r record) countOrNote(keys ...string) (*int, string, error) {
	key, raw, ok := r.lookup(keys...)
	if !ok {
		return nil, "", nil
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, "", goerr.Wrap(err, "failed to parse column",
				goerr.V("column", key), goerr.T(ErrTagMalformed))
		}
		s = strings.TrimSpace(s)
		if n, err := strconv.Atoi(s); err == nil {
			return &n, "", nil
		}
		return nil, s, nil

	default:
		n, err := r.int(key)
		if err != nil {
			return nil, "", err
		}
		return &n, "", nil
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
