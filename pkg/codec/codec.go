// Package codec encodes values crossing the core boundary.
//
// Encoding follows struct field order, so a record always serializes to the
// same field sequence. Decoding is strict: unknown fields, trailing data and
// a bare null are rejected instead of silently dropped.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed is returned when a payload does not match the target record
var ErrMalformed = errors.New("malformed boundary payload")

// Encode serializes v
func Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return data, nil
}

// IsNull reports whether data is the JSON literal null
func IsNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}

// Decode deserializes data into a new T
func Decode[T any](data []byte) (T, error) {
	var out T
	if err := DecodeInto(data, &out); err != nil {
		return out, err
	}
	return out, nil
}

// DecodeInto deserializes data into dst
func DecodeInto(data []byte, dst any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("%w: empty payload for %T", ErrMalformed, dst)
	}
	if IsNull(trimmed) {
		return fmt.Errorf("%w: null payload for %T", ErrMalformed, dst)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: decode %T: %v", ErrMalformed, dst, err)
	}

	if _, err := dec.Token(); err != io.EOF {
		return fmt.Errorf("%w: trailing data after %T", ErrMalformed, dst)
	}

	return nil
}
