// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package record provides an order-preserving record type for bulk loading.
// A Record is a mapping of field names to scalar values that remembers the
// order in which fields were first set. Field order matters for bulk loads:
// the JSON payload column order must line up with the recordset column
// definition list generated for the target table.
//
// Values are kept as-is; the record does not enforce a schema. Records in
// one load are expected to share a field set, but nothing checks that: a
// missing field simply inserts as NULL, because the recordset definition
// list on the server side names the columns.
package record

import (
	"bytes"
	"encoding/json"
)

// Record is an ordered mapping of field names to values.
// The zero value is not usable; create records with New.
type Record struct {
	keys []string
	vals map[string]any
}

// New creates an empty Record.
func New() *Record {
	return &Record{
		vals: make(map[string]any),
	}
}

// Set assigns a value to a field. The first Set of a field fixes its
// position; later Sets overwrite the value but keep the position.
// It returns the record to allow chaining.
func (r *Record) Set(key string, value any) *Record {
	if _, exists := r.vals[key]; !exists {
		r.keys = append(r.keys, key)
	}
	r.vals[key] = value
	return r
}

// Get returns the value for a field and whether the field is present.
func (r *Record) Get(key string) (any, bool) {
	v, ok := r.vals[key]
	return v, ok
}

// Keys returns the field names in insertion order.
// The returned slice is a copy and safe to modify.
func (r *Record) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of fields in the record.
func (r *Record) Len() int {
	return len(r.keys)
}

// MarshalJSON encodes the record as a JSON object with fields emitted in
// insertion order. encoding/json would sort map keys alphabetically, which
// loses the column order the loader depends on.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.vals[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
