// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package encode serializes record batches into single-parameter payloads.
//
// A batch of n records with m fields each would normally consume n*m bind
// parameters. Encoding the whole batch as one JSON array collapses that to
// a single parameter, which the database side unpacks with
// jsonb_to_recordset.
package encode

import (
	"bytes"
	"fmt"

	"bulkfast/cli/internal/record"
)

// JSONArray encodes a chunk of records as a JSON array payload. Records
// appear in chunk order and each record's fields appear in insertion
// order. An empty chunk encodes as "[]".
func JSONArray(chunk []*record.Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, r := range chunk {
		if i > 0 {
			buf.WriteByte(',')
		}
		b, err := r.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		buf.Write(b)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
