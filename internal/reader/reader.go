// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package reader parses NDJSON and CSV input into record sequences.
//
// Field order is preserved as read. NDJSON values are kept as raw JSON so
// nested structure round-trips byte-for-byte into the batch payload. CSV
// values stay strings; the database side casts them through the recordset
// column list.
package reader

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bulkfast/cli/internal/record"
)

// Format identifies a supported input encoding.
type Format string

const (
	FormatNDJSON Format = "ndjson"
	FormatCSV    Format = "csv"
)

// ParseError reports malformed input with its line number.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Detect resolves a format from a file extension.
func Detect(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ndjson", ".jsonl", ".json":
		return FormatNDJSON, nil
	case ".csv":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("cannot detect input format from %q (expected .ndjson, .jsonl, .json or .csv)", filepath.Base(path))
}

// ReadFile opens path, detects its format, and reads all records.
func ReadFile(path string) ([]*record.Record, error) {
	format, err := Detect(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f, format)
}

// Read parses all records from r in the given format.
func Read(r io.Reader, format Format) ([]*record.Record, error) {
	switch format {
	case FormatNDJSON:
		return ReadNDJSON(r)
	case FormatCSV:
		return ReadCSV(r)
	}
	return nil, fmt.Errorf("unsupported input format %q", format)
}

// ReadNDJSON parses newline-delimited JSON objects. Blank lines are
// skipped. Each line must be a single JSON object; field order within
// the object is preserved.
func ReadNDJSON(r io.Reader) ([]*record.Record, error) {
	var records []*record.Record

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		raw := bytes.TrimSpace(sc.Bytes())
		if len(raw) == 0 {
			continue
		}
		rec, err := parseObject(raw)
		if err != nil {
			return nil, &ParseError{Line: line, Reason: err.Error()}
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// parseObject walks one JSON object token by token so key order survives.
// Values stay raw JSON and re-encode verbatim.
func parseObject(raw []byte) (*record.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %v", tok)
	}

	rec := record.New()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("expected a field name, got %v", keyTok)
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}
		rec.Set(key, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	// Reject trailing content after the object.
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected content after JSON object")
	}
	return rec, nil
}

// ReadCSV parses comma-separated input. The first row is the header and
// fixes the field order of every record.
func ReadCSV(r io.Reader) ([]*record.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Line: 1, Reason: "missing header row"}
	}
	if err != nil {
		return nil, err
	}
	for i, col := range header {
		if strings.TrimSpace(col) == "" {
			return nil, &ParseError{Line: 1, Reason: fmt.Sprintf("empty column name at position %d", i+1)}
		}
	}

	var records []*record.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rec := record.New()
		for i, col := range header {
			rec.Set(col, row[i])
		}
		records = append(records, rec)
	}
	return records, nil
}
