// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package batch

import (
	"context"

	"bulkfast/cli/internal/record"
)

// Policy controls how the dispatcher reacts to a failed batch.
type Policy string

const (
	// FailFast aborts all batches that have not been dispatched yet and
	// returns the triggering error together with the partial report.
	FailFast Policy = "fail_fast"
	// Collect keeps dispatching the remaining batches and accumulates
	// every error in the report.
	Collect Policy = "collect"
)

const (
	// DefaultBatchSize is the default maximum number of records per batch.
	// Conservative enough that a single JSON payload stays reasonably sized
	// for typical row widths.
	DefaultBatchSize = 1000
	// DefaultConcurrency is the default number of in-flight dispatches.
	// Sequential by default: one long-running statement at a time keeps
	// pressure off the server connection pool.
	DefaultConcurrency = 1
)

// EncodeFunc serializes one batch of records into a single payload.
// The whole payload is later bound as one statement parameter.
type EncodeFunc func(chunk []*record.Record) ([]byte, error)

// Result is the outcome of executing one batch payload.
type Result struct {
	// RowsAffected is the number of rows the statement reported.
	RowsAffected int64
}

// ExecuteFunc runs one payload against the target, typically as a single
// parameterized statement with the payload as the only bound value.
// It is supplied by the caller and may block on network or database I/O.
type ExecuteFunc func(ctx context.Context, payload []byte) (Result, error)

// Options configures a dispatcher run.
type Options struct {
	// BatchSize is the maximum number of records per batch. Must be positive.
	BatchSize int
	// Concurrency is the maximum number of in-flight dispatches. Must be
	// positive; 1 means strictly sequential in partition order.
	Concurrency int
	// OnError selects the failure policy. Defaults to FailFast in NewOptions.
	OnError Policy
	// Encode serializes a batch into one payload. Required.
	Encode EncodeFunc
	// Execute dispatches one payload. Required.
	Execute ExecuteFunc

	// OnDispatch, when set, is called just before a batch is executed with
	// the batch index and its record count. Used for progress reporting.
	OnDispatch func(batch, size int)
	// OnResult, when set, is called after a batch finishes with the batch
	// index, affected rows, and the error (nil on success). Calls are
	// serialized even when Concurrency > 1.
	OnResult func(batch int, rows int64, err error)
}

// NewOptions returns Options with defaults applied for the given encode
// and execute functions. Callers override fields before passing to Run.
func NewOptions(encode EncodeFunc, execute ExecuteFunc) Options {
	return Options{
		BatchSize:   DefaultBatchSize,
		Concurrency: DefaultConcurrency,
		OnError:     FailFast,
		Encode:      encode,
		Execute:     execute,
	}
}

// validate checks the options before any batch is built or dispatched.
func (o Options) validate() error {
	if o.BatchSize <= 0 {
		return NewConfigurationError("batch size", "must be a positive integer")
	}
	if o.Concurrency <= 0 {
		return NewConfigurationError("concurrency", "must be a positive integer")
	}
	if o.Encode == nil {
		return NewConfigurationError("encode", "encode function is required")
	}
	if o.Execute == nil {
		return NewConfigurationError("execute", "execute function is required")
	}
	switch o.OnError {
	case FailFast, Collect:
	case "":
		// NewOptions sets a default; an explicitly zeroed policy is invalid.
		return NewConfigurationError("on error", "policy must be fail_fast or collect")
	default:
		return NewConfigurationError("on error", "unknown policy "+string(o.OnError))
	}
	return nil
}
