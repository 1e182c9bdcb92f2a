// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package batch

import "fmt"

// ConfigurationError reports invalid dispatcher options. It is returned
// before any batch is encoded or dispatched.
type ConfigurationError struct {
	Option string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid batch configuration: %s: %s", e.Option, e.Reason)
}

// NewConfigurationError creates a new ConfigurationError.
func NewConfigurationError(option, reason string) *ConfigurationError {
	return &ConfigurationError{
		Option: option,
		Reason: reason,
	}
}

// EncodingError reports that a batch could not be serialized into a payload.
// Batch is the zero-based index of the batch within the partition.
type EncodingError struct {
	Batch int
	Err   error
}

func (e *EncodingError) Error() string {
	return fmt.Sprintf("encoding batch %d: %v", e.Batch, e.Err)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *EncodingError) Unwrap() error {
	return e.Err
}

// ExecutionError reports that the executor failed for a batch.
// Batch is the zero-based index of the batch within the partition.
type ExecutionError struct {
	Batch int
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing batch %d: %v", e.Batch, e.Err)
}

// Unwrap returns the underlying cause for errors.Is and errors.As.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// batchIndex extracts the batch index from a per-batch error.
// Used to keep collected errors in partition order regardless of the
// order in which concurrent dispatches completed.
func batchIndex(err error) int {
	switch e := err.(type) {
	case *EncodingError:
		return e.Batch
	case *ExecutionError:
		return e.Batch
	}
	return -1
}
