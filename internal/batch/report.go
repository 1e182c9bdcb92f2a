// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package batch

// Report aggregates the outcome of one dispatcher run. Every batch of the
// partition is accounted for exactly once: it either succeeded, failed, or
// was never attempted because of a fail-fast abort or cancellation.
type Report struct {
	// Batches is the total number of batches in the partition.
	Batches int
	// Attempted is the number of batches that entered encoding or execution.
	Attempted int
	// Succeeded is the number of batches that executed without error.
	Succeeded int
	// Failed is the number of batches that failed to encode or execute.
	Failed int
	// NotAttempted is the number of batches skipped after an abort.
	NotAttempted int
	// Rows is the sum of affected rows across successful batches.
	Rows int64
	// Errors lists every per-batch error in partition order.
	Errors []error
	// FirstErr is the first error observed during the run, nil if none.
	FirstErr error
}

// OK reports whether every batch succeeded.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.NotAttempted == 0
}

// recordFailure books a failed batch into the report.
func (r *Report) recordFailure(err error) {
	r.Failed++
	r.Errors = append(r.Errors, err)
	if r.FirstErr == nil {
		r.FirstErr = err
	}
}

// recordSuccess books a successful batch into the report.
func (r *Report) recordSuccess(rows int64) {
	r.Succeeded++
	r.Rows += rows
}
