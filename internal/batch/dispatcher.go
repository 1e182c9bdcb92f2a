// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package batch partitions record sequences into bounded batches, encodes
// each batch into a single payload, and dispatches the payloads to a
// caller-supplied executor. It exists so bulk operations stay under the
// PostgreSQL extended-protocol bind-parameter ceiling: instead of one
// parameter per field per row, a whole batch travels as one bound value.
//
// The dispatcher is a single-pass, stateless transform per Run invocation.
// It supports sequential dispatch (default) or a bounded worker pool, and
// two failure policies: fail-fast and collect-all. The final Report
// accounts for every batch as succeeded, failed, or not attempted.
package batch

import (
	"context"
	"sort"
	"sync"

	"bulkfast/cli/internal/record"
)

// Partition splits records into consecutive chunks of at most size records.
// Chunks preserve input order and together reconstruct the input exactly.
// Partition assumes size > 0; Run validates options before calling it.
func Partition(records []*record.Record, size int) [][]*record.Record {
	if len(records) == 0 {
		return nil
	}
	chunks := make([][]*record.Record, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

// Run partitions records, encodes each batch, and dispatches the payloads
// per the options. It returns a Report covering every batch.
//
// The returned error is non-nil only for invalid options, context
// cancellation, or the triggering error under the FailFast policy. Under
// Collect, per-batch errors are reported exclusively through the Report.
func Run(ctx context.Context, records []*record.Record, opts Options) (*Report, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	rep := &Report{}
	if len(records) == 0 {
		return rep, nil
	}

	chunks := Partition(records, opts.BatchSize)
	rep.Batches = len(chunks)

	if opts.Concurrency == 1 {
		return runSequential(ctx, chunks, opts, rep)
	}
	return runConcurrent(ctx, chunks, opts, rep)
}

// processChunk encodes and executes one batch, wrapping failures in the
// per-batch error types. The zero-based index identifies the batch in
// partition order.
func processChunk(ctx context.Context, chunk []*record.Record, index int, opts Options) (int64, error) {
	payload, err := opts.Encode(chunk)
	if err != nil {
		return 0, &EncodingError{Batch: index, Err: err}
	}
	res, err := opts.Execute(ctx, payload)
	if err != nil {
		return 0, &ExecutionError{Batch: index, Err: err}
	}
	return res.RowsAffected, nil
}

// runSequential dispatches batches one at a time in partition order.
func runSequential(ctx context.Context, chunks [][]*record.Record, opts Options, rep *Report) (*Report, error) {
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			rep.NotAttempted = rep.Batches - rep.Attempted
			return rep, err
		}

		rep.Attempted++
		if opts.OnDispatch != nil {
			opts.OnDispatch(i, len(chunk))
		}

		rows, err := processChunk(ctx, chunk, i, opts)
		if opts.OnResult != nil {
			opts.OnResult(i, rows, err)
		}
		if err != nil {
			rep.recordFailure(err)
			if opts.OnError == FailFast {
				rep.NotAttempted = rep.Batches - rep.Attempted
				return rep, err
			}
			continue
		}
		rep.recordSuccess(rows)
	}
	return rep, nil
}

// runConcurrent dispatches batches through a bounded worker pool.
// Partition order still determines which batches are handed out first,
// but completion order is unspecified. After a fail-fast trigger or
// cancellation, in-flight executes finish; no new batch is started.
func runConcurrent(ctx context.Context, chunks [][]*record.Record, opts Options, rep *Report) (*Report, error) {
	var (
		mu        sync.Mutex
		wg        sync.WaitGroup
		abortOnce sync.Once
	)
	abort := make(chan struct{})
	triggerAbort := func() {
		abortOnce.Do(func() { close(abort) })
	}

	// Feeder hands out batch indices in partition order and stops
	// handing out work after cancellation or a fail-fast abort.
	indices := make(chan int)
	go func() {
		defer close(indices)
		for i := range chunks {
			select {
			case <-ctx.Done():
				return
			case <-abort:
				return
			case indices <- i:
			}
		}
	}()

	for w := 0; w < opts.Concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				// The feeder's select can still pick a send in the
				// same instant abort or cancellation fires; drop the
				// index so no new batch starts.
				select {
				case <-abort:
					continue
				case <-ctx.Done():
					continue
				default:
				}

				chunk := chunks[i]

				mu.Lock()
				rep.Attempted++
				if opts.OnDispatch != nil {
					opts.OnDispatch(i, len(chunk))
				}
				mu.Unlock()

				rows, err := processChunk(ctx, chunk, i, opts)

				mu.Lock()
				if opts.OnResult != nil {
					opts.OnResult(i, rows, err)
				}
				if err != nil {
					rep.recordFailure(err)
					if opts.OnError == FailFast {
						triggerAbort()
					}
				} else {
					rep.recordSuccess(rows)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	rep.NotAttempted = rep.Batches - rep.Attempted

	// Present collected errors in partition order; FirstErr keeps the
	// observation order for the fail-fast trigger.
	sort.Slice(rep.Errors, func(a, b int) bool {
		return batchIndex(rep.Errors[a]) < batchIndex(rep.Errors[b])
	})

	if err := ctx.Err(); err != nil {
		return rep, err
	}
	if opts.OnError == FailFast && rep.FirstErr != nil {
		return rep, rep.FirstErr
	}
	return rep, nil
}
