// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package batch

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"
	"time"

	"bulkfast/cli/internal/record"
)

// makeRecords builds n records with a single sequential id field.
func makeRecords(n int) []*record.Record {
	out := make([]*record.Record, n)
	for i := 0; i < n; i++ {
		out[i] = record.New().Set("id", i)
	}
	return out
}

// countEncoder encodes a chunk as its record count, so the test executor
// can report affected rows without a real payload format.
func countEncoder(chunk []*record.Record) ([]byte, error) {
	return []byte(strconv.Itoa(len(chunk))), nil
}

// countExecutor reports one affected row per encoded record.
func countExecutor(_ context.Context, payload []byte) (Result, error) {
	n, err := strconv.Atoi(string(payload))
	if err != nil {
		return Result{}, err
	}
	return Result{RowsAffected: int64(n)}, nil
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name      string
		records   int
		batchSize int
		wantSizes []int
	}{
		{
			name:      "exact multiple",
			records:   3000,
			batchSize: 1000,
			wantSizes: []int{1000, 1000, 1000},
		},
		{
			name:      "remainder in last batch",
			records:   2500,
			batchSize: 1000,
			wantSizes: []int{1000, 1000, 500},
		},
		{
			name:      "single partial batch",
			records:   7,
			batchSize: 100,
			wantSizes: []int{7},
		},
		{
			name:      "batch size one",
			records:   3,
			batchSize: 1,
			wantSizes: []int{1, 1, 1},
		},
		{
			name:      "empty input",
			records:   0,
			batchSize: 10,
			wantSizes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := makeRecords(tt.records)
			chunks := Partition(records, tt.batchSize)

			if len(chunks) != len(tt.wantSizes) {
				t.Fatalf("Partition() returned %d chunks, want %d", len(chunks), len(tt.wantSizes))
			}
			for i, want := range tt.wantSizes {
				if len(chunks[i]) != want {
					t.Errorf("chunk %d has %d records, want %d", i, len(chunks[i]), want)
				}
			}

			// Concatenating chunks in order must reconstruct the input exactly.
			idx := 0
			for _, chunk := range chunks {
				for _, r := range chunk {
					v, _ := r.Get("id")
					if v != idx {
						t.Fatalf("record at position %d has id %v", idx, v)
					}
					idx++
				}
			}
			if idx != tt.records {
				t.Errorf("chunks contain %d records, want %d", idx, tt.records)
			}
		})
	}
}

func TestRunInvalidConfiguration(t *testing.T) {
	executed := false
	execute := func(_ context.Context, _ []byte) (Result, error) {
		executed = true
		return Result{}, nil
	}

	tests := []struct {
		name string
		opts Options
	}{
		{
			name: "zero batch size",
			opts: Options{BatchSize: 0, Concurrency: 1, OnError: FailFast, Encode: countEncoder, Execute: execute},
		},
		{
			name: "negative batch size",
			opts: Options{BatchSize: -5, Concurrency: 1, OnError: FailFast, Encode: countEncoder, Execute: execute},
		},
		{
			name: "zero concurrency",
			opts: Options{BatchSize: 10, Concurrency: 0, OnError: FailFast, Encode: countEncoder, Execute: execute},
		},
		{
			name: "missing encode",
			opts: Options{BatchSize: 10, Concurrency: 1, OnError: FailFast, Execute: execute},
		},
		{
			name: "missing execute",
			opts: Options{BatchSize: 10, Concurrency: 1, OnError: FailFast, Encode: countEncoder},
		},
		{
			name: "unknown policy",
			opts: Options{BatchSize: 10, Concurrency: 1, OnError: Policy("retry"), Encode: countEncoder, Execute: execute},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Run(context.Background(), makeRecords(5), tt.opts)

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Run() error = %v, want *ConfigurationError", err)
			}
			if executed {
				t.Error("execute was invoked despite invalid configuration")
			}
		})
	}
}

func TestRunEmptyInput(t *testing.T) {
	calls := 0
	opts := NewOptions(countEncoder, func(_ context.Context, _ []byte) (Result, error) {
		calls++
		return Result{}, nil
	})

	rep, err := Run(context.Background(), nil, opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rep.Batches != 0 || rep.Succeeded != 0 || rep.Failed != 0 || len(rep.Errors) != 0 {
		t.Errorf("Run() report = %+v, want all-zero", rep)
	}
	if calls != 0 {
		t.Errorf("execute invoked %d times for empty input", calls)
	}
}

func TestRunSequentialAggregation(t *testing.T) {
	var dispatched []int
	opts := NewOptions(countEncoder, countExecutor)
	opts.BatchSize = 1000
	opts.OnDispatch = func(batch, size int) {
		dispatched = append(dispatched, batch)
	}

	rep, err := Run(context.Background(), makeRecords(2500), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rep.Batches != 3 || rep.Succeeded != 3 || rep.Failed != 0 || rep.NotAttempted != 0 {
		t.Errorf("report = %+v, want 3 batches all succeeded", rep)
	}
	if rep.Rows != 2500 {
		t.Errorf("Rows = %d, want 2500", rep.Rows)
	}
	for i, b := range dispatched {
		if b != i {
			t.Fatalf("dispatch order %v, want partition order", dispatched)
		}
	}
}

func TestRunFailFast(t *testing.T) {
	var executed []int
	call := 0
	execute := func(_ context.Context, payload []byte) (Result, error) {
		executed = append(executed, call)
		call++
		if call == 2 { // second batch fails
			return Result{}, errors.New("connection timeout")
		}
		n, _ := strconv.Atoi(string(payload))
		return Result{RowsAffected: int64(n)}, nil
	}

	opts := NewOptions(countEncoder, execute)
	opts.BatchSize = 10

	rep, err := Run(context.Background(), makeRecords(30), opts)
	if err == nil {
		t.Fatal("Run() returned nil error under fail_fast with a failing batch")
	}

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Run() error = %v, want *ExecutionError", err)
	}
	if execErr.Batch != 1 {
		t.Errorf("failing batch index = %d, want 1", execErr.Batch)
	}
	if len(executed) != 2 {
		t.Errorf("execute invoked %d times, want 2 (third batch must not be dispatched)", len(executed))
	}
	if rep.Succeeded != 1 || rep.Failed != 1 || rep.NotAttempted != 1 {
		t.Errorf("report = %+v, want 1 success, 1 failure, 1 not attempted", rep)
	}
	if rep.FirstErr == nil {
		t.Error("FirstErr is nil after a failure")
	}
}

func TestRunCollect(t *testing.T) {
	call := 0
	execute := func(_ context.Context, payload []byte) (Result, error) {
		call++
		if call == 2 {
			return Result{}, errors.New("deadlock detected")
		}
		n, _ := strconv.Atoi(string(payload))
		return Result{RowsAffected: int64(n)}, nil
	}

	opts := NewOptions(countEncoder, execute)
	opts.BatchSize = 10
	opts.OnError = Collect

	rep, err := Run(context.Background(), makeRecords(30), opts)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil under collect", err)
	}
	if call != 3 {
		t.Errorf("execute invoked %d times, want 3 (all batches dispatched)", call)
	}
	if rep.Succeeded != 2 || rep.Failed != 1 || rep.NotAttempted != 0 {
		t.Errorf("report = %+v, want 2 successes, 1 failure", rep)
	}
	if len(rep.Errors) != 1 {
		t.Fatalf("Errors has %d entries, want 1", len(rep.Errors))
	}
	if rep.Rows != 20 {
		t.Errorf("Rows = %d, want 20", rep.Rows)
	}
}

func TestRunEncodingFailure(t *testing.T) {
	executed := 0
	encode := func(chunk []*record.Record) ([]byte, error) {
		v, _ := chunk[0].Get("id")
		if v == 10 { // second chunk of 10
			return nil, errors.New("unsupported value")
		}
		return countEncoder(chunk)
	}
	execute := func(_ context.Context, payload []byte) (Result, error) {
		executed++
		return countExecutor(context.Background(), payload)
	}

	opts := NewOptions(encode, execute)
	opts.BatchSize = 10
	opts.OnError = Collect

	rep, err := Run(context.Background(), makeRecords(30), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if executed != 2 {
		t.Errorf("execute invoked %d times, want 2 (failed chunk never executed)", executed)
	}

	var encErr *EncodingError
	if len(rep.Errors) != 1 || !errors.As(rep.Errors[0], &encErr) {
		t.Fatalf("Errors = %v, want one *EncodingError", rep.Errors)
	}
	if encErr.Batch != 1 {
		t.Errorf("failing batch index = %d, want 1", encErr.Batch)
	}
}

func TestRunConcurrent(t *testing.T) {
	var mu sync.Mutex
	executed := 0
	execute := func(_ context.Context, payload []byte) (Result, error) {
		mu.Lock()
		executed++
		mu.Unlock()
		return countExecutor(context.Background(), payload)
	}

	opts := NewOptions(countEncoder, execute)
	opts.BatchSize = 100
	opts.Concurrency = 4

	rep, err := Run(context.Background(), makeRecords(1000), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if executed != 10 {
		t.Errorf("execute invoked %d times, want 10", executed)
	}
	if rep.Succeeded != 10 || rep.Rows != 1000 {
		t.Errorf("report = %+v, want 10 successes and 1000 rows", rep)
	}
}

func TestRunConcurrentCollectErrorOrder(t *testing.T) {
	execute := func(_ context.Context, payload []byte) (Result, error) {
		n, _ := strconv.Atoi(string(payload))
		// Odd-sized sentinel batches fail; see encoder below.
		if n == 1 {
			return Result{}, errors.New("boom")
		}
		return Result{RowsAffected: int64(n)}, nil
	}
	// Chunk ids 2, 5, 8 encode to the failing sentinel.
	encode := func(chunk []*record.Record) ([]byte, error) {
		v, _ := chunk[0].Get("id")
		id := v.(int) / 10
		if id == 2 || id == 5 || id == 8 {
			return []byte("1"), nil
		}
		return countEncoder(chunk)
	}

	opts := NewOptions(encode, execute)
	opts.BatchSize = 10
	opts.Concurrency = 3
	opts.OnError = Collect

	rep, err := Run(context.Background(), makeRecords(100), opts)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if rep.Failed != 3 || rep.Succeeded != 7 {
		t.Fatalf("report = %+v, want 3 failures, 7 successes", rep)
	}

	// Collected errors must be sorted by partition index regardless of
	// completion order.
	want := []int{2, 5, 8}
	for i, e := range rep.Errors {
		if batchIndex(e) != want[i] {
			t.Errorf("Errors[%d] has batch index %d, want %d", i, batchIndex(e), want[i])
		}
	}
}

func TestRunConcurrentFailFast(t *testing.T) {
	// The first chunk encodes to a failing sentinel; every other batch
	// sleeps so the pool cannot drain all twenty before the abort.
	encode := func(chunk []*record.Record) ([]byte, error) {
		v, _ := chunk[0].Get("id")
		if v == 0 {
			return []byte("fail"), nil
		}
		return countEncoder(chunk)
	}
	var mu sync.Mutex
	executed := 0
	execute := func(_ context.Context, payload []byte) (Result, error) {
		mu.Lock()
		executed++
		mu.Unlock()
		if string(payload) == "fail" {
			return Result{}, errors.New("relation does not exist")
		}
		time.Sleep(5 * time.Millisecond)
		return countExecutor(context.Background(), payload)
	}

	opts := NewOptions(encode, execute)
	opts.BatchSize = 10
	opts.Concurrency = 2

	rep, err := Run(context.Background(), makeRecords(200), opts)

	var execErr *ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("Run() error = %v, want *ExecutionError", err)
	}
	if execErr.Batch != 0 {
		t.Errorf("failing batch index = %d, want 0", execErr.Batch)
	}
	if rep.Failed != 1 {
		t.Errorf("Failed = %d, want 1", rep.Failed)
	}
	if rep.NotAttempted == 0 {
		t.Error("no batch was left unattempted after the fail-fast trigger")
	}
	if rep.Attempted+rep.NotAttempted != rep.Batches {
		t.Errorf("report does not account for every batch: %+v", rep)
	}
	if rep.Succeeded+rep.Failed != rep.Attempted {
		t.Errorf("Succeeded+Failed = %d, want Attempted = %d", rep.Succeeded+rep.Failed, rep.Attempted)
	}
	if executed != rep.Attempted {
		t.Errorf("execute invoked %d times for %d attempted batches", executed, rep.Attempted)
	}
}

func TestRunConcurrentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var mu sync.Mutex
	executed := 0
	execute := func(_ context.Context, payload []byte) (Result, error) {
		mu.Lock()
		executed++
		first := executed == 1
		mu.Unlock()
		if first {
			cancel()
		} else {
			// In-flight batch that outlives the cancellation.
			time.Sleep(5 * time.Millisecond)
		}
		return countExecutor(context.Background(), payload)
	}

	opts := NewOptions(countEncoder, execute)
	opts.BatchSize = 10
	opts.Concurrency = 2

	rep, err := Run(ctx, makeRecords(200), opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}

	// Every batch already handed to a worker runs to completion and is
	// counted; the rest are never dispatched.
	if rep.Succeeded != rep.Attempted {
		t.Errorf("Succeeded = %d, want every attempted batch (%d) to finish", rep.Succeeded, rep.Attempted)
	}
	if rep.NotAttempted == 0 {
		t.Error("no batch was left unattempted after cancellation")
	}
	if rep.Attempted+rep.NotAttempted != rep.Batches {
		t.Errorf("report does not account for every batch: %+v", rep)
	}
	if executed != rep.Attempted {
		t.Errorf("execute invoked %d times for %d attempted batches", executed, rep.Attempted)
	}
}

func TestRunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	executed := 0
	execute := func(_ context.Context, payload []byte) (Result, error) {
		executed++
		cancel() // cancel after the first batch completes
		return countExecutor(context.Background(), payload)
	}

	opts := NewOptions(countEncoder, execute)
	opts.BatchSize = 10

	rep, err := Run(ctx, makeRecords(50), opts)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
	if executed != 1 {
		t.Errorf("execute invoked %d times after cancellation, want 1", executed)
	}
	if rep.NotAttempted != 4 {
		t.Errorf("NotAttempted = %d, want 4", rep.NotAttempted)
	}
	if rep.Attempted+rep.NotAttempted != rep.Batches {
		t.Errorf("report does not account for every batch: %+v", rep)
	}
}

func TestErrorMessages(t *testing.T) {
	cause := errors.New("no pg_hba.conf entry")

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "configuration",
			err:  NewConfigurationError("batch size", "must be a positive integer"),
			want: "invalid batch configuration: batch size: must be a positive integer",
		},
		{
			name: "encoding",
			err:  &EncodingError{Batch: 3, Err: cause},
			want: "encoding batch 3: no pg_hba.conf entry",
		},
		{
			name: "execution",
			err:  &ExecutionError{Batch: 0, Err: cause},
			want: "executing batch 0: no pg_hba.conf entry",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}

	// Per-batch errors must expose their cause.
	if !errors.Is(&ExecutionError{Batch: 1, Err: cause}, cause) {
		t.Error("ExecutionError does not unwrap to its cause")
	}
	if !errors.Is(fmt.Errorf("load: %w", &EncodingError{Batch: 1, Err: cause}), cause) {
		t.Error("EncodingError does not unwrap through wrapping")
	}
}
