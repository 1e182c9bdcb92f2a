// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package progress provides state tracking and rendering utilities for
// displaying bulk-load progress in the CLI. It tracks the lifecycle of
// every batch in a load and formats terminal lines for the live
// progress area.
package progress

import (
	"sync"
	"unicode/utf8"
)

// State tracks the load progress for all batches in the current run.
// It maintains which batches are in flight, completed, or failed, plus
// the running row total.
type State struct {
	// Total is the number of batches in the run
	Total int
	// Active maps in-flight batch indices to their record counts
	Active map[int]int
	// Completed contains the set of successfully loaded batch indices
	Completed map[int]struct{}
	// Failed maps batch indices to failure reasons
	Failed map[int]string
	// Rows accumulates affected rows across completed batches
	Rows int64
	// mu protects concurrent access to all fields
	mu sync.Mutex
}

// NewState creates a State for a run of total batches.
func NewState(total int) *State {
	return &State{
		Total:     total,
		Active:    make(map[int]int),
		Completed: make(map[int]struct{}),
		Failed:    make(map[int]string),
	}
}

// StartBatch marks a batch as in flight with its record count.
func (s *State) StartBatch(batch, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Active[batch] = size
}

// CompleteBatch marks a batch as successfully loaded.
func (s *State) CompleteBatch(batch int, rows int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Active, batch)
	s.Completed[batch] = struct{}{}
	s.Rows += rows
}

// FailBatch marks a batch as failed with a reason.
func (s *State) FailBatch(batch int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Active, batch)
	s.Failed[batch] = reason
}

// Snapshot returns the current counters in one consistent read.
func (s *State) Snapshot() (active, completed, failed int, rows int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Active), len(s.Completed), len(s.Failed), s.Rows
}

// CompletedCount returns the number of completed batches.
func (s *State) CompletedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Completed)
}

// FailedCount returns the number of failed batches.
func (s *State) FailedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Failed)
}

// HasFailures returns true if any batch has failed.
func (s *State) HasFailures() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Failed) > 0
}

// IsFullyCompleted returns true if every batch has been loaded.
func (s *State) IsFullyCompleted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Total > 0 && len(s.Completed) == s.Total
}

// RenderState holds the UI rendering state for the progress display.
// It tracks animation frames and line widths so area redraws do not
// flicker.
type RenderState struct {
	// FrameIdx is the current animation frame index for spinners
	FrameIdx int
	// MaxLineLen tracks the maximum line length to prevent flickering
	MaxLineLen int
	// mu protects concurrent access to rendering state
	mu sync.Mutex
}

// NewRenderState creates a RenderState with default values.
func NewRenderState() *RenderState {
	return &RenderState{}
}

// IncrementFrame advances the animation frame index.
func (rs *RenderState) IncrementFrame() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.FrameIdx++
}

// GetFrameIdx returns the current frame index.
func (rs *RenderState) GetFrameIdx() int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.FrameIdx
}

// FormatLine pads a line to the widest length seen so far so that
// shorter redraws fully overwrite earlier ones.
func (rs *RenderState) FormatLine(line string) string {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	lineLen := utf8.RuneCountInString(line)
	if lineLen > rs.MaxLineLen {
		rs.MaxLineLen = lineLen
	}

	if pad := rs.MaxLineLen - lineLen; pad > 0 {
		return line + repeatSpaces(pad)
	}
	return line
}

// Reset clears the rendering state for a new run.
func (rs *RenderState) Reset() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.FrameIdx = 0
	rs.MaxLineLen = 0
}

// repeatSpaces returns a string of n spaces.
func repeatSpaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}
