// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package progress

import (
	"fmt"
	"strings"
)

// Frames are the braille spinner frames used for in-flight batches,
// similar to the docker CLI.
var Frames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Lines formats the live progress area content for the current state.
// Batches render in partition order: in-flight batches get a spinner
// frame, finished ones a check or cross. A totals line closes the block.
func Lines(s *State, rs *RenderState) string {
	s.mu.Lock()
	total := s.Total
	active := make(map[int]int, len(s.Active))
	for k, v := range s.Active {
		active[k] = v
	}
	completed := make(map[int]struct{}, len(s.Completed))
	for k := range s.Completed {
		completed[k] = struct{}{}
	}
	failed := make(map[int]string, len(s.Failed))
	for k, v := range s.Failed {
		failed[k] = v
	}
	rows := s.Rows
	s.mu.Unlock()

	spin := Frames[rs.GetFrameIdx()%len(Frames)]

	lines := make([]string, 0, total+1)
	for i := 0; i < total; i++ {
		switch {
		case containsKey(active, i):
			line := fmt.Sprintf("%s loading batch %d/%d", spin, i+1, total)
			if size := active[i]; size > 0 {
				line += fmt.Sprintf(" (%d records)", size)
			}
			lines = append(lines, rs.FormatLine(line))
		case containsSet(completed, i):
			lines = append(lines, rs.FormatLine(fmt.Sprintf("✓ batch %d/%d loaded", i+1, total)))
		case containsStr(failed, i):
			lines = append(lines, rs.FormatLine(fmt.Sprintf("✗ batch %d/%d failed: %s", i+1, total, failed[i])))
		}
	}

	done := len(completed) + len(failed)
	lines = append(lines, rs.FormatLine(fmt.Sprintf("%d/%d batches, %d rows", done, total, rows)))
	return strings.Join(lines, "\n")
}

func containsKey(m map[int]int, k int) bool {
	_, ok := m[k]
	return ok
}

func containsSet(m map[int]struct{}, k int) bool {
	_, ok := m[k]
	return ok
}

func containsStr(m map[int]string, k int) bool {
	_, ok := m[k]
	return ok
}
