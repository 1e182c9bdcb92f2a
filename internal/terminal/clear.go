// Package terminal provides utilities for terminal operations such as clearing text.
package terminal

import (
	"fmt"
	"os"
	"unicode/utf8"

	"golang.org/x/term"
)

// ClearPrompt clears a previously printed prompt line (plus the user's
// typed input) from the terminal. It calculates how many screen lines the
// text occupied at the current terminal width, then moves up and clears
// each one.
//
// This is useful for cleaning up input prompts after they've been entered,
// so secrets typed at the prompt do not linger on screen.
func ClearPrompt(text string) {
	// Get terminal width to calculate line wrapping
	termWidth := 80 // default fallback
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		termWidth = width
	}

	// Calculate total lines used by the text
	textLen := utf8.RuneCountInString(text)
	totalLines := (textLen + termWidth - 1) / termWidth
	if totalLines < 1 {
		totalLines = 1
	}

	// After Enter, the cursor is on a new line below the input.
	// Add +1 to clear the current empty line the cursor is on
	linesToClear := totalLines + 1

	// Move up and clear each line
	for i := 0; i < linesToClear; i++ {
		fmt.Print("\r\x1b[2K") // Move to start and clear entire line
		if i < linesToClear-1 {
			fmt.Print("\x1b[1A") // Move up one line (don't move up on last iteration)
		}
	}
}
