// Copyright (c) 2025 Bulkfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides CLI commands for the Bulkfast bulk loading tool.
// This file contains helper functions for the live progress area shown
// while a load is running.
package cmd

import (
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
)

// startAreaSpinner starts an area spinner for displaying progress information.
// It creates an area display, hides the cursor, and starts a goroutine that
// periodically calls the update function to refresh the displayed content.
//
// The spinner runs until the stop channel is closed.
func startAreaSpinner(areaPtr **pterm.AreaPrinter, wgPtr *sync.WaitGroup, stop chan struct{}, update func(area *pterm.AreaPrinter)) {
	cursor.Hide()
	area, _ := pterm.DefaultArea.WithRemoveWhenDone(true).Start()
	*areaPtr = area
	wgPtr.Add(1)
	go func() {
		defer wgPtr.Done()
		t := time.NewTicker(120 * time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				update(area)
			case <-stop:
				return
			}
		}
	}()
}

// stopAreaSpinner stops the area spinner animation and cleans up resources.
// It closes the stop channel, waits for the spinner goroutine to finish,
// stops the area display, and shows the cursor again.
func stopAreaSpinner(areaPtr **pterm.AreaPrinter, wgPtr *sync.WaitGroup, stopPtr *chan struct{}) {
	close(*stopPtr)
	wgPtr.Wait()
	if *areaPtr != nil {
		(*areaPtr).Stop()
		*areaPtr = nil
	}
	*stopPtr = make(chan struct{})
	cursor.Show()
}
