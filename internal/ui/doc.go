// Package ui provides the interactive terminal interface for checklist.
//
// # Architecture Overview
//
// The interface is a Bubble Tea program. Model holds the UI state and never
// owns the collection: it renders whatever the cache.Store last published.
// A subscription channel feeds store snapshots into Update as messages, so
// results from the session and the mutation coordinator reach the screen the
// same way whether they came from a user action or the background poller.
//
// # Package Structure
//
//   - app.go: Model, Options, Update, commands and Run
//   - header.go: status bar with counts, filter, activity and staleness
//   - list.go: list body, draft input, notices and footer
//   - modal.go: Modal interface and the delete confirmation
//   - help.go: keyboard shortcut overlay
//   - keys.go: key bindings built on bubbles/key
//   - theme.go: color themes and lipgloss styles
//
// # Usage Example
//
//	err := ui.Run(ui.Options{
//		Context:  ctx,
//		Store:    store,
//		Loader:   sess,
//		Mutator:  coord,
//		Logger:   logger,
//		Endpoint: cfg.Endpoint,
//		Prefs:    prefs.Load(prefs.DefaultPath()),
//	})
//
// # Key Bindings
//
//   - a: Add an item (enter saves, esc cancels)
//   - space or x: Toggle the selected item
//   - d: Delete the selected item after confirmation
//   - f: Cycle the all/pending/done filter
//   - r: Refresh from the endpoint
//   - j/k, g/G: Move the selection
//   - T: Cycle theme
//   - h or ?: Toggle help
//   - q or Ctrl+C: Quit
package ui
