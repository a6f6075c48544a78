// Package logtail reads and formats the checklist client log.
//
// # Reading Log Files
//
// Read returns the last maxLines of a file using a ring buffer, so memory is
// O(maxLines) regardless of file size:
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//
// A non-positive maxLines returns the whole file. A missing file is not an
// error; Read returns nil, nil.
//
// # Formatting
//
// The client writes slog JSON records. FormatLine turns each one into a
// single human-readable line:
//
//	2025-10-08 21:01:05 WARN  fetch failed error="connection refused" seq=3
//
// Attributes are printed in key order. Lines that are not JSON records pass
// through unchanged. With color enabled, timestamps, levels and keys are
// styled with lipgloss:
//
//   - DEBUG: Cyan
//   - INFO: Green
//   - WARN: Yellow
//   - ERROR: Red
package logtail
