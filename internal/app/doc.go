// Package app is the composition root for checklist.
//
// # Overview
//
// New loads configuration, opens the log file and builds the GraphQL client.
// Assemble wires the shared components around any todos.Service:
//
//	┌──────────────┐
//	│   New()      │
//	└──────┬───────┘
//	       ├─────> config.Load()      Read config.toml
//	       ├─────> logging.Open()     JSON log file
//	       ├─────> todos.NewClient()  GraphQL over HTTP
//	       └─────> Assemble()
//	                 ├─> cache.Store{}
//	                 ├─> session.New()
//	                 └─> mutation.New()
//
// The TUI and the CLI both start from an App. RunTUI adds the background
// poller and hands the store to the ui package.
//
// # Polling Behavior
//
// When poll_interval is positive the poller calls Session.Refresh on that
// cadence. Consecutive failures double the delay up to 30 seconds; the next
// success resets it. Poll reads share the session's single in-flight read with
// refreshes triggered by adds, so they never overlap.
//
// # Error Handling
//
// Every error returned by New wraps ErrConfig. Errors from the remote service
// surface later, from the session or the coordinator.
package app
