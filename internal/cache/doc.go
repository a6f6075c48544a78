// Package cache holds the locally cached copy of the remote todo list.
//
// # Overview
//
// Store is the single shared place where fetch results and mutation outcomes
// meet the presentation layer. The session and mutation packages write it;
// the TUI and CLI only read snapshots.
//
// # States
//
//	Loading ──fetch ok──> Ready(items) <──────┐
//	   │                    │   │             │
//	   └──fetch failed──> Error ─fetch ok─────┘
//	                        │
//	Ready + fetch failed: stays Ready, LastError recorded
//
// Items are only meaningful in Ready. An empty collection is Ready with no
// items, never Error.
//
// # Reconciliation Operations
//
//	store.ReplaceAll(items)  // refetch: full replace, not merge
//	store.PatchRemove(id)    // delete: drop at most one entry, absent id is a no-op
//	store.PatchUpsert(item)  // toggle: replace in place, append if missing
//	store.Fail(err)          // read failure bookkeeping
//
// Patches against a store that is not Ready are ignored because there is no
// snapshot to patch. PatchRemove is idempotent: a second call for the same id
// changes nothing, including Version.
//
// # Concurrency Model
//
// The Store uses a readers-writer lock. Every reconciliation runs inside one
// write-locked section, so a reader sees either the state before or after it,
// never a half-applied patch. The lock is never held across network I/O.
//
// # Subscriptions
//
//	ch, cancel := store.Subscribe()
//	defer cancel()
//	for snap := range ch {
//		render(snap)
//	}
//
// Each subscriber channel has a buffer of one and always holds the newest
// snapshot. Slow readers skip versions; they never block writers.
//
// # Defensive Copying
//
// Snapshot and every published value carry their own copy of the items slice
// and a wrapped copy of LastError, so callers may keep or modify them freely.
//
// # Testing Considerations
//
// The zero value is usable:
//
//	var store cache.Store // Loading, no subscribers
package cache
