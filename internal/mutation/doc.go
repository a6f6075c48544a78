// Package mutation applies add, toggle and delete to the remote collection
// and reconciles the local cache with each outcome.
//
// # Reconciliation Policies
//
// Each operation reconciles differently, and only after its remote call
// succeeds:
//
//	Add     refetch      the whole collection is read again
//	Toggle  server echo  the item returned by the server replaces the cached one
//	Delete  direct patch the deleted id is removed from the cache
//
// A failed remote call returns an error wrapping ErrMutation and leaves the
// cache exactly as it was.
//
// # Status
//
// Every operation kind has its own Status moving through
// Idle → InFlight → Succeeded or Failed. Presentation code reads it with
// Coordinator.Status instead of tracking request flags of its own.
//
// Add with blank text and Delete without confirmation never leave Idle and
// issue no remote call.
package mutation
