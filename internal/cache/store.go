package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/checklist/internal/todos"
)

// State is the lifecycle stage of the cached collection.
type State int

const (
	// Loading means no read has completed yet.
	Loading State = iota
	// Error means the last read failed and there is no usable data.
	Error
	// Ready means Items holds the last known server state.
	Ready
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Error:
		return "error"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Snapshot is an immutable view of the collection at a point in time.
type Snapshot struct {
	State               State
	Items               []todos.Item // only meaningful when State == Ready
	Version             uint64       // bumped on every published change
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // number of consecutive fetch failures
}

// IsReady reports whether Items can be read.
func (s Snapshot) IsReady() bool {
	return s.State == Ready
}

// IsOffline returns true when the endpoint has failed multiple reads in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Find returns the item with the given id.
func (s Snapshot) Find(id uuid.UUID) (todos.Item, bool) {
	for _, it := range s.Items {
		if it.ID == id {
			return it, true
		}
	}
	return todos.Item{}, false
}

// Store holds the collection and applies reconciliations atomically.
// The zero value is an empty Loading store ready for use.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	subs     map[int]chan Snapshot
	nextSub  int
	patches  uint64 // committed patch count
}

// ReplaceAll swaps in a freshly fetched collection and marks the store Ready.
// Duplicate ids keep their first occurrence.
func (s *Store) ReplaceAll(items []todos.Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.State = Ready
	s.snapshot.Items = dedupe(items)
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.publishLocked()
}

// PatchGeneration returns a counter bumped by every committed patch. A read
// records it before fetching and hands it to ReplaceAllSince.
func (s *Store) PatchGeneration() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.patches
}

// ReplaceAllSince is ReplaceAll for a read that began at patch generation gen.
// If a patch committed after gen, the items predate it: nothing changes and
// it returns false.
func (s *Store) ReplaceAllSince(items []todos.Item, gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.patches != gen {
		return false
	}
	s.snapshot.State = Ready
	s.snapshot.Items = dedupe(items)
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
	s.publishLocked()
	return true
}

// PatchRemove drops the entry with the given id. Removing an absent id, or
// patching a store that is not Ready, is a no-op and publishes nothing.
func (s *Store) PatchRemove(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.State != Ready {
		return false
	}
	idx := indexOf(s.snapshot.Items, id)
	if idx < 0 {
		return false
	}
	next := make([]todos.Item, 0, len(s.snapshot.Items)-1)
	next = append(next, s.snapshot.Items[:idx]...)
	next = append(next, s.snapshot.Items[idx+1:]...)
	s.snapshot.Items = next
	s.patches++
	s.publishLocked()
	return true
}

// PatchUpsert replaces the entry with the item's id in place, or appends the
// item when no entry matches. Ignored unless the store is Ready.
func (s *Store) PatchUpsert(item todos.Item) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.State != Ready {
		return false
	}
	next := cloneItems(s.snapshot.Items)
	if idx := indexOf(next, item.ID); idx >= 0 {
		next[idx] = item
	} else {
		next = append(next, item)
	}
	s.snapshot.Items = next
	s.patches++
	s.publishLocked()
	return true
}

// Fail records a read failure. Without data the store moves to Error; a Ready
// store keeps its items and only records the error.
func (s *Store) Fail(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.State != Ready {
		s.snapshot.State = Error
		s.snapshot.Items = nil
	}
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
	s.publishLocked()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

// Subscribe returns a channel that always holds the most recent snapshot.
// The current snapshot is delivered immediately. A slow reader skips
// intermediate versions but never sees a partial one. Call cancel to stop
// delivery; the channel is closed afterwards.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.subs == nil {
		s.subs = make(map[int]chan Snapshot)
	}
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.copyLocked()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publishLocked stamps a new version and hands it to subscribers. Callers hold
// the write lock, so subscribers observe reconciliations in commit order.
func (s *Store) publishLocked() {
	s.snapshot.Version++
	s.snapshot.LastUpdated = time.Now()
	for _, ch := range s.subs {
		snap := s.copyLocked()
		select {
		case ch <- snap:
		default:
			// Replace the unread value with the newer one.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

func (s *Store) copyLocked() Snapshot {
	snap := s.snapshot
	snap.Items = cloneItems(s.snapshot.Items)
	return snap
}

func indexOf(items []todos.Item, id uuid.UUID) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func dedupe(items []todos.Item) []todos.Item {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{}, len(items))
	out := make([]todos.Item, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ID]; ok {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
	}
	return out
}

func cloneItems(items []todos.Item) []todos.Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]todos.Item, len(items))
	copy(dup, items)
	return dup
}
