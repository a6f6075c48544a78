// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/checklist/internal/todos"
)

// CallCounts records how many times each remote operation was invoked,
// including calls that returned an injected error.
type CallCounts struct {
	FetchAll int
	Create   int
	Update   int
	Delete   int
}

// Total returns the number of remote calls of any kind.
func (c CallCounts) Total() int {
	return c.FetchAll + c.Create + c.Update + c.Delete
}

// FakeService is an in-memory implementation of todos.Service for testing.
type FakeService struct {
	mu    sync.Mutex
	items []todos.Item
	calls CallCounts

	// Error injection for testing
	FetchAllErr error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error

	// UpdateEcho rewrites the item an update returns, simulating a server that
	// stores something other than what was requested. Stored state is left as
	// the echo reports it.
	UpdateEcho func(todos.Item) todos.Item

	// FetchHook runs at the start of every FetchAll, before state is read.
	// Tests use it to hold a read open.
	FetchHook func(ctx context.Context)
}

var _ todos.Service = (*FakeService)(nil)

// NewFakeService creates a FakeService holding the given items.
func NewFakeService(items ...todos.Item) *FakeService {
	f := &FakeService{}
	f.items = append(f.items, items...)
	return f
}

// Seed appends a new item with a fresh id and returns it.
func (f *FakeService) Seed(text string, done bool) todos.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	item := todos.Item{ID: uuid.New(), Text: text, Done: done}
	f.items = append(f.items, item)
	return item
}

// Remove deletes an item behind the client's back, as another user would.
func (f *FakeService) Remove(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = removeID(f.items, id)
}

// Items returns a copy of the stored collection.
func (f *FakeService) Items() []todos.Item {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]todos.Item, len(f.items))
	copy(out, f.items)
	return out
}

// Calls returns the call counters.
func (f *FakeService) Calls() CallCounts {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FetchAll implements todos.Service.
func (f *FakeService) FetchAll(ctx context.Context) ([]todos.Item, error) {
	f.mu.Lock()
	f.calls.FetchAll++
	hook, err := f.FetchHook, f.FetchAllErr
	f.mu.Unlock()

	if hook != nil {
		hook(ctx)
	}
	if err != nil {
		return nil, err
	}
	return f.Items(), nil
}

// Create implements todos.Service.
func (f *FakeService) Create(ctx context.Context, text string) (todos.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Create++
	if f.CreateErr != nil {
		return todos.Item{}, f.CreateErr
	}
	item := todos.Item{ID: uuid.New(), Text: text}
	f.items = append(f.items, item)
	return item, nil
}

// Update implements todos.Service.
func (f *FakeService) Update(ctx context.Context, id uuid.UUID, done bool) (todos.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Update++
	if f.UpdateErr != nil {
		return todos.Item{}, f.UpdateErr
	}
	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		f.items[i].Done = done
		if f.UpdateEcho != nil {
			f.items[i] = f.UpdateEcho(f.items[i])
		}
		return f.items[i], nil
	}
	return todos.Item{}, todos.ErrNotFound
}

// Delete implements todos.Service.
func (f *FakeService) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls.Delete++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	before := len(f.items)
	f.items = removeID(f.items, id)
	if len(f.items) == before {
		return todos.ErrNotFound
	}
	return nil
}

func removeID(items []todos.Item, id uuid.UUID) []todos.Item {
	out := items[:0]
	for _, it := range items {
		if it.ID != id {
			out = append(out, it)
		}
	}
	return out
}
