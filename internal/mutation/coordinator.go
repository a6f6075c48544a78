package mutation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/five82/checklist/internal/cache"
	"github.com/five82/checklist/internal/logging"
	"github.com/five82/checklist/internal/todos"
)

var (
	// ErrMutation marks a failed remote mutation. The cache is unchanged.
	ErrMutation = errors.New("mutation failed")
	// ErrBlankText is returned by Add for empty or whitespace-only text.
	ErrBlankText = errors.New("todo text is blank")
)

// Kind names a mutation operation.
type Kind int

const (
	// KindAdd creates an item and re-reads the collection.
	KindAdd Kind = iota
	// KindToggle flips Done and adopts the server's echo.
	KindToggle
	// KindDelete removes an item and patches it out of the cache.
	KindDelete
)

func (k Kind) String() string {
	switch k {
	case KindAdd:
		return "add"
	case KindToggle:
		return "toggle"
	case KindDelete:
		return "delete"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Phase is the lifecycle stage of the latest mutation of one kind.
type Phase int

const (
	// Idle means no mutation of this kind has run yet.
	Idle Phase = iota
	// InFlight means at least one mutation of this kind awaits the server.
	InFlight
	// Succeeded means the latest mutation completed and was reconciled.
	Succeeded
	// Failed means the latest mutation failed and the cache is unchanged.
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Status reports mutations of one kind. Phase stays InFlight while Pending
// is above zero, even when an earlier call has already finished. Err is set
// only when Phase is Failed.
type Status struct {
	Phase   Phase
	Err     error
	Pending int // calls of this kind still awaiting the server
	Updated time.Time
}

// AddParams creates an item.
type AddParams struct {
	Text string
}

// ToggleParams flips an item. Done is the value currently shown.
type ToggleParams struct {
	ID   uuid.UUID
	Done bool
}

// DeleteParams removes an item. Nothing happens unless Confirmed is set.
type DeleteParams struct {
	ID        uuid.UUID
	Confirmed bool
}

// Refresher re-reads the collection on behalf of add reconciliation.
// *session.Session implements it.
type Refresher interface {
	Mark() uint64
	RefreshAfter(ctx context.Context, mark uint64) error
}

// Coordinator runs mutations against the remote service and reconciles the
// cache with each outcome.
type Coordinator struct {
	svc       todos.Service
	store     *cache.Store
	refresher Refresher
	logger    *slog.Logger

	mu     sync.RWMutex
	status map[Kind]Status
}

// New returns a Coordinator. A nil logger discards.
func New(svc todos.Service, store *cache.Store, refresher Refresher, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		svc:       svc,
		store:     store,
		refresher: refresher,
		logger:    logging.OrDiscard(logger),
		status:    make(map[Kind]Status),
	}
}

// Status returns the state of the latest mutation of the given kind.
func (c *Coordinator) Status(kind Kind) Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status[kind]
}

// Busy reports whether any mutation is in flight.
func (c *Coordinator) Busy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, st := range c.status {
		if st.Phase == InFlight {
			return true
		}
	}
	return false
}

// Add creates an item and then re-reads the whole collection. A failed
// re-read does not fail the add; it shows up as the cache's LastError.
func (c *Coordinator) Add(ctx context.Context, p AddParams) (todos.Item, error) {
	if strings.TrimSpace(p.Text) == "" {
		return todos.Item{}, ErrBlankText
	}

	c.begin(KindAdd)
	item, err := c.svc.Create(ctx, p.Text)
	if err != nil {
		return todos.Item{}, c.fail(KindAdd, "add", err)
	}

	mark := c.refresher.Mark()
	if err := c.refresher.RefreshAfter(ctx, mark); err != nil {
		c.logger.Warn("refresh after add failed", "id", item.ID, "error", err)
	}
	c.finish(KindAdd, Succeeded, nil)
	c.logger.Info("added todo", "id", item.ID)
	return item, nil
}

// Toggle asks the server to flip Done and stores whatever item it echoes
// back, even when that disagrees with the requested value.
func (c *Coordinator) Toggle(ctx context.Context, p ToggleParams) (todos.Item, error) {
	c.begin(KindToggle)
	item, err := c.svc.Update(ctx, p.ID, !p.Done)
	if err != nil {
		return todos.Item{}, c.fail(KindToggle, "toggle "+p.ID.String(), err)
	}

	c.store.PatchUpsert(item)
	c.finish(KindToggle, Succeeded, nil)
	c.logger.Info("toggled todo", "id", item.ID, "done", item.Done)
	return item, nil
}

// Delete removes an item and drops it from the cache. An unconfirmed delete
// is a no-op.
func (c *Coordinator) Delete(ctx context.Context, p DeleteParams) error {
	if !p.Confirmed {
		return nil
	}

	c.begin(KindDelete)
	if err := c.svc.Delete(ctx, p.ID); err != nil {
		return c.fail(KindDelete, "delete "+p.ID.String(), err)
	}

	c.store.PatchRemove(p.ID)
	c.finish(KindDelete, Succeeded, nil)
	c.logger.Info("deleted todo", "id", p.ID)
	return nil
}

func (c *Coordinator) fail(kind Kind, what string, err error) error {
	wrapped := fmt.Errorf("%w: %s: %w", ErrMutation, what, err)
	c.finish(kind, Failed, wrapped)
	c.logger.Warn("mutation failed", "kind", kind.String(), "error", err)
	return wrapped
}

func (c *Coordinator) begin(kind Kind) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := c.status[kind]
	c.status[kind] = Status{Phase: InFlight, Pending: st.Pending + 1, Updated: time.Now()}
}

func (c *Coordinator) finish(kind Kind, phase Phase, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{Phase: phase, Err: err, Pending: c.status[kind].Pending - 1, Updated: time.Now()}
	if st.Pending > 0 {
		st.Phase = InFlight
		st.Err = nil
	}
	c.status[kind] = st
}
