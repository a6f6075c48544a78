// Package session owns the collection query: the initial read and every
// refresh that follows it.
//
// Reads never overlap. A caller that arrives while a read is in flight waits
// for that read instead of issuing its own. Every read replaces the cache
// wholesale on success and records a failure on error.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/five82/checklist/internal/cache"
	"github.com/five82/checklist/internal/logging"
	"github.com/five82/checklist/internal/todos"
)

// ErrFetch marks a failed collection read.
var ErrFetch = errors.New("fetch todos")

const refreshKey = "todos"

// maxStaleReads bounds how often one read is repeated because patches keep
// committing while it is out.
const maxStaleReads = 3

// Session keeps a cache.Store in sync with the remote collection.
type Session struct {
	svc    todos.Service
	store  *cache.Store
	logger *slog.Logger

	group   singleflight.Group
	started atomic.Uint64 // reads issued so far
}

// readResult is what a shared read hands to every waiter.
type readResult struct {
	seq   uint64
	count int
}

// New returns a Session reading from svc into store. A nil logger discards.
func New(svc todos.Service, store *cache.Store, logger *slog.Logger) *Session {
	return &Session{
		svc:    svc,
		store:  store,
		logger: logging.OrDiscard(logger),
	}
}

// Store returns the cache the session writes.
func (s *Session) Store() *cache.Store {
	return s.store
}

// Start performs the initial read. A failure leaves the cache in Error.
func (s *Session) Start(ctx context.Context) error {
	s.logger.Info("session start")
	_, err := s.read(ctx)
	return err
}

// Refresh re-reads the collection, joining a read already in flight.
func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.read(ctx)
	return err
}

// Mark returns the sequence number of the most recently issued read. Pass it
// to RefreshAfter to require a read issued later than now.
func (s *Session) Mark() uint64 {
	return s.started.Load()
}

// RefreshAfter returns once a read issued after mark has completed. An
// in-flight read that began at or before mark is awaited and then followed by
// one more read.
func (s *Session) RefreshAfter(ctx context.Context, mark uint64) error {
	for {
		res, err := s.read(ctx)
		if err != nil {
			return err
		}
		if res.seq > mark {
			return nil
		}
		s.logger.Debug("joined stale read, reading again", "seq", res.seq, "mark", mark)
	}
}

func (s *Session) read(ctx context.Context) (readResult, error) {
	v, err, shared := s.group.Do(refreshKey, func() (any, error) {
		// Waiters share this read, so one caller's cancellation must not fail the rest.
		readCtx := context.WithoutCancel(ctx)
		seq := s.started.Add(1)
		start := time.Now()

		for attempt := 1; ; attempt++ {
			gen := s.store.PatchGeneration()
			items, err := s.svc.FetchAll(readCtx)
			if err != nil {
				s.store.Fail(err)
				s.logger.Warn("fetch failed", "seq", seq, "error", err)
				return readResult{seq: seq}, err
			}
			if s.store.ReplaceAllSince(items, gen) {
				s.logger.Debug("fetch finished", "seq", seq, "items", len(items), "elapsed", time.Since(start))
				return readResult{seq: seq, count: len(items)}, nil
			}
			// A toggle or delete landed while this read was out.
			if attempt >= maxStaleReads {
				s.logger.Warn("reads kept losing to patches, keeping patched cache", "seq", seq, "attempts", attempt)
				return readResult{seq: seq, count: len(items)}, nil
			}
			s.logger.Debug("read predates a patch, reading again", "seq", seq, "attempt", attempt)
		}
	})
	if shared {
		s.logger.Debug("refresh joined in-flight read")
	}
	res, _ := v.(readResult)
	if err != nil {
		return res, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return res, nil
}
