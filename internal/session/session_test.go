package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/checklist/internal/cache"
	"github.com/five82/checklist/internal/testutil"
)

// gate holds reads open until released and tracks how many overlap.
type gate struct {
	entered chan struct{}
	release chan struct{}
	active  atomic.Int32
	maxSeen atomic.Int32
}

func newGate() *gate {
	return &gate{
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (g *gate) hook(context.Context) {
	n := g.active.Add(1)
	for {
		cur := g.maxSeen.Load()
		if n <= cur || g.maxSeen.CompareAndSwap(cur, n) {
			break
		}
	}
	select {
	case g.entered <- struct{}{}:
	default:
	}
	<-g.release
	g.active.Add(-1)
}

func TestStart_PopulatesReadyCache(t *testing.T) {
	fake := testutil.NewFakeService()
	milk := fake.Seed("milk", false)
	eggs := fake.Seed("eggs", true)

	var store cache.Store
	s := New(fake, &store, nil)

	require.NoError(t, s.Start(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, cache.Ready, snap.State)
	assert.Equal(t, fake.Items(), snap.Items)
	assert.Equal(t, milk.ID, snap.Items[0].ID)
	assert.Equal(t, eggs.ID, snap.Items[1].ID)
	assert.Same(t, &store, s.Store())
}

func TestStart_EmptyCollectionIsReady(t *testing.T) {
	var store cache.Store
	s := New(testutil.NewFakeService(), &store, nil)

	require.NoError(t, s.Start(context.Background()))

	snap := store.Snapshot()
	assert.Equal(t, cache.Ready, snap.State)
	assert.Empty(t, snap.Items)
}

func TestStart_FailureLeavesError(t *testing.T) {
	backendErr := errors.New("connection refused")
	fake := testutil.NewFakeService()
	fake.FetchAllErr = backendErr

	var store cache.Store
	s := New(fake, &store, nil)

	err := s.Start(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, backendErr)

	snap := store.Snapshot()
	assert.Equal(t, cache.Error, snap.State)
	assert.Nil(t, snap.Items)
	assert.ErrorIs(t, snap.LastError, backendErr)
}

func TestRefresh_ReplacesNotMerges(t *testing.T) {
	fake := testutil.NewFakeService()
	gone := fake.Seed("gone soon", false)

	var store cache.Store
	s := New(fake, &store, nil)
	require.NoError(t, s.Start(context.Background()))

	fake.Remove(gone.ID)
	added := fake.Seed("new", false)
	require.NoError(t, s.Refresh(context.Background()))

	snap := store.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, added, snap.Items[0])
}

func TestRefresh_FailureKeepsReadyData(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.Seed("milk", false)

	var store cache.Store
	s := New(fake, &store, nil)
	require.NoError(t, s.Start(context.Background()))
	before := store.Snapshot().Items

	fake.FetchAllErr = errors.New("timeout")
	err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrFetch)

	snap := store.Snapshot()
	assert.Equal(t, cache.Ready, snap.State)
	assert.Equal(t, before, snap.Items)
	require.Error(t, snap.LastError)
	assert.Equal(t, 1, snap.ConsecutiveFailures)
}

func TestRefresh_ConcurrentCallersShareOneRead(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.Seed("milk", false)
	g := newGate()
	fake.FetchHook = g.hook

	var store cache.Store
	s := New(fake, &store, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		errs <- s.Refresh(context.Background())
	}()
	<-g.entered

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- s.Refresh(context.Background())
		}()
	}
	// Let the joiners reach the in-flight read before it completes.
	time.Sleep(50 * time.Millisecond)
	close(g.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, 1, fake.Calls().FetchAll)
	assert.Equal(t, int32(1), g.maxSeen.Load())
	assert.Equal(t, uint64(1), s.Mark())
}

func TestRefreshAfter_RereadsWhenJoinedReadIsStale(t *testing.T) {
	fake := testutil.NewFakeService()
	g := newGate()
	fake.FetchHook = g.hook

	var store cache.Store
	s := New(fake, &store, nil)

	// A poll read is in flight before the item exists.
	pollDone := make(chan error, 1)
	go func() { pollDone <- s.Refresh(context.Background()) }()
	<-g.entered

	created, err := fake.Create(context.Background(), "bread")
	require.NoError(t, err)
	mark := s.Mark()

	addDone := make(chan error, 1)
	go func() { addDone <- s.RefreshAfter(context.Background(), mark) }()
	time.Sleep(20 * time.Millisecond)
	close(g.release)

	require.NoError(t, <-pollDone)
	require.NoError(t, <-addDone)

	snap := store.Snapshot()
	_, ok := snap.Find(created.ID)
	assert.True(t, ok, "created item missing from cache: %#v", snap.Items)
	assert.Equal(t, 2, fake.Calls().FetchAll)
	assert.Equal(t, int32(1), g.maxSeen.Load())
}

func TestRefreshAfter_SingleReadWhenIdle(t *testing.T) {
	fake := testutil.NewFakeService()
	var store cache.Store
	s := New(fake, &store, nil)
	require.NoError(t, s.Start(context.Background()))

	_, err := fake.Create(context.Background(), "jam")
	require.NoError(t, err)
	require.NoError(t, s.RefreshAfter(context.Background(), s.Mark()))

	assert.Equal(t, 2, fake.Calls().FetchAll)
	assert.Len(t, store.Snapshot().Items, 1)
}

func TestRefreshAfter_ReturnsFetchFailure(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.FetchAllErr = errors.New("boom")
	var store cache.Store
	s := New(fake, &store, nil)

	err := s.RefreshAfter(context.Background(), s.Mark())
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, 1, fake.Calls().FetchAll)
}

func TestRefresh_GivesUpAfterRepeatedPatchRaces(t *testing.T) {
	fake := testutil.NewFakeService()
	milk := fake.Seed("milk", false)
	store := &cache.Store{}
	sess := New(fake, store, nil)
	require.NoError(t, sess.Start(context.Background()))

	// Every read loses to a patch committed while it is out.
	fake.FetchHook = func(context.Context) {
		cur, _ := store.Snapshot().Find(milk.ID)
		cur.Done = !cur.Done
		store.PatchUpsert(cur)
	}

	require.NoError(t, sess.Refresh(context.Background()))
	assert.Equal(t, 1+maxStaleReads, fake.Calls().FetchAll)

	got, found := store.Snapshot().Find(milk.ID)
	require.True(t, found)
	assert.True(t, got.Done, "patched cache kept after an odd number of patches")
}
