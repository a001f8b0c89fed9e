package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/c360/messagestore/audit"
	"github.com/c360/messagestore/errors"
	"github.com/c360/messagestore/metric"
	"github.com/c360/messagestore/pkg/cache"
	"github.com/c360/messagestore/storage"
	"github.com/c360/messagestore/storage/filestore"
	"github.com/c360/messagestore/storage/memstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// recorder captures audit events in order for assertions.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(event string, id storage.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event+":"+id.String())
}

func (r *recorder) Saving(id storage.ID)     { r.record("saving", id) }
func (r *recorder) Saved(id storage.ID)      { r.record("saved", id) }
func (r *recorder) Reading(id storage.ID)    { r.record("reading", id) }
func (r *recorder) DidNotFind(id storage.ID) { r.record("did_not_find", id) }
func (r *recorder) Returning(id storage.ID)  { r.record("returning", id) }

func (r *recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func newTestStore(t *testing.T, opts ...Option) (*Store, *memstore.Store) {
	t.Helper()
	backend := memstore.New()
	s, err := New(DefaultConfig(), backend, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, backend
}

func TestNew_NilBackend(t *testing.T) {
	_, err := New(DefaultConfig(), nil)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Strategy = "bogus"

	_, err := New(cfg, memstore.New())
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	cfg = DefaultConfig()
	cfg.LockStripes = -1
	_, err = New(cfg, memstore.New())
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestNew_InaccessibleStorageRoot(t *testing.T) {
	// The backend guards its own storage root, so a bad root never yields a
	// live store
	_, err := filestore.New(filestore.DefaultConfig("/nonexistent/storage/root"))
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
}

func TestSaveAndRead_RoundTrip(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 40, "hello"))

	// The backend holds the payload at the located key
	raw, err := backend.Read(ctx, backend.Locate(40))
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), raw)

	got, err := s.Read(ctx, 40)
	require.NoError(t, err)
	require.True(t, got.IsPresent())
	assert.Equal(t, "hello", got.OrElse(""))

	// A never-written id is empty, not an error
	missing, err := s.Read(ctx, 41)
	require.NoError(t, err)
	assert.False(t, missing.IsPresent())
}

func TestRead_AbsenceIsData(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.Read(ctx, 7)
	require.NoError(t, err)
	assert.False(t, first.IsPresent())

	// A second identical read yields the same empty result
	second, err := s.Read(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRead_Idempotent(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 40, "hello"))

	for i := 0; i < 5; i++ {
		got, err := s.Read(ctx, 40)
		require.NoError(t, err)
		assert.Equal(t, "hello", got.OrElse(""))
	}

	// Repeated reads were served from cache: the backend saw none of them
	assert.Zero(t, backend.Reads())
}

func TestSave_Overwrite(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 40, "first"))
	require.NoError(t, s.Save(ctx, 40, "second"))

	got, err := s.Read(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, "second", got.OrElse(""))
}

func TestSave_EmptyMessage(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 40, ""))

	got, err := s.Read(ctx, 40)
	require.NoError(t, err)
	require.True(t, got.IsPresent())
	assert.Equal(t, "", got.MustGet())
}

func TestInvalidID_RejectedBeforeBackend(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	err := s.Save(ctx, -1, "hello")
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	_, err = s.Read(ctx, -1)
	require.Error(t, err)
	assert.True(t, errors.IsInvalid(err))

	assert.Zero(t, backend.Reads())
	assert.Zero(t, backend.Writes())
}

func TestCacheCoherency_ReadAfterSaveNeedsNoBackend(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 40, "hello"))

	// Write-through means the payload is in cache; reads survive a backend
	// that can no longer serve them
	backend.FailReads(true)

	got, err := s.Read(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.OrElse(""))
}

func TestSingleLoadOnConcurrentMiss(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	// Seed the backend directly so the store's cache is cold
	require.NoError(t, backend.Write(ctx, backend.Locate(40), []byte("hello")))

	const readers = 32
	var wg sync.WaitGroup
	results := make([]string, readers)
	errs := make([]error, readers)

	for i := 0; i < readers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Read(ctx, 40)
			results[i] = got.OrElse("")
			errs[i] = err
		}()
	}
	wg.Wait()

	for i := 0; i < readers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "hello", results[i])
	}

	assert.Equal(t, int64(1), backend.Reads())
}

func TestBackendFailure_Propagates(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	backend.FailReads(true)
	_, err := s.Read(ctx, 40)
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
	assert.False(t, errors.IsNotFound(err))

	backend.FailWrites(true)
	err = s.Save(ctx, 40, "hello")
	require.Error(t, err)
	assert.True(t, errors.IsTransient(err))
}

func TestFailedSave_DoesNotPoisonCache(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 40, "good"))

	backend.FailWrites(true)
	require.Error(t, s.Save(ctx, 40, "bad"))
	backend.FailWrites(false)

	got, err := s.Read(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, "good", got.OrElse(""))
}

func TestAudit_EventOrdering(t *testing.T) {
	rec := &recorder{}
	s, _ := newTestStore(t, WithAudit(rec))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 40, "hello"))

	got, err := s.Read(ctx, 40)
	require.NoError(t, err)
	require.True(t, got.IsPresent())

	missing, err := s.Read(ctx, 41)
	require.NoError(t, err)
	require.False(t, missing.IsPresent())

	assert.Equal(t, []string{
		"saving:40",
		"saved:40",
		"reading:40",
		"returning:40",
		"reading:41",
		"did_not_find:41",
	}, rec.Events())
}

func TestAudit_MultiFansOut(t *testing.T) {
	first, second := &recorder{}, &recorder{}
	s, _ := newTestStore(t, WithAudit(audit.Multi{first, second}))

	require.NoError(t, s.Save(context.Background(), 40, "hello"))

	assert.Equal(t, first.Events(), second.Events())
	assert.NotEmpty(t, first.Events())
}

func TestDisabledCache_StillCorrect(t *testing.T) {
	backend := memstore.New()
	cfg := DefaultConfig()
	cfg.Cache = cache.Config{Enabled: false}

	s, err := New(cfg, backend)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, 40, "hello"))

	got, err := s.Read(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.OrElse(""))

	// Every read goes to the backend when the cache is off
	_, err = s.Read(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, int64(2), backend.Reads())
}

func TestWithMetrics_Registers(t *testing.T) {
	registry := metric.NewRegistry()
	s, _ := newTestStore(t, WithMetrics(registry))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 40, "hello"))
	_, err := s.Read(ctx, 40)
	require.NoError(t, err)
	_, err = s.Read(ctx, 41)
	require.NoError(t, err)

	// Registering a second store on the same registry collides
	_, err = New(DefaultConfig(), memstore.New(), WithMetrics(registry))
	assert.Error(t, err)
}

func TestConcurrentSavesAndReads(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := storage.ID(i % 4)
			assert.NoError(t, s.Save(ctx, id, "payload"))
			got, err := s.Read(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, "payload", got.OrElse(""))
		}()
	}
	wg.Wait()
}

func TestFileBackend_EndToEnd(t *testing.T) {
	backend, err := filestore.New(filestore.DefaultConfig(t.TempDir()))
	require.NoError(t, err)

	s, err := New(DefaultConfig(), backend)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, 40, "hello"))

	got, err := s.Read(ctx, 40)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.OrElse(""))

	missing, err := s.Read(ctx, 41)
	require.NoError(t, err)
	assert.False(t, missing.IsPresent())
}

func TestCacheStats_TrackHitsAndMisses(t *testing.T) {
	s, backend := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, backend.Write(ctx, backend.Locate(40), []byte("hello")))

	_, err := s.Read(ctx, 40) // miss, loads from backend
	require.NoError(t, err)
	_, err = s.Read(ctx, 40) // hit
	require.NoError(t, err)

	stats := s.CacheStats()
	require.NotNil(t, stats)
	assert.Equal(t, int64(1), stats.Hits())
	assert.GreaterOrEqual(t, stats.Misses(), int64(1))
}
