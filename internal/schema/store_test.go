package schema

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// slowSource blocks every fetch until release is closed.
type slowSource struct {
	inner   Source
	release chan struct{}
	calls   atomic.Int32
}

func (s *slowSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	s.calls.Add(1)
	<-s.release
	return s.inner.Fetch(ctx, id)
}

func (s *slowSource) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}

func TestStore_LoadCachesSchema(t *testing.T) {
	store := NewStore(Builtin(), nil)

	first, err := store.Load(context.Background(), "C1T02")
	require.NoError(t, err)
	second, err := store.Load(context.Background(), "C1T02")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.True(t, store.Cached("C1T02"))
	assert.Equal(t, int64(1), store.Fetches())
}

func TestStore_LoadMissingReturnsPlaceholder(t *testing.T) {
	rec := logger.NewRecorder()
	store := NewStore(MapSource{}, rec)

	table, err := store.Load(context.Background(), "C9T99")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrSchemaNotFound))
	assert.True(t, errors.Is(err, ErrNoDocument))

	require.NotNil(t, table)
	assert.True(t, table.Placeholder)
	assert.Len(t, table.Fields, 1)
	assert.Equal(t, 1, rec.Count(logger.KindSchemaNotFound))
	assert.False(t, store.Cached("C9T99"))
}

func TestStore_LoadUnparseableReturnsPlaceholder(t *testing.T) {
	store := NewStore(MapSource{"X1T01": "id: X1T01\nfields:\n  - {id: X1T01E01, type: dial}"}, nil)

	table, err := store.Load(context.Background(), "X1T01")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSchemaNotFound)
	assert.True(t, table.Placeholder)
}

func TestStore_SingleFlight(t *testing.T) {
	src := &slowSource{inner: Builtin(), release: make(chan struct{})}
	store := NewStore(src, nil)

	const callers = 16
	results := make([]*models.TableSchema, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			table, err := store.Load(context.Background(), "C2T02")
			assert.NoError(t, err)
			results[i] = table
		}(i)
	}

	// Give every goroutine a chance to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(src.release)
	wg.Wait()

	assert.Equal(t, int32(1), src.calls.Load())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

// gatedSource blocks every fetch until release is closed or the fetch
// context ends, and signals started when the first fetch begins.
type gatedSource struct {
	inner   Source
	release chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *gatedSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	s.once.Do(func() { close(s.started) })
	select {
	case <-s.release:
		return s.inner.Fetch(ctx, id)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *gatedSource) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}

func TestStore_CancelledCallerDoesNotFailOthers(t *testing.T) {
	src := &gatedSource{inner: Builtin(), release: make(chan struct{}), started: make(chan struct{})}
	rec := logger.NewRecorder()
	store := NewStore(src, rec)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := store.Load(ctxA, "C2T03")
		errA <- err
	}()
	<-src.started

	type result struct {
		table *models.TableSchema
		err   error
	}
	resB := make(chan result, 1)
	go func() {
		table, err := store.Load(context.Background(), "C2T03")
		resB <- result{table, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	err := <-errA
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	close(src.release)
	b := <-resB
	require.NoError(t, b.err)
	assert.False(t, b.table.Placeholder)
	assert.Equal(t, "C2T03", b.table.ID)
	assert.True(t, store.Cached("C2T03"))
	assert.Equal(t, 0, rec.Count(logger.KindSchemaNotFound))
}

func TestStore_LoadWithCancelledContext(t *testing.T) {
	rec := logger.NewRecorder()
	store := NewStore(Builtin(), rec)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	table, err := store.Load(ctx, "C1T02")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, err, models.ErrSchemaNotFound)
	assert.True(t, table.Placeholder)
	assert.Equal(t, int64(0), store.Fetches())
	assert.Empty(t, rec.Entries())

	table, err = store.Load(context.Background(), "C1T02")
	require.NoError(t, err)
	assert.False(t, table.Placeholder)
}

func TestStore_PreloadToleratesPartialFailure(t *testing.T) {
	store := NewStore(Builtin(), nil)

	err := store.Preload(context.Background(), []string{"C1T01", "C9T98", "C1T02", "C9T99"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrSchemaNotFound)
	assert.Contains(t, err.Error(), "C9T98")
	assert.Contains(t, err.Error(), "C9T99")

	assert.True(t, store.Cached("C1T01"))
	assert.True(t, store.Cached("C1T02"))

	assert.NoError(t, store.Preload(context.Background(), []string{"C1T01"}))
}

func TestStore_ResetDiscardsCache(t *testing.T) {
	store := NewStore(Builtin(), nil)
	_, err := store.Load(context.Background(), "C1T01")
	require.NoError(t, err)

	store.Reset()
	assert.False(t, store.Cached("C1T01"))

	_, err = store.Load(context.Background(), "C1T01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), store.Fetches())
}

func TestStore_Field(t *testing.T) {
	store := NewStore(Builtin(), nil)

	field, ok := store.Field(context.Background(), "C1T04E01")
	require.True(t, ok)
	assert.Equal(t, models.KindList, field.Kind)

	_, ok = store.Field(context.Background(), "not-a-field")
	assert.False(t, ok)
	_, ok = store.Field(context.Background(), "C1T04E99")
	assert.False(t, ok)
}

func TestStore_Registry(t *testing.T) {
	store := NewStore(Builtin(), nil)

	families, err := store.Registry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"C4T01", "C4T02", "C4T03"}, families[models.FamilyConstat])
	assert.Contains(t, families[models.FamilyAssessment], "C1T01")
	assert.Contains(t, families[models.FamilyAssessment], "C3T09")
}

func TestChain_FirstSourceWins(t *testing.T) {
	override := MapSource{"C1T01": "id: C1T01\ntitle: Overridden\nfields:\n  - {id: C1T01E02, type: date}"}
	store := NewStore(Chain{override, Builtin()}, nil)

	table, err := store.Load(context.Background(), "C1T01")
	require.NoError(t, err)
	assert.Equal(t, "Overridden", table.Title)

	table, err = store.Load(context.Background(), "C1T02")
	require.NoError(t, err)
	assert.Equal(t, "Anthropometry", table.Title)

	ids, err := Chain{override, Builtin()}.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, countOf(ids, "C1T01"))
}

func countOf(ids []string, id string) int {
	n := 0
	for _, x := range ids {
		if x == id {
			n++
		}
	}
	return n
}
