// Package schema loads, validates and caches the table schemas the engine
// evaluates against.
//
// A Store is constructed once and handed to every component that needs
// schemas; there is no package-level cache. The first Load of an id is
// single-flight: concurrent callers share one fetch and decode.
package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/logger"
	"github.com/JoelKayemba/App-soin-plaie-sub001/internal/models"
	"golang.org/x/sync/singleflight"
)

// Loader is the read side of a Store, accepted by dependent components.
type Loader interface {
	Load(ctx context.Context, tableID string) (*models.TableSchema, error)
}

// Store caches decoded schemas by table id.
type Store struct {
	source Source
	sink   logger.Sink

	mu    sync.RWMutex
	cache map[string]*models.TableSchema
	group singleflight.Group

	fetches atomic.Int64
}

// NewStore creates a Store over source. Failures are reported to sink.
func NewStore(source Source, sink logger.Sink) *Store {
	return &Store{
		source: source,
		sink:   logger.OrNop(sink),
		cache:  make(map[string]*models.TableSchema),
	}
}

// Load returns the schema for tableID. When the document is missing or does not
// decode, Load returns a placeholder schema together with an error wrapping
// models.ErrSchemaNotFound, so callers can keep rendering. Failures are not
// cached: a later Load retries the source.
//
// The shared fetch is detached from any single caller's cancellation. A
// caller whose ctx ends stops waiting and gets a placeholder with ctx.Err();
// the other callers still receive the loaded schema.
func (s *Store) Load(ctx context.Context, tableID string) (*models.TableSchema, error) {
	if table, ok := s.cached(tableID); ok {
		return table, nil
	}
	if err := ctx.Err(); err != nil {
		return models.PlaceholderSchema(tableID), &models.SchemaError{TableID: tableID, Err: err}
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := s.group.DoChan(tableID, func() (any, error) {
		// A caller that lost the race with a finished load resolves from cache.
		if table, ok := s.cached(tableID); ok {
			return table, nil
		}
		s.fetches.Add(1)
		data, err := s.source.Fetch(fetchCtx, tableID)
		if err != nil {
			return nil, err
		}
		table, err := Decode(tableID, data)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.cache[tableID] = table
		s.mu.Unlock()
		return table, nil
	})

	select {
	case <-ctx.Done():
		return models.PlaceholderSchema(tableID), &models.SchemaError{TableID: tableID, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			s.sink.Report(logger.NewDiagnostic(logger.KindSchemaNotFound, "schema", tableID, res.Err.Error()))
			return models.PlaceholderSchema(tableID), &models.SchemaError{TableID: tableID, Err: res.Err}
		}
		return res.Val.(*models.TableSchema), nil
	}
}

// MustLoad returns the schema or its placeholder, dropping the error. The
// failure has already been reported to the sink.
func (s *Store) MustLoad(ctx context.Context, tableID string) *models.TableSchema {
	table, _ := s.Load(ctx, tableID)
	return table
}

// Preload warms the cache. It loads every id and returns the joined errors of
// the ones that failed; successes stay cached either way.
func (s *Store) Preload(ctx context.Context, ids []string) error {
	var errs []error
	for _, id := range ids {
		if _, err := s.Load(ctx, id); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Cached reports whether tableID is resident.
func (s *Store) Cached(tableID string) bool {
	_, ok := s.cached(tableID)
	return ok
}

// Fetches returns how many times the source was consulted.
func (s *Store) Fetches() int64 {
	return s.fetches.Load()
}

// Reset discards every cached schema.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]*models.TableSchema)
}

// Field resolves a field definition through the table encoded in its id.
func (s *Store) Field(ctx context.Context, fieldID string) (models.FieldDefinition, bool) {
	tableID, ok := models.TableIDOf(fieldID)
	if !ok {
		return models.FieldDefinition{}, false
	}
	table, err := s.Load(ctx, tableID)
	if err != nil {
		return models.FieldDefinition{}, false
	}
	return table.Field(fieldID)
}

// Registry loads every schema the source lists and groups the ids by family.
// Documents that fail to load are reported and left out.
func (s *Store) Registry(ctx context.Context) (map[models.Family][]string, error) {
	ids, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list schemas: %w", err)
	}
	out := make(map[models.Family][]string)
	for _, id := range ids {
		table, err := s.Load(ctx, id)
		if err != nil {
			continue
		}
		out[table.Family] = append(out[table.Family], id)
	}
	for family := range out {
		sort.Strings(out[family])
	}
	return out, nil
}

func (s *Store) cached(tableID string) (*models.TableSchema, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	table, ok := s.cache[tableID]
	return table, ok
}
