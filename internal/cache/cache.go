// Package cache holds the process-wide song database.
package cache

import (
	"context"
	"sync/atomic"
	"time"

	"beatstar/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

const flightKey = "database"

// FetchFunc builds a database from scratch.
type FetchFunc func(ctx context.Context) (*domain.Database, error)

// Cache stores at most one Database. Concurrent callers that find it empty
// share a single FetchFunc execution; a failed fetch leaves the slot empty so
// the next call tries again. Once stored the database is never replaced.
type Cache struct {
	slot   atomic.Pointer[entry]
	group  singleflight.Group
	logger zerolog.Logger
}

// entry is published whole so readers never see a database without its
// load time.
type entry struct {
	db       *domain.Database
	loadedAt time.Time
}

func New(logger zerolog.Logger) *Cache {
	return &Cache{logger: logger}
}

// Get returns the cached database without fetching, or nil.
func (c *Cache) Get() *domain.Database {
	if e := c.slot.Load(); e != nil {
		return e.db
	}
	return nil
}

// LoadedAt is when the database was stored; zero while empty.
func (c *Cache) LoadedAt() time.Time {
	if e := c.slot.Load(); e != nil {
		return e.loadedAt
	}
	return time.Time{}
}

// GetOrInit returns the cached database, running fetch first when the cache is
// empty. Callers that arrive while a fetch is in flight wait for it and see its
// outcome. The context of the caller that starts the fetch governs it.
func (c *Cache) GetOrInit(ctx context.Context, fetch FetchFunc) (*domain.Database, error) {
	if db := c.Get(); db != nil {
		return db, nil
	}

	v, err, shared := c.group.Do(flightKey, func() (any, error) {
		if db := c.Get(); db != nil {
			return db, nil
		}

		start := time.Now()
		db, err := fetch(ctx)
		if err != nil {
			c.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("database fetch failed")
			return nil, err
		}

		if c.slot.CompareAndSwap(nil, &entry{db: db, loadedAt: time.Now()}) {
			c.logger.Info().Int("songs", db.Len()).Dur("elapsed", time.Since(start)).Msg("database cached")
		}
		return c.Get(), nil
	})
	if err != nil {
		return nil, err
	}

	if shared {
		c.logger.Debug().Msg("joined in-flight database fetch")
	}
	return v.(*domain.Database), nil
}
