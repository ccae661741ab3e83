package auth

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// matrixCache keeps recently built matrices per user.
// A nil *matrixCache is a disabled cache.
//
// Every committed mutation calls purge, which also bumps the generation. A matrix
// is only stored if no purge happened since its build started, so a read racing a
// mutation can never put pre-mutation state back into the cache.
type matrixCache struct {
	mu  sync.Mutex
	lru *expirable.LRU[uint64, *Matrix]
	gen uint64
}

func newMatrixCache(size int, ttl time.Duration) *matrixCache {
	if size <= 0 {
		return nil
	}

	return &matrixCache{
		lru: expirable.NewLRU[uint64, *Matrix](size, nil, ttl),
	}
}

func (c *matrixCache) get(userID uint64) (*Matrix, bool) {
	if c == nil {
		return nil, false
	}

	m, ok := c.lru.Get(userID)
	cacheLookups(ok)

	return m, ok
}

func (c *matrixCache) generation() uint64 {
	if c == nil {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.gen
}

func (c *matrixCache) add(gen, userID uint64, m *Matrix) {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return
	}

	c.lru.Add(userID, m)
}

func (c *matrixCache) purge() {
	if c == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.lru.Purge()
}
