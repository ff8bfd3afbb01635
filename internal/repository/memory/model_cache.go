// Package memory holds process-local implementations used in development
// and tests, when no Redis is configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"myArtMarket/business/bandit"
)

type entry struct {
	value  []byte
	expire time.Time
}

// ModelCache is an in-memory bandit.ModelCache with a TTL. Values are stored
// serialized so callers never share matrices with the cache.
type ModelCache struct {
	mu   sync.RWMutex
	data map[uint]entry
	ttl  time.Duration
	now  func() time.Time
}

var _ bandit.ModelCache = (*ModelCache)(nil)

func NewModelCache(ttl time.Duration) *ModelCache {
	return &ModelCache{
		data: make(map[uint]entry),
		ttl:  ttl,
		now:  time.Now,
	}
}

func (c *ModelCache) GetModel(ctx context.Context, userID uint) (*bandit.UserModel, error) {
	c.mu.RLock()
	e, ok := c.data[userID]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if !e.expire.IsZero() && c.now().After(e.expire) {
		c.mu.Lock()
		delete(c.data, userID)
		c.mu.Unlock()
		return nil, nil
	}

	var m bandit.UserModel
	if err := json.Unmarshal(e.value, &m); err != nil {
		return nil, fmt.Errorf("unmarshal cached model: %w", err)
	}
	return &m, nil
}

func (c *ModelCache) SetModel(ctx context.Context, userID uint, m *bandit.UserModel) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}

	e := entry{value: raw}
	if c.ttl > 0 {
		e.expire = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.data[userID] = e
	c.mu.Unlock()
	return nil
}
