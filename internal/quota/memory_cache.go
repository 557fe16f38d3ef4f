package quota

import "sync"

// implements Cache with a map, used as the server-side shadow
type MemoryCache struct {
	mu      sync.RWMutex
	records map[string]UsageRecord
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{records: make(map[string]UsageRecord)}
}

func (c *MemoryCache) Load(accountID string) (UsageRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rec, ok := c.records[accountID]
	return rec, ok
}

func (c *MemoryCache) Save(accountID string, rec UsageRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.records[accountID] = rec
}

func (c *MemoryCache) Forget(accountID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.records, accountID)
}
