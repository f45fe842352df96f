package vault

import "sync"

// Cache is the local view of the user's cipher items, filled from sync and
// invalidated after any operation that changes ownership so subsequent
// loads reflect the server state.
type Cache struct {
	mu    sync.RWMutex
	items map[string]CipherItem
	stale bool
}

func NewCache() *Cache {
	return &Cache{items: map[string]CipherItem{}}
}

func (c *Cache) Put(item CipherItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[item.ID] = item
}

func (c *Cache) Get(id string) (CipherItem, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	item, ok := c.items[id]
	return item, ok
}

// ListFolder returns the items scoped to one folder.
func (c *Cache) ListFolder(folderID string) []CipherItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []CipherItem
	for _, item := range c.items {
		if item.FolderID == folderID {
			out = append(out, item)
		}
	}
	return out
}

// ListOrganization returns the items owned by one organization key.
func (c *Cache) ListOrganization(orgID string) []CipherItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []CipherItem
	for _, item := range c.items {
		if item.OrganizationID == orgID {
			out = append(out, item)
		}
	}
	return out
}

// Items returns every cached entry.
func (c *Cache) Items() []CipherItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]CipherItem, 0, len(c.items))
	for _, item := range c.items {
		out = append(out, item)
	}
	return out
}

// Invalidate marks the whole cache stale after a share or un-share; the
// next sync repopulates it.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

func (c *Cache) Stale() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stale
}

// EvictOrganization drops all entries owned by orgID, used when a share
// stops and ownership returns to the personal vault key.
func (c *Cache) EvictOrganization(orgID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, item := range c.items {
		if item.OrganizationID == orgID {
			delete(c.items, id)
		}
	}
	c.stale = true
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = map[string]CipherItem{}
	c.stale = false
}
