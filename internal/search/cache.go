package search

import (
	"fmt"
	"sync"
	"time"
)

// releaseCacheTTL is how long a decided release stays grabbable after a
// search before the user must search again.
const releaseCacheTTL = 30 * time.Minute

type cacheEntry struct {
	remote  *RemoteAlbum
	expires time.Time
}

// ReleaseCache holds recently decided releases so a grab request can
// retrieve the original candidate without re-searching. Entries share
// one TTL; a repeated search refreshes key and value (last writer wins).
type ReleaseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewReleaseCache creates a cache with the standard 30 minute TTL.
func NewReleaseCache() *ReleaseCache {
	return &ReleaseCache{
		entries: make(map[string]cacheEntry),
		ttl:     releaseCacheTTL,
		now:     time.Now,
	}
}

func cacheKey(indexerID int64, guid string) string {
	return fmt.Sprintf("%d_%s", indexerID, guid)
}

// Set stores a decided release under its indexer and guid.
func (c *ReleaseCache) Set(remote *RemoteAlbum) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[cacheKey(remote.Release.IndexerID, remote.Release.GUID)] = cacheEntry{
		remote:  remote,
		expires: c.now().Add(c.ttl),
	}
}

// Get returns the cached release, or false when absent or expired.
func (c *ReleaseCache) Get(indexerID int64, guid string) (*RemoteAlbum, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[cacheKey(indexerID, guid)]
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expires) {
		return nil, false
	}
	return entry.remote, true
}

// Prune removes expired entries. Expiry is otherwise lazy, so long-idle
// processes call this periodically to bound memory.
func (c *ReleaseCache) Prune() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of entries, expired included.
func (c *ReleaseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
