package cache

import (
	"fmt"
	"time"

	"evermart/media-service/internal/domain"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultTTL is the absolute lifetime of a cache entry from insertion.
const DefaultTTL = 2 * time.Hour

// AssetCache is the process-wide shadow of recently written or read
// descriptors. It is never authoritative: the durable aggregate is.
// Entries expire TTL after insertion regardless of the durable records'
// lifecycle; an expired entry reads as absent even before the backing
// store's periodic purge removes it. Descriptors are stored by value,
// so callers cannot mutate a cached entry in place.
type AssetCache struct {
	entries *expirable.LRU[string, domain.Asset]
}

// New creates an AssetCache with the given entry TTL. A non-positive
// ttl falls back to DefaultTTL. Entry count is unbounded; only TTL
// expiry evicts.
func New(ttl time.Duration) *AssetCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AssetCache{
		entries: expirable.NewLRU[string, domain.Asset](0, nil, ttl),
	}
}

// SlotCacheKey is the composite key for an (entity, position) slot.
func SlotCacheKey(entityID string, position int) string {
	return fmt.Sprintf("%s:%d", entityID, position)
}

// LogoCacheKey is the composite key for a company's logo slot.
func LogoCacheKey(companyID string) string {
	return "logo:" + companyID
}

func (c *AssetCache) Set(key string, asset domain.Asset) {
	c.entries.Add(key, asset)
}

func (c *AssetCache) Get(key string) (domain.Asset, bool) {
	return c.entries.Get(key)
}

func (c *AssetCache) Delete(key string) {
	c.entries.Remove(key)
}

// Len reports the number of live entries, for diagnostics.
func (c *AssetCache) Len() int {
	return c.entries.Len()
}
