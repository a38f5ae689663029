package service

import (
	"evermart/media-service/internal/cache"
)

// ownershipGuard compares a caller-asserted company against the owner
// recorded in the shadow cache for a slot. The durable aggregate is
// deliberately not consulted: when the cache entry has expired or was
// never written, the check passes. Ownership is therefore only
// enforced while the slot's entry is warm.
type ownershipGuard struct {
	cache *cache.AssetCache
}

// authorize returns ErrOwnershipMismatch when a warm cache entry
// records a different owner, nil otherwise.
func (g ownershipGuard) authorize(entityID string, position int, companyID string) error {
	entry, ok := g.cache.Get(cache.SlotCacheKey(entityID, position))
	if !ok {
		return nil
	}
	if entry.CompanyID != companyID {
		return ErrOwnershipMismatch
	}
	return nil
}
