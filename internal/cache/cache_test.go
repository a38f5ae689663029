package cache

import (
	"testing"
	"time"

	"evermart/media-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetGetDelete(t *testing.T) {
	c := New(time.Minute)
	key := SlotCacheKey("E1", 0)

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, domain.Asset{ID: "a1", EntityID: "E1", CompanyID: "C1"})
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "a1", got.ID)

	c.Delete(key)
	_, ok = c.Get(key)
	assert.False(t, ok)
}

func TestExpiredEntryReadsAbsent(t *testing.T) {
	c := New(30 * time.Millisecond)
	key := LogoCacheKey("C1")
	c.Set(key, domain.Asset{ID: "a1"})

	time.Sleep(60 * time.Millisecond)

	// Expired entries must miss even if the periodic purge has not
	// removed them yet.
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestValuesAreStoredByValue(t *testing.T) {
	c := New(time.Minute)
	key := SlotCacheKey("E1", 0)

	original := domain.Asset{ID: "a1", CompanyID: "C1"}
	c.Set(key, original)

	// Mutating the caller's copy after insertion must not leak into
	// the cached entry.
	original.CompanyID = "C2"
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "C1", got.CompanyID)

	// Mutating a retrieved copy must not leak either.
	got.CompanyID = "C3"
	again, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "C1", again.CompanyID)
}

func TestCompositeKeys(t *testing.T) {
	assert.Equal(t, "E1:4", SlotCacheKey("E1", 4))
	assert.Equal(t, "logo:C1", LogoCacheKey("C1"))
}
