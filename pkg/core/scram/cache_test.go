package scram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaltedPasswordCacheHit(t *testing.T) {
	c := newSaltedPasswordCache(10)
	password := []byte("pencil")
	salt := []byte("QSXCR+Q6sek8bf92")

	first := c.getOrCompute(SHA1, password, salt, 4096)
	require.Len(t, first, SHA1.Size())

	c.mu.Lock()
	entriesBefore := len(c.entries)
	c.mu.Unlock()
	require.Equal(t, 1, entriesBefore)

	second := c.getOrCompute(SHA1, password, salt, 4096)
	assert.Equal(t, first, second)

	c.mu.Lock()
	entriesAfter := len(c.entries)
	c.mu.Unlock()
	assert.Equal(t, 1, entriesAfter, "a repeated lookup must not grow the cache")
}

func TestSaltedPasswordCacheNamespacedByMechanism(t *testing.T) {
	c := newSaltedPasswordCache(10)
	password := []byte("pencil")
	salt := []byte("QSXCR+Q6sek8bf92")

	sha1Key := c.getOrCompute(SHA1, password, salt, 4096)
	sha256Key := c.getOrCompute(SHA256, password, salt, 4096)
	assert.NotEqual(t, sha1Key, sha256Key)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.entries, 2)
}

func TestSaltedPasswordCachePurgesAtCapacity(t *testing.T) {
	c := newSaltedPasswordCache(4)
	salt := []byte("salt")

	for i := 0; i < 4; i++ {
		c.getOrCompute(SHA256, []byte{byte(i)}, salt, 4096)
	}
	c.mu.Lock()
	assert.Len(t, c.entries, 4)
	c.mu.Unlock()

	// a 5th distinct entry crosses the capacity: the whole map is
	// purged before the new entry is inserted, so exactly one entry
	// remains afterward rather than five.
	c.getOrCompute(SHA256, []byte{100}, salt, 4096)
	c.mu.Lock()
	defer c.mu.Unlock()
	assert.Len(t, c.entries, 1)
}

func TestNewSaltedPasswordCacheNonPositiveCapacityFallsBack(t *testing.T) {
	c := newSaltedPasswordCache(0)
	assert.Equal(t, defaultCacheCapacity, c.capacity)

	c = newSaltedPasswordCache(-5)
	assert.Equal(t, defaultCacheCapacity, c.capacity)
}

func TestCacheKeyDiffersByIterationCount(t *testing.T) {
	k1 := cacheKey(SHA256, []byte("pw"), []byte("salt"), 4096)
	k2 := cacheKey(SHA256, []byte("pw"), []byte("salt"), 15000)
	assert.NotEqual(t, k1, k2)
}
