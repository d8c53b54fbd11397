package handlers

import (
	"time"

	"github.com/arnavshah/dutyboard-api-go/pkg/database"
	"github.com/maypok86/otter/v2"
)

// KeyCache keeps recently used API key rows in memory so the middleware
// does not hit the database for every request
type KeyCache struct {
	cache *otter.Cache[string, database.APIKey]
}

// NewKeyCache creates a cache whose entries expire ttl after being written
func NewKeyCache(ttl time.Duration) *KeyCache {
	return &KeyCache{
		cache: otter.Must(&otter.Options[string, database.APIKey]{
			MaximumSize:      10_000,
			ExpiryCalculator: otter.ExpiryWriting[string, database.APIKey](ttl),
		}),
	}
}

// Get returns the cached row for key
func (k *KeyCache) Get(key string) (database.APIKey, bool) {
	return k.cache.GetIfPresent(key)
}

// Put caches a key row
func (k *KeyCache) Put(apiKey database.APIKey) {
	k.cache.Set(apiKey.Key, apiKey)
}

// Invalidate drops a key so the next request reloads it
func (k *KeyCache) Invalidate(key string) {
	k.cache.Invalidate(key)
}
