package cache

import "time"

// CacheService defines the behavior for caching mechanisms
type CacheService interface {
	// Get retrieves a value from the cache
	// Returns value, true if found
	// Returns nil, false if not found
	Get(key string) (interface{}, bool)

	// Set adds a value to the cache with a duration
	Set(key string, value interface{}, duration time.Duration)

	// Add stores a value only if the key is absent or expired.
	// Returns false if the key already holds a live value.
	Add(key string, value interface{}, duration time.Duration) bool

	// Count returns the number of items, including expired ones not yet cleaned up
	Count() int
}
