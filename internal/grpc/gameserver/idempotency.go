package gameserver

import (
	"sync"
	"time"

	"github.com/mitchelldurbincs/GridTactics/internal/game/core"
)

const (
	idempotencyTTL       = 24 * time.Hour
	idempotencyCacheSize = 1000
)

// idempotencyKey represents a composite key for idempotent requests
type idempotencyKey struct {
	PlayerID       core.PlayerID
	IdempotencyKey string
}

// idempotencyEntry stores a cached response with timestamp
type idempotencyEntry struct {
	response  *ExecuteResponse
	createdAt time.Time
}

// IdempotencyManager handles idempotent request caching
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	mu    sync.RWMutex
	now   func() time.Time
}

// NewIdempotencyManager creates a new idempotency manager
func NewIdempotencyManager() *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		now:   time.Now,
	}
}

// Check returns a cached response if the idempotency key exists for the given player
func (im *IdempotencyManager) Check(playerID core.PlayerID, key string) *ExecuteResponse {
	if key == "" {
		return nil
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{PlayerID: playerID, IdempotencyKey: key}]
	if !exists {
		return nil
	}
	if im.now().Sub(entry.createdAt) > idempotencyTTL {
		return nil
	}
	return entry.response
}

// Store caches a response for the given player and idempotency key
func (im *IdempotencyManager) Store(playerID core.PlayerID, key string, resp *ExecuteResponse) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{PlayerID: playerID, IdempotencyKey: key}] = &idempotencyEntry{
		response:  resp,
		createdAt: im.now(),
	}

	// Clean up old entries if cache is getting large
	if len(im.cache) > idempotencyCacheSize {
		im.cleanupOldEntriesLocked()
	}
}

// Len returns the number of cached responses
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

// Clear drops every cached response. Restarting a game invalidates them.
func (im *IdempotencyManager) Clear() {
	im.mu.Lock()
	defer im.mu.Unlock()
	im.cache = make(map[idempotencyKey]*idempotencyEntry)
}

// cleanupOldEntriesLocked removes old entries from the cache
// Must be called with mu held
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.now().Add(-idempotencyTTL)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
