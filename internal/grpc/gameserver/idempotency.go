package gameserver

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	gamev1 "github.com/mitchelldurbincs/gasgrid/pkg/api/game/v1"
)

// DefaultIdempotencyTTL is how long a submitted action's response is replayed
const DefaultIdempotencyTTL = 5 * time.Minute

const cleanupThreshold = 1000

// idempotencyKey scopes a client key to one player in one game
type idempotencyKey struct {
	GameID         string
	PlayerID       string
	IdempotencyKey string
}

// idempotencyEntry stores a cached response with timestamp. done is closed
// once the first request holding the key has finished; response stays nil if
// that request failed without an answer worth replaying.
type idempotencyEntry struct {
	response  *gamev1.SubmitActionResponse
	createdAt time.Time
	done      chan struct{}
}

func (e *idempotencyEntry) finished() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// IdempotencyManager replays responses for retried action submissions
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	mu    sync.Mutex
	ttl   time.Duration
	clock clockwork.Clock
}

// NewIdempotencyManager creates a new idempotency manager
func NewIdempotencyManager(ttl time.Duration, clock clockwork.Clock) *IdempotencyManager {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		ttl:   ttl,
		clock: clock,
	}
}

// Check returns a cached response if the key was stored within the TTL
func (im *IdempotencyManager) Check(gameID, playerID, key string) *gamev1.SubmitActionResponse {
	if key == "" {
		return nil
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	entry, exists := im.cache[idempotencyKey{gameID, playerID, key}]
	if !exists || !entry.finished() || im.expiredLocked(entry) {
		return nil
	}
	return entry.response
}

// Begin reserves the key for one request. If another request already holds
// it, Begin waits for that request and returns its response. Otherwise the
// caller owns the key and must call finish exactly once; finish(nil) releases
// the key without caching so a later retry runs again.
func (im *IdempotencyManager) Begin(ctx context.Context, gameID, playerID, key string) (cached *gamev1.SubmitActionResponse, finish func(*gamev1.SubmitActionResponse), err error) {
	if key == "" {
		return nil, func(*gamev1.SubmitActionResponse) {}, nil
	}
	k := idempotencyKey{gameID, playerID, key}

	for {
		im.mu.Lock()
		entry, exists := im.cache[k]
		if exists && entry.finished() && entry.response != nil && !im.expiredLocked(entry) {
			im.mu.Unlock()
			return entry.response, nil, nil
		}
		if !exists || entry.finished() {
			entry = &idempotencyEntry{createdAt: im.clock.Now(), done: make(chan struct{})}
			im.cache[k] = entry
			if len(im.cache) > cleanupThreshold {
				im.cleanupOldEntriesLocked()
			}
			im.mu.Unlock()
			return nil, im.finisher(k, entry), nil
		}
		im.mu.Unlock()

		select {
		case <-entry.done:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}
}

func (im *IdempotencyManager) finisher(k idempotencyKey, entry *idempotencyEntry) func(*gamev1.SubmitActionResponse) {
	var once sync.Once
	return func(resp *gamev1.SubmitActionResponse) {
		once.Do(func() {
			im.mu.Lock()
			defer im.mu.Unlock()
			if resp == nil {
				if im.cache[k] == entry {
					delete(im.cache, k)
				}
			} else {
				entry.response = resp
				entry.createdAt = im.clock.Now()
			}
			close(entry.done)
		})
	}
}

// Store caches a response for the given player and idempotency key. A key
// that is in flight or holds a live response is left alone.
func (im *IdempotencyManager) Store(gameID, playerID, key string, resp *gamev1.SubmitActionResponse) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	k := idempotencyKey{gameID, playerID, key}
	if entry, exists := im.cache[k]; exists && !im.expiredLocked(entry) {
		return
	}
	done := make(chan struct{})
	close(done)
	im.cache[k] = &idempotencyEntry{
		response:  resp,
		createdAt: im.clock.Now(),
		done:      done,
	}

	if len(im.cache) > cleanupThreshold {
		im.cleanupOldEntriesLocked()
	}
}

func (im *IdempotencyManager) expiredLocked(entry *idempotencyEntry) bool {
	return entry.finished() && im.clock.Since(entry.createdAt) > im.ttl
}

// Len returns the number of cached entries, expired ones included
func (im *IdempotencyManager) Len() int {
	im.mu.Lock()
	defer im.mu.Unlock()
	return len(im.cache)
}

// cleanupOldEntriesLocked removes expired entries.
// Must be called with mu held
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.clock.Now().Add(-im.ttl)
	for key, entry := range im.cache {
		if entry.finished() && entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
