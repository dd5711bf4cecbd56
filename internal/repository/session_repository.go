package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/nrb-complaints-api/internal/models"
)

// ErrSessionNotFound is returned for unknown, destroyed or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

const sessionKeyPrefix = "session:"

// RedisSessionRepository keeps session identities in Redis with a TTL.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository constructs a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

// Get loads the identity bound to id.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.Identity, error) {
	raw, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var identity models.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &identity, nil
}

// Set binds id to identity for ttl.
func (r *RedisSessionRepository) Set(ctx context.Context, id string, identity *models.Identity, ttl time.Duration) error {
	payload, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+id, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Destroy removes the session; unknown ids are not an error.
func (r *RedisSessionRepository) Destroy(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}

// Ping checks connectivity for readiness probes.
func (r *RedisSessionRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

type memorySession struct {
	identity  models.Identity
	expiresAt time.Time
}

// MemorySessionRepository is a process-local session store. Expired entries
// are dropped when read and by Sweep.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

// NewMemorySessionRepository constructs an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[string]memorySession), now: time.Now}
}

// Get loads the identity bound to id.
func (r *MemorySessionRepository) Get(_ context.Context, id string) (*models.Identity, error) {
	r.mu.RLock()
	entry, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !r.now().Before(entry.expiresAt) {
		r.mu.Lock()
		if current, ok := r.sessions[id]; ok && current.expiresAt.Equal(entry.expiresAt) {
			delete(r.sessions, id)
		}
		r.mu.Unlock()
		return nil, ErrSessionNotFound
	}
	identity := entry.identity
	return &identity, nil
}

// Set binds id to identity for ttl.
func (r *MemorySessionRepository) Set(_ context.Context, id string, identity *models.Identity, ttl time.Duration) error {
	if identity == nil {
		return errors.New("session identity is nil")
	}
	r.mu.Lock()
	r.sessions[id] = memorySession{identity: *identity, expiresAt: r.now().Add(ttl)}
	r.mu.Unlock()
	return nil
}

// Destroy removes the session; unknown ids are not an error.
func (r *MemorySessionRepository) Destroy(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
	return nil
}

// Sweep drops every expired entry and returns how many were removed.
func (r *MemorySessionRepository) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.sessions {
		if !now.Before(entry.expiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Ping always succeeds.
func (r *MemorySessionRepository) Ping(context.Context) error {
	return nil
}
