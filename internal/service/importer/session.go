package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/jtbd-explorer/internal/surveyimport"
)

// Session is an uploaded batch awaiting review and commit.
type Session struct {
	ID         string                    `json:"id"`
	OrgID      string                    `json:"org_id"`
	FileName   string                    `json:"file_name"`
	ArchiveKey string                    `json:"archive_key,omitempty"`
	Rows       []surveyimport.MatchedRow `json:"rows"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// SessionStore persists sessions between requests. Sessions are scoped to
// an organization; a lookup with the wrong org behaves like a missing id.
type SessionStore interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, orgID, id string) (*Session, error)
	Delete(ctx context.Context, orgID, id string) error
}

// =============================================================================
// Redis
// =============================================================================

const sessionKeyPrefix = "jtbd:import:session:"

// RedisSessionStore keeps sessions as JSON values that expire after ttl.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessionStore creates a Redis-backed session store.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (r *RedisSessionStore) key(orgID, id string) string {
	return sessionKeyPrefix + orgID + ":" + id
}

func (r *RedisSessionStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, r.key(s.OrgID, s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Get(ctx context.Context, orgID, id string) (*Session, error) {
	data, err := r.client.Get(ctx, r.key(orgID, id)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionStore) Delete(ctx context.Context, orgID, id string) error {
	return r.client.Del(ctx, r.key(orgID, id)).Err()
}

// =============================================================================
// In-memory (single process, no Redis configured)
// =============================================================================

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. Values are stored
// encoded so callers never share row slices with the store.
type MemorySessionStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{ttl: ttl, entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemorySessionStore) Save(_ context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	m.entries[s.OrgID+":"+s.ID] = memoryEntry{data: data, expiresAt: now.Add(m.ttl)}
	return nil
}

func (m *MemorySessionStore) Get(_ context.Context, orgID, id string) (*Session, error) {
	m.mu.Lock()
	e, ok := m.entries[orgID+":"+id]
	m.mu.Unlock()
	if !ok || m.now().After(e.expiresAt) {
		return nil, ErrSessionNotFound
	}

	var s Session
	if err := json.Unmarshal(e.data, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &s, nil
}

func (m *MemorySessionStore) Delete(_ context.Context, orgID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, orgID+":"+id)
	return nil
}
