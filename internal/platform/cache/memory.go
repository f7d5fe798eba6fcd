package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	id "authlinks/pkg/domain"
)

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Values are JSON encoded so callers see
// the same copy semantics as with Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock overrides the time source used for expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemory constructs a MemoryStore. A zero ttl never expires entries.
func NewMemory(ttl time.Duration, opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func memoryKey(tenant id.TenantID, key string) string {
	return string(tenant) + "\x00" + key
}

func (s *MemoryStore) Get(_ context.Context, tenant id.TenantID, key string, dest any) (bool, error) {
	s.mu.RLock()
	entry, ok := s.entries[memoryKey(tenant, key)]
	s.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		s.mu.Lock()
		delete(s.entries, memoryKey(tenant, key))
		s.mu.Unlock()
		return false, nil
	}
	if err := json.Unmarshal(entry.raw, dest); err != nil {
		return false, fmt.Errorf("decode cached value: %w", err)
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, tenant id.TenantID, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cached value: %w", err)
	}
	entry := memoryEntry{raw: raw}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.entries[memoryKey(tenant, key)] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, tenant id.TenantID, key string) error {
	s.mu.Lock()
	delete(s.entries, memoryKey(tenant, key))
	s.mu.Unlock()
	return nil
}
