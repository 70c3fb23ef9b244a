package cart

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNotFound = errors.New("cart not found")

// Session is a cart bound to one shop, addressed by an opaque id.
type Session struct {
	ID        string    `json:"id"`
	ShopID    string    `json:"shopId"`
	Cart      *Cart     `json:"lines"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewSession(id, shopID string, now time.Time) *Session {
	return &Session{ID: id, ShopID: shopID, Cart: New(), UpdatedAt: now}
}

// Store persists sessions. Concurrent saves of one session are last-writer-wins.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// MemoryStore keeps sessions in process memory with the same TTL semantics as RedisStore.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, sessions: map[string]memoryEntry{}}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	m.mu.Lock()
	e, ok := m.sessions[id]
	if ok && !m.now().Before(e.expires) {
		delete(m.sessions, id)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decodeSession(e.data)
}

// Save stores a serialized copy so later mutation of s does not leak into the store.
func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.sessions[s.ID] = memoryEntry{data: data, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	return nil
}
