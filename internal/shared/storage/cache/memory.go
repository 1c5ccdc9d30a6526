package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
	seq       uint64
}

type orderEntry struct {
	key string
	seq uint64
}

// Memory keeps entries in process. When more than capacity keys are live the
// oldest writes are evicted first.
type Memory struct {
	mu       sync.Mutex
	items    map[string]memoryEntry
	order    []orderEntry
	capacity int
	seq      uint64
	now      func() time.Time
}

// NewMemory creates a store holding at most capacity keys.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1
	}
	return &Memory{
		items:    make(map[string]memoryEntry),
		capacity: capacity,
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests use it to expire entries.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	if now != nil {
		m.now = now
	}
	return m
}

func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.seq++
	m.items[key] = memoryEntry{
		value:     append([]byte(nil), value...),
		expiresAt: now.Add(ttl),
		seq:       m.seq,
	}
	m.order = append(m.order, orderEntry{key: key, seq: m.seq})
	m.compact(now)
	return nil
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.items[key]
	if !ok || !m.now().Before(e.expiresAt) {
		return nil, ErrNotFound
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len reports the number of stored keys, including expired ones not yet compacted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}

// compact drops stale order records, expired heads and anything over capacity.
func (m *Memory) compact(now time.Time) {
	for len(m.order) > 0 {
		head := m.order[0]
		e, ok := m.items[head.key]
		switch {
		case !ok || e.seq != head.seq:
			// overwritten or already removed
		case len(m.items) > m.capacity || !now.Before(e.expiresAt):
			delete(m.items, head.key)
		default:
			return
		}
		m.order = m.order[1:]
	}
}

var _ Store = (*Memory)(nil)
