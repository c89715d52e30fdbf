package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"trip_planner/internal/adapters/observability"
)

type entry struct {
	val     []byte
	expires time.Time
}

// Memory is a process-wide TTL cache. Values are kept JSON-encoded so a
// caller mutating what it read never changes what the next caller sees.
// Expired entries are never returned; they are dropped on read and by Sweep.
type Memory struct {
	mu         sync.RWMutex
	entries    map[string]entry
	defaultTTL time.Duration
	now        func() time.Time
}

func NewMemory(defaultTTLSec int) *Memory {
	if defaultTTLSec <= 0 {
		defaultTTLSec = DefaultTTL
	}
	return &Memory{
		entries:    make(map[string]entry),
		defaultTTL: time.Duration(defaultTTLSec) * time.Second,
		now:        time.Now,
	}
}

func (m *Memory) Get(ctx context.Context, key string, dst any) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if ok && !m.now().Before(e.expires) {
		m.mu.Lock()
		// re-check: a concurrent Set may have refreshed it
		if cur, still := m.entries[key]; still && !m.now().Before(cur.expires) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		ok = false
	}
	if !ok {
		observability.ObserveCache("memory", "miss")
		return false, nil
	}
	observability.ObserveCache("memory", "hit")
	return true, json.Unmarshal(e.val, dst)
}

func (m *Memory) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	ttl := m.defaultTTL
	if ttlSec > 0 {
		ttl = time.Duration(ttlSec) * time.Second
	}
	m.mu.Lock()
	m.entries[key] = entry{val: b, expires: m.now().Add(ttl)}
	m.mu.Unlock()
	observability.ObserveCache("memory", "set")
	return nil
}

func (m *Memory) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	observability.ObserveCache("memory", "del")
	return nil
}

func (m *Memory) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	observability.ObserveCache("memory", "clear")
	return nil
}

// Len counts stored entries, expired ones included until swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Sweep drops expired entries and reports how many went.
func (m *Memory) Sweep() int {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := m.Sweep(); n > 0 {
				log.Debug().Int("evicted", n).Msg("cache sweep")
			}
		}
	}
}
