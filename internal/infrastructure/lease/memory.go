package lease

import (
	"context"
	"sync"
	"time"

	"archie-shopify-sync/internal/domain"
	"archie-shopify-sync/internal/ports"
)

// MemoryManager is a process-local LeaseManager for single-node deployments
// and tests
type MemoryManager struct {
	mu   sync.Mutex
	held map[string]*memoryLease
	now  func() time.Time
}

var _ ports.LeaseManager = (*MemoryManager)(nil)

// NewMemoryManager creates an empty manager
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		held: make(map[string]*memoryLease),
		now:  time.Now,
	}
}

// Acquire returns domain.ErrLeaseHeld while an unexpired lease exists for key
func (m *MemoryManager) Acquire(_ context.Context, key string, ttl time.Duration) (ports.Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.held[key]; ok && m.now().Before(current.expires) {
		return nil, domain.ErrLeaseHeld
	}

	l := &memoryLease{manager: m, key: key, expires: m.now().Add(ttl)}
	m.held[key] = l
	return l, nil
}

// Held reports whether key is currently leased
func (m *MemoryManager) Held(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.held[key]
	return ok && m.now().Before(current.expires)
}

type memoryLease struct {
	manager *MemoryManager
	key     string
	expires time.Time
}

func (l *memoryLease) Key() string {
	return l.key
}

func (l *memoryLease) Extend(_ context.Context, ttl time.Duration) error {
	m := l.manager
	m.mu.Lock()
	defer m.mu.Unlock()

	if !l.ownedLocked() {
		return domain.ErrLeaseLost
	}
	l.expires = m.now().Add(ttl)
	return nil
}

func (l *memoryLease) Release(_ context.Context) error {
	m := l.manager
	m.mu.Lock()
	defer m.mu.Unlock()

	if !l.ownedLocked() {
		return domain.ErrLeaseLost
	}
	delete(m.held, l.key)
	return nil
}

// ownedLocked requires m.mu
func (l *memoryLease) ownedLocked() bool {
	m := l.manager
	return m.held[l.key] == l && m.now().Before(l.expires)
}
