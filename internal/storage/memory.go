package storage

import (
	"context"
	"sync"
	"time"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
)

type sessionEntry struct {
	session   *models.Session
	expiresAt time.Time
}

type orderEntry struct {
	order     *models.Order
	expiresAt time.Time
}

// MemoryStore keeps sessions and orders in mutexed maps with per-entry
// expiry. It is the development fallback; data is lost on restart.
type MemoryStore struct {
	sessionTTL time.Duration
	orderTTL   time.Duration

	mu       sync.RWMutex
	sessions map[string]sessionEntry
	orders   map[string]orderEntry

	now func() time.Time // test clock
}

// NewMemoryStore creates an in-memory store and starts its janitor.
func NewMemoryStore(sessionTTL, orderTTL time.Duration) *MemoryStore {
	m := &MemoryStore{
		sessionTTL: sessionTTL,
		orderTTL:   orderTTL,
		sessions:   make(map[string]sessionEntry),
		orders:     make(map[string]orderEntry),
		now:        time.Now,
	}
	go m.janitor()
	return m
}

func (m *MemoryStore) GetSession(_ context.Context, phone string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.sessions[phone]
	if !ok || m.now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	snapshot := *entry.session
	return &snapshot, nil
}

func (m *MemoryStore) SetSession(_ context.Context, phone string, session *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := *session
	m.sessions[phone] = sessionEntry{session: &snapshot, expiresAt: m.now().Add(m.sessionTTL)}
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, phone string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, phone)
	return nil
}

func (m *MemoryStore) GetLastOrder(_ context.Context, phone string) (*models.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.orders[phone]
	if !ok || m.now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}

	snapshot := *entry.order
	return &snapshot, nil
}

func (m *MemoryStore) SetLastOrder(_ context.Context, phone string, order *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := *order
	m.orders[phone] = orderEntry{order: &snapshot, expiresAt: m.now().Add(m.orderTTL)}
	return nil
}

// janitor drops expired entries so idle phones do not accumulate. Expired
// entries are already invisible to Get; this only reclaims memory.
func (m *MemoryStore) janitor() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		now := m.now()
		for phone, entry := range m.sessions {
			if now.After(entry.expiresAt) {
				delete(m.sessions, phone)
			}
		}
		for phone, entry := range m.orders {
			if now.After(entry.expiresAt) {
				delete(m.orders, phone)
			}
		}
		m.mu.Unlock()
	}
}
