// Package storage persists per-user conversation state and last-order
// records with independent expiries.
//
// Sessions and orders are independent keys with no cross-key transactions.
// Set and Get are atomic per key, and two messages from the same user racing
// each other resolve as last-write-wins; no per-user locking is attempted.
package storage

import (
	"context"
	"errors"
	"log"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/config"
	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
)

// ErrNotFound is returned when no record exists (or it has expired) for the
// given phone number.
var ErrNotFound = errors.New("storage: not found")

// Store defines the session and last-order operations. Every successful Set
// resets the record's full time-to-live.
type Store interface {
	GetSession(ctx context.Context, phone string) (*models.Session, error)
	SetSession(ctx context.Context, phone string, session *models.Session) error
	DeleteSession(ctx context.Context, phone string) error

	GetLastOrder(ctx context.Context, phone string) (*models.Order, error)
	SetLastOrder(ctx context.Context, phone string, order *models.Order) error
}

// New selects the store implementation from configuration: Redis when
// enabled and reachable, otherwise the in-memory fallback. Falling back is
// loud — in-memory state does not survive a restart.
func New(cfg *config.Config) Store {
	if cfg.RedisEnabled {
		store, err := NewRedisStore(cfg.RedisURL, cfg.SessionTTL, cfg.OrderTTL)
		if err == nil {
			log.Printf("✅ Redis connected: %s", cfg.RedisURL)
			return store
		}
		log.Printf("❌ Failed to connect to Redis: %v", err)
	}

	log.Println("⚠️  Using in-memory session storage - state will be lost on restart!")
	return NewMemoryStore(cfg.SessionTTL, cfg.OrderTTL)
}
