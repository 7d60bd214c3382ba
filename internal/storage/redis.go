package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/maramba-takunda-tapiwa/veggie-bot/internal/models"
)

// RedisStore backs sessions and orders with Redis, relying on key expiry for
// the TTLs. Values are stored as JSON.
type RedisStore struct {
	client     *redis.Client
	sessionTTL time.Duration
	orderTTL   time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(url string, sessionTTL, orderTTL time.Duration) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisStore{client: client, sessionTTL: sessionTTL, orderTTL: orderTTL}, nil
}

func sessionKey(phone string) string { return "state:" + phone }
func orderKey(phone string) string   { return "order:" + phone }

func (r *RedisStore) GetSession(ctx context.Context, phone string) (*models.Session, error) {
	data, err := r.client.Get(ctx, sessionKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &session, nil
}

func (r *RedisStore) SetSession(ctx context.Context, phone string, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(phone), data, r.sessionTTL).Err(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	return nil
}

func (r *RedisStore) DeleteSession(ctx context.Context, phone string) error {
	if err := r.client.Del(ctx, sessionKey(phone)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (r *RedisStore) GetLastOrder(ctx context.Context, phone string) (*models.Order, error) {
	data, err := r.client.Get(ctx, orderKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read order: %w", err)
	}

	var order models.Order
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("decode order: %w", err)
	}
	return &order, nil
}

func (r *RedisStore) SetLastOrder(ctx context.Context, phone string, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("encode order: %w", err)
	}
	if err := r.client.Set(ctx, orderKey(phone), data, r.orderTTL).Err(); err != nil {
		return fmt.Errorf("write order: %w", err)
	}
	return nil
}
