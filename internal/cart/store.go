package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/mmattyV/scentra-backend/pkg/redis"
)

// Store persists per-buyer carts.
type Store interface {
	Load(ctx context.Context, buyerID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, buyerID uuid.UUID) error
}

type redisClient interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	CartKey(buyerID string) string
}

// RedisStore keeps each cart as one JSON value under the buyer's cart key.
type RedisStore struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisStore builds the store. A zero TTL keeps carts forever; callers
// normally pass the configured cart TTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Load returns the buyer's cart, or an empty one when nothing is stored.
func (s *RedisStore) Load(ctx context.Context, buyerID uuid.UUID) (*Cart, error) {
	raw, err := s.client.Get(ctx, s.client.CartKey(buyerID.String()))
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return &Cart{BuyerID: buyerID}, nil
		}
		return nil, fmt.Errorf("redis: load cart: %w", err)
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		return nil, fmt.Errorf("decode cart: %w", err)
	}
	return &cart, nil
}

// Save writes the cart back, refreshing the TTL.
func (s *RedisStore) Save(ctx context.Context, cart *Cart) error {
	cart.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.client.Set(ctx, s.client.CartKey(cart.BuyerID.String()), string(raw), s.ttl); err != nil {
		return fmt.Errorf("redis: save cart: %w", err)
	}
	return nil
}

// Delete removes the buyer's cart entirely.
func (s *RedisStore) Delete(ctx context.Context, buyerID uuid.UUID) error {
	if err := s.client.Del(ctx, s.client.CartKey(buyerID.String())); err != nil {
		return fmt.Errorf("redis: delete cart: %w", err)
	}
	return nil
}
