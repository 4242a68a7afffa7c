package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"github.com/weeklybasket/storefront/internal/domain"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type RedisStore struct {
	client *redis.Client
}

func (r *RedisStore) Load(ctx context.Context) ([]domain.CartLine, error) {
	data, err := r.client.Get(ctx, slotKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.CartLine
	if err2 := json.Unmarshal(data, &lines); err2 != nil {
		// A corrupt slot is discarded rather than surfaced; the shopper
		// starts with an empty cart.
		log.Printf("discarding corrupt cart slot: %v", err2)
		return nil, nil
	}

	return lines, nil
}

func (r *RedisStore) Save(ctx context.Context, lines []domain.CartLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart lines failed: %w", err)
	}

	// No TTL: the slot must survive restarts until checkout clears it.
	if err := r.client.Set(ctx, slotKey, payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}
