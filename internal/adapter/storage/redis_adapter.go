package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/bookstore/internal/core/domain"
)

const (
	itemKeyPrefix  = "item:"
	topicKeyPrefix = "topic:"
)

// RedisAdapter implements port.CacheRepository. Entries are JSON snapshots:
// a single item under its id key, a list of items under the topic key.
// Entries never expire; they are removed by explicit invalidation only.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func itemKey(id int64) string {
	return itemKeyPrefix + strconv.FormatInt(id, 10)
}

func (r *RedisAdapter) GetItem(ctx context.Context, id int64) (*domain.Item, error) {
	data, err := r.client.Get(ctx, itemKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get item: %w", err)
	}

	var item domain.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("decode cached item: %w", err)
	}

	return &item, nil
}

func (r *RedisAdapter) SetItem(ctx context.Context, item domain.Item) error {
	data, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item: %w", err)
	}

	return r.client.Set(ctx, itemKey(item.ID), data, 0).Err()
}

func (r *RedisAdapter) GetTopic(ctx context.Context, topic string) ([]domain.Item, bool, error) {
	data, err := r.client.Get(ctx, topicKeyPrefix+topic).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get topic: %w", err)
	}

	var items []domain.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, false, fmt.Errorf("decode cached topic: %w", err)
	}

	return items, true, nil
}

func (r *RedisAdapter) SetTopic(ctx context.Context, topic string, items []domain.Item) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode topic: %w", err)
	}

	return r.client.Set(ctx, topicKeyPrefix+topic, data, 0).Err()
}

func (r *RedisAdapter) DeleteItem(ctx context.Context, id int64) error {
	return r.client.Del(ctx, itemKey(id)).Err()
}

func (r *RedisAdapter) DeleteTopic(ctx context.Context, topic string) error {
	return r.client.Del(ctx, topicKeyPrefix+topic).Err()
}

func (r *RedisAdapter) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
