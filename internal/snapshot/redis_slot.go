package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"saboaria/backend/internal/domain"
)

const redisSnapshotKey = "saboaria:snapshot"

// RedisSlot keeps the snapshot under a single key with no TTL.
type RedisSlot struct {
	client *redis.Client
}

func NewRedisSlot(addr string, password string, db int) *RedisSlot {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	return &RedisSlot{client: client}
}

func (s *RedisSlot) Save(ctx context.Context, doc domain.BackupDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisSnapshotKey, payload, 0).Err()
}

func (s *RedisSlot) Load(ctx context.Context) (domain.BackupDocument, bool, error) {
	val, err := s.client.Get(ctx, redisSnapshotKey).Result()
	if err == redis.Nil {
		return domain.BackupDocument{}, false, nil
	}
	if err != nil {
		return domain.BackupDocument{}, false, err
	}

	var doc domain.BackupDocument
	if err := json.Unmarshal([]byte(val), &doc); err != nil {
		return domain.BackupDocument{}, false, err
	}
	if doc.Meta == nil {
		return domain.BackupDocument{}, false, fmt.Errorf("redis snapshot has no metadata block")
	}
	return doc, true, nil
}

func (s *RedisSlot) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisSlot) Close() error {
	return s.client.Close()
}
