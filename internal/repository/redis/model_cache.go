package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"myArtMarket/business/bandit"

	"github.com/redis/go-redis/v9"
)

// ModelCache keeps serialized user models in Redis so a cold process can
// skip the durable store.
type ModelCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ bandit.ModelCache = (*ModelCache)(nil)

func NewModelCache(client *redis.Client, ttl time.Duration) *ModelCache {
	return &ModelCache{
		client: client,
		ttl:    ttl,
	}
}

func modelKey(userID uint) string {
	// key format: "bandit:model:user:{user_id}"
	return fmt.Sprintf("bandit:model:user:%d", userID)
}

func (c *ModelCache) GetModel(ctx context.Context, userID uint) (*bandit.UserModel, error) {
	val, err := c.client.Get(ctx, modelKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get model from Redis: %w", err)
	}

	return decodeModel(val)
}

func (c *ModelCache) SetModel(ctx context.Context, userID uint, m *bandit.UserModel) error {
	raw, err := encodeModel(m)
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, modelKey(userID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store model in Redis: %w", err)
	}

	return nil
}

func encodeModel(m *bandit.UserModel) ([]byte, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal model: %w", err)
	}
	return raw, nil
}

func decodeModel(raw []byte) (*bandit.UserModel, error) {
	var m bandit.UserModel
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached model: %w", err)
	}
	return &m, nil
}
