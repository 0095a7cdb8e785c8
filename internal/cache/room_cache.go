package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"livequiz/internal/model"
)

// RoomCache mirrors the room's public state
type RoomCache interface {
	SetMeta(ctx context.Context, meta *model.RoomMeta) error
	GetMeta(ctx context.Context) (*model.RoomMeta, error)
	Delete(ctx context.Context) error
}

type roomCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRoomCache creates a new room cache under prefix
func NewRoomCache(client *redis.Client, prefix string) RoomCache {
	return &roomCache{
		client: client,
		prefix: prefix,
		ttl:    24 * time.Hour, // stale mirrors expire after a day
	}
}

func (c *roomCache) key() string {
	return fmt.Sprintf("%s:room", c.prefix)
}

func (c *roomCache) SetMeta(ctx context.Context, meta *model.RoomMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(), data, c.ttl).Err()
}

func (c *roomCache) GetMeta(ctx context.Context) (*model.RoomMeta, error) {
	data, err := c.client.Get(ctx, c.key()).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta model.RoomMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *roomCache) Delete(ctx context.Context) error {
	return c.client.Del(ctx, c.key()).Err()
}
