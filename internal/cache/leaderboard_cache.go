package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"livequiz/internal/model"
)

// LeaderboardCache mirrors the standings into a Redis ZSET for external dashboards
type LeaderboardCache interface {
	ReplaceScores(ctx context.Context, entries []model.LeaderboardEntry) error
	GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	GetRank(ctx context.Context, playerID string) (int64, error)
	Clear(ctx context.Context) error
}

// LeaderboardEntry represents a single mirrored leaderboard row
type LeaderboardEntry struct {
	PlayerID string `json:"playerId"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
	prefix string
}

// NewLeaderboardCache creates a new leaderboard cache under prefix
func NewLeaderboardCache(client *redis.Client, prefix string) LeaderboardCache {
	return &leaderboardCache{
		client: client,
		prefix: prefix,
	}
}

func (c *leaderboardCache) key() string {
	return fmt.Sprintf("%s:lb", c.prefix)
}

func (c *leaderboardCache) namesKey() string {
	return fmt.Sprintf("%s:lb:names", c.prefix)
}

// ReplaceScores swaps the whole board atomically
func (c *leaderboardCache) ReplaceScores(ctx context.Context, entries []model.LeaderboardEntry) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key(), c.namesKey())
		if len(entries) == 0 {
			return nil
		}

		members := make([]redis.Z, 0, len(entries))
		names := make(map[string]interface{}, len(entries))
		for _, e := range entries {
			members = append(members, redis.Z{Score: float64(e.TotalPoints), Member: e.ID})
			names[e.ID] = e.Nickname
		}
		pipe.ZAdd(ctx, c.key(), members...)
		pipe.HSet(ctx, c.namesKey(), names)
		return nil
	})
	return err
}

func (c *leaderboardCache) GetTop(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		return []LeaderboardEntry{}, nil
	}

	results, err := c.client.ZRevRangeWithScores(ctx, c.key(), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return []LeaderboardEntry{}, nil
	}

	ids := make([]string, len(results))
	for i, z := range results {
		ids[i] = z.Member.(string)
	}
	names, err := c.client.HMGet(ctx, c.namesKey(), ids...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		nickname, _ := names[i].(string)
		entries[i] = LeaderboardEntry{
			PlayerID: ids[i],
			Nickname: nickname,
			Score:    int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, playerID string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(), playerID).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}

func (c *leaderboardCache) Clear(ctx context.Context) error {
	return c.client.Del(ctx, c.key(), c.namesKey()).Err()
}
