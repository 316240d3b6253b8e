package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const insightKeyPrefix = "appeals:insight:"

// InsightCache хранит AI оценки апелляций, чтобы не платить за повторные запросы.
type InsightCache struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewInsightCache(client *goredis.Client, ttl time.Duration) *InsightCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &InsightCache{client: client, ttl: ttl}
}

func insightKey(id uuid.UUID) string {
	return insightKeyPrefix + id.String()
}

// Get возвращает сохранённую оценку. ok=false, если записи нет.
func (c *InsightCache) Get(ctx context.Context, id uuid.UUID) (string, bool, error) {
	text, err := c.client.Get(ctx, insightKey(id)).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("insight cache: get: %w", err)
	}
	return text, true, nil
}

func (c *InsightCache) Set(ctx context.Context, id uuid.UUID, text string) error {
	if err := c.client.Set(ctx, insightKey(id), text, c.ttl).Err(); err != nil {
		return fmt.Errorf("insight cache: set: %w", err)
	}
	return nil
}
