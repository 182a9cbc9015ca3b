package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lumenshare/cardledger/internal/adapter"
	"github.com/lumenshare/cardledger/internal/logger"
	"github.com/lumenshare/cardledger/internal/store/schema"
)

const cardKeyPrefix = "cardledger:card:"

// CardCache is a read-through cache for card definitions. Cache failures
// degrade to the underlying store; they are logged but never surfaced.
type CardCache struct {
	redis adapter.RedisClient
	json  adapter.JSON
	ttl   time.Duration
}

// NewCardCache creates a card definition cache with the given TTL
func NewCardCache(rc adapter.RedisClient, jsonAdapter adapter.JSON, ttl time.Duration) *CardCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &CardCache{redis: rc, json: jsonAdapter, ttl: ttl}
}

// Get returns the cached card for cardID, or nil on miss
func (c *CardCache) Get(ctx context.Context, cardID string) *schema.Card {
	data, err := c.redis.Get(ctx, cardKeyPrefix+cardID).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.WarnCtx(ctx, "Card cache read failed", zap.String("card_id", cardID), zap.Error(err))
		}
		return nil
	}

	var card schema.Card
	if err := c.json.Unmarshal(data, &card); err != nil {
		logger.WarnCtx(ctx, "Card cache entry corrupt", zap.String("card_id", cardID), zap.Error(err))
		return nil
	}

	return &card
}

// Set stores the card under its ID for the configured TTL
func (c *CardCache) Set(ctx context.Context, card *schema.Card) {
	data, err := c.json.Marshal(card)
	if err != nil {
		logger.WarnCtx(ctx, "Card cache marshal failed", zap.String("card_id", card.ID), zap.Error(err))
		return
	}

	if err := c.redis.Set(ctx, cardKeyPrefix+card.ID, data, c.ttl).Err(); err != nil {
		logger.WarnCtx(ctx, "Card cache write failed", zap.String("card_id", card.ID), zap.Error(err))
	}
}

// Invalidate drops the cached entry for cardID. Mutating operations call
// this after commit so stale mint counters do not outlive the TTL.
func (c *CardCache) Invalidate(ctx context.Context, cardID string) {
	if err := c.redis.Del(ctx, cardKeyPrefix+cardID).Err(); err != nil {
		logger.WarnCtx(ctx, "Card cache invalidation failed", zap.String("card_id", cardID), zap.Error(err))
	}
}
