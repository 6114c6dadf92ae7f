package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/finnova-banking-ledger/internal/domain/product"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const productKeyPrefix = "product:"

// ProductCache keeps JSON snapshots of products in Redis. A nil cache or a
// nil client behaves as an always-missing cache.
type ProductCache struct {
	client *goredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewProductCache(logger *slog.Logger, client *goredis.Client, ttl time.Duration) *ProductCache {
	return &ProductCache{client: client, ttl: ttl, logger: logger}
}

func productKey(id uuid.UUID) string {
	return productKeyPrefix + id.String()
}

// Get returns (nil, false) on a miss or on any read/decoding error
func (c *ProductCache) Get(ctx context.Context, id uuid.UUID) (*product.Product, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}

	data, err := c.client.Get(ctx, productKey(id)).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.Warn("Product cache read failed", "product_id", id, "error", err)
		}
		return nil, false
	}

	var p product.Product
	if err := json.Unmarshal(data, &p); err != nil {
		c.logger.Warn("Discarding undecodable cached product", "product_id", id, "error", err)
		return nil, false
	}
	return &p, true
}

func (c *ProductCache) Set(ctx context.Context, p *product.Product) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(p)
	if err != nil {
		c.logger.Warn("Failed to encode product for cache", "product_id", p.ID, "error", err)
		return
	}
	if err := c.client.Set(ctx, productKey(p.ID), data, c.ttl).Err(); err != nil {
		c.logger.Warn("Product cache write failed", "product_id", p.ID, "error", err)
	}
}

func (c *ProductCache) Delete(ctx context.Context, id uuid.UUID) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Del(ctx, productKey(id)).Err(); err != nil {
		c.logger.Warn("Product cache delete failed", "product_id", id, "error", err)
	}
}
