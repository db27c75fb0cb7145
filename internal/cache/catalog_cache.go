package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// CatalogCache stores published catalog reads. Failures are never surfaced:
// a broken cache behaves like a miss and callers fall through to storage.
//
// A read returns the Slot a miss should be filled into. The slot is pinned to
// the generation the read observed, so a fill that races an Invalidate lands
// in a generation nobody reads anymore.
type CatalogCache interface {
	GetList(ctx context.Context, key string) ([]domain.Product, Slot, bool)
	SetList(ctx context.Context, slot Slot, products []domain.Product)
	GetProduct(ctx context.Context, id string) (*domain.Product, Slot, bool)
	SetProduct(ctx context.Context, slot Slot, product *domain.Product)
	// Invalidate drops every cached entry.
	Invalidate(ctx context.Context)
}

// Slot is the storage key observed by a read. The zero Slot is never written.
type Slot string

// RedisCatalogCache keeps entries under a generation number; Invalidate bumps
// the generation so stale entries are never read again and expire on their own.
type RedisCatalogCache struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
	logger    *zap.Logger
}

// NewRedisCatalogCache builds a cache. keyPrefix defaults to "catalog:".
func NewRedisCatalogCache(client *redis.Client, keyPrefix string, ttl time.Duration, logger *zap.Logger) *RedisCatalogCache {
	if keyPrefix == "" {
		keyPrefix = "catalog:"
	}
	return &RedisCatalogCache{client: client, keyPrefix: keyPrefix, ttl: ttl, logger: logger}
}

func (c *RedisCatalogCache) GetList(ctx context.Context, key string) ([]domain.Product, Slot, bool) {
	var products []domain.Product
	slot, hit := c.get(ctx, "list:"+key, &products)
	if !hit {
		return nil, slot, false
	}
	return products, slot, true
}

func (c *RedisCatalogCache) SetList(ctx context.Context, slot Slot, products []domain.Product) {
	c.set(ctx, slot, products)
}

func (c *RedisCatalogCache) GetProduct(ctx context.Context, id string) (*domain.Product, Slot, bool) {
	var product domain.Product
	slot, hit := c.get(ctx, "item:"+id, &product)
	if !hit {
		return nil, slot, false
	}
	return &product, slot, true
}

func (c *RedisCatalogCache) SetProduct(ctx context.Context, slot Slot, product *domain.Product) {
	c.set(ctx, slot, product)
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, c.generationKey()).Err(); err != nil {
		c.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}

func (c *RedisCatalogCache) get(ctx context.Context, suffix string, dest any) (Slot, bool) {
	key, err := c.entryKey(ctx, suffix)
	if err != nil {
		c.logger.Warn("catalog cache unavailable", zap.Error(err))
		return "", false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
			return "", false
		}
		return Slot(key), false
	}
	if err := sonic.Unmarshal(raw, dest); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key), zap.Error(err))
		return Slot(key), false
	}
	return Slot(key), true
}

func (c *RedisCatalogCache) set(ctx context.Context, slot Slot, value any) {
	if slot == "" {
		return
	}
	key := string(slot)
	raw, err := sonic.Marshal(value)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (c *RedisCatalogCache) generationKey() string {
	return c.keyPrefix + "generation"
}

func (c *RedisCatalogCache) entryKey(ctx context.Context, suffix string) (string, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("read cache generation: %w", err)
	}
	return c.keyPrefix + "v" + strconv.FormatInt(gen, 10) + ":" + suffix, nil
}

// NoopCatalogCache never stores anything.
type NoopCatalogCache struct{}

func (NoopCatalogCache) GetList(context.Context, string) ([]domain.Product, Slot, bool) {
	return nil, "", false
}
func (NoopCatalogCache) SetList(context.Context, Slot, []domain.Product) {}
func (NoopCatalogCache) GetProduct(context.Context, string) (*domain.Product, Slot, bool) {
	return nil, "", false
}
func (NoopCatalogCache) SetProduct(context.Context, Slot, *domain.Product) {}
func (NoopCatalogCache) Invalidate(context.Context)                        {}
