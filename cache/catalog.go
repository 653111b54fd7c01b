// Package cache keeps the product catalog in Redis so the POS grid and the
// public menu do not hit Postgres on every refresh.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/arraiapos/pos/models"
)

const CatalogKey = "pos:catalog:products"

type ProductLoader interface {
	GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// CatalogCache is a cache-aside reader over the full product list. Filters
// are applied to the cached list in memory. With a nil client every call
// goes straight to the loader.
type CatalogCache struct {
	client *redis.Client
	loader ProductLoader
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger

	// generation is bumped by Invalidate; a load started under an older
	// generation is not written back.
	generation atomic.Uint64
}

func NewCatalogCache(client *redis.Client, loader ProductLoader, ttl time.Duration, logger *zap.Logger) *CatalogCache {
	return &CatalogCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *CatalogCache) GetProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	if c.client == nil {
		return c.loader.GetProducts(ctx, filters)
	}

	all, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	return applyFilters(all, filters), nil
}

// GetByID looks the product up in the cached list.
func (c *CatalogCache) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if c.client == nil {
		return c.loader.GetByID(ctx, id)
	}

	all, err := c.all(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (c *CatalogCache) all(ctx context.Context) ([]models.Product, error) {
	if products, ok := c.read(ctx); ok {
		return products, nil
	}

	v, err, _ := c.group.Do(CatalogKey, func() (interface{}, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		loadCtx := context.WithoutCancel(ctx)
		if products, ok := c.read(loadCtx); ok {
			return products, nil
		}
		gen := c.generation.Load()
		fresh, err := c.loader.GetProducts(loadCtx, models.ProductFilters{})
		if err != nil {
			return nil, err
		}
		if c.generation.Load() == gen {
			c.write(loadCtx, fresh)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Product), nil
}

// read treats any Redis failure as a miss.
func (c *CatalogCache) read(ctx context.Context) ([]models.Product, bool) {
	payload, err := c.client.Get(ctx, CatalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.Warn("catalog cache read failed", zap.Error(err))
		return nil, false
	}

	var products []models.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		c.logger.Warn("catalog cache entry corrupt", zap.Error(err))
		return nil, false
	}
	return products, true
}

func (c *CatalogCache) write(ctx context.Context, products []models.Product) {
	payload, err := json.Marshal(products)
	if err != nil {
		c.logger.Warn("catalog cache encode failed", zap.Error(err))
		return
	}
	if err := c.client.Set(ctx, CatalogKey, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("catalog cache write failed", zap.Error(err))
	}
}

// Invalidate drops the cached list. It is called after every product write
// and after each checkout.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	c.generation.Add(1)
	c.group.Forget(CatalogKey)
	return c.client.Del(ctx, CatalogKey).Err()
}

func applyFilters(products []models.Product, filters models.ProductFilters) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if filters.ActiveOnly && !p.Active {
			continue
		}
		if filters.CategoryName != "" && (p.Category == nil || p.Category.Name != filters.CategoryName) {
			continue
		}
		out = append(out, p)
	}
	return out
}
