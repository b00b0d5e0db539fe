// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

// catalog.go provides a Valkey-backed cache for the catalog snapshot:
// the active product list and the category tree the filter engine works
// on. Every catalog request reads these, so one cheap Valkey hit replaces
// two Postgres queries. All failures degrade to a cache miss.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"minishop/internal/models"
)

const (
	productsKey   = "catalog:products"
	categoriesKey = "catalog:categories"

	// DefaultCatalogTTL bounds staleness if an invalidation is ever missed.
	DefaultCatalogTTL = 5 * time.Minute
)

// CatalogCache manages the catalog snapshot in Valkey.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCatalogCache creates a catalog cache backed by the given Valkey client.
func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	if ttl == 0 {
		ttl = DefaultCatalogTTL
	}
	return &CatalogCache{client: client, ttl: ttl}
}

// GetProducts retrieves the cached product snapshot. Returns false on miss.
func (c *CatalogCache) GetProducts(ctx context.Context) ([]models.Product, bool) {
	var products []models.Product
	if !c.get(ctx, productsKey, &products) {
		return nil, false
	}
	return products, true
}

// SetProducts stores the product snapshot with the configured TTL.
func (c *CatalogCache) SetProducts(ctx context.Context, products []models.Product) {
	c.set(ctx, productsKey, products)
}

// GetCategories retrieves the cached category tree. Returns false on miss.
func (c *CatalogCache) GetCategories(ctx context.Context) ([]models.Category, bool) {
	var tree []models.Category
	if !c.get(ctx, categoriesKey, &tree) {
		return nil, false
	}
	return tree, true
}

// SetCategories stores the category tree with the configured TTL.
func (c *CatalogCache) SetCategories(ctx context.Context, tree []models.Category) {
	c.set(ctx, categoriesKey, tree)
}

// Invalidate drops both snapshot keys. Called on every product or
// category write from the admin API.
func (c *CatalogCache) Invalidate(ctx context.Context) {
	if err := c.client.Del(ctx, productsKey, categoriesKey).Err(); err != nil {
		slog.Warn("catalog cache invalidate error", "error", err)
		return
	}
	slog.Debug("catalog cache invalidated")
}

func (c *CatalogCache) get(ctx context.Context, key string, dest any) bool {
	val, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false
	}
	if err != nil {
		slog.Warn("catalog cache get error", "key", key, "error", err)
		return false
	}
	if err := json.Unmarshal(val, dest); err != nil {
		slog.Warn("catalog cache decode error", "key", key, "error", err)
		return false
	}
	slog.Debug("catalog cache hit", "key", key)
	return true
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("catalog cache encode error", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		slog.Warn("catalog cache set error", "key", key, "error", err)
	}
}
