// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"minishop/internal/models"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "catalog:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(host, port, "")
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	// Verify connection.
	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestCatalogCacheProducts(t *testing.T) {
	client := testValkeyClient(t)
	cc := NewCatalogCache(client, 1*time.Minute)

	ctx := context.Background()

	// Miss.
	products, ok := cc.GetProducts(ctx)
	if ok {
		t.Error("expected cache miss")
	}
	if products != nil {
		t.Error("expected nil products on miss")
	}

	price := 450.0
	cc.SetProducts(ctx, []models.Product{
		{ID: 1, Name: "Silver Band Ring", Slug: "silver-band-ring", Price: &price, Active: true},
		{ID: 2, Name: "Pearl Pendant", Slug: "pearl-pendant", MadeToOrder: true, Active: true},
	})

	// Hit.
	products, ok = cc.GetProducts(ctx)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(products) != 2 {
		t.Fatalf("products: got %d, want 2", len(products))
	}
	if products[0].Price == nil || *products[0].Price != 450 {
		t.Errorf("price survived round-trip wrong: %v", products[0].Price)
	}
	if !bool(products[1].MadeToOrder) {
		t.Error("made_to_order flag lost in round-trip")
	}
}

func TestCatalogCacheCategories(t *testing.T) {
	client := testValkeyClient(t)
	cc := NewCatalogCache(client, 1*time.Minute)

	ctx := context.Background()

	_, ok := cc.GetCategories(ctx)
	if ok {
		t.Error("expected cache miss")
	}

	parentID := int64(1)
	cc.SetCategories(ctx, []models.Category{
		{ID: 1, Name: "Jewelry", Subcategories: []models.Category{
			{ID: 5, Name: "Rings", ParentID: &parentID},
		}},
	})

	tree, ok := cc.GetCategories(ctx)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(tree) != 1 || len(tree[0].Subcategories) != 1 {
		t.Fatalf("tree shape lost in round-trip: %+v", tree)
	}
	if tree[0].Subcategories[0].Name != "Rings" {
		t.Errorf("subcategory name: got %q, want Rings", tree[0].Subcategories[0].Name)
	}
}

func TestCatalogCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	cc := NewCatalogCache(client, 1*time.Minute)

	ctx := context.Background()

	cc.SetProducts(ctx, []models.Product{{ID: 1, Name: "X", Slug: "x"}})
	cc.SetCategories(ctx, []models.Category{{ID: 1, Name: "Y"}})

	cc.Invalidate(ctx)

	if _, ok := cc.GetProducts(ctx); ok {
		t.Error("expected products miss after invalidation")
	}
	if _, ok := cc.GetCategories(ctx); ok {
		t.Error("expected categories miss after invalidation")
	}
}

func TestNewCatalogCacheDefaultTTL(t *testing.T) {
	client := testValkeyClient(t)

	// TTL = 0 should use default.
	cc := NewCatalogCache(client, 0)
	if cc.ttl != DefaultCatalogTTL {
		t.Errorf("expected DefaultCatalogTTL (%v), got %v", DefaultCatalogTTL, cc.ttl)
	}
}
