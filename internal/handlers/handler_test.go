// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler
// integration tests. Tests are skipped when PostgreSQL or Valkey are
// unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"minishop/internal/cache"
	"minishop/internal/database"
	"minishop/internal/middleware"
	"minishop/internal/session"
	"minishop/internal/store"
	"minishop/internal/telegram"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "minishop")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "minishop")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}
	goose.SetBaseFS(nil)

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		for _, pattern := range []string{"session:*", "catalog:*"} {
			keys, _ := client.Keys(ctx, pattern).Result()
			if len(keys) > 0 {
				client.Del(ctx, keys...)
			}
		}
		client.Close()
	})

	return client
}

// testEnv holds all dependencies for handler integration tests.
type testEnv struct {
	DB           *sql.DB
	Valkey       *redis.Client
	Sessions     *session.Store
	Products     *store.ProductStore
	Categories   *store.CategoryStore
	Orders       *store.OrderStore
	Reservations *store.ReservationStore
	Settings     *store.SettingStore
	Admins       *store.AdminStore
	CacheLog     *store.CacheLogStore
	CatalogCache *cache.CatalogCache
	Shop         *Shop
	Cart         *Cart
	OrderAPI     *Orders
	Auth         *Auth
	Admin        *Admin
}

// newTestEnv creates a complete test environment with all handler
// dependencies. Object storage is absent, as in a dev deployment.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testDB(t)
	vk := testValkeyClient(t)

	sessions := session.NewStore(vk, false)
	products := store.NewProductStore(db)
	categories := store.NewCategoryStore(db)
	orders := store.NewOrderStore(db)
	reservations := store.NewReservationStore(db)
	settings := store.NewSettingStore(db)
	admins := store.NewAdminStore(db)
	cacheLog := store.NewCacheLogStore(db)
	catalogCache := cache.NewCatalogCache(vk, 1*time.Minute)

	shop := NewShop(products, categories, settings, catalogCache, nil)
	cart := NewCart(reservations, shop, 15*time.Minute)
	orderAPI := NewOrders(orders, products, reservations, settings, catalogCache, cacheLog, nil)
	auth := NewAuth(sessions, admins)
	admin := NewAdmin(products, categories, orders, settings, admins, cacheLog, catalogCache, nil)

	return &testEnv{
		DB:           db,
		Valkey:       vk,
		Sessions:     sessions,
		Products:     products,
		Categories:   categories,
		Orders:       orders,
		Reservations: reservations,
		Settings:     settings,
		Admins:       admins,
		CacheLog:     cacheLog,
		CatalogCache: catalogCache,
		Shop:         shop,
		Cart:         cart,
		OrderAPI:     orderAPI,
		Auth:         auth,
		Admin:        admin,
	}
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// ctxWithTelegramUser adds a verified Telegram user to a context.
func ctxWithTelegramUser(ctx context.Context, u *telegram.User) context.Context {
	return context.WithValue(ctx, middleware.TelegramUserKey, u)
}

// testSession creates a session.Data for testing.
func testSession(adminID uuid.UUID, email, role string, twoFADone bool) *session.Data {
	return &session.Data{
		AdminID:     adminID,
		Email:       email,
		DisplayName: "Test Admin",
		Role:        role,
		TwoFADone:   twoFADone,
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// jsonInt renders an int64 for inline JSON request bodies.
func jsonInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// cleanProducts removes test products by slug.
func cleanProducts(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM products WHERE slug = $1", s)
	}
}

// cleanCategories removes test categories by name.
func cleanCategories(t *testing.T, db *sql.DB, names ...string) {
	t.Helper()
	for _, n := range names {
		db.Exec("DELETE FROM categories WHERE name = $1", n)
	}
}

// cleanShopper removes a test user's reservations and orders.
func cleanShopper(t *testing.T, db *sql.DB, telegramUserID int64) {
	t.Helper()
	db.Exec("DELETE FROM reservations WHERE telegram_user_id = $1", telegramUserID)
	db.Exec("DELETE FROM orders WHERE telegram_user_id = $1", telegramUserID)
}

// cleanAdmins removes test admin accounts by email.
func cleanAdmins(t *testing.T, db *sql.DB, emails ...string) {
	t.Helper()
	for _, e := range emails {
		db.Exec("DELETE FROM admins WHERE email = $1", e)
	}
}
