// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

// Package router wires all HTTP routes and middleware chains for the
// MiniShop API and the embedded Mini App frontend.
package router

import (
	"io/fs"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"minishop/internal/config"
	"minishop/internal/handlers"
	"minishop/internal/middleware"
	"minishop/internal/session"
	"minishop/web"
)

// Deps bundles everything the router needs. Handlers are grouped the way
// the API surface is grouped: shopper-facing, checkout, and admin.
type Deps struct {
	Config       *config.Config
	Sessions     *session.Store
	Shop         *handlers.Shop
	Cart         *handlers.Cart
	Orders       *handlers.Orders
	Auth         *handlers.Auth
	Admin        *handlers.Admin
	LoginLimiter *middleware.RateLimiter
}

// New creates the configured chi router with all middleware and route
// groups wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.SecureHeaders)
	r.Use(middleware.Logger)

	r.Get("/health", healthHandler)

	r.Route("/api/v1", func(r chi.Router) {
		// Shopper endpoints. Every request must carry signed Telegram
		// initData (or the dev bypass in development).
		r.Group(func(r chi.Router) {
			r.Use(middleware.TelegramAuth(d.Config.BotToken, d.Config.InitDataMaxAge, d.Config.DevAuthBypass))

			r.Get("/catalog", d.Shop.Catalog)
			r.Get("/catalog/products/{ref}", d.Shop.Product)
			r.Get("/catalog/categories", d.Shop.Categories)
			r.Get("/shop", d.Shop.Settings)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", d.Cart.List)
				r.Post("/items", d.Cart.Add)
				r.Delete("/items/{id}", d.Cart.Remove)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", d.Orders.Checkout)
				r.Get("/", d.Orders.ListMine)
			})
		})

		// Admin endpoints. Cookie sessions with CSRF; login is rate
		// limited, everything past it needs a completed 2FA.
		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.LoadSession(d.Sessions))
			r.Use(middleware.NewCSRF(!d.Config.IsDev()))

			r.With(d.LoginLimiter.Middleware).Post("/auth/login", d.Auth.Login)
			r.Post("/auth/logout", d.Auth.Logout)

			// 2FA enrollment and verification need a session but not a
			// completed 2FA yet.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Post("/auth/2fa/setup", d.Auth.TwoFASetup)
				r.Post("/auth/2fa/verify", d.Auth.TwoFAVerify)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Use(middleware.Require2FA)

				r.Get("/auth/me", d.Auth.Me)

				r.Route("/products", func(r chi.Router) {
					r.Get("/", d.Admin.ProductsList)
					r.Post("/", d.Admin.ProductCreate)
					r.Get("/{id}", d.Admin.ProductGet)
					r.Put("/{id}", d.Admin.ProductUpdate)
					r.Delete("/{id}", d.Admin.ProductDelete)
					r.Post("/{id}/photo", d.Admin.ProductPhotoUpload)
					r.Delete("/{id}/photo", d.Admin.ProductPhotoDelete)
				})

				r.Route("/categories", func(r chi.Router) {
					r.Get("/", d.Admin.CategoriesList)
					r.Post("/", d.Admin.CategoryCreate)
					r.Put("/reorder", d.Admin.CategoriesReorder)
					r.Put("/{id}", d.Admin.CategoryUpdate)
					r.Delete("/{id}", d.Admin.CategoryDelete)
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", d.Admin.OrdersList)
					r.Get("/{id}", d.Admin.OrderGet)
					r.Patch("/{id}/status", d.Admin.OrderUpdateStatus)
				})

				r.Get("/settings", d.Admin.SettingsGet)
				r.Put("/settings", d.Admin.SettingsUpdate)
				r.Get("/analytics", d.Admin.Analytics)
				r.Get("/cache-log", d.Admin.CacheLogEntries)

				// Admin account management is owner-only.
				r.Route("/admins", func(r chi.Router) {
					r.Use(middleware.RequireOwner)
					r.Get("/", d.Admin.AdminsList)
					r.Post("/", d.Admin.AdminCreate)
					r.Delete("/{id}", d.Admin.AdminDelete)
					r.Post("/{id}/reset-2fa", d.Admin.AdminResetTwoFA)
				})
			})
		})
	})

	// The Mini App bundle. Unknown non-API paths fall back to
	// index.html so client-side routing works.
	r.NotFound(spaHandler())

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// spaHandler serves the embedded frontend, falling back to index.html
// for paths that do not match a static file.
func spaHandler() http.HandlerFunc {
	staticFS, err := fs.Sub(web.StaticFS, "static")
	if err != nil {
		panic("web/static missing from embed: " + err.Error())
	}
	fileServer := http.FileServer(http.FS(staticFS))

	return func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/api/") {
			http.NotFound(w, r)
			return
		}
		path := strings.TrimPrefix(r.URL.Path, "/")
		if path != "" {
			if f, err := staticFS.Open(path); err == nil {
				f.Close()
				fileServer.ServeHTTP(w, r)
				return
			}
		}
		http.ServeFileFS(w, r, staticFS, "index.html")
	}
}
