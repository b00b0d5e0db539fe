// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"minishop/internal/cache"
	"minishop/internal/middleware"
	"minishop/internal/models"
	"minishop/internal/storage"
	"minishop/internal/store"
)

// Admin groups the back-office HTTP handlers and their dependencies.
type Admin struct {
	products      *store.ProductStore
	categories    *store.CategoryStore
	orders        *store.OrderStore
	settings      *store.SettingStore
	admins        *store.AdminStore
	cacheLog      *store.CacheLogStore
	catalogCache  *cache.CatalogCache
	storageClient *storage.Client
}

// NewAdmin creates the Admin handler group. storageClient may be nil if
// S3 is not configured; photo endpoints then return 503.
func NewAdmin(products *store.ProductStore, categories *store.CategoryStore, orders *store.OrderStore, settings *store.SettingStore, admins *store.AdminStore, cacheLog *store.CacheLogStore, catalogCache *cache.CatalogCache, storageClient *storage.Client) *Admin {
	return &Admin{
		products:      products,
		categories:    categories,
		orders:        orders,
		settings:      settings,
		admins:        admins,
		cacheLog:      cacheLog,
		catalogCache:  catalogCache,
		storageClient: storageClient,
	}
}

// invalidateCatalog purges the Valkey catalog snapshot after a write and
// records the event for auditing.
func (a *Admin) invalidateCatalog(ctx context.Context, entityType string, entityID int64, action string) {
	a.catalogCache.Invalidate(ctx)
	a.cacheLog.Log(entityType, entityID, action)
}

// --- Admin account management (owner only) ---

type adminCreateRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	DisplayName string `json:"displayName" validate:"required,max=200"`
	Password    string `json:"password" validate:"required,min=8,max=128"`
	Role        string `json:"role" validate:"required,oneof=owner manager"`
}

// AdminsList returns all back-office accounts.
func (a *Admin) AdminsList(w http.ResponseWriter, r *http.Request) {
	admins, err := a.admins.List()
	if err != nil {
		slog.Error("list admins failed", "error", err)
		respondError(w, http.StatusInternalServerError, "admins unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"admins": admins})
}

// AdminCreate creates a new back-office account.
func (a *Admin) AdminCreate(w http.ResponseWriter, r *http.Request) {
	var req adminCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	existing, _ := a.admins.FindByEmail(req.Email)
	if existing != nil {
		respondError(w, http.StatusConflict, "an admin with this email already exists")
		return
	}

	created, err := a.admins.Create(req.Email, req.Password, req.DisplayName, models.Role(req.Role))
	if err != nil {
		slog.Error("create admin failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not create admin")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())
	slog.Info("admin created", "by", sess.Email, "new_admin", created.Email, "role", created.Role)
	respondJSON(w, http.StatusCreated, created)
}

// AdminDelete removes a back-office account. Deleting yourself is refused.
func (a *Admin) AdminDelete(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid admin id")
		return
	}
	if id == sess.AdminID {
		respondError(w, http.StatusForbidden, "cannot delete your own account")
		return
	}

	if err := a.admins.Delete(id); err != nil {
		slog.Error("delete admin failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not delete admin")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// AdminResetTwoFA clears another admin's TOTP enrollment, forcing re-setup
// on next login. Resetting your own 2FA is refused.
func (a *Admin) AdminResetTwoFA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid admin id")
		return
	}
	if id == sess.AdminID {
		respondError(w, http.StatusForbidden, "cannot reset your own 2fa")
		return
	}

	if err := a.admins.ResetTOTP(id); err != nil {
		slog.Error("reset 2fa failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not reset 2fa")
		return
	}

	slog.Info("2fa reset", "by", sess.Email, "target", id)
	respondJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// CacheLogEntries returns the most recent catalog invalidation events.
func (a *Admin) CacheLogEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := a.cacheLog.RecentEntries(50)
	if err != nil {
		slog.Error("list cache log failed", "error", err)
		respondError(w, http.StatusInternalServerError, "cache log unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
