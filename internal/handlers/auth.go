// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"minishop/internal/middleware"
	"minishop/internal/session"
	"minishop/internal/store"
)

// totpIssuer is the issuer label shown in authenticator apps.
const totpIssuer = "MiniShop"

// Auth groups the admin authentication handlers: password login, TOTP
// enrollment and verification, logout.
type Auth struct {
	sessions   *session.Store
	adminStore *store.AdminStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, adminStore *store.AdminStore) *Auth {
	return &Auth{sessions: sessions, adminStore: adminStore}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type twoFAVerifyRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// Login checks credentials and opens a session with 2FA still pending.
// The response tells the client whether to run TOTP setup or verification.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	admin, err := a.adminStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login unavailable")
		return
	}
	if admin == nil || !a.adminStore.CheckPassword(admin, req.Password) {
		respondError(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	// TwoFADone starts false — the admin must complete TOTP before any
	// protected route opens up.
	_, err = a.sessions.Create(r.Context(), w, &session.Data{
		AdminID:     admin.ID,
		Email:       admin.Email,
		DisplayName: admin.DisplayName,
		Role:        string(admin.Role),
		TwoFADone:   false,
	})
	if err != nil {
		slog.Error("session create failed", "error", err)
		respondError(w, http.StatusInternalServerError, "login unavailable")
		return
	}

	next := "verify"
	if admin.Needs2FASetup() {
		next = "setup"
	}
	respondJSON(w, http.StatusOK, map[string]string{"twoFA": next})
}

// TwoFASetup generates a fresh TOTP secret for the logged-in admin and
// returns the enrollment QR code as a base64 PNG.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not start 2fa setup")
		return
	}

	if err := a.adminStore.SetTOTPSecret(sess.AdminID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not start 2fa setup")
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not start 2fa setup")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"url":    key.URL(),
		"qr":     base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify validates the TOTP code and completes authentication,
// enabling TOTP in the database if this was first-time enrollment.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req twoFAVerifyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	admin, err := a.adminStore.FindByID(sess.AdminID)
	if err != nil || admin == nil {
		slog.Error("admin lookup for 2fa failed", "error", err)
		respondError(w, http.StatusInternalServerError, "verification unavailable")
		return
	}
	if admin.TOTPSecret == nil {
		respondError(w, http.StatusConflict, "2fa setup required first")
		return
	}

	if !totp.Validate(req.Code, *admin.TOTPSecret) {
		respondError(w, http.StatusUnauthorized, "invalid code")
		return
	}

	if !admin.TOTPEnabled {
		if err := a.adminStore.EnableTOTP(admin.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			respondError(w, http.StatusInternalServerError, "verification unavailable")
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "verification unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"email":       admin.Email,
		"displayName": admin.DisplayName,
		"role":        admin.Role,
	})
}

// Me returns the current session identity plus the CSRF token the client
// must echo on state-changing requests.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"email":       sess.Email,
		"displayName": sess.DisplayName,
		"role":        sess.Role,
		"twoFADone":   sess.TwoFADone,
		"csrfToken":   middleware.CSRFTokenFromCtx(r.Context()),
	})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
