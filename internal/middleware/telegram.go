// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"minishop/internal/telegram"
)

// devBypassUser is the fixed identity admitted when the development auth
// bypass is enabled and no valid initData is present.
var devBypassUser = &telegram.User{ID: 1, FirstName: "Dev", Username: "dev"}

// TelegramAuth validates Mini App initData and puts the verified user in
// the request context. The client sends the raw initData string in the
// Authorization header as "tma <initdata>" (the Mini App convention) or
// in X-Telegram-Init-Data. Requests without a valid signature get 401.
//
// With devBypass enabled (development only), unauthenticated requests
// proceed as a fixed test user so the storefront can be exercised
// outside Telegram.
func TelegramAuth(botToken string, maxAge time.Duration, devBypass bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := initDataFromRequest(r)

			if raw != "" {
				data, err := telegram.Validate(raw, botToken, maxAge)
				if err == nil {
					ctx := context.WithValue(r.Context(), TelegramUserKey, data.User)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				if !devBypass {
					slog.Warn("telegram auth rejected", "error", err, "path", r.URL.Path)
					writeJSONError(w, http.StatusUnauthorized, "invalid telegram credentials")
					return
				}
			} else if !devBypass {
				writeJSONError(w, http.StatusUnauthorized, "telegram credentials required")
				return
			}

			ctx := context.WithValue(r.Context(), TelegramUserKey, devBypassUser)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// initDataFromRequest pulls the raw initData string from the request.
func initDataFromRequest(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "tma ") {
		return strings.TrimPrefix(auth, "tma ")
	}
	return r.Header.Get("X-Telegram-Init-Data")
}

// TelegramUserFromCtx extracts the verified Telegram user from the
// request context. Returns nil outside the TelegramAuth middleware.
func TelegramUserFromCtx(ctx context.Context) *telegram.User {
	u, _ := ctx.Value(TelegramUserKey).(*telegram.User)
	return u
}
