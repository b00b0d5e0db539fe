// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	// defaultAnalyticsDays is the window when ?days= is absent.
	defaultAnalyticsDays = 30

	// maxAnalyticsDays caps the window so a bad query can't scan years.
	maxAnalyticsDays = 365

	// topProductsLimit is how many products the leaderboard returns.
	topProductsLimit = 10
)

// Analytics returns the sales dashboard payload: totals, top products,
// and the orders-per-day series. Cancelled orders are excluded from all
// aggregates.
func (a *Admin) Analytics(w http.ResponseWriter, r *http.Request) {
	days := defaultAnalyticsDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "days must be a positive number")
			return
		}
		if n > maxAnalyticsDays {
			n = maxAnalyticsDays
		}
		days = n
	}
	since := time.Now().AddDate(0, 0, -days)

	overview, err := a.orders.Overview(since)
	if err != nil {
		slog.Error("analytics overview failed", "error", err)
		respondError(w, http.StatusInternalServerError, "analytics unavailable")
		return
	}

	top, err := a.orders.TopProducts(since, topProductsLimit)
	if err != nil {
		slog.Error("analytics top products failed", "error", err)
		respondError(w, http.StatusInternalServerError, "analytics unavailable")
		return
	}

	perDay, err := a.orders.OrdersPerDay(since)
	if err != nil {
		slog.Error("analytics per-day failed", "error", err)
		respondError(w, http.StatusInternalServerError, "analytics unavailable")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"days":        days,
		"overview":    overview,
		"topProducts": top,
		"perDay":      perDay,
	})
}
