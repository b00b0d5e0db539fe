// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHealthHandler(t *testing.T) {
	w := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/health", nil)

	healthHandler(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}

	ct := resp.Header.Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("content-type: got %q, want %q", ct, "application/json")
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field: got %q, want %q", body["status"], "ok")
	}
}

func TestSPAHandlerServesIndex(t *testing.T) {
	h := spaHandler()

	for _, path := range []string{"/", "/cart", "/some/client/route"} {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest("GET", path, nil))

		if w.Code != http.StatusOK {
			t.Errorf("GET %s: got %d, want 200", path, w.Code)
			continue
		}
		if !strings.Contains(w.Body.String(), "MiniShop") {
			t.Errorf("GET %s: index.html not served", path)
		}
	}
}

func TestSPAHandlerDoesNotSwallowAPI(t *testing.T) {
	h := spaHandler()

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest("GET", "/api/v1/nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("API path through SPA fallback: got %d, want 404", w.Code)
	}
}
