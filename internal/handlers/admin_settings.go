// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"minishop/internal/models"
)

// knownSettingKeys whitelists the shop settings the API will persist.
// Unknown keys in an update are rejected rather than silently stored.
var knownSettingKeys = map[string]bool{
	models.SettingShopOpen:        true,
	models.SettingCurrency:        true,
	models.SettingDeliveryEnabled: true,
	models.SettingDeliveryPrice:   true,
	models.SettingMinOrderAmount:  true,
	models.SettingOrdersChatID:    true,
}

// settingsUpdateRequest is the payload for the settings upsert endpoint.
type settingsUpdateRequest struct {
	Settings map[string]string `json:"settings" validate:"required,min=1"`
}

// SettingsGet returns all shop settings as a flat key/value map.
func (a *Admin) SettingsGet(w http.ResponseWriter, r *http.Request) {
	all, err := a.settings.All()
	if err != nil {
		slog.Error("load settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "settings unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": all})
}

// SettingsUpdate upserts the given settings in one transaction.
func (a *Admin) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req settingsUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validate.Struct(req); err != nil {
		respondError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	for key := range req.Settings {
		if !knownSettingKeys[key] {
			respondError(w, http.StatusUnprocessableEntity, "unknown setting: "+key)
			return
		}
	}

	if err := a.settings.SetMany(req.Settings); err != nil {
		slog.Error("update settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "could not update settings")
		return
	}

	all, err := a.settings.All()
	if err != nil {
		slog.Error("reload settings failed", "error", err)
		respondError(w, http.StatusInternalServerError, "settings unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": all})
}
