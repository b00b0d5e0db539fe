// Copyright (c) 2026 MiniShop Contributors
// All rights reserved. See LICENSE for details.

// Package telegram validates Telegram Mini App initData. The WebApp
// client sends its launch parameters as a query string; the backend
// verifies them with HMAC-SHA256 against a secret derived from the bot
// token, checks freshness, and extracts the signed-in Telegram user.
package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidSignature means the hash field does not match the
	// payload, so the initData was not produced by Telegram for this bot.
	ErrInvalidSignature = errors.New("initdata signature mismatch")

	// ErrExpired means auth_date is older than the allowed window.
	ErrExpired = errors.New("initdata expired")

	// ErrMalformed covers missing or unparseable fields.
	ErrMalformed = errors.New("initdata malformed")
)

// User is the Telegram account extracted from validated initData.
type User struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// DisplayName returns the user's name for order records: first and last
// name joined, falling back to the username.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Username
	}
	return name
}

// InitData is the validated launch payload.
type InitData struct {
	User     *User
	AuthDate time.Time
	QueryID  string
	StartPar string
}

// Validate checks raw initData (the query-string form Telegram hands the
// Mini App) against the bot token and returns the parsed payload.
// maxAge bounds how old auth_date may be; pass 0 to skip the check.
func Validate(raw, botToken string, maxAge time.Duration) (*InitData, error) {
	return validateAt(time.Now(), raw, botToken, maxAge)
}

func validateAt(now time.Time, raw, botToken string, maxAge time.Duration) (*InitData, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	gotHash := values.Get("hash")
	if gotHash == "" {
		return nil, fmt.Errorf("%w: missing hash", ErrMalformed)
	}

	if !hmac.Equal([]byte(gotHash), []byte(computeHash(values, botToken))) {
		return nil, ErrInvalidSignature
	}

	authDateRaw := values.Get("auth_date")
	authUnix, err := strconv.ParseInt(authDateRaw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad auth_date %q", ErrMalformed, authDateRaw)
	}
	authDate := time.Unix(authUnix, 0)
	if maxAge > 0 && now.Sub(authDate) > maxAge {
		return nil, ErrExpired
	}

	data := &InitData{
		AuthDate: authDate,
		QueryID:  values.Get("query_id"),
		StartPar: values.Get("start_param"),
	}

	if userJSON := values.Get("user"); userJSON != "" {
		var u User
		if err := json.Unmarshal([]byte(userJSON), &u); err != nil {
			return nil, fmt.Errorf("%w: bad user field: %v", ErrMalformed, err)
		}
		data.User = &u
	}
	if data.User == nil {
		return nil, fmt.Errorf("%w: missing user", ErrMalformed)
	}

	return data, nil
}

// computeHash builds the data-check string (all fields except hash,
// sorted by key, joined with newlines) and signs it with the secret key
// HMAC_SHA256("WebAppData", botToken).
func computeHash(values url.Values, botToken string) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k == "hash" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+values.Get(k))
	}
	checkString := strings.Join(pairs, "\n")

	secret := hmac.New(sha256.New, []byte("WebAppData"))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(checkString))
	return hex.EncodeToString(mac.Sum(nil))
}

// Sign produces a valid hash for the given fields. Used by tests and
// local tooling to forge initData for a known bot token.
func Sign(values url.Values, botToken string) string {
	return computeHash(values, botToken)
}
